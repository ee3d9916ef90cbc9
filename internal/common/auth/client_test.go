package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retail-chatbot/internal/common/errors"
	"retail-chatbot/internal/common/logger"
)

func newTokenServer(t *testing.T, fetches *int32, token func() string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.Form.Get("grant_type"))
		assert.NotEmpty(t, r.Form.Get("appId"))

		atomic.AddInt32(fetches, 1)
		json.NewEncoder(w).Encode(map[string]string{"access_token": token()})
	}))
}

func newTestClient(tokenURL string) *Client {
	return NewClient(Config{
		TokenURL:     tokenURL,
		ClientID:     "mobile_android",
		ClientSecret: "secret",
	}, logger.NewNoOpLogger())
}

func TestCallFetchesAndCachesToken(t *testing.T) {
	var fetches int32
	tokenSrv := newTokenServer(t, &fetches, func() string { return "tok-1" })
	defer tokenSrv.Close()

	var gotTokens []string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTokens = append(gotTokens, r.Header.Get("access_token"))
		w.WriteHeader(http.StatusOK)
	}))
	defer api.Close()

	c := newTestClient(tokenSrv.URL)

	for i := 0; i < 3; i++ {
		resp, err := c.Call(context.Background(), "ANDROID", "uat5", http.MethodGet, api.URL, nil, nil)
		require.NoError(t, err)
		resp.Body.Close()
	}

	// One fetch serves all three calls.
	assert.Equal(t, int32(1), atomic.LoadInt32(&fetches))
	assert.Equal(t, []string{"tok-1", "tok-1", "tok-1"}, gotTokens)

	cached, ok := c.CachedToken("ANDROID", "uat5")
	require.True(t, ok)
	assert.Equal(t, "tok-1", cached)
}

func TestCallTokenCacheIsPerAppAndEnv(t *testing.T) {
	var fetches int32
	tokenSrv := newTokenServer(t, &fetches, func() string { return "tok" })
	defer tokenSrv.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer api.Close()

	c := newTestClient(tokenSrv.URL)

	pairs := [][2]string{{"ANDROID", "uat5"}, {"ANDROID", "prod"}, {"IPHONE", "uat5"}}
	for _, p := range pairs {
		resp, err := c.Call(context.Background(), p[0], p[1], http.MethodGet, api.URL, nil, nil)
		require.NoError(t, err)
		resp.Body.Close()
	}

	assert.Equal(t, int32(3), atomic.LoadInt32(&fetches))
}

func TestCallRefreshesOnceOn401(t *testing.T) {
	var fetches int32
	tokenSrv := newTokenServer(t, &fetches, func() string {
		if atomic.LoadInt32(&fetches) > 0 {
			return "tok-fresh"
		}
		return "tok-stale"
	})
	defer tokenSrv.Close()

	var apiCalls int32
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&apiCalls, 1)
		if r.Header.Get("access_token") == "tok-fresh" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer api.Close()

	c := newTestClient(tokenSrv.URL)
	// Seed a stale token so the first backend call gets a 401.
	c.tokens.Store(cacheKey("ANDROID", "uat5"), "expired")

	resp, err := c.Call(context.Background(), "ANDROID", "uat5", http.MethodGet, api.URL, nil, nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(2), atomic.LoadInt32(&apiCalls))

	cached, ok := c.CachedToken("ANDROID", "uat5")
	require.True(t, ok)
	assert.Equal(t, "tok-fresh", cached)
}

func TestCallSecondUnauthorizedIsReturned(t *testing.T) {
	var fetches int32
	tokenSrv := newTokenServer(t, &fetches, func() string { return "tok" })
	defer tokenSrv.Close()

	var apiCalls int32
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&apiCalls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer api.Close()

	c := newTestClient(tokenSrv.URL)

	resp, err := c.Call(context.Background(), "ANDROID", "uat5", http.MethodGet, api.URL, nil, nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	// Exactly one retry: initial call plus one after refresh.
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, int32(2), atomic.LoadInt32(&apiCalls))
}

func TestCallAuthFailureIsNotRetried(t *testing.T) {
	var fetches int32
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&fetches, 1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer tokenSrv.Close()

	c := newTestClient(tokenSrv.URL)

	_, err := c.Call(context.Background(), "ANDROID", "uat5", http.MethodGet, "http://unused.invalid", nil, nil)
	require.Error(t, err)

	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeAuthFailure, stdErr.Code)
	assert.False(t, stdErr.Retryable)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fetches))

	_, cached := c.CachedToken("ANDROID", "uat5")
	assert.False(t, cached)
}

func TestCallJSONDecodesBody(t *testing.T) {
	var fetches int32
	tokenSrv := newTokenServer(t, &fetches, func() string { return "tok" })
	defer tokenSrv.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "SUCCESS"})
	}))
	defer api.Close()

	c := newTestClient(tokenSrv.URL)

	var out struct {
		Status string `json:"status"`
	}
	err := c.CallJSON(context.Background(), "ANDROID", "uat5", http.MethodGet, api.URL, nil, nil, &out)
	require.NoError(t, err)
	assert.Equal(t, "SUCCESS", out.Status)
}

func TestTokenURLEnvPlaceholder(t *testing.T) {
	var gotHost string
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHost = r.URL.Path
		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok"})
	}))
	defer tokenSrv.Close()

	c := newTestClient(tokenSrv.URL + "/{env}/oauth/token")

	_, err := c.fetchToken(context.Background(), "ANDROID", "uat5")
	require.NoError(t, err)
	assert.Equal(t, "/uat5/oauth/token", gotHost)
}
