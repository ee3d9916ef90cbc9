// internal/common/auth/client.go
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"retail-chatbot/internal/common/errors"
	"retail-chatbot/internal/common/logger"
)

// Config holds the commerce token endpoint settings. TokenURL may contain an
// {env} placeholder substituted per request.
type Config struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	GrantType    string
	Timeout      time.Duration
}

// Client calls authenticated commerce endpoints with a shared token cache.
// Tokens are cached per (appID, env) with no expiry; a 401 from the backend is
// the staleness signal, answered with exactly one refresh-and-retry.
type Client struct {
	cfg        Config
	httpClient *http.Client
	tokens     sync.Map // "appID|env" -> token string
	log        logger.Logger
}

// tokenResponse holds the commerce token endpoint reply.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

func NewClient(cfg Config, log logger.Logger) *Client {
	if cfg.GrantType == "" {
		cfg.GrantType = "client_credentials"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// Call performs an authenticated request. On a 401 it drops the cached token,
// fetches a fresh one, and retries once; a second 401 is returned to the
// caller as-is. Token acquisition failures surface as AUTH_FAILURE and are
// never retried here.
func (c *Client) Call(ctx context.Context, appID, env, method, reqURL string, headers http.Header, body []byte) (*http.Response, error) {
	token, err := c.getOrFetchToken(ctx, appID, env)
	if err != nil {
		return nil, err
	}

	resp, err := c.doWithToken(ctx, method, reqURL, headers, body, token)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		c.log.Warn("Token rejected, refreshing and retrying", map[string]interface{}{
			"appId": appID,
			"env":   env,
			"url":   reqURL,
		})
		c.invalidate(appID, env)
		token, err = c.fetchAndStore(ctx, appID, env)
		if err != nil {
			return nil, err
		}
		resp, err = c.doWithToken(ctx, method, reqURL, headers, body, token)
		if err != nil {
			return nil, err
		}
	}

	return resp, nil
}

// CallJSON performs an authenticated request and decodes a 2xx JSON body into
// out. Non-2xx statuses become errors; out may be nil to discard the body.
func (c *Client) CallJSON(ctx context.Context, appID, env, method, reqURL string, headers http.Header, reqBody interface{}, out interface{}) error {
	var raw []byte
	if reqBody != nil {
		var err error
		raw, err = json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	resp, err := c.Call(ctx, appID, env, method, reqURL, headers, raw)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return errors.NewAuthorizationExpiredError(reqURL)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(snippet))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}

func (c *Client) doWithToken(ctx context.Context, method, reqURL string, headers http.Header, body []byte, token string) (*http.Response, error) {
	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("access_token", token)

	return c.httpClient.Do(req)
}

func cacheKey(appID, env string) string {
	return appID + "|" + env
}

func (c *Client) getOrFetchToken(ctx context.Context, appID, env string) (string, error) {
	if v, ok := c.tokens.Load(cacheKey(appID, env)); ok {
		return v.(string), nil
	}
	return c.fetchAndStore(ctx, appID, env)
}

func (c *Client) invalidate(appID, env string) {
	c.tokens.Delete(cacheKey(appID, env))
}

// fetchAndStore fetches a fresh token and overwrites the cache entry. Two
// concurrent fetches for the same key may both hit the token endpoint; the
// last writer wins, which is harmless because either token is valid.
func (c *Client) fetchAndStore(ctx context.Context, appID, env string) (string, error) {
	token, err := c.fetchToken(ctx, appID, env)
	if err != nil {
		return "", err
	}
	c.tokens.Store(cacheKey(appID, env), token)
	return token, nil
}

func (c *Client) fetchToken(ctx context.Context, appID, env string) (string, error) {
	tokenURL := strings.ReplaceAll(c.cfg.TokenURL, "{env}", env)

	form := url.Values{}
	form.Set("appId", appID)
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("grant_type", c.cfg.GrantType)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", errors.NewAuthFailureError(appID, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.NewAuthFailureError(appID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", errors.NewAuthFailureError(appID, fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, string(snippet)))
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", errors.NewAuthFailureError(appID, fmt.Errorf("invalid token response: %w", err))
	}
	if tr.AccessToken == "" {
		return "", errors.NewAuthFailureError(appID, fmt.Errorf("token response missing access_token"))
	}

	c.log.Debug("Token fetched", map[string]interface{}{"appId": appID, "env": env})
	return tr.AccessToken, nil
}

// SetTransport overrides the HTTP transport. Tests use it to route commerce
// calls to local fakes.
func (c *Client) SetTransport(rt http.RoundTripper) {
	c.httpClient.Transport = rt
}

// CachedToken exposes the cache entry for tests and diagnostics.
func (c *Client) CachedToken(appID, env string) (string, bool) {
	v, ok := c.tokens.Load(cacheKey(appID, env))
	if !ok {
		return "", false
	}
	return v.(string), true
}
