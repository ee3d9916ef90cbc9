package analytics

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retail-chatbot/internal/common/logger"
)

func newESClient(t *testing.T, handler http.HandlerFunc) *elasticsearch.Client {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client
}

func TestElasticTrack(t *testing.T) {
	var gotPath string
	var gotBody Record
	client := newESClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &gotBody)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"result": "created"}`))
	})

	r := NewElasticRecorder(client, "", logger.NewTestLogger(t))
	err := r.Track(context.Background(), Record{
		Concept: "MAX", Query: "return policy", Intent: "POLICY_QUESTION",
		PromptTokens: 10, CompletionTokens: 5, Model: "gpt-4o-mini",
	})
	require.NoError(t, err)

	assert.Equal(t, "/chatbot-conversations/_doc", gotPath)
	assert.Equal(t, "MAX", gotBody.Concept)
	assert.Equal(t, 15, gotBody.TotalTokens)
}

func TestElasticTrackIndexError(t *testing.T) {
	client := newESClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "boom"}`))
	})

	r := NewElasticRecorder(client, "", logger.NewTestLogger(t))
	err := r.Track(context.Background(), Record{Concept: "MAX"})
	require.Error(t, err)
}

func TestSearchConversations(t *testing.T) {
	client := newESClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chatbot-conversations/_search", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.EqualValues(t, 5, body["size"])

		w.Write([]byte(`{"hits": {"hits": [
			{"_source": {"concept": "MAX", "query": "return policy", "intent": "POLICY_QUESTION"}},
			{"_source": {"concept": "MAX", "query": "refund time", "intent": "POLICY_QUESTION"}}
		]}}`))
	})

	r := NewElasticRecorder(client, "", logger.NewTestLogger(t))
	records, err := r.SearchConversations(context.Background(), "policy", 5)
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "return policy", records[0].Query)
}
