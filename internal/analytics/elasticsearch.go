package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"retail-chatbot/internal/common/errors"
	"retail-chatbot/internal/common/logger"
)

const defaultIndex = "chatbot-conversations"

// ElasticRecorder indexes conversation records for ad-hoc search.
type ElasticRecorder struct {
	client *elasticsearch.Client
	index  string
	log    logger.Logger
}

func NewElasticRecorder(client *elasticsearch.Client, index string, log logger.Logger) *ElasticRecorder {
	if index == "" {
		index = defaultIndex
	}
	return &ElasticRecorder{client: client, index: index, log: log}
}

func (r *ElasticRecorder) Track(ctx context.Context, rec Record) error {
	rec = Finalize(rec)

	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode analytics record: %w", err)
	}

	req := esapi.IndexRequest{
		Index: r.index,
		Body:  bytes.NewReader(body),
	}
	res, err := req.Do(ctx, r.client)
	if err != nil {
		return errors.NewDatabaseInsertFailedError(r.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return errors.NewDatabaseInsertFailedError(r.index, fmt.Errorf("index returned %s: %s", res.Status(), string(snippet)))
	}
	return nil
}

// SearchConversations returns the most recent records matching the query
// text, newest first. An empty query matches everything.
func (r *ElasticRecorder) SearchConversations(ctx context.Context, queryText string, size int) ([]Record, error) {
	if size <= 0 {
		size = 20
	}

	var match map[string]interface{}
	if queryText == "" {
		match = map[string]interface{}{"match_all": map[string]interface{}{}}
	} else {
		match = map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  queryText,
				"fields": []string{"query", "intent", "concept"},
			},
		}
	}

	body, err := json.Marshal(map[string]interface{}{
		"query": match,
		"size":  size,
		"sort":  []map[string]interface{}{{"timestamp": map[string]string{"order": "desc"}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode search query: %w", err)
	}

	res, err := r.client.Search(
		r.client.Search.WithContext(ctx),
		r.client.Search.WithIndex(r.index),
		r.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, errors.NewSearchQueryFailedError(r.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errors.NewSearchQueryFailedError(r.index, fmt.Errorf("search returned %s", res.Status()))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source Record `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, errors.NewSearchQueryFailedError(r.index, err)
	}

	records := make([]Record, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		records = append(records, h.Source)
	}
	return records, nil
}
