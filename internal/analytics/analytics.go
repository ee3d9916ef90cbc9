// Package analytics records every conversation for usage reporting. Records
// go to Postgres for aggregation and to Elasticsearch for search.
package analytics

import (
	"context"
	"time"
)

// Record is one tracked conversation turn.
type Record struct {
	UserID           string    `json:"userId,omitempty"`
	Concept          string    `json:"concept"`
	Query            string    `json:"query"`
	Intent           string    `json:"intent"`
	Success          bool      `json:"success"`
	ResponseTimeMs   int64     `json:"responseTimeMs"`
	PromptTokens     int       `json:"promptTokens"`
	CompletionTokens int       `json:"completionTokens"`
	TotalTokens      int       `json:"totalTokens"`
	Model            string    `json:"model,omitempty"`
	FinishReason     string    `json:"finishReason,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
}

// Recorder persists conversation records.
type Recorder interface {
	Track(ctx context.Context, rec Record) error
}

// Finalize fills the derived fields of a record before persistence.
func Finalize(rec Record) Record {
	rec.TotalTokens = rec.PromptTokens + rec.CompletionTokens
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	return rec
}

// NoopRecorder discards records; used when analytics is disabled.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (*NoopRecorder) Track(context.Context, Record) error { return nil }

// MultiRecorder fans a record out to several sinks; the first failure wins
// but every sink is attempted.
type MultiRecorder struct {
	sinks []Recorder
}

func NewMultiRecorder(sinks ...Recorder) *MultiRecorder {
	return &MultiRecorder{sinks: sinks}
}

func (m *MultiRecorder) Track(ctx context.Context, rec Record) error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.Track(ctx, rec); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
