package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinalize(t *testing.T) {
	rec := Finalize(Record{
		Model:            "gpt-4o-mini",
		PromptTokens:     1200,
		CompletionTokens: 300,
	})

	assert.Equal(t, 1500, rec.TotalTokens)
	assert.False(t, rec.Timestamp.IsZero())
}

func TestFinalizeKeepsTimestamp(t *testing.T) {
	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	rec := Finalize(Record{Timestamp: ts})
	assert.Equal(t, ts, rec.Timestamp)
}

type failingRecorder struct{ err error }

func (f *failingRecorder) Track(context.Context, Record) error { return f.err }

type countingRecorder struct{ calls int }

func (c *countingRecorder) Track(context.Context, Record) error {
	c.calls++
	return nil
}

func TestMultiRecorderAttemptsAllSinks(t *testing.T) {
	counter := &countingRecorder{}
	m := NewMultiRecorder(&failingRecorder{err: assert.AnError}, counter)

	err := m.Track(context.Background(), Record{})
	require.Error(t, err)
	assert.Equal(t, 1, counter.calls)
}

func TestNoopRecorder(t *testing.T) {
	assert.NoError(t, NewNoopRecorder().Track(context.Background(), Record{}))
}
