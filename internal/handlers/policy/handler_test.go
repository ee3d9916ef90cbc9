package policy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retail-chatbot/internal/common/llm"
	"retail-chatbot/internal/common/logger"
	"retail-chatbot/internal/model"
)

type stubStore struct {
	context string
	err     error
}

func (s *stubStore) PolicyContext(_ context.Context, _, _ string) (string, error) {
	return s.context, s.err
}

type stubLLM struct {
	text  string
	err   error
	calls int
	last  llm.CompletionRequest
}

func (s *stubLLM) Complete(_ context.Context, req llm.CompletionRequest) (*llm.Completion, error) {
	s.calls++
	s.last = req
	if s.err != nil {
		return nil, s.err
	}
	return &llm.Completion{
		Text:  s.text,
		Usage: model.TokenUsage{PromptTokens: 100, CompletionTokens: 20, TotalTokens: 120},
	}, nil
}

func TestCanHandle(t *testing.T) {
	h := New(&stubStore{}, &stubLLM{}, logger.NewNoOpLogger())
	assert.True(t, h.CanHandle("what is the return policy"))
	assert.True(t, h.CanHandle("free shipping?"))
	assert.False(t, h.CanHandle("hello there"))
}

func TestHandleAnswersFromContext(t *testing.T) {
	store := &stubStore{context: "Returns are accepted within 30 days."}
	model1 := &stubLLM{text: "You can return items within 30 days."}
	h := New(store, model1, logger.NewTestLogger(t))

	resp, err := h.Handle(context.Background(), &model.ChatRequest{
		Concept: "MAX", Message: "what is the return window",
	}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, "You can return items within 30 days.", resp.Data)
	require.NotNil(t, resp.TokenUsage)
	assert.Equal(t, 120, resp.TokenUsage.TotalTokens)
	assert.Contains(t, model1.last.Prompt, "Returns are accepted within 30 days.")
	assert.Contains(t, model1.last.Prompt, "what is the return window")
}

func TestHandleEscalatesWithoutContext(t *testing.T) {
	tests := []struct {
		name    string
		context string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"negative marker", "The documents do not contain this information."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model1 := &stubLLM{}
			h := New(&stubStore{context: tt.context}, model1, logger.NewTestLogger(t))

			resp, err := h.Handle(context.Background(), &model.ChatRequest{
				Concept: "HOMECENTRE", Message: "return policy",
			}, time.Now())
			require.NoError(t, err)

			assert.Contains(t, resp.Data.(string), "1800-212-7500")
			assert.Zero(t, model1.calls, "escalation must not call the model")
		})
	}
}

func TestHandlePropagatesRetrievalFailure(t *testing.T) {
	h := New(&stubStore{err: assert.AnError}, &stubLLM{}, logger.NewTestLogger(t))

	_, err := h.Handle(context.Background(), &model.ChatRequest{
		Concept: "MAX", Message: "return policy",
	}, time.Now())
	require.Error(t, err)
}

func TestHandleUsesQuestionField(t *testing.T) {
	store := &stubStore{context: "Exchange within 14 days."}
	model1 := &stubLLM{text: "ok"}
	h := New(store, model1, logger.NewTestLogger(t))

	_, err := h.Handle(context.Background(), &model.ChatRequest{
		Concept: "MAX", Message: "ignored", Question: "how do exchanges work",
	}, time.Now())
	require.NoError(t, err)
	assert.Contains(t, model1.last.Prompt, "how do exchanges work")
}
