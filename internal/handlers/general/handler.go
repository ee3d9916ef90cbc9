// Package general handles GENERAL_QUERY, the fallback when no other intent
// matches.
package general

import (
	"context"
	"fmt"
	"time"

	"retail-chatbot/internal/common/llm"
	"retail-chatbot/internal/common/logger"
	"retail-chatbot/internal/concept"
	"retail-chatbot/internal/handlers"
	"retail-chatbot/internal/model"
)

type Handler struct {
	llm llm.Client
	log logger.Logger
}

func New(llmClient llm.Client, log logger.Logger) *Handler {
	return &Handler{llm: llmClient, log: log}
}

func (h *Handler) IntentType() model.Intent {
	return model.IntentGeneralQuery
}

// CanHandle always reports false; this handler is the fallback, not a
// pattern match.
func (h *Handler) CanHandle(string) bool {
	return false
}

func (h *Handler) Handle(ctx context.Context, req *model.ChatRequest, start time.Time) (*model.ChatbotResponse, error) {
	prompt := fmt.Sprintf(
		"Q: %s\n\nProvide a short, helpful response. "+
			"If appropriate, suggest available services: "+
			"order tracking, store locator, or policy information. "+
			"For complex issues, suggest calling %s for assistance.",
		req.Query(), concept.SupportPhone(req.Concept),
	)

	completion, err := h.llm.Complete(ctx, llm.CompletionRequest{
		Prompt:      prompt,
		MaxTokens:   500,
		Temperature: 0.3,
	})
	if err != nil {
		return nil, err
	}

	usage := completion.Usage
	return handlers.NewResponse(h.IntentType(), completion.Text, &usage, start), nil
}
