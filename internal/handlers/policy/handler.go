// Package policy handles the POLICY_QUESTION intent with brand-scoped
// retrieval-augmented answers.
package policy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"retail-chatbot/internal/classifier"
	"retail-chatbot/internal/common/llm"
	"retail-chatbot/internal/common/logger"
	"retail-chatbot/internal/concept"
	"retail-chatbot/internal/handlers"
	"retail-chatbot/internal/model"
)

const answerInstruction = "Answer strictly and only from the given context. Respond concisely. Avoid long sentences, filler words, or assumptions."

const maxAnswerTokens = 800

// ContextProvider yields the policy context block for a brand and query.
// *retrieval.Store satisfies it.
type ContextProvider interface {
	PolicyContext(ctx context.Context, concept, query string) (string, error)
}

type Handler struct {
	store ContextProvider
	llm   llm.Client
	log   logger.Logger
}

func New(store ContextProvider, llmClient llm.Client, log logger.Logger) *Handler {
	return &Handler{store: store, llm: llmClient, log: log}
}

func (h *Handler) IntentType() model.Intent {
	return model.IntentPolicyQuestion
}

func (h *Handler) CanHandle(query string) bool {
	intent, ok := classifier.MatchRules(query)
	return ok && intent == h.IntentType()
}

// Handle answers from the brand's own policy documents. When retrieval comes
// back empty the customer is pointed at the support line directly, with no
// model call.
func (h *Handler) Handle(ctx context.Context, req *model.ChatRequest, start time.Time) (*model.ChatbotResponse, error) {
	query := req.Query()

	policyContext, err := h.store.PolicyContext(ctx, req.Concept, query)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(policyContext) == "" || strings.Contains(policyContext, "not contain") {
		h.log.Info("No policy context found, escalating to support line", map[string]interface{}{
			"concept": req.Concept,
		})
		return handlers.NewResponse(h.IntentType(), concept.ContactEscalationMessage(req.Concept), nil, start), nil
	}

	prompt := fmt.Sprintf("Context:\n%s\n\nQ: %s\nA: %s", policyContext, query, answerInstruction)
	completion, err := h.llm.Complete(ctx, llm.CompletionRequest{
		Prompt:      prompt,
		Temperature: 0,
		MaxTokens:   maxAnswerTokens,
	})
	if err != nil {
		return nil, err
	}

	usage := completion.Usage
	return handlers.NewResponse(h.IntentType(), completion.Text, &usage, start), nil
}
