// Package handlers defines the per-intent handler contract and the registry
// the router dispatches through.
package handlers

import (
	"context"
	"fmt"
	"time"

	"retail-chatbot/internal/concept"
	"retail-chatbot/internal/model"
)

// SignInMessage is returned verbatim for account-bound intents when the
// request carries no user id. No backend or model call is made in that case.
const SignInMessage = "Please sign in to continue — once you're logged in, I can fetch your latest details."

// UnavailableMessage is the degraded reply when a commerce backend cannot be
// reached, pointing the customer at the brand's support line.
func UnavailableMessage(rawConcept string) string {
	return fmt.Sprintf(
		"Please contact our customer care for more details: We are currently unable to serve your request. Call %s for assistance.",
		concept.SupportPhone(rawConcept),
	)
}

// IntentHandler processes one intent end to end.
type IntentHandler interface {
	IntentType() model.Intent
	// CanHandle reports whether the query lexically matches this intent.
	CanHandle(query string) bool
	Handle(ctx context.Context, req *model.ChatRequest, start time.Time) (*model.ChatbotResponse, error)
}

// NewResponse builds the standard success envelope for a handled intent.
func NewResponse(intent model.Intent, data interface{}, usage *model.TokenUsage, start time.Time) *model.ChatbotResponse {
	return &model.ChatbotResponse{
		Data:           data,
		TokenUsage:     usage,
		ResponseTimeMs: time.Since(start).Milliseconds(),
		Intent:         intent,
		Success:        true,
	}
}

// Registry maps intents to their handlers.
type Registry struct {
	handlers map[model.Intent]IntentHandler
}

func NewRegistry(hs ...IntentHandler) *Registry {
	r := &Registry{handlers: make(map[model.Intent]IntentHandler, len(hs))}
	for _, h := range hs {
		r.Register(h)
	}
	return r
}

func (r *Registry) Register(h IntentHandler) {
	r.handlers[h.IntentType()] = h
}

// Resolve returns the handler for an intent.
func (r *Registry) Resolve(intent model.Intent) (IntentHandler, bool) {
	h, ok := r.handlers[intent]
	return h, ok
}
