// Package profile handles the CUSTOMER_PROFILE intent.
package profile

import (
	"context"
	"time"

	"retail-chatbot/internal/classifier"
	"retail-chatbot/internal/common/logger"
	"retail-chatbot/internal/handlers"
	"retail-chatbot/internal/model"
	"retail-chatbot/internal/tools"
)

// ProfileService is the slice of the tools client this handler needs.
type ProfileService interface {
	CustomerProfile(ctx context.Context, userID, concept, env, appID string) (*tools.Profile, error)
}

type Handler struct {
	profiles ProfileService
	log      logger.Logger
}

func New(profiles ProfileService, log logger.Logger) *Handler {
	return &Handler{profiles: profiles, log: log}
}

func (h *Handler) IntentType() model.Intent {
	return model.IntentCustomerProfile
}

func (h *Handler) CanHandle(query string) bool {
	intent, ok := classifier.MatchRules(query)
	return ok && intent == h.IntentType()
}

// Handle fetches the signed-in customer's profile. Anonymous sessions get
// the sign-in prompt without a backend call.
func (h *Handler) Handle(ctx context.Context, req *model.ChatRequest, start time.Time) (*model.ChatbotResponse, error) {
	if req.IsAnonymous() {
		h.log.Info("Profile requested by anonymous user", map[string]interface{}{
			"concept": req.Concept,
		})
		data := &tools.Profile{ChatMessage: handlers.SignInMessage}
		return handlers.NewResponse(h.IntentType(), data, nil, start), nil
	}

	p, err := h.profiles.CustomerProfile(ctx, req.UserID, req.Concept, req.Env, req.AppID)
	if err != nil {
		return nil, err
	}
	return handlers.NewResponse(h.IntentType(), p, nil, start), nil
}
