// Package giftcard handles the GIFT_CARD_BALANCE intent.
package giftcard

import (
	"context"
	"time"

	"retail-chatbot/internal/classifier"
	"retail-chatbot/internal/common/logger"
	"retail-chatbot/internal/handlers"
	"retail-chatbot/internal/model"
	"retail-chatbot/internal/tools"
)

// BalanceService is the slice of the tools client this handler needs.
type BalanceService interface {
	GiftCardBalance(ctx context.Context, concept, env, appID, cardNumber, pin string) (*tools.GiftCardBalanceResponse, error)
}

type Handler struct {
	balances BalanceService
	log      logger.Logger
}

func New(balances BalanceService, log logger.Logger) *Handler {
	return &Handler{balances: balances, log: log}
}

func (h *Handler) IntentType() model.Intent {
	return model.IntentGiftCardBalance
}

func (h *Handler) CanHandle(query string) bool {
	intent, ok := classifier.MatchRules(query)
	return ok && intent == h.IntentType()
}

// Handle checks a gift card balance. The caller must be signed in and the
// card number must be present before the backend is consulted.
func (h *Handler) Handle(ctx context.Context, req *model.ChatRequest, start time.Time) (*model.ChatbotResponse, error) {
	if req.IsAnonymous() {
		data := &tools.GiftCardBalanceResponse{
			Status:  "FAILED",
			Message: handlers.SignInMessage,
		}
		return handlers.NewResponse(h.IntentType(), data, nil, start), nil
	}
	if req.CardNumber == "" {
		data := &tools.GiftCardBalanceResponse{
			Status:  "FAILED",
			Message: "Please provide your gift card number and PIN to check the balance.",
		}
		return handlers.NewResponse(h.IntentType(), data, nil, start), nil
	}

	resp, err := h.balances.GiftCardBalance(ctx, req.Concept, req.Env, req.AppID, req.CardNumber, req.PIN)
	if err != nil {
		return nil, err
	}
	if resp.ErrorOccurred {
		h.log.Warn("Gift card balance check degraded", map[string]interface{}{
			"concept": req.Concept,
		})
	}
	return handlers.NewResponse(h.IntentType(), resp, nil, start), nil
}
