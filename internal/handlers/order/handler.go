// Package order handles the ORDER_TRACKING intent.
package order

import (
	"context"
	"time"

	"retail-chatbot/internal/classifier"
	"retail-chatbot/internal/common/logger"
	"retail-chatbot/internal/handlers"
	"retail-chatbot/internal/model"
	"retail-chatbot/internal/tools"
)

// OrderService is the slice of the tools client this handler needs.
type OrderService interface {
	OrderStatus(ctx context.Context, userID, concept, env, appID string) (*tools.OrderResponse, error)
}

type Handler struct {
	orders OrderService
	log    logger.Logger
}

func New(orders OrderService, log logger.Logger) *Handler {
	return &Handler{orders: orders, log: log}
}

func (h *Handler) IntentType() model.Intent {
	return model.IntentOrderTracking
}

func (h *Handler) CanHandle(query string) bool {
	intent, ok := classifier.MatchRules(query)
	return ok && intent == h.IntentType()
}

// Handle fetches the customer's active orders. Anonymous sessions get the
// sign-in prompt without touching the backend; a failed backend call degrades
// to a support-line message rather than an error.
func (h *Handler) Handle(ctx context.Context, req *model.ChatRequest, start time.Time) (*model.ChatbotResponse, error) {
	if req.IsAnonymous() {
		h.log.Info("Order tracking requested by anonymous user", map[string]interface{}{
			"concept": req.Concept,
		})
		data := &tools.OrderResponse{
			ChatMessage: handlers.SignInMessage,
			Orders:      []tools.OrderDetail{},
		}
		return handlers.NewResponse(h.IntentType(), data, nil, start), nil
	}

	resp, err := h.orders.OrderStatus(ctx, req.UserID, req.Concept, req.Env, req.AppID)
	if err != nil {
		h.log.Error("Order tracking degraded", map[string]interface{}{
			"concept": req.Concept,
			"error":   err.Error(),
		})
		resp = &tools.OrderResponse{ChatMessage: handlers.UnavailableMessage(req.Concept)}
	}
	return handlers.NewResponse(h.IntentType(), resp, nil, start), nil
}
