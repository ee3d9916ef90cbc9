// Package storelocator handles the STORE_LOCATOR intent.
package storelocator

import (
	"context"
	"time"

	"retail-chatbot/internal/classifier"
	"retail-chatbot/internal/common/logger"
	"retail-chatbot/internal/handlers"
	"retail-chatbot/internal/model"
	"retail-chatbot/internal/tools"
)

// StoreService is the slice of the tools client this handler needs.
type StoreService interface {
	NearestStores(ctx context.Context, concept, env, appID string, lat, lng float64) (*tools.StoreList, error)
}

type Handler struct {
	stores StoreService
	log    logger.Logger
}

func New(stores StoreService, log logger.Logger) *Handler {
	return &Handler{stores: stores, log: log}
}

func (h *Handler) IntentType() model.Intent {
	return model.IntentStoreLocator
}

func (h *Handler) CanHandle(query string) bool {
	intent, ok := classifier.MatchRules(query)
	return ok && intent == h.IntentType()
}

// Handle returns the stores nearest to the caller's coordinates. Lookup
// failures propagate so the router can build the error reply.
func (h *Handler) Handle(ctx context.Context, req *model.ChatRequest, start time.Time) (*model.ChatbotResponse, error) {
	list, err := h.stores.NearestStores(ctx, req.Concept, req.Env, req.AppID, req.Latitude, req.Longitude)
	if err != nil {
		return nil, err
	}
	h.log.Info("Store lookup served", map[string]interface{}{
		"concept": req.Concept,
		"stores":  len(list.Stores),
	})
	return handlers.NewResponse(h.IntentType(), list, nil, start), nil
}
