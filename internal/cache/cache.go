package cache

import (
	"context"

	"retail-chatbot/internal/model"
)

// ResponseCache stores completed responses keyed by request fingerprint.
// Implementations must treat stored responses as immutable.
type ResponseCache interface {
	Get(ctx context.Context, key string) (*model.ChatbotResponse, bool)
	Put(ctx context.Context, key string, resp *model.ChatbotResponse)
}
