// Package tools wraps the Landmark commerce APIs behind typed calls. Every
// call goes through the authenticated client so token refresh is shared.
package tools

import (
	"retail-chatbot/internal/common/auth"
	"retail-chatbot/internal/common/logger"
	"retail-chatbot/internal/common/metrics"
)

const (
	toolOrderStatus     = "order_status"
	toolStoreLocator    = "store_locator"
	toolCustomerProfile = "customer_profile"
	toolGiftCardBalance = "gift_card_balance"
)

// Options tunes the commerce calls; zero values fall back to defaults.
type Options struct {
	// OrderRefineCode narrows the orders endpoint to active orders.
	OrderRefineCode string
	// StoreLimit caps how many nearby stores a lookup returns.
	StoreLimit int
}

// Client issues commerce API calls for all four tool-backed intents.
type Client struct {
	auth            *auth.Client
	log             logger.Logger
	orderRefineCode string
	storeLimit      int
}

func New(authClient *auth.Client, opts Options, log logger.Logger) *Client {
	if opts.OrderRefineCode == "" {
		opts.OrderRefineCode = "12"
	}
	if opts.StoreLimit <= 0 {
		opts.StoreLimit = 10
	}
	return &Client{
		auth:            authClient,
		log:             log,
		orderRefineCode: opts.OrderRefineCode,
		storeLimit:      opts.StoreLimit,
	}
}

func recordCall(tool string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.ToolCallsTotal.WithLabelValues(tool, status).Inc()
}
