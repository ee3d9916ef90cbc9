package tools

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"retail-chatbot/internal/common/errors"
	"retail-chatbot/internal/concept"
)

// OrderResponse is the orders endpoint payload, enriched with storefront
// links before it reaches the caller.
type OrderResponse struct {
	ChatMessage  string        `json:"chat_message"`
	CustomerName string        `json:"customerName"`
	MobileNo     string        `json:"mobileNo"`
	Orders       []OrderDetail `json:"orderDetailsList"`
}

type OrderDetail struct {
	OrderAmount   float64 `json:"orderAmount"`
	OrderDate     string  `json:"orderDate"`
	OrderNo       string  `json:"orderNo"`
	OrderStatus   string  `json:"orderStatus"`
	TotalProducts int     `json:"totalProducts"`
	ProductName   string  `json:"productName"`
	ImageURL      string  `json:"imageURL"`
	ProductURL    string  `json:"productURL"`
	NetAmount     string  `json:"netAmount"`
	Color         string  `json:"color"`
	Size          string  `json:"size"`
	Qty           string  `json:"qty"`
	TAT           string  `json:"tat"`
	EstimatedDate string  `json:"estmtDate"`
	LatestStatus  string  `json:"latestStatus"`
	ReturnAllow   bool    `json:"returnAllow"`
	ExchangeAllow bool    `json:"exchangeAllow"`
	ExchangeDay   string  `json:"exchangeDay"`
}

// OrderStatus fetches the customer's active orders. The user id travels in
// the token header; the refine code restricts the result to active orders.
func (c *Client) OrderStatus(ctx context.Context, userID, rawConcept, env, appID string) (*OrderResponse, error) {
	query := url.Values{}
	query.Set("orderRefineCode", c.orderRefineCode)
	apiURL, err := concept.BuildAPIURL(rawConcept, env, "/en/orders/", appID, query)
	if err != nil {
		return nil, err
	}

	headers := http.Header{}
	headers.Set("token", userID)

	var resp OrderResponse
	err = c.auth.CallJSON(ctx, appID, env, http.MethodGet, apiURL, headers, nil, &resp)
	recordCall(toolOrderStatus, err)
	if err != nil {
		c.log.Error("Order lookup failed", map[string]interface{}{
			"concept": rawConcept,
			"error":   err.Error(),
		})
		if _, ok := errors.AsStandardError(err); ok {
			return nil, err
		}
		return nil, errors.NewToolFailureError(toolOrderStatus, err)
	}

	c.enrichOrders(&resp, rawConcept, env)
	return &resp, nil
}

// enrichOrders rewrites order numbers and product paths into full storefront
// links. Order numbers already prefixed with the brand code are left alone,
// as are product URLs that arrive absolute.
func (c *Client) enrichOrders(resp *OrderResponse, rawConcept, env string) {
	normalized, err := concept.Normalize(rawConcept)
	if err != nil || resp == nil {
		return
	}
	prefix := normalized[:2]

	for i := range resp.Orders {
		d := &resp.Orders[i]
		if d.OrderNo != "" && !strings.HasPrefix(d.OrderNo, prefix) {
			if u, err := concept.BuildStorefrontURL(rawConcept, env, "my-account/order/"+d.OrderNo+"?iS=false&p=0"); err == nil {
				d.OrderNo = u
			}
		}
		if d.ProductURL != "" && !strings.HasPrefix(d.ProductURL, "http") {
			if u, err := concept.BuildStorefrontURL(rawConcept, env, "/p/"+d.ProductURL); err == nil {
				d.ProductURL = u
			}
		}
	}
}
