// Package model holds the request and response types shared across the
// chatbot pipeline.
package model

// Intent identifies the routing target for a user query.
type Intent string

const (
	IntentOrderTracking   Intent = "ORDER_TRACKING"
	IntentStoreLocator    Intent = "STORE_LOCATOR"
	IntentPolicyQuestion  Intent = "POLICY_QUESTION"
	IntentCustomerProfile Intent = "CUSTOMER_PROFILE"
	IntentGiftCardBalance Intent = "GIFT_CARD_BALANCE"
	IntentGeneralQuery    Intent = "GENERAL_QUERY"

	// IntentError marks degraded responses produced when the pipeline fails.
	IntentError Intent = "ERROR"
)

// AllIntents lists every routable intent. IntentError is excluded because it
// is never a classification result.
func AllIntents() []Intent {
	return []Intent{
		IntentOrderTracking,
		IntentStoreLocator,
		IntentPolicyQuestion,
		IntentCustomerProfile,
		IntentGiftCardBalance,
		IntentGeneralQuery,
	}
}

// IsValidIntent reports whether s names a routable intent.
func IsValidIntent(s string) bool {
	for _, i := range AllIntents() {
		if string(i) == s {
			return true
		}
	}
	return false
}

// ChatRequest is the inbound chat payload. UserID is empty for anonymous
// sessions; Latitude/Longitude are zero when the client sent no location.
type ChatRequest struct {
	Message          string  `json:"message"`
	PreviousResponse string  `json:"previousResponse,omitempty"`
	UserID           string  `json:"userId,omitempty"`
	Question         string  `json:"question,omitempty"`
	Concept          string  `json:"concept"`
	Env              string  `json:"env,omitempty"`
	Latitude         float64 `json:"latitude,omitempty"`
	Longitude        float64 `json:"longitude,omitempty"`
	AppID            string  `json:"appid,omitempty"`
	CardNumber       string  `json:"cardNumber,omitempty"`
	PIN              string  `json:"pin,omitempty"`
}

// IsAnonymous reports whether the request carries no signed-in user.
func (r *ChatRequest) IsAnonymous() bool {
	return r.UserID == ""
}

// Query returns the effective query text. Question takes precedence when the
// client sends both fields.
func (r *ChatRequest) Query() string {
	if r.Question != "" {
		return r.Question
	}
	return r.Message
}

// TokenUsage captures the LLM accounting for one response.
type TokenUsage struct {
	PromptTokens     int    `json:"promptTokens"`
	CompletionTokens int    `json:"completionTokens"`
	TotalTokens      int    `json:"totalTokens"`
	Model            string `json:"model,omitempty"`
	FinishReason     string `json:"finishReason,omitempty"`
}

// Link is a navigational pointer attached to a response.
type Link struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ChatbotResponse is the envelope returned for every chat request. Data holds
// the intent-specific payload.
type ChatbotResponse struct {
	Data           interface{}            `json:"data,omitempty"`
	TokenUsage     *TokenUsage            `json:"tokenUsage,omitempty"`
	ResponseTimeMs int64                  `json:"responseTimeMs"`
	Intent         Intent                 `json:"intent"`
	Links          []Link                 `json:"links,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
	ErrorResponse  string                 `json:"errorResponse,omitempty"`
	Success        bool                   `json:"success"`
}

// WithCacheInfo returns a shallow copy of resp carrying the cache marker and
// the latency observed for this delivery. Cached entries are never mutated, so
// the metadata map is always rebuilt.
func (resp *ChatbotResponse) WithCacheInfo(cached bool, elapsedMs int64) *ChatbotResponse {
	out := *resp
	out.Metadata = make(map[string]interface{}, len(resp.Metadata)+2)
	for k, v := range resp.Metadata {
		out.Metadata[k] = v
	}
	out.Metadata["cached"] = cached
	out.Metadata["processingTimeMs"] = elapsedMs
	out.ResponseTimeMs = elapsedMs
	return &out
}
