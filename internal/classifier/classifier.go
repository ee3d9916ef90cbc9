// Package classifier resolves a user query to exactly one intent label. A
// fixed ordered rule set answers the common phrasings; the language model is
// consulted only when no rule matches.
package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"retail-chatbot/internal/common/llm"
	"retail-chatbot/internal/common/logger"
	"retail-chatbot/internal/common/metrics"
	"retail-chatbot/internal/model"
)

type rule struct {
	intent  model.Intent
	pattern *regexp.Regexp
}

// rules are checked in order and the first match wins. Policy keywords come
// after order/store/profile/gift-card so narrower intents take precedence;
// GENERAL_QUERY is the rule-less fallback.
var rules = []rule{
	{model.IntentOrderTracking, regexp.MustCompile(`(?i)\b(order|track|delivery|shipment|status|where.*order)\b`)},
	{model.IntentStoreLocator, regexp.MustCompile(`(?i)\b(store|shop|outlet|location|branch|nearest|nearby|address|find store)\b`)},
	{model.IntentCustomerProfile, regexp.MustCompile(`(?i)\b(profile|my\s*profile|account|my\s*account|personal\s*details|my\s*details|about\s*me|user\s*info|my\s*info|update\s*profile|edit\s*profile)\b`)},
	{model.IntentGiftCardBalance, regexp.MustCompile(`(?i)\b(gift\s*card|card\s*balance|check\s*balance|giftcard)\b`)},
	{model.IntentPolicyQuestion, regexp.MustCompile(`(?i)\b(policy|return|refund|exchange|cancel|cancellation|replace|replacement|shipping|delivery\s*charges|delivery\s*policy|return\s*policy|exchange\s*policy|refund\s*policy|cancel\s*policy|how\s*to\s*(return|cancel|exchange)|when\s*will\s*i\s*get\s*refund|charges\s*for\s*delivery|free\s*shipping|return\s*window|refund\s*time|order\s*cancel|modify\s*order|replace\s*item)\b`)},
}

const classificationPrompt = `Classify the user's intent from the following query.

Query: %s

Available intents:
- ORDER_TRACKING: Questions about orders, delivery, shipment status
- STORE_LOCATOR: Finding store locations, addresses, nearest stores
- POLICY_QUESTION: Return, exchange, refund, shipping policies
- CUSTOMER_PROFILE: User profile, account details, personal information
- GIFT_CARD_BALANCE: Gift card balance inquiry
- GENERAL_QUERY: General questions, greetings, other queries

Respond with JSON only: {"intent": "<label>"}`

// MatchRules runs the ordered lexical rules and returns the first match.
func MatchRules(query string) (model.Intent, bool) {
	for _, r := range rules {
		if r.pattern.MatchString(query) {
			return r.intent, true
		}
	}
	return "", false
}

// Classifier combines the lexical rules with a cached model fallback.
type Classifier struct {
	llm   llm.Client
	cache *lru.Cache[string, model.Intent]
	log   logger.Logger
}

func New(llmClient llm.Client, cacheSize int, log logger.Logger) (*Classifier, error) {
	if cacheSize <= 0 {
		cacheSize = 2048
	}
	c, err := lru.New[string, model.Intent](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Classifier{llm: llmClient, cache: c, log: log}, nil
}

// Classify resolves a query to an intent. It never returns an error: any
// model or parse failure degrades to GENERAL_QUERY. Results are cached by the
// exact query text, so equivalent queries with different casing classify
// independently.
func (c *Classifier) Classify(ctx context.Context, query string) model.Intent {
	if intent, ok := c.cache.Get(query); ok {
		return intent
	}

	intent, ok := MatchRules(query)
	if !ok {
		intent = c.ClassifyWithModel(ctx, query)
	}

	c.cache.Add(query, intent)
	return intent
}

// ClassifyWithModel consults the language model directly, bypassing the
// lexical rules. Failures default to GENERAL_QUERY.
func (c *Classifier) ClassifyWithModel(ctx context.Context, query string) model.Intent {
	completion, err := c.llm.Complete(ctx, llm.CompletionRequest{
		Prompt:      fmt.Sprintf(classificationPrompt, query),
		Temperature: 0,
		MaxTokens:   50,
	})
	if err != nil {
		c.log.Warn("Intent classification failed, defaulting to general", map[string]interface{}{
			"error": err.Error(),
		})
		metrics.ClassifierFallbacks.Inc()
		return model.IntentGeneralQuery
	}

	var parsed struct {
		Intent string `json:"intent"`
	}
	raw := llm.StripJSONFence(completion.Text)
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		c.log.Warn("Unparsable classification output, defaulting to general", map[string]interface{}{
			"output": completion.Text,
		})
		metrics.ClassifierFallbacks.Inc()
		return model.IntentGeneralQuery
	}

	label := strings.ToUpper(strings.TrimSpace(parsed.Intent))
	if !model.IsValidIntent(label) {
		c.log.Warn("Model returned unknown intent, defaulting to general", map[string]interface{}{
			"intent": label,
		})
		metrics.ClassifierFallbacks.Inc()
		return model.IntentGeneralQuery
	}
	return model.Intent(label)
}
