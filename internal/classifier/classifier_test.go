package classifier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retail-chatbot/internal/common/llm"
	"retail-chatbot/internal/common/logger"
	"retail-chatbot/internal/model"
)

type stubLLM struct {
	text  string
	err   error
	calls int
}

func (s *stubLLM) Complete(_ context.Context, _ llm.CompletionRequest) (*llm.Completion, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &llm.Completion{Text: s.text}, nil
}

func TestMatchRules(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    model.Intent
		matched bool
	}{
		{"order status", "where is my order", model.IntentOrderTracking, true},
		{"track shipment", "track my shipment please", model.IntentOrderTracking, true},
		{"store lookup", "nearest outlet in Bangalore", model.IntentStoreLocator, true},
		{"store address", "what is the address of your branch", model.IntentStoreLocator, true},
		{"profile", "show my account details", model.IntentCustomerProfile, true},
		{"edit profile", "I want to update profile", model.IntentCustomerProfile, true},
		{"gift card", "check my gift card balance", model.IntentGiftCardBalance, true},
		{"giftcard one word", "giftcard", model.IntentGiftCardBalance, true},
		{"return policy", "what is your return policy", model.IntentPolicyQuestion, true},
		{"refund", "when will I get refund", model.IntentPolicyQuestion, true},
		{"case insensitive", "RETURN POLICY?", model.IntentPolicyQuestion, true},
		{"no match", "hello there", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MatchRules(tt.query)
			assert.Equal(t, tt.matched, ok)
			if tt.matched {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestRulePrecedence(t *testing.T) {
	// "cancel my order" mentions both order and policy keywords; the order
	// rule is checked first and wins.
	got, ok := MatchRules("cancel my order")
	require.True(t, ok)
	assert.Equal(t, model.IntentOrderTracking, got)
}

func TestClassifyRuleHitSkipsModel(t *testing.T) {
	stub := &stubLLM{}
	c, err := New(stub, 16, logger.NewTestLogger(t))
	require.NoError(t, err)

	got := c.Classify(context.Background(), "where is my order")
	assert.Equal(t, model.IntentOrderTracking, got)
	assert.Zero(t, stub.calls)
}

func TestClassifyModelFallback(t *testing.T) {
	stub := &stubLLM{text: `{"intent": "GENERAL_QUERY"}`}
	c, err := New(stub, 16, logger.NewTestLogger(t))
	require.NoError(t, err)

	got := c.Classify(context.Background(), "what can you do for me")
	assert.Equal(t, model.IntentGeneralQuery, got)
	assert.Equal(t, 1, stub.calls)
}

func TestClassifyModelWithFence(t *testing.T) {
	stub := &stubLLM{text: "```json\n{\"intent\": \"POLICY_QUESTION\"}\n```"}
	c, err := New(stub, 16, logger.NewTestLogger(t))
	require.NoError(t, err)

	got := c.Classify(context.Background(), "tell me about it")
	assert.Equal(t, model.IntentPolicyQuestion, got)
}

func TestClassifyCachesByExactQuery(t *testing.T) {
	stub := &stubLLM{text: `{"intent": "GENERAL_QUERY"}`}
	c, err := New(stub, 16, logger.NewTestLogger(t))
	require.NoError(t, err)

	ctx := context.Background()
	c.Classify(ctx, "hmm")
	c.Classify(ctx, "hmm")
	assert.Equal(t, 1, stub.calls)

	// Different text is a different cache entry.
	c.Classify(ctx, "hmm ")
	assert.Equal(t, 2, stub.calls)
}

func TestClassifyModelFailureDefaultsToGeneral(t *testing.T) {
	tests := []struct {
		name string
		stub *stubLLM
	}{
		{"transport error", &stubLLM{err: errors.New("connection refused")}},
		{"malformed json", &stubLLM{text: "the intent is ORDER_TRACKING"}},
		{"unknown label", &stubLLM{text: `{"intent": "SMALL_TALK"}`}},
		{"error label not routable", &stubLLM{text: `{"intent": "ERROR"}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.stub, 16, logger.NewTestLogger(t))
			require.NoError(t, err)

			got := c.Classify(context.Background(), "anything goes")
			assert.Equal(t, model.IntentGeneralQuery, got)
		})
	}
}

func TestClassifyModelNormalizesLabel(t *testing.T) {
	stub := &stubLLM{text: `{"intent": " order_tracking "}`}
	c, err := New(stub, 16, logger.NewTestLogger(t))
	require.NoError(t, err)

	got := c.Classify(context.Background(), "anything goes")
	assert.Equal(t, model.IntentOrderTracking, got)
}
