package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"retail-chatbot/internal/model"
)

func TestCacheable(t *testing.T) {
	tests := []struct {
		name string
		req  model.ChatRequest
		want bool
	}{
		{
			name: "plain policy question",
			req:  model.ChatRequest{Message: "what is the return policy", Concept: "MAX"},
			want: true,
		},
		{
			name: "card number present",
			req:  model.ChatRequest{Message: "check my balance", CardNumber: "6003"},
			want: false,
		},
		{
			name: "pin present",
			req:  model.ChatRequest{Message: "check my balance", PIN: "1234"},
			want: false,
		},
		{
			name: "conversational context",
			req:  model.ChatRequest{Message: "and what about exchanges", PreviousResponse: "Returns allowed within 30 days"},
			want: false,
		},
		{
			name: "time sensitive now",
			req:  model.ChatRequest{Message: "where is my order now"},
			want: false,
		},
		{
			name: "time sensitive today",
			req:  model.ChatRequest{Message: "Is the store open TODAY"},
			want: false,
		},
		{
			name: "time sensitive latest",
			req:  model.ChatRequest{Message: "latest offers please"},
			want: false,
		},
		{
			name: "time sensitive current",
			req:  model.ChatRequest{Message: "current balance"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Cacheable(&tt.req))
		})
	}
}

func TestKeyNormalizesMessage(t *testing.T) {
	a := Key(&model.ChatRequest{Message: "What  is the   RETURN policy?"})
	b := Key(&model.ChatRequest{Message: "what is the return policy?"})
	assert.Equal(t, a, b)
}

func TestKeyVariesByUser(t *testing.T) {
	a := Key(&model.ChatRequest{Message: "my orders", UserID: "u1"})
	b := Key(&model.ChatRequest{Message: "my orders", UserID: "u2"})
	anon := Key(&model.ChatRequest{Message: "my orders"})
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, anon)
}

func TestKeyIncludesLocationOnlyWhenBothSet(t *testing.T) {
	base := Key(&model.ChatRequest{Message: "nearest store"})
	latOnly := Key(&model.ChatRequest{Message: "nearest store", Latitude: 12.97})
	both := Key(&model.ChatRequest{Message: "nearest store", Latitude: 12.97, Longitude: 77.59})

	assert.Equal(t, base, latOnly)
	assert.NotEqual(t, base, both)
}

func TestKeyRoundsCoordinates(t *testing.T) {
	a := Key(&model.ChatRequest{Message: "nearest store", Latitude: 12.971, Longitude: 77.594})
	b := Key(&model.ChatRequest{Message: "nearest store", Latitude: 12.9742, Longitude: 77.5938})
	assert.Equal(t, a, b)
}

func TestKeyVariesByEnv(t *testing.T) {
	a := Key(&model.ChatRequest{Message: "return policy", Env: "uat5"})
	b := Key(&model.ChatRequest{Message: "return policy", Env: "prod"})
	assert.NotEqual(t, a, b)
}
