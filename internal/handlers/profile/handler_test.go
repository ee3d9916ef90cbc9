package profile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retail-chatbot/internal/common/logger"
	"retail-chatbot/internal/handlers"
	"retail-chatbot/internal/model"
	"retail-chatbot/internal/tools"
)

type stubProfiles struct {
	resp  *tools.Profile
	err   error
	calls int
}

func (s *stubProfiles) CustomerProfile(_ context.Context, _, _, _, _ string) (*tools.Profile, error) {
	s.calls++
	return s.resp, s.err
}

func TestCanHandle(t *testing.T) {
	h := New(&stubProfiles{}, logger.NewNoOpLogger())
	assert.True(t, h.CanHandle("show my profile"))
	assert.True(t, h.CanHandle("my account details"))
	assert.False(t, h.CanHandle("nearest store"))
}

func TestHandleAnonymous(t *testing.T) {
	stub := &stubProfiles{}
	h := New(stub, logger.NewTestLogger(t))

	resp, err := h.Handle(context.Background(), &model.ChatRequest{Concept: "HOMECENTRE"}, time.Now())
	require.NoError(t, err)

	data := resp.Data.(*tools.Profile)
	assert.Equal(t, handlers.SignInMessage, data.ChatMessage)
	assert.Zero(t, stub.calls)
}

func TestHandleAuthenticated(t *testing.T) {
	stub := &stubProfiles{resp: &tools.Profile{UID: "user-7", FirstName: "Ravi"}}
	h := New(stub, logger.NewTestLogger(t))

	resp, err := h.Handle(context.Background(), &model.ChatRequest{
		Concept: "HOMECENTRE", UserID: "user-7",
	}, time.Now())
	require.NoError(t, err)

	data := resp.Data.(*tools.Profile)
	assert.Equal(t, "Ravi", data.FirstName)
	assert.Equal(t, model.IntentCustomerProfile, resp.Intent)
}

func TestHandlePropagatesFailure(t *testing.T) {
	stub := &stubProfiles{err: assert.AnError}
	h := New(stub, logger.NewTestLogger(t))

	_, err := h.Handle(context.Background(), &model.ChatRequest{
		Concept: "HOMECENTRE", UserID: "user-7",
	}, time.Now())
	require.Error(t, err)
}
