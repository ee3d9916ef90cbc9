package tools

import (
	"context"
	"net/http"

	"retail-chatbot/internal/common/errors"
	"retail-chatbot/internal/concept"
)

const giftCardServerError = "lmg.giftcard.client.server.error"

type giftCardBalanceRequest struct {
	CardNumber string `json:"cardNumber"`
	PIN        string `json:"pin"`
}

// GiftCardBalanceResponse carries both the success and the failure shape of
// the balance endpoint.
type GiftCardBalanceResponse struct {
	CardNumber    string          `json:"cardNumber,omitempty"`
	Status        string          `json:"status,omitempty"`
	Message       string          `json:"message,omitempty"`
	BalanceAmount float64         `json:"balanceAmount,omitempty"`
	Currency      string          `json:"currency,omitempty"`
	ErrorOccurred bool            `json:"errorOccurred,omitempty"`
	Errors        []GiftCardError `json:"errors,omitempty"`
}

type GiftCardError struct {
	Message     string `json:"message,omitempty"`
	Reason      string `json:"reason,omitempty"`
	Subject     string `json:"subject,omitempty"`
	SubjectType string `json:"subjectType,omitempty"`
	Type        string `json:"type,omitempty"`
}

// GiftCardBalance checks a gift card's balance via the anonymous endpoint.
// Transport and backend failures degrade to a response carrying the standard
// gift card error code instead of an error, so the caller always has a
// payload to show.
func (c *Client) GiftCardBalance(ctx context.Context, rawConcept, env, appID, cardNumber, pin string) (*GiftCardBalanceResponse, error) {
	apiURL, err := concept.BuildAPIURL(rawConcept, env, "/en/users/anonymous/gift-card/balance", appID, nil)
	if err != nil {
		return nil, err
	}

	body := giftCardBalanceRequest{CardNumber: cardNumber, PIN: pin}

	var resp GiftCardBalanceResponse
	err = c.auth.CallJSON(ctx, appID, env, http.MethodPost, apiURL, nil, body, &resp)
	recordCall(toolGiftCardBalance, err)
	if err != nil {
		c.log.Error("Gift card balance check failed", map[string]interface{}{
			"concept": rawConcept,
			"error":   err.Error(),
		})
		if stdErr, ok := errors.AsStandardError(err); ok && stdErr.Code == errors.ErrCodeAuthFailure {
			return nil, err
		}
		return &GiftCardBalanceResponse{
			ErrorOccurred: true,
			Errors: []GiftCardError{{
				Message: giftCardServerError,
				Reason:  giftCardServerError,
			}},
		}, nil
	}

	return &resp, nil
}
