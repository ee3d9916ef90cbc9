package tools

import (
	"context"
	"net/http"

	"retail-chatbot/internal/common/errors"
	"retail-chatbot/internal/concept"
)

// Profile is the customer profile payload from the commerce backend.
type Profile struct {
	ChatMessage  string          `json:"chat_message,omitempty"`
	Name         string          `json:"name,omitempty"`
	UID          string          `json:"uid,omitempty"`
	Email        string          `json:"email,omitempty"`
	FirstName    string          `json:"firstName,omitempty"`
	LastName     string          `json:"lastName,omitempty"`
	Gender       string          `json:"gender,omitempty"`
	SignInMobile string          `json:"signInMobile,omitempty"`
	Currency     *Currency       `json:"currency,omitempty"`
	Language     *Language       `json:"language,omitempty"`
	Address      *ProfileAddress `json:"defaultAddress,omitempty"`
}

type Currency struct {
	Active  bool   `json:"active,omitempty"`
	ISOCode string `json:"isocode,omitempty"`
	Name    string `json:"name,omitempty"`
	Symbol  string `json:"symbol,omitempty"`
}

type Language struct {
	Active  bool   `json:"active,omitempty"`
	ISOCode string `json:"isocode,omitempty"`
	Name    string `json:"name,omitempty"`
}

type ProfileAddress struct {
	AddressType      string   `json:"addressType,omitempty"`
	BillingAddress   bool     `json:"billingAddress,omitempty"`
	Cellphone        string   `json:"cellphone,omitempty"`
	Email            string   `json:"email,omitempty"`
	FirstName        string   `json:"firstName,omitempty"`
	Line1            string   `json:"line1,omitempty"`
	Line2            string   `json:"line2,omitempty"`
	PostalCode       string   `json:"postalCode,omitempty"`
	Town             string   `json:"town,omitempty"`
	Landmark         string   `json:"landmark,omitempty"`
	FormattedAddress string   `json:"formattedAddress,omitempty"`
	Region           *Region  `json:"region,omitempty"`
	Country          *Country `json:"country,omitempty"`
}

type Region struct {
	CountryISO string `json:"countryIso,omitempty"`
	ISOCode    string `json:"isocode,omitempty"`
	Name       string `json:"name,omitempty"`
}

type Country struct {
	ISOCode string `json:"isocode,omitempty"`
	Name    string `json:"name,omitempty"`
}

// CustomerProfile fetches the signed-in customer's profile. The user id
// travels in the token header.
func (c *Client) CustomerProfile(ctx context.Context, userID, rawConcept, env, appID string) (*Profile, error) {
	apiURL, err := concept.BuildAPIURL(rawConcept, env, "/chatBotManagement/we", appID, nil)
	if err != nil {
		return nil, err
	}

	headers := http.Header{}
	headers.Set("token", userID)

	var resp Profile
	err = c.auth.CallJSON(ctx, appID, env, http.MethodGet, apiURL, headers, nil, &resp)
	recordCall(toolCustomerProfile, err)
	if err != nil {
		c.log.Error("Profile lookup failed", map[string]interface{}{
			"concept": rawConcept,
			"error":   err.Error(),
		})
		if _, ok := errors.AsStandardError(err); ok {
			return nil, err
		}
		return nil, errors.NewToolFailureError(toolCustomerProfile, err)
	}

	return &resp, nil
}
