package tools

import (
	"context"
	"net/http"

	"retail-chatbot/internal/common/errors"
	"retail-chatbot/internal/concept"
	"retail-chatbot/internal/geo"
)

// storeLocatorResponse is the raw store locator payload.
type storeLocatorResponse struct {
	Stores []storeData `json:"pointOfServicess"`
}

type storeData struct {
	StoreID      string        `json:"name"`
	StoreName    string        `json:"displayName"`
	WorkingHours string        `json:"workingHours"`
	Address      *storeAddress `json:"address"`
	GeoPoint     *geoPoint     `json:"geoPoint"`
}

type storeAddress struct {
	City          string `json:"town"`
	Formatted     string `json:"formattedAddress"`
	ContactNumber string `json:"phone"`
	PostalCode    string `json:"postalCode"`
	Line1         string `json:"line1"`
	Line2         string `json:"line2"`
}

type geoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Coordinates lets the ranker skip stores without a geo point.
func (s storeData) Coordinates() (float64, float64, bool) {
	if s.GeoPoint == nil {
		return 0, 0, false
	}
	return s.GeoPoint.Latitude, s.GeoPoint.Longitude, true
}

// StoreView is one store as presented to the customer, nearest first.
type StoreView struct {
	StoreID       string  `json:"storeId"`
	StoreName     string  `json:"storeName"`
	City          string  `json:"city"`
	Address       string  `json:"address"`
	ContactNumber string  `json:"contactNumber"`
	WorkingHours  string  `json:"workingHours"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	Distance      float64 `json:"distance"`
	Line1         string  `json:"line1"`
	Line2         string  `json:"line2"`
	PostalCode    string  `json:"postalCode"`
}

type StoreList struct {
	Stores []StoreView `json:"stores"`
}

// NearestStores fetches the brand's stores and returns the closest ones to
// the given coordinates, capped at the configured limit.
func (c *Client) NearestStores(ctx context.Context, rawConcept, env, appID string, lat, lng float64) (*StoreList, error) {
	apiURL, err := concept.BuildAPIURL(rawConcept, env, "/en/storeLocator/", appID, nil)
	if err != nil {
		return nil, err
	}

	var resp storeLocatorResponse
	err = c.auth.CallJSON(ctx, appID, env, http.MethodPost, apiURL, nil, nil, &resp)
	recordCall(toolStoreLocator, err)
	if err != nil {
		c.log.Error("Store lookup failed", map[string]interface{}{
			"concept": rawConcept,
			"error":   err.Error(),
		})
		if _, ok := errors.AsStandardError(err); ok {
			return nil, err
		}
		return nil, errors.NewToolFailureError(toolStoreLocator, err)
	}

	ranked := geo.Rank(resp.Stores, lat, lng, c.storeLimit)
	views := make([]StoreView, 0, len(ranked))
	for _, r := range ranked {
		s := r.Item
		view := StoreView{
			StoreID:      s.StoreID,
			StoreName:    s.StoreName,
			WorkingHours: s.WorkingHours,
			Latitude:     s.GeoPoint.Latitude,
			Longitude:    s.GeoPoint.Longitude,
			Distance:     r.DistanceKm,
			City:         "N/A",
			Address:      "N/A",
		}
		if a := s.Address; a != nil {
			view.City = a.City
			view.Address = a.Formatted
			view.ContactNumber = a.ContactNumber
			view.PostalCode = a.PostalCode
			view.Line1 = a.Line1
			view.Line2 = a.Line2
		}
		views = append(views, view)
	}
	return &StoreList{Stores: views}, nil
}
