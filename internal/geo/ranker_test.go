package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testStore struct {
	name   string
	lat    float64
	lon    float64
	hasGeo bool
}

func (s testStore) Coordinates() (float64, float64, bool) {
	return s.lat, s.lon, s.hasGeo
}

func TestDistance(t *testing.T) {
	// Bengaluru to Chennai is roughly 290 km.
	d := Distance(12.9716, 77.5946, 13.0827, 80.2707)
	assert.InDelta(t, 290, d, 10)

	// Same point is zero.
	assert.InDelta(t, 0, Distance(12.9716, 77.5946, 12.9716, 77.5946), 0.001)
}

func TestRankSortsByDistance(t *testing.T) {
	stores := []testStore{
		{name: "far", lat: 13.0827, lon: 80.2707, hasGeo: true},
		{name: "near", lat: 12.9750, lon: 77.6000, hasGeo: true},
		{name: "mid", lat: 12.2958, lon: 76.6394, hasGeo: true},
	}

	ranked := Rank(stores, 12.9716, 77.5946, 10)
	require.Len(t, ranked, 3)
	assert.Equal(t, "near", ranked[0].Item.name)
	assert.Equal(t, "mid", ranked[1].Item.name)
	assert.Equal(t, "far", ranked[2].Item.name)
	assert.Less(t, ranked[0].DistanceKm, ranked[1].DistanceKm)
}

func TestRankExcludesStoresWithoutCoordinates(t *testing.T) {
	stores := []testStore{
		{name: "located", lat: 12.97, lon: 77.59, hasGeo: true},
		{name: "unlocated", hasGeo: false},
	}

	ranked := Rank(stores, 12.9716, 77.5946, 10)
	require.Len(t, ranked, 1)
	assert.Equal(t, "located", ranked[0].Item.name)
}

func TestRankTruncatesToLimit(t *testing.T) {
	stores := make([]testStore, 8)
	for i := range stores {
		stores[i] = testStore{name: "s", lat: 12.9 + float64(i)*0.1, lon: 77.5, hasGeo: true}
	}

	ranked := Rank(stores, 12.9716, 77.5946, 3)
	assert.Len(t, ranked, 3)
}

func TestRankStableForEquidistant(t *testing.T) {
	stores := []testStore{
		{name: "first", lat: 13.0, lon: 77.6, hasGeo: true},
		{name: "second", lat: 13.0, lon: 77.6, hasGeo: true},
	}

	ranked := Rank(stores, 12.9716, 77.5946, 10)
	require.Len(t, ranked, 2)
	assert.Equal(t, "first", ranked[0].Item.name)
	assert.Equal(t, "second", ranked[1].Item.name)
}

func TestRankEmptyInput(t *testing.T) {
	assert.Empty(t, Rank([]testStore{}, 12.9, 77.5, 5))
}
