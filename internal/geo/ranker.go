// Package geo ranks candidates by great-circle distance from a user location.
package geo

import (
	"math"
	"sort"
)

const earthRadiusKm = 6371

// Locatable is anything that may carry geographic coordinates. ok is false
// when the candidate has no location and must be excluded from ranking.
type Locatable interface {
	Coordinates() (lat, lon float64, ok bool)
}

// Ranked pairs a candidate with its distance from the reference point.
type Ranked[T Locatable] struct {
	Item       T
	DistanceKm float64
}

// Distance computes the haversine distance in kilometers between two points.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// Rank filters out candidates without coordinates, sorts the rest by ascending
// distance from (lat, lon), and returns at most limit entries. The sort is
// stable so equidistant candidates keep their input order.
func Rank[T Locatable](items []T, lat, lon float64, limit int) []Ranked[T] {
	ranked := make([]Ranked[T], 0, len(items))
	for _, item := range items {
		cLat, cLon, ok := item.Coordinates()
		if !ok {
			continue
		}
		ranked = append(ranked, Ranked[T]{
			Item:       item,
			DistanceKm: Distance(lat, lon, cLat, cLon),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceKm < ranked[j].DistanceKm
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
