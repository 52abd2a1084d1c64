// Package search implements the nearby-stop finder, the direct-route
// searcher and the one-transfer route searcher.
package search

import (
	"sort"

	"busplan.dev/engine/geo"
	"busplan.dev/engine/index"
	"busplan.dev/engine/model"
)

// DefaultNearbyLimit and DefaultMaxNearbyKm are the nearby-stop
// finder's fallback limit and search radius.
const (
	DefaultNearbyLimit = 20
	DefaultMaxNearbyKm = 2.0
)

// Nearby returns the closest stops to (lat, lon), within maxKm,
// ordered by ascending distance with ties broken by stop_id
// lexicographic ascending. At most limit stops are returned.
func Nearby(idx *index.Index, lat, lon float64, limit int, maxKm float64) []model.NearbyStop {
	if limit <= 0 {
		limit = DefaultNearbyLimit
	}
	if maxKm <= 0 {
		maxKm = DefaultMaxNearbyKm
	}

	candidates := idx.StopsWithin(lat, lon, maxKm)
	out := make([]model.NearbyStop, 0, len(candidates))
	for _, s := range candidates {
		out = append(out, model.NearbyStop{
			Stop:       s,
			DistanceKm: geo.Distance(lat, lon, s.Lat, s.Lon),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].DistanceKm != out[j].DistanceKm {
			return out[i].DistanceKm < out[j].DistanceKm
		}
		return out[i].Stop.ID < out[j].Stop.ID
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
