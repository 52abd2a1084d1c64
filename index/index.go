// Package index builds and owns the read-only in-memory indices the
// search package queries. Indices are built once from a loaded Feed
// and never mutated afterward; concurrent readers are safe without
// locking.
package index

import (
	"math"
	"sort"

	"github.com/tidwall/rtree"

	"busplan.dev/engine/geo"
	"busplan.dev/engine/loader"
	"busplan.dev/engine/model"
)

// Index is the read-only graph of stop/trip/route lookups, stop-time
// sequences and a spatial index built from a loaded feed.
type Index struct {
	StopsByID  map[string]model.Stop
	TripsByID  map[string]model.Trip
	RoutesByID map[string]model.Route

	// stopTimesByStop maps stop_id to an unordered list of
	// StopTimes touching that stop.
	stopTimesByStop map[string][]model.StopTime

	// stopTimesByTrip maps trip_id to its StopTimes, ordered by
	// stop_sequence ascending.
	stopTimesByTrip map[string][]model.StopTime

	// routesByStop maps stop_id to the set of route_id values
	// with at least one trip touching that stop.
	routesByStop map[string]map[string]bool

	// stopsByRoute is the canonical stop sequence for a route,
	// derived from the first trip encountered for that route (a
	// "sample trip" approximation of the route's stop pattern).
	stopsByRoute map[string][]string

	// indexInRoute[routeID][stopID] is stopsByRoute[routeID]'s
	// position of stopID, precomputed for O(1) membership/order
	// checks.
	indexInRoute map[string]map[string]int

	spatial rtree.RTreeG[model.Stop]
}

// StopTimesByStop returns the (unordered) StopTimes touching stopID.
func (idx *Index) StopTimesByStop(stopID string) []model.StopTime {
	return idx.stopTimesByStop[stopID]
}

// StopTimesByTrip returns tripID's StopTimes ordered by stop_sequence
// ascending.
func (idx *Index) StopTimesByTrip(tripID string) []model.StopTime {
	return idx.stopTimesByTrip[tripID]
}

// RoutesAtStop returns every route_id with a trip touching stopID.
func (idx *Index) RoutesAtStop(stopID string) map[string]bool {
	return idx.routesByStop[stopID]
}

// StopsOnRoute returns the canonical ordered stop sequence for
// routeID.
func (idx *Index) StopsOnRoute(routeID string) []string {
	return idx.stopsByRoute[routeID]
}

// IndexInRoute returns the position of stopID within routeID's
// canonical stop sequence.
func (idx *Index) IndexInRoute(routeID, stopID string) (int, bool) {
	i, ok := idx.indexInRoute[routeID][stopID]
	return i, ok
}

// Build materializes all indices from a loaded Feed.
func Build(feed *loader.Feed) *Index {
	idx := &Index{
		StopsByID:       make(map[string]model.Stop, len(feed.Stops)),
		TripsByID:       make(map[string]model.Trip, len(feed.Trips)),
		RoutesByID:      make(map[string]model.Route, len(feed.Routes)),
		stopTimesByStop: map[string][]model.StopTime{},
		stopTimesByTrip: map[string][]model.StopTime{},
		routesByStop:    map[string]map[string]bool{},
		stopsByRoute:    map[string][]string{},
		indexInRoute:    map[string]map[string]int{},
	}

	for _, s := range feed.Stops {
		idx.StopsByID[s.ID] = s
		idx.spatial.Insert([2]float64{s.Lat, s.Lon}, [2]float64{s.Lat, s.Lon}, s)
	}
	for _, r := range feed.Routes {
		idx.RoutesByID[r.ID] = r
	}
	for _, t := range feed.Trips {
		idx.TripsByID[t.ID] = t
	}

	for _, st := range feed.StopTimes {
		idx.stopTimesByStop[st.StopID] = append(idx.stopTimesByStop[st.StopID], st)
		idx.stopTimesByTrip[st.TripID] = append(idx.stopTimesByTrip[st.TripID], st)
	}

	for tripID, sts := range idx.stopTimesByTrip {
		sort.SliceStable(sts, func(i, j int) bool {
			return sts[i].StopSequence < sts[j].StopSequence
		})
		idx.stopTimesByTrip[tripID] = sts
	}

	// routesByStop and the canonical stops_by_route sample are
	// both derived from feed.Trips in file order, so "first trip
	// encountered for a route" is deterministic.
	sampled := map[string]bool{}
	for _, t := range feed.Trips {
		sts := idx.stopTimesByTrip[t.ID]
		for _, st := range sts {
			if idx.routesByStop[st.StopID] == nil {
				idx.routesByStop[st.StopID] = map[string]bool{}
			}
			idx.routesByStop[st.StopID][t.RouteID] = true
		}

		if sampled[t.RouteID] || len(sts) == 0 {
			continue
		}
		sampled[t.RouteID] = true

		seq := make([]string, len(sts))
		positions := make(map[string]int, len(sts))
		for i, st := range sts {
			seq[i] = st.StopID
			if _, exists := positions[st.StopID]; !exists {
				positions[st.StopID] = i
			}
		}
		idx.stopsByRoute[t.RouteID] = seq
		idx.indexInRoute[t.RouteID] = positions
	}

	return idx
}

// StopsWithin returns every Stop within maxKm of (lat, lon), as a
// candidate superset (unsorted, no limit applied — see the search
// package for the ranked/truncated Nearby-Stop Finder contract).
//
// The rtree spatial index is consulted as a bounding-box pre-filter;
// candidates are then confirmed against the exact Haversine radius
// since a bounding box is not a circle. If the feed is empty or
// degenerate the tree search simply yields nothing, which is
// indistinguishable from "no stop nearby" to the caller.
func (idx *Index) StopsWithin(lat, lon, maxKm float64) []model.Stop {
	if maxKm <= 0 {
		return nil
	}

	// Degrees are sized from the same Haversine model geo.Distance
	// uses, padded by 1% so the box always contains the maxKm circle.
	kmPerDeg := geo.Distance(0, 0, 1, 0)
	dLat := maxKm * 1.01 / kmPerDeg
	cosLat := math.Cos(lat * math.Pi / 180)
	if cosLat < 0.01 {
		cosLat = 0.01
	}
	dLon := maxKm * 1.01 / (kmPerDeg * cosLat)

	min := [2]float64{lat - dLat, lon - dLon}
	max := [2]float64{lat + dLat, lon + dLon}

	var candidates []model.Stop
	idx.spatial.Search(min, max, func(_, _ [2]float64, stop model.Stop) bool {
		if geo.Distance(lat, lon, stop.Lat, stop.Lon) <= maxKm {
			candidates = append(candidates, stop)
		}
		return true
	})

	return candidates
}
