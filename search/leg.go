package search

import (
	"sort"

	"busplan.dev/engine/index"
	"busplan.dev/engine/model"
)

// findTripForLeg scans stop_times_by_stop[startStopID], filtered to
// trips on routeID, and returns the Leg for the first trip that also
// contains endStopID at a greater stop_sequence.
//
// stop_times_by_stop preserves the order rows were read from
// stop_times.csv, so for a given feed this "first trip wins" choice
// is deterministic without needing to sort by anything — see the
// Open Question decision in DESIGN.md.
func findTripForLeg(idx *index.Index, routeID, startStopID, endStopID string) (model.Leg, bool) {
	for _, st := range idx.StopTimesByStop(startStopID) {
		trip, ok := idx.TripsByID[st.TripID]
		if !ok || trip.RouteID != routeID {
			continue
		}
		if leg, ok := legBetween(idx, trip.ID, startStopID, endStopID); ok {
			return leg, true
		}
	}
	return model.Leg{}, false
}

// legBetween builds the Leg spanning [startStopID, endStopID]
// inclusive on tripID, requiring end.sequence > start.sequence.
func legBetween(idx *index.Index, tripID, startStopID, endStopID string) (model.Leg, bool) {
	sts := idx.StopTimesByTrip(tripID)

	startIdx := -1
	for i, st := range sts {
		if st.StopID == startStopID {
			startIdx = i
			break
		}
	}
	if startIdx == -1 {
		return model.Leg{}, false
	}

	endIdx := -1
	for i := startIdx + 1; i < len(sts); i++ {
		if sts[i].StopID == endStopID {
			endIdx = i
			break
		}
	}
	if endIdx == -1 {
		return model.Leg{}, false
	}

	trip := idx.TripsByID[tripID]
	route := idx.RoutesByID[trip.RouteID]

	stops := make([]model.StopTime, endIdx-startIdx+1)
	copy(stops, sts[startIdx:endIdx+1])

	return model.Leg{
		Trip:  trip,
		Route: route,
		Stops: stops,
	}, true
}

// routesForStops maps route_id to every NearbyStop in stops that lies
// on that route, preserving stops' relative order (ascending
// distance) within each bucket.
func routesForStops(idx *index.Index, stops []model.NearbyStop) map[string][]model.NearbyStop {
	out := map[string][]model.NearbyStop{}
	for _, ns := range stops {
		for r := range idx.RoutesAtStop(ns.Stop.ID) {
			out[r] = append(out[r], ns)
		}
	}
	return out
}

// closestPerRoute maps route_id to the single closest NearbyStop on
// that route (first-wins insertion over a distance-sorted slice).
func closestPerRoute(idx *index.Index, stops []model.NearbyStop) map[string]model.NearbyStop {
	out := map[string]model.NearbyStop{}
	for _, ns := range stops {
		for r := range idx.RoutesAtStop(ns.Stop.ID) {
			if _, exists := out[r]; !exists {
				out[r] = ns
			}
		}
	}
	return out
}

func routeKeys(m map[string][]model.NearbyStop) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func routeKeysSingle(m map[string]model.NearbyStop) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
