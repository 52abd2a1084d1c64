package search

import (
	"busplan.dev/engine/index"
	"busplan.dev/engine/model"
)

// DefaultTopStopsForTransfer is the default number of closest
// pickup/drop stops the transfer search considers.
const DefaultTopStopsForTransfer = 5

// TransferResult is one two-bus, one-transfer candidate itinerary.
type TransferResult struct {
	Route1       model.Route
	Route2       model.Route
	PickupStop   model.Stop
	TransferStop model.Stop
	DropStop     model.Stop
	Leg1         model.Leg
	Leg2         model.Leg
}

// FindTransfer finds two-bus itineraries that connect via a common
// intermediate stop, honoring timing feasibility (leg2 departure ≥
// leg1 arrival). It stops once maxResults have been accepted.
//
// Transfer search ignores service calendars as an accepted
// approximation: trips on different service days can be concatenated
// as long as their time-of-day offsets satisfy the feasibility check.
func FindTransfer(idx *index.Index, pickups, drops []model.NearbyStop, maxResults, topStops int) []TransferResult {
	if topStops <= 0 {
		topStops = DefaultTopStopsForTransfer
	}
	if len(pickups) > topStops {
		pickups = pickups[:topStops]
	}
	if len(drops) > topStops {
		drops = drops[:topStops]
	}

	pRoutes := closestPerRoute(idx, pickups)
	dRoutes := closestPerRoute(idx, drops)

	stopToDropRoutes := map[string][]string{}
	for _, r2 := range routeKeysSingle(dRoutes) {
		for _, stopID := range idx.StopsOnRoute(r2) {
			stopToDropRoutes[stopID] = append(stopToDropRoutes[stopID], r2)
		}
	}

	seen := map[string]bool{}
	var results []TransferResult

	for _, r1 := range routeKeysSingle(pRoutes) {
		seq1 := idx.StopsOnRoute(r1)
		pStop := pRoutes[r1]
		i0, ok := idx.IndexInRoute(r1, pStop.Stop.ID)
		if !ok {
			continue
		}

		for i := i0 + 1; i < len(seq1); i++ {
			transferStopID := seq1[i]

			for _, r2 := range stopToDropRoutes[transferStopID] {
				dStop, ok := dRoutes[r2]
				if !ok {
					continue
				}
				ti, ok := idx.IndexInRoute(r2, transferStopID)
				if !ok {
					continue
				}
				di, ok := idx.IndexInRoute(r2, dStop.Stop.ID)
				if !ok || !(ti < di) {
					continue
				}

				key := r1 + "|" + transferStopID + "|" + r2
				if seen[key] {
					continue
				}

				leg1, ok := findTripForLeg(idx, r1, pStop.Stop.ID, transferStopID)
				if !ok {
					continue
				}
				leg2, ok := findTripForLeg(idx, r2, transferStopID, dStop.Stop.ID)
				if !ok {
					continue
				}

				arr1 := leg1.End().Arrival
				dep2 := leg2.Start().Departure
				if dep2 < arr1 {
					// No later-trip re-search: an infeasible
					// first-wins trip sinks the whole candidate.
					continue
				}

				seen[key] = true
				results = append(results, TransferResult{
					Route1:       idx.RoutesByID[r1],
					Route2:       idx.RoutesByID[r2],
					PickupStop:   pStop.Stop,
					TransferStop: idx.StopsByID[transferStopID],
					DropStop:     dStop.Stop,
					Leg1:         leg1,
					Leg2:         leg2,
				})
				if len(results) >= maxResults {
					return results
				}
			}
		}
	}

	return results
}
