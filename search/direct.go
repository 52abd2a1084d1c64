package search

import (
	"busplan.dev/engine/index"
	"busplan.dev/engine/model"
)

// DirectResult is one single-bus candidate itinerary.
type DirectResult struct {
	Route      model.Route
	PickupStop model.Stop
	DropStop   model.Stop
	Leg        model.Leg
}

// FindDirect finds single-bus itineraries whose origin and
// destination stops share a route in the correct sequence direction.
// It stops once maxResults have been produced.
func FindDirect(idx *index.Index, pickups, drops []model.NearbyStop, maxResults int) []DirectResult {
	pRoutes := routesForStops(idx, pickups)
	dRoutes := routesForStops(idx, drops)

	var common []string
	for _, r := range routeKeys(pRoutes) {
		if _, ok := dRoutes[r]; ok {
			common = append(common, r)
		}
	}

	seen := map[string]bool{}
	var results []DirectResult

	for _, r := range common {
		seq := idx.StopsOnRoute(r)
		if seq == nil {
			continue
		}
		route := idx.RoutesByID[r]

		for _, p := range pRoutes[r] {
			pi, ok := idx.IndexInRoute(r, p.Stop.ID)
			if !ok {
				continue
			}
			for _, d := range dRoutes[r] {
				di, ok := idx.IndexInRoute(r, d.Stop.ID)
				if !ok || !(pi < di) {
					continue
				}

				key := route.DisplayName() + "|" + p.Stop.Name + "|" + d.Stop.Name
				if seen[key] {
					continue
				}

				leg, ok := findTripForLeg(idx, r, p.Stop.ID, d.Stop.ID)
				if !ok {
					continue
				}

				seen[key] = true
				results = append(results, DirectResult{
					Route:      route,
					PickupStop: p.Stop,
					DropStop:   d.Stop,
					Leg:        leg,
				})
				if len(results) >= maxResults {
					return results
				}
			}
		}
	}

	return results
}
