// Package itinerary shapes raw leg data from the search package into
// the public Itinerary/Segment records a caller renders: walk/bus
// segments, fare, total distance and duration, and the map polyline.
package itinerary

import (
	"fmt"
	"math"

	"github.com/twpayne/go-polyline"

	"busplan.dev/engine/geo"
	"busplan.dev/engine/index"
	"busplan.dev/engine/model"
	"busplan.dev/engine/search"
)

// Options holds the fare/distance/walk-speed knobs that tune how an
// itinerary's fare and distance estimates are computed. The zero
// value is invalid; use DefaultOptions().
type Options struct {
	WalkSpeedMetersPerMin float64
	FareBasePerLeg        float64
	FarePerStop           float64
	KmPerStopEstimate     float64
}

// DefaultOptions returns the built-in fare/distance/walk-speed knobs.
func DefaultOptions() Options {
	return Options{
		WalkSpeedMetersPerMin: geo.DefaultWalkSpeedMetersPerMin,
		FareBasePerLeg:        5,
		FarePerStop:           1.5,
		KmPerStopEstimate:     0.5,
	}
}

func formatKm(km float64) string {
	return fmt.Sprintf("%.2f km", km)
}

func formatMinutes(min int) string {
	return fmt.Sprintf("%d mins", min)
}

func walkSegment(opts Options, start, end model.Coordinate, instruction string) model.Segment {
	km := geo.Distance(start.Lat, start.Lng, end.Lat, end.Lng)
	min := geo.WalkMinutes(km, opts.WalkSpeedMetersPerMin)
	return model.Segment{
		Kind:        model.SegmentWalk,
		Start:       start,
		End:         end,
		DistanceKm:  km,
		Distance:    formatKm(km),
		Duration:    formatMinutes(min),
		DurationMin: min,
		Instruction: instruction,
		Color:       model.ColorWalk,
	}
}

// transferSegment is the zero-distance pseudo-walk at the transfer
// stop, covering the rider's wait for the second bus.
func transferSegment(stop model.Stop, waitMin int) model.Segment {
	coord := model.Coordinate{Lat: stop.Lat, Lng: stop.Lon}
	return model.Segment{
		Kind:        model.SegmentWalk,
		Start:       coord,
		End:         coord,
		DistanceKm:  0,
		Distance:    formatKm(0),
		Duration:    formatMinutes(waitMin),
		DurationMin: waitMin,
		Instruction: fmt.Sprintf("Transfer at %s", stop.Name),
		Color:       model.ColorWalk,
	}
}

// busSegment projects a Leg into a public Segment: intermediate stops
// (inclusive of the boarding/alighting stops) and a 0.5 km/stop
// distance approximation. The fare is computed by the callers.
func busSegment(idx *index.Index, opts Options, leg model.Leg, color string) model.Segment {
	start := leg.Start()
	end := leg.End()
	startStop := stopOf(idx, start.StopID)
	endStop := stopOf(idx, end.StopID)

	stopsInLeg := len(leg.Stops)
	km := opts.KmPerStopEstimate * float64(stopsInLeg)
	durationSec := int(end.Arrival) - int(start.Departure)
	if durationSec < 0 {
		durationSec = 0
	}
	durationMin := durationSec / 60

	stops := make([]model.IntermediateStop, len(leg.Stops))
	for i, st := range leg.Stops {
		s := stopOf(idx, st.StopID)
		stops[i] = model.IntermediateStop{
			Lat:      s.Lat,
			Lng:      s.Lon,
			Name:     s.Name,
			Sequence: st.StopSequence,
			Time:     st.Departure,
		}
	}

	return model.Segment{
		Kind:        model.SegmentBus,
		Start:       model.Coordinate{Lat: startStop.Lat, Lng: startStop.Lon},
		End:         model.Coordinate{Lat: endStop.Lat, Lng: endStop.Lon},
		DistanceKm:  km,
		Distance:    formatKm(km),
		Duration:    formatMinutes(durationMin),
		DurationMin: durationMin,
		Instruction: fmt.Sprintf("Take %s to %s", leg.Route.DisplayName(), endStop.Name),
		Polyline:    encodePolyline(legCoords(idx, leg)),
		Stops:       stops,
		Color:       color,
	}
}

// legFareRaw is 5 + 1.5*stops_in_leg for one leg, not rounded.
func legFareRaw(opts Options, leg model.Leg) float64 {
	return opts.FareBasePerLeg + opts.FarePerStop*float64(len(leg.Stops))
}

// legFare is a single leg's fare, 5 + 1.5*stops_in_leg rounded up.
// A multi-leg itinerary sums the unrounded leg fares and rounds the
// total once (see AssembleTransfer).
func legFare(opts Options, leg model.Leg) int {
	return int(math.Ceil(legFareRaw(opts, leg)))
}

func legCoords(idx *index.Index, leg model.Leg) [][]float64 {
	coords := make([][]float64, len(leg.Stops))
	for i, st := range leg.Stops {
		s := stopOf(idx, st.StopID)
		coords[i] = []float64{s.Lat, s.Lon}
	}
	return coords
}

func encodePolyline(coords [][]float64) string {
	if len(coords) == 0 {
		return ""
	}
	return string(polyline.EncodeCoords(coords))
}

// stopOf resolves a stop_id to its full Stop record via the index
// built at load time.
func stopOf(idx *index.Index, stopID string) model.Stop {
	if s, ok := idx.StopsByID[stopID]; ok {
		return s
	}
	return model.Stop{ID: stopID}
}

// AssembleDirect builds the public Itinerary for a single-bus leg.
func AssembleDirect(idx *index.Index, opts Options, pickup, drop model.Coordinate, d search.DirectResult) model.Itinerary {
	startStop := model.Coordinate{Lat: d.PickupStop.Lat, Lng: d.PickupStop.Lon}
	endStop := model.Coordinate{Lat: d.DropStop.Lat, Lng: d.DropStop.Lon}

	walkToStop := walkSegment(opts, pickup, startStop, fmt.Sprintf("Walk to %s", d.PickupStop.Name))
	bus := busSegment(idx, opts, d.Leg, model.ColorBus1)
	walkToDest := walkSegment(opts, endStop, drop, "Walk to destination")

	segments := []model.Segment{walkToStop, bus, walkToDest}
	durationMin := walkToStop.DurationMin + bus.DurationMin + walkToDest.DurationMin
	fare := legFare(opts, d.Leg)
	totalKm := walkToStop.DistanceKm + bus.DistanceKm + walkToDest.DistanceKm

	return model.Itinerary{
		RouteName:       d.Route.DisplayName(),
		StartStop:       d.PickupStop.Name,
		EndStop:         d.DropStop.Name,
		DepartureTime:   d.Leg.Start().Departure.String(),
		ArrivalTime:     d.Leg.End().Arrival.String(),
		Duration:        formatMinutes(durationMin),
		DurationMin:     durationMin,
		StopCount:       len(d.Leg.Stops),
		Fare:            fare,
		Polyline:        bus.Polyline,
		Segments:        segments,
		TotalDistance:   formatKm(totalKm),
		TotalDistanceKm: totalKm,
	}
}

// AssembleTransfer builds the public Itinerary for a two-bus,
// one-transfer journey.
func AssembleTransfer(idx *index.Index, opts Options, pickup, drop model.Coordinate, tr search.TransferResult) model.Itinerary {
	startStop := model.Coordinate{Lat: tr.PickupStop.Lat, Lng: tr.PickupStop.Lon}
	endStop := model.Coordinate{Lat: tr.DropStop.Lat, Lng: tr.DropStop.Lon}

	walkToStop := walkSegment(opts, pickup, startStop, fmt.Sprintf("Walk to %s", tr.PickupStop.Name))
	bus1 := busSegment(idx, opts, tr.Leg1, model.ColorBus1)

	arr1 := tr.Leg1.End().Arrival
	dep2 := tr.Leg2.Start().Departure
	waitMin := (int(dep2) - int(arr1)) / 60
	if waitMin < 0 {
		waitMin = 0
	}
	transfer := transferSegment(tr.TransferStop, waitMin)

	bus2 := busSegment(idx, opts, tr.Leg2, model.ColorBus2)
	walkToDest := walkSegment(opts, endStop, drop, "Walk to destination")

	segments := []model.Segment{walkToStop, bus1, transfer, bus2, walkToDest}
	durationMin := walkToStop.DurationMin + bus1.DurationMin + transfer.DurationMin + bus2.DurationMin + walkToDest.DurationMin
	fare := int(math.Ceil(legFareRaw(opts, tr.Leg1) + legFareRaw(opts, tr.Leg2)))
	totalKm := walkToStop.DistanceKm + bus1.DistanceKm + bus2.DistanceKm + walkToDest.DistanceKm

	routeName := fmt.Sprintf("%s → %s", tr.Route1.DisplayName(), tr.Route2.DisplayName())
	polylineStr := encodePolyline(append(legCoords(idx, tr.Leg1), legCoords(idx, tr.Leg2)...))

	return model.Itinerary{
		RouteName:       routeName,
		StartStop:       tr.PickupStop.Name,
		EndStop:         tr.DropStop.Name,
		DepartureTime:   tr.Leg1.Start().Departure.String(),
		ArrivalTime:     tr.Leg2.End().Arrival.String(),
		Duration:        formatMinutes(durationMin),
		DurationMin:     durationMin,
		StopCount:       len(tr.Leg1.Stops) + len(tr.Leg2.Stops),
		Fare:            fare,
		Polyline:        polylineStr,
		Segments:        segments,
		TotalDistance:   formatKm(totalKm),
		TotalDistanceKm: totalKm,
	}
}
