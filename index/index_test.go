package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"busplan.dev/engine/loader"
	"busplan.dev/engine/model"
)

func mustTime(t *testing.T, s string) model.Time {
	t.Helper()
	tm, err := model.ParseTime(s)
	require.NoError(t, err)
	return tm
}

func fixtureF1(t *testing.T) *loader.Feed {
	return &loader.Feed{
		Stops: []model.Stop{
			{ID: "A", Name: "Stop A", Lat: 0, Lon: 0},
			{ID: "B", Name: "Stop B", Lat: 0, Lon: 0.01},
			{ID: "C", Name: "Stop C", Lat: 0, Lon: 0.02},
		},
		Routes: []model.Route{{ID: "R1", ShortName: "R1"}},
		Trips:  []model.Trip{{ID: "T1", RouteID: "R1"}},
		StopTimes: []model.StopTime{
			{TripID: "T1", StopID: "A", StopSequence: 1, Arrival: mustTime(t, "08:00:00"), Departure: mustTime(t, "08:00:30")},
			{TripID: "T1", StopID: "B", StopSequence: 2, Arrival: mustTime(t, "08:05:00"), Departure: mustTime(t, "08:05:30")},
			{TripID: "T1", StopID: "C", StopSequence: 3, Arrival: mustTime(t, "08:10:00"), Departure: mustTime(t, "08:10:30")},
		},
	}
}

func TestBuildStopsByRouteAndIndexInRoute(t *testing.T) {
	idx := Build(fixtureF1(t))

	assert.Equal(t, []string{"A", "B", "C"}, idx.StopsOnRoute("R1"))

	iA, ok := idx.IndexInRoute("R1", "A")
	require.True(t, ok)
	iC, ok := idx.IndexInRoute("R1", "C")
	require.True(t, ok)
	assert.Less(t, iA, iC)

	_, ok = idx.IndexInRoute("R1", "nonexistent")
	assert.False(t, ok)
}

func TestBuildRoutesByStop(t *testing.T) {
	idx := Build(fixtureF1(t))
	assert.True(t, idx.RoutesAtStop("A")["R1"])
	assert.True(t, idx.RoutesAtStop("C")["R1"])
	assert.Empty(t, idx.RoutesAtStop("nonexistent"))
}

func TestBuildStopTimesByTripIsOrderedBySequence(t *testing.T) {
	idx := Build(fixtureF1(t))
	sts := idx.StopTimesByTrip("T1")
	require.Len(t, sts, 3)
	assert.Equal(t, uint32(1), sts[0].StopSequence)
	assert.Equal(t, uint32(2), sts[1].StopSequence)
	assert.Equal(t, uint32(3), sts[2].StopSequence)
}

func TestStopsWithin(t *testing.T) {
	idx := Build(fixtureF1(t))

	near := idx.StopsWithin(0, 0, 2.0)
	ids := map[string]bool{}
	for _, s := range near {
		ids[s.ID] = true
	}
	assert.True(t, ids["A"])
	assert.True(t, ids["B"])
	assert.True(t, ids["C"])

	far := idx.StopsWithin(5, 5, 2.0)
	assert.Empty(t, far)
}

func TestBuildSampleTripPerRouteUsesFirstEncountered(t *testing.T) {
	feed := fixtureF1(t)
	// A second trip on R1 with a different pattern must not
	// override the first trip's sampled stop sequence.
	feed.Trips = append(feed.Trips, model.Trip{ID: "T1b", RouteID: "R1"})
	feed.StopTimes = append(feed.StopTimes,
		model.StopTime{TripID: "T1b", StopID: "C", StopSequence: 1, Arrival: mustTime(t, "09:00:00"), Departure: mustTime(t, "09:00:00")},
		model.StopTime{TripID: "T1b", StopID: "A", StopSequence: 2, Arrival: mustTime(t, "09:05:00"), Departure: mustTime(t, "09:05:00")},
	)

	idx := Build(feed)
	assert.Equal(t, []string{"A", "B", "C"}, idx.StopsOnRoute("R1"))
}
