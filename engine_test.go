package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"busplan.dev/engine/config"
	"busplan.dev/engine/model"
)

// writeFixtureF1 writes a three-stop, single-route GTFS feed to a temp
// directory.
func writeFixtureF1(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"stops.csv": "stop_id,stop_name,stop_lat,stop_lon\n" +
			"A,Stop A,0,0\n" +
			"B,Stop B,0,0.01\n" +
			"C,Stop C,0,0.02\n",
		"routes.csv": "route_id,route_short_name,route_long_name,route_type\n" +
			"R1,R1,Route One,3\n",
		"trips.csv": "trip_id,route_id,trip_headsign\n" +
			"T1,R1,Downtown\n",
		"stop_times.csv": "trip_id,stop_id,stop_sequence,arrival_time,departure_time\n" +
			"T1,A,1,08:00:00,08:00:00\n" +
			"T1,B,2,08:05:00,08:05:00\n" +
			"T1,C,3,08:10:00,08:10:00\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func testConfig(t *testing.T, gtfsPath string) *config.Config {
	t.Helper()
	cfg, err := config.Load("", nil)
	require.NoError(t, err)
	cfg.GTFSPath = gtfsPath
	return cfg
}

func TestEngineStartsUnloaded(t *testing.T) {
	e := New(testConfig(t, writeFixtureF1(t)))
	assert.Equal(t, StateUnloaded, e.Status().State)
	assert.False(t, e.IsReady())
	assert.Empty(t, e.FindRoutes(model.Coordinate{}, model.Coordinate{}))
}

func TestEngineLoadTransitionsToReady(t *testing.T) {
	e := New(testConfig(t, writeFixtureF1(t)))
	require.NoError(t, e.Load())
	assert.Equal(t, StateReady, e.Status().State)
	assert.True(t, e.IsReady())
}

func TestEngineLoadMissingDirTransitionsToDisabled(t *testing.T) {
	e := New(testConfig(t, filepath.Join(t.TempDir(), "does-not-exist")))
	err := e.Load()
	require.Error(t, err)
	assert.Equal(t, StateDisabled, e.Status().State)
	assert.False(t, e.IsReady())
	assert.Empty(t, e.FindRoutes(model.Coordinate{}, model.Coordinate{}))
	assert.ErrorIs(t, e.RequireReady(), ErrDisabled)
}

func TestRequireReadyBeforeLoad(t *testing.T) {
	e := New(testConfig(t, writeFixtureF1(t)))
	assert.ErrorIs(t, e.RequireReady(), ErrNotReady)
}

// Scenario 1: A -> C yields a single direct itinerary on R1.
func TestFindRoutesDirectScenario1(t *testing.T) {
	e := New(testConfig(t, writeFixtureF1(t)))
	require.NoError(t, e.Load())

	results := e.FindRoutes(model.Coordinate{Lat: 0, Lng: 0}, model.Coordinate{Lat: 0, Lng: 0.02})
	require.Len(t, results, 1)
	assert.Equal(t, "R1", results[0].RouteName)
	assert.Equal(t, 10, results[0].Fare)
}

func TestFindRoutesCapsAtMaxResults(t *testing.T) {
	cfg := testConfig(t, writeFixtureF1(t))
	cfg.MaxResults = 1
	e := New(cfg)
	require.NoError(t, e.Load())

	results := e.FindRoutes(model.Coordinate{Lat: 0, Lng: 0}, model.Coordinate{Lat: 0, Lng: 0.02})
	assert.LessOrEqual(t, len(results), 1)
}

func TestFindRoutesNoNearbyStopsYieldsEmpty(t *testing.T) {
	e := New(testConfig(t, writeFixtureF1(t)))
	require.NoError(t, e.Load())

	results := e.FindRoutes(model.Coordinate{Lat: 5, Lng: 5}, model.Coordinate{Lat: 0, Lng: 0})
	assert.Empty(t, results)
}
