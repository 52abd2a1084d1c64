package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFeed materializes a GTFS feed directory from a map of
// filename to CSV lines, mirroring parse/parse_test.go's buildZip
// helper but for a plain directory instead of a zip archive.
func writeFeed(t *testing.T, files map[string][]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, lines := range files {
		err := os.WriteFile(filepath.Join(dir, name), []byte(strings.Join(lines, "\n")), 0o644)
		require.NoError(t, err)
	}
	return dir
}

func fixtureF1() map[string][]string {
	return map[string][]string{
		"stops.csv": {
			"stop_id,stop_name,stop_lat,stop_lon",
			"A,Stop A,0,0",
			"B,Stop B,0,0.01",
			"C,Stop C,0,0.02",
		},
		"routes.csv": {
			"route_id,route_short_name",
			"R1,R1",
		},
		"trips.csv": {
			"trip_id,route_id",
			"T1,R1",
		},
		"stop_times.csv": {
			"trip_id,stop_id,stop_sequence,arrival_time,departure_time",
			"T1,A,1,08:00:00,08:00:30",
			"T1,B,2,08:05:00,08:05:30",
			"T1,C,3,08:10:00,08:10:30",
		},
	}
}

func TestLoadF1(t *testing.T) {
	dir := writeFeed(t, fixtureF1())

	feed, stats, err := New(dir, nil).Load()
	require.NoError(t, err)

	assert.Len(t, feed.Stops, 3)
	assert.Len(t, feed.Trips, 1)
	assert.Len(t, feed.Routes, 1)
	assert.Len(t, feed.StopTimes, 3)
	assert.True(t, stats.HasRoutesFile)
	assert.Equal(t, 3, stats.Stops.Parsed)
	assert.Equal(t, 0, stats.Stops.Dropped)
}

func TestLoadMissingRoutesFileDegradesDisplayName(t *testing.T) {
	files := fixtureF1()
	delete(files, "routes.csv")
	dir := writeFeed(t, files)

	feed, stats, err := New(dir, nil).Load()
	require.NoError(t, err)
	require.False(t, stats.HasRoutesFile)
	require.Len(t, feed.Routes, 1)
	assert.Equal(t, "R1", feed.Routes[0].ID)
	assert.Equal(t, "R1", feed.Routes[0].DisplayName())
}

func TestLoadMissingMandatoryFileIsConfigurationError(t *testing.T) {
	files := fixtureF1()
	delete(files, "stop_times.csv")
	dir := writeFeed(t, files)

	_, _, err := New(dir, nil).Load()
	assert.Error(t, err)
}

func TestLoadUnreadableDirectoryIsConfigurationError(t *testing.T) {
	_, _, err := New(filepath.Join(t.TempDir(), "does-not-exist"), nil).Load()
	assert.Error(t, err)
}

func TestLoadDropsRowsMissingRequiredColumns(t *testing.T) {
	dir := writeFeed(t, map[string][]string{
		"stops.csv": {
			"stop_id,stop_name,stop_lat,stop_lon",
			"A,Stop A,0,0",
			",Missing ID,1,1",
			"B,Stop B,,",
		},
		"trips.csv": {
			"trip_id,route_id",
			"T1,R1",
		},
		"stop_times.csv": {
			"trip_id,stop_id,stop_sequence,arrival_time,departure_time",
			"T1,A,1,08:00:00,08:00:30",
		},
	})

	feed, stats, err := New(dir, nil).Load()
	require.NoError(t, err)
	assert.Len(t, feed.Stops, 1)
	assert.Equal(t, 1, stats.Stops.Parsed)
	assert.Equal(t, 2, stats.Stops.Dropped)
}

func TestLoadDropsDanglingStopTimeReferences(t *testing.T) {
	dir := writeFeed(t, map[string][]string{
		"stops.csv": {
			"stop_id,stop_name,stop_lat,stop_lon",
			"A,Stop A,0,0",
		},
		"trips.csv": {
			"trip_id,route_id",
			"T1,R1",
		},
		"stop_times.csv": {
			"trip_id,stop_id,stop_sequence,arrival_time,departure_time",
			"T1,A,1,08:00:00,08:00:30",
			"T1,unknown-stop,2,08:05:00,08:05:30",
			"unknown-trip,A,1,08:00:00,08:00:30",
		},
	})

	feed, stats, err := New(dir, nil).Load()
	require.NoError(t, err)
	assert.Len(t, feed.StopTimes, 1)
	assert.Equal(t, 1, stats.StopTimes.Parsed)
	assert.Equal(t, 2, stats.StopTimes.Dropped)
}

func TestLoadDropsTripsWithDanglingRouteWhenRoutesFilePresent(t *testing.T) {
	dir := writeFeed(t, map[string][]string{
		"stops.csv": {
			"stop_id,stop_name,stop_lat,stop_lon",
			"A,Stop A,0,0",
		},
		"routes.csv": {
			"route_id,route_short_name",
			"R1,R1",
		},
		"trips.csv": {
			"trip_id,route_id",
			"T1,R1",
			"T2,unknown-route",
		},
		"stop_times.csv": {
			"trip_id,stop_id,stop_sequence,arrival_time,departure_time",
			"T1,A,1,08:00:00,08:00:30",
		},
	})

	feed, stats, err := New(dir, nil).Load()
	require.NoError(t, err)
	assert.Len(t, feed.Trips, 1)
	assert.Equal(t, 1, stats.Trips.Parsed)
	assert.Equal(t, 1, stats.Trips.Dropped)
}
