// Package loader reads the four GTFS delimited-text tables (stops,
// trips, routes, stop_times) from a directory, validates required
// columns, and drops malformed or dangling-reference rows with a
// warning.
package loader

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"busplan.dev/engine/model"
)

// RowCounts tracks how many rows of a table were parsed versus
// dropped (for any reason: missing required column, unparsable
// value, or dangling reference).
type RowCounts struct {
	Parsed  int
	Dropped int
}

// Stats summarizes a single Load call, queryable via the engine's
// Status().
type Stats struct {
	Stops         RowCounts
	Trips         RowCounts
	Routes        RowCounts
	StopTimes     RowCounts
	HasRoutesFile bool
}

// Feed holds the validated, reference-clean rows for a single static
// GTFS dataset. Dangling StopTime rows (unknown trip_id or stop_id)
// have already been removed.
type Feed struct {
	Stops     []model.Stop
	Trips     []model.Trip
	Routes    []model.Route
	StopTimes []model.StopTime
}

// fileNames are the four tables this loader reads, relative to the
// configured gtfs_path directory.
const (
	stopsFile     = "stops.csv"
	tripsFile     = "trips.csv"
	routesFile    = "routes.csv"
	stopTimesFile = "stop_times.csv"
)

// Loader reads a GTFS feed directory.
type Loader struct {
	Dir    string
	Logger *zap.Logger
}

// New returns a Loader rooted at dir. A nil logger is replaced with a
// no-op logger.
func New(dir string, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{Dir: dir, Logger: logger}
}

// Load reads and validates all four tables. It returns an error only
// for a ConfigurationError: an unreadable directory, or a missing/
// empty mandatory file (stops, trips, stop_times). routes.csv is
// optional; if absent, route display names degrade to route_id (see
// DESIGN.md).
func (l *Loader) Load() (*Feed, *Stats, error) {
	if fi, err := os.Stat(l.Dir); err != nil || !fi.IsDir() {
		return nil, nil, errors.Errorf("gtfs_path %q is not a readable directory", l.Dir)
	}

	stats := &Stats{}

	// stops.csv and routes.csv have no inter-table dependency and
	// are read concurrently. trips.csv is read next, since it
	// validates route_id against routeIDs gathered above; stop_times.csv
	// is read last and sequentially, since it validates trip_id
	// against tripIDs that only exist once trips.csv has finished.
	// Row order within each table is preserved regardless of
	// goroutine scheduling, so result ordering is unaffected.
	var stops []model.Stop
	var stopIDs map[string]bool
	var routes []model.Route
	var routeIDs map[string]bool
	var hasRoutesFile bool

	var g errgroup.Group
	g.Go(func() error {
		var err error
		stops, stopIDs, stats.Stops, err = l.loadStops()
		return err
	})
	g.Go(func() error {
		var err error
		if _, statErr := os.Stat(filepath.Join(l.Dir, routesFile)); statErr == nil {
			hasRoutesFile = true
			routes, routeIDs, stats.Routes, err = l.loadRoutes()
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	stats.HasRoutesFile = hasRoutesFile

	if stats.Stops.Parsed == 0 {
		return nil, nil, errors.Errorf("%s produced zero valid records", stopsFile)
	}

	// trips.csv and stop_times.csv cannot be read concurrently with
	// each other: stop_times.csv validates trip_id against tripIDs,
	// which only exist once trips.csv has been fully parsed.
	trips, tripIDs, tripsStats, err := l.loadTrips(routeIDs, hasRoutesFile)
	if err != nil {
		return nil, nil, err
	}
	stats.Trips = tripsStats
	if stats.Trips.Parsed == 0 {
		return nil, nil, errors.Errorf("%s produced zero valid records", tripsFile)
	}

	stopTimes, stopTimesStats, err := l.loadStopTimes(tripIDs, stopIDs)
	if err != nil {
		return nil, nil, err
	}
	stats.StopTimes = stopTimesStats
	if stats.StopTimes.Parsed == 0 {
		return nil, nil, errors.Errorf("%s produced zero valid records", stopTimesFile)
	}

	// routes referenced by trips but absent from routes.csv (or
	// present because there was no routes.csv at all) are
	// synthesized as bare-ID routes; Route.DisplayName() already
	// falls back to ID when ShortName/LongName are empty.
	if routeIDs == nil {
		routeIDs = map[string]bool{}
	}
	seen := map[string]bool{}
	for _, r := range routes {
		seen[r.ID] = true
	}
	for _, t := range trips {
		if !seen[t.RouteID] {
			routes = append(routes, model.Route{ID: t.RouteID})
			seen[t.RouteID] = true
		}
	}

	return &Feed{
		Stops:     stops,
		Trips:     trips,
		Routes:    routes,
		StopTimes: stopTimes,
	}, stats, nil
}

func (l *Loader) openFile(name string) (*os.File, error) {
	f, err := os.Open(filepath.Join(l.Dir, name))
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", name)
	}
	return f, nil
}

func (l *Loader) warn(file string, row int, reason string) {
	l.Logger.Warn("dropping row",
		zap.String("file", file),
		zap.Int("row", row),
		zap.String("reason", reason),
	)
}
