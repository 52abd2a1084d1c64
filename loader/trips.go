package loader

import (
	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/spkg/bom"

	"busplan.dev/engine/model"
)

// tripCSV mirrors trips.csv.
type tripCSV struct {
	ID       string `csv:"trip_id"`
	RouteID  string `csv:"route_id"`
	Headsign string `csv:"trip_headsign"`
}

// loadTrips parses trips.csv. If hasRoutesFile is true, a trip whose
// route_id is unknown to routeIDs is a dangling reference and is
// dropped with a warning. If routes.csv was absent entirely, route
// display names instead degrade to route_id (handled by the caller,
// which synthesizes placeholder Routes).
func (l *Loader) loadTrips(routeIDs map[string]bool, hasRoutesFile bool) ([]model.Trip, map[string]bool, RowCounts, error) {
	f, err := l.openFile(tripsFile)
	if err != nil {
		return nil, nil, RowCounts{}, err
	}
	defer f.Close()

	var trips []model.Trip
	ids := map[string]bool{}
	counts := RowCounts{}

	row := 0
	drop := func(reason string) {
		counts.Dropped++
		l.warn(tripsFile, row, reason)
	}

	err = gocsv.UnmarshalToCallbackWithError(bom.NewReader(f), func(c *tripCSV) error {
		row++

		if c.ID == "" {
			drop("missing trip_id")
			return nil
		}
		if c.RouteID == "" {
			drop("missing route_id")
			return nil
		}
		if hasRoutesFile && !routeIDs[c.RouteID] {
			drop("dangling route_id")
			return nil
		}
		if ids[c.ID] {
			drop("duplicate trip_id")
			return nil
		}

		ids[c.ID] = true
		counts.Parsed++
		trips = append(trips, model.Trip{
			ID:       c.ID,
			RouteID:  c.RouteID,
			Headsign: c.Headsign,
		})
		return nil
	})
	if err != nil {
		return nil, nil, RowCounts{}, errors.Wrap(err, "unmarshaling trips.csv")
	}

	return trips, ids, counts, nil
}
