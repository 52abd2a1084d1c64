package loader

import (
	"strconv"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/spkg/bom"

	"busplan.dev/engine/model"
)

// stopCSV mirrors stops.csv. Lat/Lon are kept as strings so a
// malformed row can be dropped individually instead of aborting the
// whole unmarshal, matching gocsv.UnmarshalToCallbackWithError's
// per-row error handling.
type stopCSV struct {
	ID   string `csv:"stop_id"`
	Name string `csv:"stop_name"`
	Lat  string `csv:"stop_lat"`
	Lon  string `csv:"stop_lon"`
}

func (l *Loader) loadStops() ([]model.Stop, map[string]bool, RowCounts, error) {
	f, err := l.openFile(stopsFile)
	if err != nil {
		return nil, nil, RowCounts{}, err
	}
	defer f.Close()

	var stops []model.Stop
	ids := map[string]bool{}
	counts := RowCounts{}

	row := 0
	drop := func(reason string) {
		counts.Dropped++
		l.warn(stopsFile, row, reason)
	}

	err = gocsv.UnmarshalToCallbackWithError(bom.NewReader(f), func(c *stopCSV) error {
		row++

		if c.ID == "" {
			drop("missing stop_id")
			return nil
		}
		if c.Name == "" {
			drop("missing stop_name")
			return nil
		}
		lat, latErr := strconv.ParseFloat(c.Lat, 64)
		lon, lonErr := strconv.ParseFloat(c.Lon, 64)
		if latErr != nil || lonErr != nil {
			drop("missing or invalid stop_lat/stop_lon")
			return nil
		}
		if ids[c.ID] {
			drop("duplicate stop_id")
			return nil
		}

		ids[c.ID] = true
		counts.Parsed++
		stops = append(stops, model.Stop{
			ID:   c.ID,
			Name: c.Name,
			Lat:  lat,
			Lon:  lon,
		})
		return nil
	})
	if err != nil {
		return nil, nil, RowCounts{}, errors.Wrap(err, "unmarshaling stops.csv")
	}

	return stops, ids, counts, nil
}
