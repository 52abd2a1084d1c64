package loader

import (
	"strconv"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/spkg/bom"

	"busplan.dev/engine/model"
)

// stopTimeCSV mirrors stop_times.csv. StopSequence, ArrivalTime and
// DepartureTime are kept as strings so an unparsable row is dropped
// individually rather than aborting the whole table.
type stopTimeCSV struct {
	TripID        string `csv:"trip_id"`
	StopID        string `csv:"stop_id"`
	StopSequence  string `csv:"stop_sequence"`
	ArrivalTime   string `csv:"arrival_time"`
	DepartureTime string `csv:"departure_time"`
}

// loadStopTimes parses stop_times.csv, dropping rows that reference
// an unknown trip_id or stop_id (a dangling reference) in addition to
// rows with missing/unparsable required fields.
func (l *Loader) loadStopTimes(tripIDs, stopIDs map[string]bool) ([]model.StopTime, RowCounts, error) {
	f, err := l.openFile(stopTimesFile)
	if err != nil {
		return nil, RowCounts{}, err
	}
	defer f.Close()

	var stopTimes []model.StopTime
	counts := RowCounts{}

	row := 0
	drop := func(reason string) {
		counts.Dropped++
		l.warn(stopTimesFile, row, reason)
	}

	err = gocsv.UnmarshalToCallbackWithError(bom.NewReader(f), func(c *stopTimeCSV) error {
		row++

		if c.TripID == "" || !tripIDs[c.TripID] {
			drop("dangling or missing trip_id")
			return nil
		}
		if c.StopID == "" || !stopIDs[c.StopID] {
			drop("dangling or missing stop_id")
			return nil
		}
		seq, seqErr := strconv.ParseUint(c.StopSequence, 10, 32)
		if seqErr != nil {
			drop("missing or invalid stop_sequence")
			return nil
		}
		arrival, arrErr := model.ParseTime(c.ArrivalTime)
		if arrErr != nil {
			drop("missing or invalid arrival_time")
			return nil
		}
		departure, depErr := model.ParseTime(c.DepartureTime)
		if depErr != nil {
			drop("missing or invalid departure_time")
			return nil
		}

		counts.Parsed++
		stopTimes = append(stopTimes, model.StopTime{
			TripID:       c.TripID,
			StopID:       c.StopID,
			StopSequence: uint32(seq),
			Arrival:      arrival,
			Departure:    departure,
		})
		return nil
	})
	if err != nil {
		return nil, RowCounts{}, errors.Wrap(err, "unmarshaling stop_times.csv")
	}

	return stopTimes, counts, nil
}
