package loader

import (
	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/spkg/bom"

	"busplan.dev/engine/model"
)

// routeCSV mirrors routes.csv. route_id is the only required column;
// short_name/long_name/route_type are optional.
type routeCSV struct {
	ID        string `csv:"route_id"`
	ShortName string `csv:"route_short_name"`
	LongName  string `csv:"route_long_name"`
	Type      string `csv:"route_type"`
}

func (l *Loader) loadRoutes() ([]model.Route, map[string]bool, RowCounts, error) {
	f, err := l.openFile(routesFile)
	if err != nil {
		return nil, nil, RowCounts{}, err
	}
	defer f.Close()

	var routes []model.Route
	ids := map[string]bool{}
	counts := RowCounts{}

	row := 0
	drop := func(reason string) {
		counts.Dropped++
		l.warn(routesFile, row, reason)
	}

	err = gocsv.UnmarshalToCallbackWithError(bom.NewReader(f), func(c *routeCSV) error {
		row++

		if c.ID == "" {
			drop("missing route_id")
			return nil
		}
		if ids[c.ID] {
			drop("duplicate route_id")
			return nil
		}

		ids[c.ID] = true
		counts.Parsed++
		routes = append(routes, model.Route{
			ID:        c.ID,
			ShortName: c.ShortName,
			LongName:  c.LongName,
			Type:      parseRouteType(c.Type),
		})
		return nil
	})
	if err != nil {
		return nil, nil, RowCounts{}, errors.Wrap(err, "unmarshaling routes.csv")
	}

	return routes, ids, counts, nil
}

func parseRouteType(s string) model.RouteType {
	switch s {
	case "0":
		return model.RouteTypeTram
	case "1":
		return model.RouteTypeSubway
	case "2":
		return model.RouteTypeRail
	case "4":
		return model.RouteTypeFerry
	case "5":
		return model.RouteTypeCable
	case "6":
		return model.RouteTypeAerial
	case "7":
		return model.RouteTypeFunicular
	default:
		return model.RouteTypeBus
	}
}
