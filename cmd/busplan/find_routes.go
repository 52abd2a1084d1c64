package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"busplan.dev/engine"
	"busplan.dev/engine/model"
)

var findRoutesCmd = &cobra.Command{
	Use:   "find-routes <pickup_lat> <pickup_lng> <drop_lat> <drop_lng>",
	Short: "Finds up to five walk+bus itineraries between two coordinates",
	Args:  cobra.ExactArgs(4),
	RunE:  findRoutes,
}

func findRoutes(cmd *cobra.Command, args []string) error {
	coords := make([]float64, 4)
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return fmt.Errorf("invalid coordinate %q: %w", a, err)
		}
		coords[i] = v
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	e := engine.New(cfg)
	if err := e.Load(); err != nil {
		return fmt.Errorf("load feed: %w", err)
	}

	pickup := model.Coordinate{Lat: coords[0], Lng: coords[1]}
	drop := model.Coordinate{Lat: coords[2], Lng: coords[3]}
	itineraries := e.FindRoutes(pickup, drop)

	if len(itineraries) == 0 {
		fmt.Println("no routes found")
		return nil
	}

	out, err := json.MarshalIndent(itineraries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal itineraries: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
