package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"busplan.dev/engine"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Loads the configured feed and reports its readiness",
	Args:  cobra.NoArgs,
	RunE:  status,
}

func status(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	e := engine.New(cfg)
	loadErr := e.Load()
	st := e.Status()

	fmt.Printf("state: %s\n", st.State)
	if st.Stats != nil {
		fmt.Printf("stops: %d parsed, %d dropped\n", st.Stats.Stops.Parsed, st.Stats.Stops.Dropped)
		fmt.Printf("routes: %d parsed, %d dropped (routes.csv present: %v)\n", st.Stats.Routes.Parsed, st.Stats.Routes.Dropped, st.Stats.HasRoutesFile)
		fmt.Printf("trips: %d parsed, %d dropped\n", st.Stats.Trips.Parsed, st.Stats.Trips.Dropped)
		fmt.Printf("stop_times: %d parsed, %d dropped\n", st.Stats.StopTimes.Parsed, st.Stats.StopTimes.Dropped)
	}
	if loadErr != nil {
		fmt.Printf("error: %v\n", loadErr)
	}
	return nil
}
