package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"busplan.dev/engine/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "busplan",
	Short:        "GTFS bus journey planner",
	Long:         "Plans walk+bus itineraries between two coordinates over a static GTFS feed",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a busplan config file")
	rootCmd.AddCommand(findRoutesCmd)
	rootCmd.AddCommand(statusCmd)
}

func loadConfig() (*config.Config, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return config.Load(configPath, logger)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
