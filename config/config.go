// Package config loads engine configuration via viper: the GTFS feed
// directory, walk speed, search radii/limits, and the fare formula's
// knobs.
package config

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds every knob the engine needs: where to find the feed and
// how to tune the walk/search/fare estimates built on top of it.
type Config struct {
	GTFSPath            string  `mapstructure:"gtfs_path"`
	WalkSpeedMPerMin    float64 `mapstructure:"walk_speed_m_per_min"`
	MaxNearbyKm         float64 `mapstructure:"max_nearby_km"`
	NearbyLimit         int     `mapstructure:"nearby_limit"`
	MaxResults          int     `mapstructure:"max_results"`
	TopStopsForTransfer int     `mapstructure:"top_stops_for_transfer"`
	FareBasePerLeg      float64 `mapstructure:"fare_base_per_leg"`
	FarePerStop         float64 `mapstructure:"fare_per_stop"`
	KmPerStopEstimate   float64 `mapstructure:"km_per_stop_estimate"`

	Logger *zap.Logger `mapstructure:"-"`
}

// Load reads configuration from an optional config file, then
// BUSPLAN_-prefixed environment variables, layered over the built-in
// defaults. logger may be nil; a no-op logger is substituted.
func Load(configPath string, logger *zap.Logger) (*Config, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	v := viper.New()

	v.SetDefault("gtfs_path", "./bus routing")
	v.SetDefault("walk_speed_m_per_min", 80.0)
	v.SetDefault("max_nearby_km", 2.0)
	v.SetDefault("nearby_limit", 20)
	v.SetDefault("max_results", 5)
	v.SetDefault("top_stops_for_transfer", 5)
	v.SetDefault("fare_base_per_leg", 5.0)
	v.SetDefault("fare_per_stop", 1.5)
	v.SetDefault("km_per_stop_estimate", 0.5)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("busplan")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "read config file")
		}
		logger.Debug("no config file found, using defaults and environment")
	}

	v.SetEnvPrefix("BUSPLAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	cfg.Logger = logger

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that every numeric knob is within a sane range.
func (c *Config) Validate() error {
	var errs []string

	if c.GTFSPath == "" {
		errs = append(errs, "gtfs_path is required")
	}
	if c.WalkSpeedMPerMin <= 0 {
		errs = append(errs, "walk_speed_m_per_min must be positive")
	}
	if c.MaxNearbyKm <= 0 {
		errs = append(errs, "max_nearby_km must be positive")
	}
	if c.NearbyLimit <= 0 {
		errs = append(errs, "nearby_limit must be positive")
	}
	if c.MaxResults <= 0 {
		errs = append(errs, "max_results must be positive")
	}
	if c.TopStopsForTransfer <= 0 {
		errs = append(errs, "top_stops_for_transfer must be positive")
	}
	if c.FareBasePerLeg < 0 {
		errs = append(errs, "fare_base_per_leg must not be negative")
	}
	if c.FarePerStop < 0 {
		errs = append(errs, "fare_per_stop must not be negative")
	}
	if c.KmPerStopEstimate <= 0 {
		errs = append(errs, "km_per_stop_estimate must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
