package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/clearroute/tripmap/internal/lib/proximity"
)

// envPrefix scopes environment overrides; TRIPMAP_FEATURES__LOW_CLEARANCE__URL
// maps to features.low_clearance.url.
const envPrefix = "TRIPMAP_"

// Config represents the complete application configuration
type Config struct {
	Logging  LoggingConfig  `koanf:"logging"`
	Layers   LayersConfig   `koanf:"layers"`
	Features FeaturesConfig `koanf:"features"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level string `koanf:"level"`
}

// LayersConfig holds the per-category annotation settings sourced from user
// preferences. Each category runs its own annotation pass with its own mode
// and thresholds.
type LayersConfig struct {
	LowClearance proximity.Config `koanf:"low_clearance"`
	RailCrossing proximity.Config `koanf:"rail_crossing"`
	POI          proximity.Config `koanf:"poi"`
}

// FeaturesConfig holds feature feed retrieval settings
type FeaturesConfig struct {
	LowClearance FeedConfig `koanf:"low_clearance"`
	RailCrossing FeedConfig `koanf:"rail_crossing"`
	POI          FeedConfig `koanf:"poi"`
}

// FeedConfig holds an individual KML feed's settings
type FeedConfig struct {
	URL             string        `koanf:"url"`
	RefreshInterval time.Duration `koanf:"refresh_interval"`
}

// ForCategory returns the annotation settings for a feature category
func (l LayersConfig) ForCategory(c proximity.Category) (proximity.Config, error) {
	switch c {
	case proximity.CategoryLowClearance:
		return l.LowClearance, nil
	case proximity.CategoryRailCrossing:
		return l.RailCrossing, nil
	case proximity.CategoryPointOfInterest:
		return l.POI, nil
	default:
		return proximity.Config{}, fmt.Errorf("no layer settings for category %q", c)
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level: "info",
		},
		Layers: LayersConfig{
			LowClearance: proximity.Config{
				Mode:         proximity.ModeRoute,
				RadiusMiles:  5.0,
				MaxThreshold: 13.5, // clearance in feet
				ResultCap:    200,
			},
			RailCrossing: proximity.Config{
				Mode:        proximity.ModeNearby,
				RadiusMiles: 1.0,
			},
			POI: proximity.Config{
				Mode:      proximity.ModeViewport,
				ResultCap: 500,
			},
		},
		Features: FeaturesConfig{
			LowClearance: FeedConfig{
				RefreshInterval: 24 * time.Hour,
			},
			RailCrossing: FeedConfig{
				RefreshInterval: 24 * time.Hour,
			},
			POI: FeedConfig{
				RefreshInterval: time.Hour,
			},
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// TRIPMAP_ environment overrides, in that precedence order.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	// Double underscore separates nesting levels so single underscores can
	// stay inside key names
	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load environment overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}
