package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearroute/tripmap/internal/lib/proximity"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, proximity.ModeRoute, cfg.Layers.LowClearance.Mode)
	assert.Equal(t, 5.0, cfg.Layers.LowClearance.RadiusMiles)
	assert.Equal(t, proximity.ModeNearby, cfg.Layers.RailCrossing.Mode)
	assert.NotEqual(t, cfg.Layers.LowClearance.RadiusMiles, cfg.Layers.RailCrossing.RadiusMiles,
		"Categories carry their own default radii")
	assert.Equal(t, "info", cfg.Logging.Level)

	// Every configurable radius stays above the strict on-route tolerance
	for _, c := range []proximity.Config{cfg.Layers.LowClearance, cfg.Layers.RailCrossing} {
		assert.GreaterOrEqual(t, c.RadiusMiles, proximity.OnRouteToleranceMiles)
	}
}

func TestLayersConfig_ForCategory(t *testing.T) {
	cfg := DefaultConfig()

	lc, err := cfg.Layers.ForCategory(proximity.CategoryLowClearance)
	require.NoError(t, err)
	assert.Equal(t, proximity.ModeRoute, lc.Mode)

	rc, err := cfg.Layers.ForCategory(proximity.CategoryRailCrossing)
	require.NoError(t, err)
	assert.Equal(t, proximity.ModeNearby, rc.Mode)

	_, err = cfg.Layers.ForCategory(proximity.Category("weather"))
	assert.Error(t, err)
}

func TestLoad_FileAndDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tripmap.yaml")
	data := `
logging:
  level: debug
layers:
  low_clearance:
    mode: onroute
    max_threshold: 12.0
  rail_crossing:
    radius_miles: 2.5
features:
  low_clearance:
    url: https://example.com/bridges.kml
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, proximity.ModeOnRoute, cfg.Layers.LowClearance.Mode)
	assert.Equal(t, 12.0, cfg.Layers.LowClearance.MaxThreshold)
	assert.Equal(t, 2.5, cfg.Layers.RailCrossing.RadiusMiles)
	assert.Equal(t, "https://example.com/bridges.kml", cfg.Features.LowClearance.URL)

	// Untouched keys keep their defaults
	assert.Equal(t, 5.0, cfg.Layers.LowClearance.RadiusMiles)
	assert.Equal(t, proximity.ModeNearby, cfg.Layers.RailCrossing.Mode)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TRIPMAP_LOGGING__LEVEL", "warn")
	t.Setenv("TRIPMAP_LAYERS__POI__RESULT_CAP", "50")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 50, cfg.Layers.POI.ResultCap)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/tripmap.yaml")
	assert.Error(t, err)
}
