package proximity

import (
	"github.com/clearroute/tripmap/internal/lib/geo"
)

// Mode selects the geometric inclusion test applied to a feature category.
type Mode string

const (
	// ModeAll includes every feature
	ModeAll Mode = "all"
	// ModeViewport includes every feature; the caller has already bounded
	// the candidate set to the visible region
	ModeViewport Mode = "viewport"
	// ModeRoute includes features within a configurable radius of any
	// route point
	ModeRoute Mode = "route"
	// ModeNearby is the same vertex-radius test as ModeRoute; categories
	// using it carry a different default radius
	ModeNearby Mode = "nearby"
	// ModeOnRoute includes only features within the strict on-route
	// tolerance of the route path
	ModeOnRoute Mode = "onroute"
)

// OnRouteToleranceMiles is the fixed tolerance under which a feature counts
// as physically on the route path (~10 ft). Always smaller than any
// configurable inclusion radius. An empirical product constant; accuracy
// degrades near the poles and over very long segments.
const OnRouteToleranceMiles = 0.002

// Category identifies a point-feature collection with its own filter
// strategy.
type Category string

const (
	CategoryLowClearance    Category = "low_clearance"
	CategoryRailCrossing    Category = "rail_crossing"
	CategoryPointOfInterest Category = "poi"
)

// Feature represents a point feature from a retrieval collaborator. The
// engine reads only its coordinates, severity and tag; everything else is
// opaque to it.
type Feature struct {
	ID          string    `json:"id"`
	Point       geo.Point `json:"point"`
	Severity    float64   `json:"severity,omitempty"`
	Tag         string    `json:"tag,omitempty"`
	Description string    `json:"description,omitempty"`
}

// Config holds one category's filter settings for a single annotation pass.
// It is an immutable value sourced from user preferences; zero-valued
// thresholds mean "not configured".
type Config struct {
	Mode         Mode            `json:"mode" koanf:"mode"`
	RadiusMiles  float64         `json:"radius_miles" koanf:"radius_miles"`
	MinThreshold float64         `json:"min_threshold,omitempty" koanf:"min_threshold"`
	MaxThreshold float64         `json:"max_threshold,omitempty" koanf:"max_threshold"`
	ResultCap    int             `json:"result_cap,omitempty" koanf:"result_cap"`
	Tags         map[string]bool `json:"tags,omitempty" koanf:"tags"`
}

// Result is the derived classification for one feature. Recomputed on every
// pass, never persisted.
type Result struct {
	FeatureID     string  `json:"feature_id"`
	OnRoute       bool    `json:"on_route"`
	Included      bool    `json:"included"`
	DistanceMiles float64 `json:"distance_miles"`
}

// Annotator classifies point-feature collections against a route.
type Annotator interface {
	// Annotate one category's features against the route polyline.
	// Returns one result per feature surviving the attribute filters;
	// mode-excluded features carry Included=false, and a configured
	// result cap keeps only the most severe included entries.
	Annotate(features []Feature, routePts []geo.Point, strategy Strategy, cfg Config) []Result
}

// Strategy supplies the per-category pieces the annotator invokes uniformly:
// a severity ordering for result capping and the inclusion fallback used
// when a radius mode runs with no route loaded.
type Strategy interface {
	Category() Category

	// SeverityRank orders features for result capping; lower rank means
	// more severe (e.g. lowest clearance first)
	SeverityRank(f Feature) float64

	// IncludeWithoutRoute decides inclusion for radius modes when no
	// route is loaded, so the pass degrades to a danger filter instead
	// of silently returning everything
	IncludeWithoutRoute(f Feature, cfg Config) bool
}

// NewAnnotator is implemented in annotator.go; StrategyFor in strategy.go
