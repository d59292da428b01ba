package proximity

import (
	"sort"

	"go.uber.org/zap"

	"github.com/clearroute/tripmap/internal/lib/geo"
)

// annotator implements the Annotator interface
type annotator struct {
	metric geo.Metric
	logger *zap.Logger
}

// NewAnnotator creates a new Annotator. A nil logger disables the
// data-quality logging.
func NewAnnotator(metric geo.Metric, logger *zap.Logger) Annotator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &annotator{
		metric: metric,
		logger: logger,
	}
}

// Annotate runs the fixed filter pipeline over one category: cheap attribute
// filters first, then the active mode's geometric inclusion test, then the
// strict on-route annotation for survivors, then the optional result cap.
//
// O(N x M) over features and route points. Run on trigger (bounds change,
// settings change, route reload), never inside a render loop.
func (a *annotator) Annotate(features []Feature, routePts []geo.Point, strategy Strategy, cfg Config) []Result {
	// A 0- or 1-point polyline means no route is loaded
	hasRoute := len(routePts) >= 2

	results := make([]Result, 0, len(features))
	included := 0

	for _, f := range features {
		if !f.Point.Valid() {
			// Best-effort visualization support: malformed records are
			// skipped, never fatal
			a.logger.Warn("skipping feature with invalid coordinates",
				zap.String("feature_id", f.ID),
				zap.String("category", string(strategy.Category())),
			)
			continue
		}
		if !a.passesAttributeFilters(f, cfg) {
			continue
		}

		r := Result{FeatureID: f.ID}

		if hasRoute {
			r.DistanceMiles, r.Included = a.applyMode(f, routePts, cfg)
			if r.Included {
				// Strict test: the traveler will physically pass this
				d, ok := a.metric.PointToPolylineMiles(f.Point, routePts)
				if ok {
					r.DistanceMiles = d
					r.OnRoute = d <= OnRouteToleranceMiles
				}
			}
		} else {
			switch cfg.Mode {
			case ModeAll, ModeViewport:
				r.Included = true
			default:
				// No route loaded: degrade to the category's danger
				// filter rather than silently returning everything
				r.Included = strategy.IncludeWithoutRoute(f, cfg)
			}
		}

		if r.Included {
			included++
		}
		results = append(results, r)
	}

	if cfg.ResultCap > 0 && included > cfg.ResultCap {
		results = a.capIncluded(results, features, strategy, cfg.ResultCap)
	}

	return results
}

// passesAttributeFilters applies the cheap numeric and tag filters that run
// before any geometry
func (a *annotator) passesAttributeFilters(f Feature, cfg Config) bool {
	if cfg.MinThreshold != 0 && f.Severity < cfg.MinThreshold {
		return false
	}
	if cfg.MaxThreshold != 0 && f.Severity > cfg.MaxThreshold {
		return false
	}
	if cfg.Tags != nil {
		if enabled, present := cfg.Tags[f.Tag]; present && !enabled {
			return false
		}
	}
	return true
}

// applyMode runs the active mode's geometric inclusion test against a loaded
// route
func (a *annotator) applyMode(f Feature, routePts []geo.Point, cfg Config) (distance float64, include bool) {
	switch cfg.Mode {
	case ModeAll, ModeViewport:
		return 0, true
	case ModeRoute, ModeNearby:
		// Vertex distance, not segment distance: coarser but cheaper,
		// and route polylines are dense enough for a radius test
		d, ok := a.metric.PointToVerticesMiles(f.Point, routePts)
		if !ok {
			return 0, false
		}
		// The inclusion radius never drops below the strict tolerance
		radius := cfg.RadiusMiles
		if radius < OnRouteToleranceMiles {
			radius = OnRouteToleranceMiles
		}
		return d, d <= radius
	case ModeOnRoute:
		d, ok := a.metric.PointToPolylineMiles(f.Point, routePts)
		if !ok {
			return 0, false
		}
		return d, d <= OnRouteToleranceMiles
	default:
		return 0, false
	}
}

// capIncluded keeps the cap most severe included results, dropping the rest
// of the included set. Mode-excluded results are retained for host-side
// dimming.
func (a *annotator) capIncluded(results []Result, features []Feature, strategy Strategy, limit int) []Result {
	rank := make(map[string]float64, len(features))
	for _, f := range features {
		rank[f.ID] = strategy.SeverityRank(f)
	}

	var includedResults []Result
	var excludedResults []Result
	for _, r := range results {
		if r.Included {
			includedResults = append(includedResults, r)
		} else {
			excludedResults = append(excludedResults, r)
		}
	}

	// Ascending severity rank: lowest clearance (most severe) first
	sort.SliceStable(includedResults, func(i, j int) bool {
		return rank[includedResults[i].FeatureID] < rank[includedResults[j].FeatureID]
	})
	includedResults = includedResults[:limit]

	return append(includedResults, excludedResults...)
}
