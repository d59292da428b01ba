package proximity

import "fmt"

// defaultSafeClearanceFeet is the clearance below which a structure is
// flagged when no route is loaded and no threshold is configured. Tall RVs
// and trailers top out around 13'6".
const defaultSafeClearanceFeet = 13.5

// StrategyFor returns the filter strategy for a feature category
func StrategyFor(c Category) (Strategy, error) {
	switch c {
	case CategoryLowClearance:
		return lowClearanceStrategy{}, nil
	case CategoryRailCrossing:
		return railCrossingStrategy{}, nil
	case CategoryPointOfInterest:
		return poiStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown feature category: %q", c)
	}
}

// lowClearanceStrategy handles low-clearance structures. Severity is the
// posted clearance in feet, so ascending order surfaces the lowest
// structures first.
type lowClearanceStrategy struct{}

func (lowClearanceStrategy) Category() Category { return CategoryLowClearance }

func (lowClearanceStrategy) SeverityRank(f Feature) float64 { return f.Severity }

// IncludeWithoutRoute keeps only structures at or below the safety
// threshold. MaxThreshold doubles as the vehicle's safe clearance when set.
func (lowClearanceStrategy) IncludeWithoutRoute(f Feature, cfg Config) bool {
	threshold := cfg.MaxThreshold
	if threshold == 0 {
		threshold = defaultSafeClearanceFeet
	}
	return f.Severity > 0 && f.Severity <= threshold
}

// railCrossingStrategy handles rail crossings. Severity is the crossing
// safety score where lower scores are worse.
type railCrossingStrategy struct{}

func (railCrossingStrategy) Category() Category { return CategoryRailCrossing }

func (railCrossingStrategy) SeverityRank(f Feature) float64 { return f.Severity }

// IncludeWithoutRoute keeps passive crossings, the ones without gates or
// flashing signals.
func (railCrossingStrategy) IncludeWithoutRoute(f Feature, _ Config) bool {
	return f.Tag == "passive"
}

// poiStrategy handles generic points of interest, which carry no danger
// semantics.
type poiStrategy struct{}

func (poiStrategy) Category() Category { return CategoryPointOfInterest }

func (poiStrategy) SeverityRank(f Feature) float64 { return f.Severity }

func (poiStrategy) IncludeWithoutRoute(_ Feature, _ Config) bool { return false }
