package route

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/clearroute/tripmap/internal/lib/geo"
)

// segmenter implements the Segmenter interface
type segmenter struct {
	metric geo.Metric
	logger *zap.Logger
}

// NewSegmenter creates a new Segmenter. A nil logger disables the
// data-quality logging.
func NewSegmenter(metric geo.Metric, logger *zap.Logger) Segmenter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &segmenter{
		metric: metric,
		logger: logger,
	}
}

// SplitLegs partitions the polyline into per-leg sub-polylines aligned to the
// waypoints. Each waypoint snaps to its nearest polyline vertex by linear
// scan; polylines are bounded to low thousands of points and the split runs
// on demand, so no spatial index is needed.
func (s *segmenter) SplitLegs(waypoints []Waypoint, polyline []geo.Point) []Leg {
	// A 0- or 1-point polyline means no route is loaded; that is a valid
	// state, not an error
	if len(waypoints) < 2 || len(polyline) < 2 {
		return nil
	}

	ordered := make([]Waypoint, len(waypoints))
	copy(ordered, waypoints)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Order < ordered[j].Order
	})

	indices := make([]int, len(ordered))
	for i, wp := range ordered {
		indices[i] = s.nearestIndex(wp.Point, polyline)
	}

	legs := make([]Leg, 0, len(ordered)-1)
	for i := 0; i < len(ordered)-1; i++ {
		start, end := indices[i], indices[i+1]
		if end > start {
			points := make([]geo.Point, end-start+1)
			copy(points, polyline[start:end+1])
			legs = append(legs, Leg{
				StartWaypointID: ordered[i].ID,
				EndWaypointID:   ordered[i+1].ID,
				Points:          points,
			})
			continue
		}

		// The route revisits territory near an earlier waypoint, or both
		// waypoints snapped to the same vicinity
		s.logger.Warn("waypoint snap order violated, using straight-line leg",
			zap.String("start_waypoint", ordered[i].ID),
			zap.String("end_waypoint", ordered[i+1].ID),
			zap.Int("start_index", start),
			zap.Int("end_index", end),
		)
		legs = append(legs, s.fallbackLeg(ordered[i], ordered[i+1]))
	}

	return legs
}

// nearestIndex finds the polyline vertex closest to p
func (s *segmenter) nearestIndex(p geo.Point, polyline []geo.Point) int {
	best := 0
	bestDistance := math.Inf(1)
	for i, pt := range polyline {
		d := s.metric.MilesBetween(p, pt)
		if d < bestDistance {
			bestDistance = d
			best = i
		}
	}
	return best
}

// fallbackLeg builds a 2-point straight-line leg from the waypoints' raw
// coordinates
func (s *segmenter) fallbackLeg(a, b Waypoint) Leg {
	return Leg{
		StartWaypointID: a.ID,
		EndWaypointID:   b.ID,
		Points:          []geo.Point{a.Point, b.Point},
		Fallback:        true,
	}
}
