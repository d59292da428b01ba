package route

import (
	"github.com/clearroute/tripmap/internal/lib/geo"
)

// Waypoint represents an ordered stop on a planned trip. Order values are
// unique per route and define traversal sequence; input slice order is not
// trusted.
type Waypoint struct {
	ID    string    `json:"id"`
	Point geo.Point `json:"point"`
	Order int       `json:"order"`
}

// Leg represents the portion of the route polyline between two consecutive
// waypoints. Points always holds at least 2 entries.
type Leg struct {
	StartWaypointID string      `json:"start_waypoint_id"`
	EndWaypointID   string      `json:"end_waypoint_id"`
	Points          []geo.Point `json:"points"`
	// Fallback marks legs degraded to a straight line because the two
	// waypoints snapped out of order along the polyline
	Fallback bool `json:"fallback,omitempty"`
}

// OverlapPair identifies two legs that trace the same physical path in
// either direction. LegA < LegB always holds.
type OverlapPair struct {
	LegA int `json:"leg_a"`
	LegB int `json:"leg_b"`
}

// Segmenter partitions a route polyline into ordered per-leg sub-polylines
// and detects legs that retrace the same path.
type Segmenter interface {
	// Split the polyline into one leg per consecutive waypoint pair,
	// sorted by waypoint order. Fewer than 2 waypoints yields no legs.
	SplitLegs(waypoints []Waypoint, polyline []geo.Point) []Leg

	// Find leg pairs whose endpoints coincide in either direction,
	// within a small coordinate tolerance
	FindOverlaps(legs []Leg) []OverlapPair
}

// NewSegmenter is implemented in segmenter.go
