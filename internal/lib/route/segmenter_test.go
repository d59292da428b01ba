package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearroute/tripmap/internal/lib/geo"
)

// evenPolyline builds n evenly spaced points from (40, -75) heading east
func evenPolyline(n int) []geo.Point {
	pts := make([]geo.Point, n)
	for i := range pts {
		pts[i] = geo.Point{Latitude: 40.0, Longitude: -75.0 + float64(i)*0.1}
	}
	return pts
}

func TestSegmenter_SplitLegs(t *testing.T) {
	s := NewSegmenter(geo.NewMetric(), nil)
	polyline := evenPolyline(10)

	// Waypoints snapping to indices 0, 4 and 9
	waypoints := []Waypoint{
		{ID: "wp-a", Point: polyline[0], Order: 1},
		{ID: "wp-b", Point: polyline[4], Order: 2},
		{ID: "wp-c", Point: polyline[9], Order: 3},
	}

	legs := s.SplitLegs(waypoints, polyline)
	require.Len(t, legs, 2, "3 waypoints should produce exactly 2 legs")

	assert.Equal(t, "wp-a", legs[0].StartWaypointID)
	assert.Equal(t, "wp-b", legs[0].EndWaypointID)
	assert.Len(t, legs[0].Points, 5, "Slice [0,4] inclusive should hold 5 points")

	assert.Equal(t, "wp-b", legs[1].StartWaypointID)
	assert.Equal(t, "wp-c", legs[1].EndWaypointID)
	assert.Len(t, legs[1].Points, 6, "Slice [4,9] inclusive should hold 6 points")

	assert.False(t, legs[0].Fallback)
	assert.False(t, legs[1].Fallback)

	// Leg boundaries line up with the snapped vertices
	assert.Equal(t, polyline[0], legs[0].Points[0])
	assert.Equal(t, polyline[4], legs[0].Points[4])
	assert.Equal(t, polyline[4], legs[1].Points[0])
	assert.Equal(t, polyline[9], legs[1].Points[5])
}

func TestSegmenter_SplitLegs_SortsByOrder(t *testing.T) {
	s := NewSegmenter(geo.NewMetric(), nil)
	polyline := evenPolyline(10)

	// Input arrives shuffled; Order fields define the traversal sequence
	waypoints := []Waypoint{
		{ID: "wp-c", Point: polyline[9], Order: 30},
		{ID: "wp-a", Point: polyline[0], Order: 10},
		{ID: "wp-b", Point: polyline[4], Order: 20},
	}

	legs := s.SplitLegs(waypoints, polyline)
	require.Len(t, legs, 2)
	assert.Equal(t, "wp-a", legs[0].StartWaypointID)
	assert.Equal(t, "wp-b", legs[0].EndWaypointID)
	assert.Equal(t, "wp-b", legs[1].StartWaypointID)
	assert.Equal(t, "wp-c", legs[1].EndWaypointID)
}

func TestSegmenter_SplitLegs_NonMonotonicFallback(t *testing.T) {
	s := NewSegmenter(geo.NewMetric(), nil)
	polyline := evenPolyline(10)

	// Second and third waypoints snap out of order along the polyline
	// (indices 0, 2, 1): the second leg degrades to a straight line
	waypoints := []Waypoint{
		{ID: "wp-a", Point: polyline[0], Order: 1},
		{ID: "wp-b", Point: polyline[2], Order: 2},
		{ID: "wp-c", Point: polyline[1], Order: 3},
	}

	legs := s.SplitLegs(waypoints, polyline)
	require.Len(t, legs, 2)

	assert.Len(t, legs[0].Points, 3, "First leg covers indices [0,2]")
	assert.False(t, legs[0].Fallback)

	require.Len(t, legs[1].Points, 2, "Degraded leg is a 2-point straight line")
	assert.True(t, legs[1].Fallback)
	assert.Equal(t, polyline[2], legs[1].Points[0])
	assert.Equal(t, polyline[1], legs[1].Points[1])
}

func TestSegmenter_SplitLegs_DegenerateInputs(t *testing.T) {
	s := NewSegmenter(geo.NewMetric(), nil)
	polyline := evenPolyline(10)

	// Fewer than 2 waypoints is a valid state with no legs
	assert.Empty(t, s.SplitLegs(nil, polyline))
	assert.Empty(t, s.SplitLegs([]Waypoint{{ID: "only", Point: polyline[0], Order: 1}}, polyline))

	// A route that is not loaded yet (0 or 1 points) produces no legs
	waypoints := []Waypoint{
		{ID: "wp-a", Point: polyline[0], Order: 1},
		{ID: "wp-b", Point: polyline[9], Order: 2},
	}
	assert.Empty(t, s.SplitLegs(waypoints, nil))
	assert.Empty(t, s.SplitLegs(waypoints, polyline[:1]))
}

func TestSegmenter_SplitLegs_MinimumLegSize(t *testing.T) {
	s := NewSegmenter(geo.NewMetric(), nil)
	polyline := evenPolyline(10)

	// Both waypoints snapping to the same vertex still yields a 2-point leg
	waypoints := []Waypoint{
		{ID: "wp-a", Point: polyline[3], Order: 1},
		{ID: "wp-b", Point: polyline[3], Order: 2},
	}

	legs := s.SplitLegs(waypoints, polyline)
	require.Len(t, legs, 1)
	assert.GreaterOrEqual(t, len(legs[0].Points), 2, "A leg never has fewer than 2 points")
	assert.True(t, legs[0].Fallback)
}

func BenchmarkSegmenter_SplitLegs(b *testing.B) {
	s := NewSegmenter(geo.NewMetric(), nil)
	polyline := evenPolyline(2000)
	waypoints := []Waypoint{
		{ID: "wp-a", Point: polyline[0], Order: 1},
		{ID: "wp-b", Point: polyline[700], Order: 2},
		{ID: "wp-c", Point: polyline[1400], Order: 3},
		{ID: "wp-d", Point: polyline[1999], Order: 4},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = s.SplitLegs(waypoints, polyline)
	}
}
