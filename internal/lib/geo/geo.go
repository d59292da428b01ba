package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/twpayne/go-polyline"
)

// EarthRadiusMiles is the mean Earth radius used for all great-circle math.
const EarthRadiusMiles = 3959.0

// metric implements the Metric interface
type metric struct{}

// NewMetric creates a new Metric implementation
func NewMetric() Metric {
	return &metric{}
}

// MilesBetween calculates great-circle distance between two points using the
// Haversine formula. Symmetric, non-negative, and zero only for equal points.
func (m *metric) MilesBetween(a, b Point) float64 {
	if a.Latitude == b.Latitude && a.Longitude == b.Longitude {
		return 0
	}

	lat1 := a.Latitude * math.Pi / 180
	lon1 := a.Longitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	lon2 := b.Longitude * math.Pi / 180

	dlat := lat2 - lat1
	dlon := lon2 - lon1

	h := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMiles * c
}

// NormalizeLongitude brings a longitude into (-180, 180] by repeated 360
// degree corrections. Deliberately not a modulo: wraparound viewports report
// edges a single revolution or two out of range, and stepping preserves the
// sign semantics of those small corrections.
func NormalizeLongitude(lon float64) float64 {
	for lon > 180 {
		lon -= 360
	}
	for lon <= -180 {
		lon += 360
	}
	return lon
}

// PointToSegmentMiles calculates the shortest distance from p to the line
// segment ab. Coordinates are treated as planar for the projection, an
// approximation that holds at the sub-100-mile segment scales routes use
// here; the distance to the projected point is still great-circle.
func (m *metric) PointToSegmentMiles(p, a, b Point) float64 {
	if a.Latitude == b.Latitude && a.Longitude == b.Longitude {
		return m.MilesBetween(p, a)
	}

	dLat := b.Latitude - a.Latitude
	dLon := b.Longitude - a.Longitude

	t := ((p.Latitude-a.Latitude)*dLat + (p.Longitude-a.Longitude)*dLon) /
		(dLat*dLat + dLon*dLon)

	// Clamp so an off-segment projection degrades to the nearer endpoint
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	projected := Point{
		Latitude:  a.Latitude + t*dLat,
		Longitude: a.Longitude + t*dLon,
	}

	return m.MilesBetween(p, projected)
}

// PointToPolylineMiles calculates the minimum distance from p to any segment
// of the polyline. The second return is false when the polyline is empty.
func (m *metric) PointToPolylineMiles(p Point, pts []Point) (float64, bool) {
	if len(pts) == 0 {
		return 0, false
	}
	if len(pts) == 1 {
		return m.MilesBetween(p, pts[0]), true
	}

	minDistance := math.Inf(1)
	for i := 0; i < len(pts)-1; i++ {
		d := m.PointToSegmentMiles(p, pts[i], pts[i+1])
		if d < minDistance {
			minDistance = d
		}
	}
	return minDistance, true
}

// PointToVerticesMiles calculates the minimum distance from p to any vertex
// of the polyline. Coarser and cheaper than the segment walk; radius-based
// inclusion modes use this intentionally.
func (m *metric) PointToVerticesMiles(p Point, pts []Point) (float64, bool) {
	if len(pts) == 0 {
		return 0, false
	}

	minDistance := math.Inf(1)
	for _, pt := range pts {
		d := m.MilesBetween(p, pt)
		if d < minDistance {
			minDistance = d
		}
	}
	return minDistance, true
}

// DecodePolyline decodes a Google encoded polyline string to a point sequence
func (m *metric) DecodePolyline(encoded string) ([]Point, error) {
	if encoded == "" {
		return nil, errors.New("encoded polyline string is empty")
	}

	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to decode polyline: %w", err)
	}

	points := make([]Point, len(coords))
	for i, coord := range coords {
		points[i] = Point{
			Latitude:  coord[0],
			Longitude: coord[1],
		}
		if !points[i].Valid() {
			return nil, errors.New("decoded polyline contains invalid coordinates")
		}
	}

	return points, nil
}
