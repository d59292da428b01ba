package geo

import "math"

// Point represents a geographic coordinate in decimal degrees.
type Point struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// Bounds represents a map viewport bounding box. West and East may arrive
// outside (-180, 180] when the viewport crosses the antimeridian.
type Bounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// Polyline represents a routed path as an ordered point sequence, optionally
// carrying the encoded form it was decoded from.
type Polyline struct {
	EncodedPolyline string  `json:"encoded_polyline,omitempty"`
	Points          []Point `json:"points"`
}

// Metric defines the geographic distance calculations the engine is built on.
// All distances are in statute miles.
type Metric interface {
	// Great-circle distance between two points
	MilesBetween(a, b Point) float64

	// Shortest distance from p to the segment ab
	PointToSegmentMiles(p, a, b Point) float64

	// Minimum distance from p to any segment of the polyline; returns
	// (0, false) when the polyline has no points
	PointToPolylineMiles(p Point, pts []Point) (float64, bool)

	// Minimum distance from p to any vertex of the polyline; returns
	// (0, false) when the polyline has no points
	PointToVerticesMiles(p Point, pts []Point) (float64, bool)

	// Decode a Google encoded polyline string to a point sequence
	DecodePolyline(encoded string) ([]Point, error)
}

// Valid reports whether the point has finite coordinates inside the
// WGS 84 range.
func (p Point) Valid() bool {
	if math.IsNaN(p.Latitude) || math.IsInf(p.Latitude, 0) ||
		math.IsNaN(p.Longitude) || math.IsInf(p.Longitude, 0) {
		return false
	}
	return p.Latitude >= -90 && p.Latitude <= 90 &&
		p.Longitude >= -180 && p.Longitude <= 180
}

// Normalized returns a copy of the bounds with east/west edges brought into
// the canonical longitude range.
func (b Bounds) Normalized() Bounds {
	b.East = NormalizeLongitude(b.East)
	b.West = NormalizeLongitude(b.West)
	return b
}
