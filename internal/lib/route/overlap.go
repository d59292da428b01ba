package route

import (
	"math"

	"github.com/clearroute/tripmap/internal/lib/geo"
)

// endpointTolerance is the coordinate tolerance, in degrees, under which two
// leg endpoints count as the same physical location.
const endpointTolerance = 1e-4

// FindOverlaps compares every unordered leg pair and reports those whose
// sub-polylines begin and end at the same two points, in either direction.
// Out-and-back trips produce legs that would otherwise overdraw each other
// as a single indistinguishable stroke; the renderer uses these pairs to
// offset or dash the second stroke.
//
// Each pair is reported once, keyed (min, max), and a leg appears in at most
// one pair per pass. Transitive grouping across more than two legs is not
// attempted — a known limitation.
func (s *segmenter) FindOverlaps(legs []Leg) []OverlapPair {
	var pairs []OverlapPair
	matched := make(map[int]bool)

	for i := 0; i < len(legs); i++ {
		if matched[i] {
			continue
		}
		for j := i + 1; j < len(legs); j++ {
			if matched[j] {
				continue
			}
			if legsCoincide(legs[i], legs[j]) {
				pairs = append(pairs, OverlapPair{LegA: i, LegB: j})
				matched[i] = true
				matched[j] = true
				break
			}
		}
	}

	return pairs
}

// legsCoincide reports whether two legs share endpoints in either direction
func legsCoincide(a, b Leg) bool {
	if len(a.Points) < 2 || len(b.Points) < 2 {
		return false
	}

	aStart, aEnd := a.Points[0], a.Points[len(a.Points)-1]
	bStart, bEnd := b.Points[0], b.Points[len(b.Points)-1]

	reversed := pointsCoincide(aStart, bEnd) && pointsCoincide(aEnd, bStart)
	same := pointsCoincide(aStart, bStart) && pointsCoincide(aEnd, bEnd)

	return reversed || same
}

// pointsCoincide compares coordinates within the endpoint tolerance
func pointsCoincide(a, b geo.Point) bool {
	return math.Abs(a.Latitude-b.Latitude) <= endpointTolerance &&
		math.Abs(a.Longitude-b.Longitude) <= endpointTolerance
}
