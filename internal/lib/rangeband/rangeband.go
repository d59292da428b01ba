// Package rangeband validates drive-time band layers handed over by an
// isochrone collaborator. The engine never computes the polygons; it only
// checks the nesting contract before the renderer draws them outer-first.
package rangeband

import (
	"errors"
	"fmt"

	"github.com/clearroute/tripmap/internal/lib/geo"
)

// Band represents one drive-time polygon with its reachable-minutes value
// and the opacity percentage the renderer applies.
type Band struct {
	Label      string      `json:"label"`
	Minutes    int         `json:"minutes"`
	Percentage int         `json:"percentage"`
	Polygon    []geo.Point `json:"polygon"`
}

// Validate checks a band layer set: 2 to 3 bands ordered outer to inner,
// strictly decreasing minutes so inner bands are never occluded by a later,
// larger draw, and every polygon closed enough to render (3+ valid points).
func Validate(bands []Band) error {
	if len(bands) < 2 || len(bands) > 3 {
		return fmt.Errorf("expected 2 or 3 drive-time bands, got %d", len(bands))
	}

	for i, band := range bands {
		if band.Minutes <= 0 {
			return fmt.Errorf("band %q: minutes must be positive, got %d", band.Label, band.Minutes)
		}
		if band.Percentage < 0 || band.Percentage > 100 {
			return fmt.Errorf("band %q: percentage out of range: %d", band.Label, band.Percentage)
		}
		if len(band.Polygon) < 3 {
			return fmt.Errorf("band %q: polygon needs at least 3 points, got %d", band.Label, len(band.Polygon))
		}
		for _, p := range band.Polygon {
			if !p.Valid() {
				return fmt.Errorf("band %q: polygon contains invalid coordinates", band.Label)
			}
		}

		if i > 0 && band.Minutes >= bands[i-1].Minutes {
			return errors.New("bands must be ordered outer to inner with strictly decreasing minutes")
		}
	}

	return nil
}
