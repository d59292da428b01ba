// Package export serializes engine output as KML overlays so routes, legs
// and annotated features can be eyeballed in any map viewer.
package export

import (
	"fmt"
	"io"

	kml "github.com/twpayne/go-kml/v2"

	"github.com/clearroute/tripmap/internal/lib/proximity"
	"github.com/clearroute/tripmap/internal/lib/rangeband"
	"github.com/clearroute/tripmap/internal/lib/route"
)

// Write serializes the given folders as a single KML document
func Write(w io.Writer, folders ...kml.Element) error {
	doc := kml.KML(kml.Document(folders...))
	if err := doc.WriteIndent(w, "", "  "); err != nil {
		return fmt.Errorf("failed to write KML: %w", err)
	}
	return nil
}

// RouteFolder renders each leg as a line placemark, flagging straight-line
// fallbacks and legs that retrace another leg's path.
func RouteFolder(legs []route.Leg, overlaps []route.OverlapPair) kml.Element {
	retraced := make(map[int]int)
	for _, p := range overlaps {
		retraced[p.LegA] = p.LegB
		retraced[p.LegB] = p.LegA
	}

	elements := []kml.Element{kml.Name("Route legs")}
	for i, leg := range legs {
		coords := make([]kml.Coordinate, len(leg.Points))
		for j, pt := range leg.Points {
			coords[j] = kml.Coordinate{Lon: pt.Longitude, Lat: pt.Latitude}
		}

		desc := fmt.Sprintf("%s to %s", leg.StartWaypointID, leg.EndWaypointID)
		if leg.Fallback {
			desc += " (straight-line fallback)"
		}
		if other, ok := retraced[i]; ok {
			desc += fmt.Sprintf(", retraces leg %d", other)
		}

		elements = append(elements, kml.Placemark(
			kml.Name(fmt.Sprintf("Leg %d", i)),
			kml.Description(desc),
			kml.LineString(
				kml.Coordinates(coords...),
				kml.Tessellate(true),
			),
		))
	}

	return kml.Folder(elements...)
}

// FeatureFolder renders an annotated feature collection. Only included
// features appear; on-route ones say so in their description.
func FeatureFolder(category proximity.Category, features []proximity.Feature, results []proximity.Result) kml.Element {
	byID := make(map[string]proximity.Feature, len(features))
	for _, f := range features {
		byID[f.ID] = f
	}

	elements := []kml.Element{kml.Name(string(category))}
	for _, r := range results {
		if !r.Included {
			continue
		}
		f, ok := byID[r.FeatureID]
		if !ok {
			continue
		}

		desc := fmt.Sprintf("%.3f mi from route", r.DistanceMiles)
		if r.OnRoute {
			desc = "on route, " + desc
		}
		if f.Description != "" {
			desc = f.Description + "; " + desc
		}

		elements = append(elements, kml.Placemark(
			kml.Name(f.ID),
			kml.Description(desc),
			kml.Point(
				kml.Coordinates(kml.Coordinate{Lon: f.Point.Longitude, Lat: f.Point.Latitude}),
			),
		))
	}

	return kml.Folder(elements...)
}

// BandFolder renders drive-time band outlines in their given outer-to-inner
// order so a viewer draws them without occlusion.
func BandFolder(bands []rangeband.Band) kml.Element {
	elements := []kml.Element{kml.Name("Drive-time bands")}
	for _, band := range bands {
		coords := make([]kml.Coordinate, 0, len(band.Polygon)+1)
		for _, pt := range band.Polygon {
			coords = append(coords, kml.Coordinate{Lon: pt.Longitude, Lat: pt.Latitude})
		}
		if len(band.Polygon) > 0 {
			// Close the ring
			first := band.Polygon[0]
			coords = append(coords, kml.Coordinate{Lon: first.Longitude, Lat: first.Latitude})
		}

		elements = append(elements, kml.Placemark(
			kml.Name(band.Label),
			kml.Description(fmt.Sprintf("%d minutes", band.Minutes)),
			kml.LineString(
				kml.Coordinates(coords...),
				kml.Tessellate(true),
			),
		))
	}

	return kml.Folder(elements...)
}
