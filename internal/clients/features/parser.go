// Package features retrieves point-feature collections from KML feeds:
// low-clearance structures, rail crossings and points of interest. It is a
// retrieval collaborator; the geometry engine itself performs no I/O.
package features

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/clearroute/tripmap/internal/lib/geo"
	"github.com/clearroute/tripmap/internal/lib/proximity"
)

// severityFields maps each category to the ExtendedData field carrying its
// severity measure, in lookup order.
var severityFields = map[proximity.Category][]string{
	proximity.CategoryLowClearance:    {"clearance_ft", "vert_clearance", "severity"},
	proximity.CategoryRailCrossing:    {"safety_score", "severity"},
	proximity.CategoryPointOfInterest: {"rating", "severity"},
}

// FeedParser downloads and parses point-feature KML feeds
type FeedParser struct {
	httpClient *http.Client
	cache      *snapshotCache
	logger     *zap.Logger
}

// NewFeedParser creates a new feed parser. A nil logger disables the
// data-quality logging.
func NewFeedParser(logger *zap.Logger) *FeedParser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedParser{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		cache:  newSnapshotCache(),
		logger: logger,
	}
}

// FetchCategory returns the feature collection for a category, served from
// the snapshot cache while fresh and refetched from the feed URL once the
// TTL lapses.
func (p *FeedParser) FetchCategory(ctx context.Context, category proximity.Category, url string, ttl time.Duration) ([]proximity.Feature, error) {
	if cached, ok := p.cache.get(category); ok {
		return cached, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download KML: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error %d downloading KML from %s", resp.StatusCode, url)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read KML response: %w", err)
	}

	collection, err := p.ParseKML(data, category)
	if err != nil {
		return nil, err
	}

	p.cache.set(category, collection, ttl)
	return collection, nil
}

// ParseKML parses raw KML bytes into a feature collection. Placemarks
// without a point geometry or with unparseable coordinates are skipped.
func (p *FeedParser) ParseKML(data []byte, category proximity.Category) ([]proximity.Feature, error) {
	var doc kmlFile
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse KML: %w", err)
	}

	placemarks := doc.Document.Placemarks
	for _, folder := range doc.Document.Folders {
		placemarks = append(placemarks, folder.Placemarks...)
	}

	features := make([]proximity.Feature, 0, len(placemarks))
	for i, pm := range placemarks {
		feature, ok := p.processPlacemark(pm, category, i)
		if !ok {
			continue
		}
		features = append(features, feature)
	}

	return features, nil
}

// processPlacemark converts one KML placemark into a Feature
func (p *FeedParser) processPlacemark(pm kmlPlacemark, category proximity.Category, index int) (proximity.Feature, bool) {
	if pm.Point == nil {
		return proximity.Feature{}, false
	}

	point, err := parseCoordinates(pm.Point.Coordinates)
	if err != nil || !point.Valid() {
		p.logger.Warn("skipping placemark with bad coordinates",
			zap.String("category", string(category)),
			zap.String("name", pm.Name),
		)
		return proximity.Feature{}, false
	}

	id := strings.TrimSpace(pm.Name)
	if id == "" {
		id = fmt.Sprintf("%s-%d", category, index)
	}

	feature := proximity.Feature{
		ID:          id,
		Point:       point,
		Tag:         pm.extendedValue("tag"),
		Description: strings.TrimSpace(pm.Description),
	}

	for _, field := range severityFields[category] {
		raw := pm.extendedValue(field)
		if raw == "" {
			continue
		}
		severity, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			p.logger.Warn("unparseable severity value",
				zap.String("category", string(category)),
				zap.String("feature_id", id),
				zap.String("field", field),
				zap.String("value", raw),
			)
			continue
		}
		feature.Severity = severity
		break
	}

	return feature, true
}

// parseCoordinates parses a KML "longitude,latitude[,altitude]" tuple
func parseCoordinates(raw string) (geo.Point, error) {
	parts := strings.Split(strings.TrimSpace(raw), ",")
	if len(parts) < 2 {
		return geo.Point{}, fmt.Errorf("malformed coordinate tuple: %q", raw)
	}

	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("bad longitude in %q: %w", raw, err)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("bad latitude in %q: %w", raw, err)
	}

	return geo.Point{Latitude: lat, Longitude: lon}, nil
}

// KML document structure, limited to the elements the feeds use. The go-kml
// library this project serializes with is write-oriented, so decoding uses
// plain xml struct tags.
type kmlFile struct {
	Document kmlDocument `xml:"Document"`
}

type kmlDocument struct {
	Folders    []kmlFolder    `xml:"Folder"`
	Placemarks []kmlPlacemark `xml:"Placemark"`
}

type kmlFolder struct {
	Placemarks []kmlPlacemark `xml:"Placemark"`
}

type kmlPlacemark struct {
	Name         string           `xml:"name"`
	Description  string           `xml:"description"`
	Point        *kmlPoint        `xml:"Point"`
	ExtendedData *kmlExtendedData `xml:"ExtendedData"`
}

type kmlPoint struct {
	Coordinates string `xml:"coordinates"`
}

type kmlExtendedData struct {
	Data []kmlData `xml:"Data"`
}

type kmlData struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value"`
}

// extendedValue returns the named ExtendedData value, or ""
func (pm kmlPlacemark) extendedValue(name string) string {
	if pm.ExtendedData == nil {
		return ""
	}
	for _, d := range pm.ExtendedData.Data {
		if d.Name == name {
			return strings.TrimSpace(d.Value)
		}
	}
	return ""
}
