package features

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearroute/tripmap/internal/lib/proximity"
)

const bridgeKML = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
  <Document>
    <Folder>
      <Placemark>
        <name>US-1 Overpass</name>
        <description><![CDATA[Posted clearance 11'8"]]></description>
        <ExtendedData>
          <Data name="clearance_ft"><value>11.7</value></Data>
          <Data name="tag"><value>overpass</value></Data>
        </ExtendedData>
        <Point><coordinates>-74.5,40.0005,0</coordinates></Point>
      </Placemark>
      <Placemark>
        <name>No Geometry</name>
      </Placemark>
    </Folder>
    <Placemark>
      <name>Parkway Tunnel</name>
      <ExtendedData>
        <Data name="clearance_ft"><value>13.1</value></Data>
        <Data name="tag"><value>tunnel</value></Data>
      </ExtendedData>
      <Point><coordinates>-74.62,40.01</coordinates></Point>
    </Placemark>
    <Placemark>
      <name>Bad Coordinates</name>
      <Point><coordinates>not,numbers</coordinates></Point>
    </Placemark>
  </Document>
</kml>`

func TestFeedParser_ParseKML(t *testing.T) {
	p := NewFeedParser(nil)

	features, err := p.ParseKML([]byte(bridgeKML), proximity.CategoryLowClearance)
	require.NoError(t, err)
	require.Len(t, features, 2, "Placemarks without usable point geometry are skipped")

	// Document-level placemarks come before folder placemarks in no
	// guaranteed order; index by ID
	byID := make(map[string]proximity.Feature)
	for _, f := range features {
		byID[f.ID] = f
	}

	overpass, ok := byID["US-1 Overpass"]
	require.True(t, ok)
	assert.InDelta(t, 40.0005, overpass.Point.Latitude, 1e-9)
	assert.InDelta(t, -74.5, overpass.Point.Longitude, 1e-9)
	assert.Equal(t, 11.7, overpass.Severity)
	assert.Equal(t, "overpass", overpass.Tag)
	assert.Equal(t, `Posted clearance 11'8"`, overpass.Description)

	tunnel, ok := byID["Parkway Tunnel"]
	require.True(t, ok)
	assert.Equal(t, 13.1, tunnel.Severity)
	assert.Equal(t, "tunnel", tunnel.Tag)
	assert.Empty(t, tunnel.Description)
}

func TestFeedParser_ParseKML_SeverityFieldAliases(t *testing.T) {
	p := NewFeedParser(nil)

	crossingKML := `<?xml version="1.0"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
  <Document>
    <Placemark>
      <name>Mill Rd Crossing</name>
      <ExtendedData>
        <Data name="safety_score"><value>2.4</value></Data>
        <Data name="tag"><value>passive</value></Data>
      </ExtendedData>
      <Point><coordinates>-74.3,40.02</coordinates></Point>
    </Placemark>
  </Document>
</kml>`

	features, err := p.ParseKML([]byte(crossingKML), proximity.CategoryRailCrossing)
	require.NoError(t, err)
	require.Len(t, features, 1)
	assert.Equal(t, 2.4, features[0].Severity)
	assert.Equal(t, "passive", features[0].Tag)

	// The same field means nothing to another category
	features, err = p.ParseKML([]byte(crossingKML), proximity.CategoryPointOfInterest)
	require.NoError(t, err)
	require.Len(t, features, 1)
	assert.Equal(t, 0.0, features[0].Severity)
}

func TestFeedParser_ParseKML_Malformed(t *testing.T) {
	p := NewFeedParser(nil)
	_, err := p.ParseKML([]byte("<kml><unclosed"), proximity.CategoryPointOfInterest)
	assert.Error(t, err)
}

func TestFeedParser_FetchCategory_CachesSnapshot(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(bridgeKML))
	}))
	defer server.Close()

	p := NewFeedParser(nil)
	ctx := context.Background()

	first, err := p.FetchCategory(ctx, proximity.CategoryLowClearance, server.URL, time.Minute)
	require.NoError(t, err)
	assert.Len(t, first, 2)

	second, err := p.FetchCategory(ctx, proximity.CategoryLowClearance, server.URL, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), hits.Load(), "Fresh snapshot should be served from cache")

	p.Invalidate(proximity.CategoryLowClearance)
	_, err = p.FetchCategory(ctx, proximity.CategoryLowClearance, server.URL, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load(), "Invalidation should force a refetch")
}

func TestFeedParser_FetchCategory_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	p := NewFeedParser(nil)
	_, err := p.FetchCategory(context.Background(), proximity.CategoryRailCrossing, server.URL, time.Minute)
	assert.Error(t, err)
}
