package app

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGeocoder struct {
	searches atomic.Int64
	response string
}

func (g *stubGeocoder) Query(query, lang string) string {
	path := "search?q=" + query + "&format=geojson&polygon_geojson=1"
	if lang != "" {
		path += "&accept-language=" + lang
	}
	return path
}

func (g *stubGeocoder) Search(ctx context.Context, path string) (json.RawMessage, error) {
	g.searches.Add(1)
	return json.RawMessage(g.response), nil
}

func TestLocationsCachesByRequestPath(t *testing.T) {
	geocoder := &stubGeocoder{response: `{"type":"FeatureCollection","features":[]}`}
	service := NewSearchService(geocoder, newMemoryCache(), testLogger())

	first, err := service.Locations(context.Background(), "Berlin", "de")
	require.NoError(t, err)
	second, err := service.Locations(context.Background(), "Berlin", "de")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "FeatureCollection", first["type"])
	assert.Equal(t, int64(1), geocoder.searches.Load())
}

func TestLocationsLanguageChangesFingerprint(t *testing.T) {
	geocoder := &stubGeocoder{response: `{"type":"FeatureCollection","features":[]}`}
	service := NewSearchService(geocoder, newMemoryCache(), testLogger())

	_, err := service.Locations(context.Background(), "Berlin", "de")
	require.NoError(t, err)
	_, err = service.Locations(context.Background(), "Berlin", "en")
	require.NoError(t, err)

	assert.Equal(t, int64(2), geocoder.searches.Load())
}
