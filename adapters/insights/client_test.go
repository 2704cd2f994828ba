package insights

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/konturio/insights-llm-api/internal"
	"github.com/konturio/insights-llm-api/internal/errors"
	"github.com/konturio/insights-llm-api/ports"
)

func testLogger() *internal.Logger {
	return internal.NewLogger(internal.LogLevelError)
}

func TestAdvancedAnalyticsParsesPayload(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Query string `json:"query"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotQuery = body.Query

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"data": {"polygonStatistic": {"analytics": {"advancedAnalytics": [{
				"numerator": "population",
				"denominator": "one",
				"numeratorLabel": "Population",
				"denominatorLabel": "1",
				"resolution": 8,
				"analytics": [
					{"value": 1234.5, "calculation": "sum", "quality": 0.9},
					{"value": null, "calculation": "mean", "quality": 0.1}
				]
			}]}}}
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-agent", testLogger())
	area := ports.GeoJSON{"type": "FeatureCollection", "features": []any{}}

	groups, err := client.AdvancedAnalytics(context.Background(), area)
	require.NoError(t, err)

	require.Len(t, groups, 1)
	assert.Equal(t, "population", groups[0].Numerator)
	assert.Equal(t, 8, groups[0].Resolution)
	require.Len(t, groups[0].Records, 2)
	require.NotNil(t, groups[0].Records[0].Value)
	assert.Equal(t, 1234.5, *groups[0].Records[0].Value)
	assert.Nil(t, groups[0].Records[1].Value)

	// the area polygon must be escaped into the GraphQL string
	assert.Contains(t, gotQuery, `\"FeatureCollection\"`)
}

func TestAdvancedAnalyticsPropagatesUpstreamStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-agent", testLogger())
	_, err := client.AdvancedAnalytics(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, errors.HTTPStatus(err))
}

func TestAdvancedAnalyticsRejectsGraphQLErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"errors": [{"message": "field does not exist"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-agent", testLogger())
	_, err := client.AdvancedAnalytics(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, errors.HTTPStatus(err))
}

func TestIndicatorMetadataParsesPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"data": {"polygonStatistic": {"bivariateStatistic": {"indicators": [
				{"name": "population", "label": "Population", "description": "People count", "emoji": "👥", "unit": {"longName": "people"}},
				{"name": "avgmax_ts", "label": "OSM last edit", "description": "", "emoji": "", "unit": null}
			]}}}
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-agent", testLogger())
	meta, err := client.IndicatorMetadata(context.Background())
	require.NoError(t, err)

	require.Len(t, meta, 2)
	assert.Equal(t, "people", meta["population"].Unit)
	assert.Equal(t, "👥", meta["population"].Emoji)
	assert.Equal(t, "", meta["avgmax_ts"].Unit)
}
