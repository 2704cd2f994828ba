package app

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/konturio/insights-llm-api/domain/analytics"
	"github.com/konturio/insights-llm-api/ports"
)

// stubInsights serves canned payloads keyed by area name and records which
// areas were fetched.
type stubInsights struct {
	mu      sync.Mutex
	fetched []ports.GeoJSON
	groups  func(area ports.GeoJSON) []analytics.AxisGroup
	meta    analytics.IndicatorMetadata
}

func (s *stubInsights) AdvancedAnalytics(ctx context.Context, area ports.GeoJSON) ([]analytics.AxisGroup, error) {
	s.mu.Lock()
	s.fetched = append(s.fetched, area)
	s.mu.Unlock()
	return s.groups(area), nil
}

func (s *stubInsights) IndicatorMetadata(ctx context.Context) (analytics.IndicatorMetadata, error) {
	return s.meta, nil
}

func carAxisGroups(mean, stddev float64) []analytics.AxisGroup {
	return []analytics.AxisGroup{{
		Numerator:        "pop_without_car",
		Denominator:      "population",
		NumeratorLabel:   "Population without a car",
		DenominatorLabel: "Population",
		Records: []analytics.CalculationRecord{
			{Calculation: analytics.CalcMean, Value: &mean, Quality: 0.5},
			{Calculation: analytics.CalcStdDev, Value: &stddev, Quality: 0.5},
		},
	}}
}

func TestAreaAnalyticsAgainstWorld(t *testing.T) {
	selectedArea := ports.GeoJSON{"type": "FeatureCollection", "features": []any{}}
	stub := &stubInsights{
		groups: func(area ports.GeoJSON) []analytics.AxisGroup {
			if area == nil {
				return carAxisGroups(0.01, 0.07) // world baseline
			}
			return carAxisGroups(0.32, 0.05)
		},
		meta: analytics.IndicatorMetadata{
			"pop_without_car": {Unit: "people", Label: "Population without a car", Description: "Share of people without a car"},
			"population":      {Unit: "people", Label: "Population"},
		},
	}
	service := NewAnalyticsService(stub, 30, testLogger())

	result, err := service.AreaAnalytics(context.Background(), selectedArea, nil)
	require.NoError(t, err)

	// mean and stddev share the axis, so they merge into one sentence
	require.Len(t, result.Sentences, 1)
	assert.Contains(t, result.Sentences[0], "Population without a car over Population")
	assert.Contains(t, result.Sentences[0], "sigma")
	assert.Contains(t, result.Descriptions, "Here are descriptions for indicators:")
	assert.Contains(t, result.Descriptions, "Share of people without a car")

	// selected area and world baseline, no reference fetch
	assert.Len(t, stub.fetched, 2)
}

func TestAreaAnalyticsFetchesReferenceArea(t *testing.T) {
	stub := &stubInsights{
		groups: func(area ports.GeoJSON) []analytics.AxisGroup {
			return carAxisGroups(0.1, 0.05)
		},
		meta: analytics.IndicatorMetadata{
			"pop_without_car": {Unit: "people", Label: "Population without a car"},
			"population":      {Unit: "people", Label: "Population"},
		},
	}
	service := NewAnalyticsService(stub, 30, testLogger())

	selected := ports.GeoJSON{"type": "Feature", "id": "selected"}
	reference := ports.GeoJSON{"type": "Feature", "id": "reference"}
	result, err := service.AreaAnalytics(context.Background(), selected, reference)
	require.NoError(t, err)

	assert.Len(t, stub.fetched, 3)
	require.NotEmpty(t, result.Sentences)
	assert.Contains(t, result.Sentences[0], "reference_area")
}

func TestAreaAnalyticsTruncatesSentences(t *testing.T) {
	stub := &stubInsights{
		groups: func(area ports.GeoJSON) []analytics.AxisGroup {
			mean := 1.0
			return []analytics.AxisGroup{
				{
					Numerator: "a", Denominator: "one",
					NumeratorLabel: "Indicator A", DenominatorLabel: "1",
					Records: []analytics.CalculationRecord{{Calculation: analytics.CalcMean, Value: &mean}},
				},
				{
					Numerator: "b", Denominator: "one",
					NumeratorLabel: "Indicator B", DenominatorLabel: "1",
					Records: []analytics.CalculationRecord{{Calculation: analytics.CalcMean, Value: &mean}},
				},
			}
		},
		meta: analytics.IndicatorMetadata{
			"a": {Label: "Indicator A"},
			"b": {Label: "Indicator B"},
		},
	}
	service := NewAnalyticsService(stub, 1, testLogger())

	result, err := service.AreaAnalytics(context.Background(), ports.GeoJSON{"type": "Feature"}, nil)
	require.NoError(t, err)
	assert.Len(t, result.Sentences, 1)
}
