package ports

import (
	"context"

	"github.com/konturio/insights-llm-api/domain/analytics"
)

// InsightsProvider fetches indicator statistics from the upstream insights
// service. The engine does not construct or validate the underlying query.
type InsightsProvider interface {
	// AdvancedAnalytics returns the axis groups for an area. A nil or empty
	// area means the world baseline.
	AdvancedAnalytics(ctx context.Context, area GeoJSON) ([]analytics.AxisGroup, error)

	// IndicatorMetadata returns the published-indicator lookup used to
	// enrich records and decide inclusion.
	IndicatorMetadata(ctx context.Context) (analytics.IndicatorMetadata, error)
}
