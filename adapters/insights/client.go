package insights

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/konturio/insights-llm-api/domain/analytics"
	"github.com/konturio/insights-llm-api/internal"
	"github.com/konturio/insights-llm-api/internal/errors"
	"github.com/konturio/insights-llm-api/ports"
)

const indicatorsQuery = `
{
  polygonStatistic (polygonStatisticRequest: {polygon: "%s"})
  {
      bivariateStatistic{indicators{name, label, description, emoji, unit{longName}}}
  }
}
`

const advancedAnalyticsQuery = `
{
  polygonStatistic (polygonStatisticRequest: {polygon: "%s"})
  {
    analytics {
        advancedAnalytics {
            numerator,
            denominator,
            numeratorLabel,
            denominatorLabel,
            resolution,
            analytics {
                value,
                calculation,
                quality
            }
        }
    }
  }
}
`

// worldPolygon is the empty collection the insights API interprets as the
// whole world.
const worldPolygon = `{"type":"FeatureCollection","features":[]}`

// Client queries the insights API GraphQL endpoint.
type Client struct {
	url       string
	userAgent string
	http      *http.Client
	log       *internal.Logger
}

// NewClient creates an insights API client.
func NewClient(url, userAgent string, log *internal.Logger) *Client {
	return &Client{
		url:       url,
		userAgent: userAgent,
		http:      &http.Client{Timeout: 60 * time.Second},
		log:       log,
	}
}

// AdvancedAnalytics returns the per-axis calculation records for an area.
// A nil or empty area queries the world baseline.
func (c *Client) AdvancedAnalytics(ctx context.Context, area ports.GeoJSON) ([]analytics.AxisGroup, error) {
	raw, err := c.query(ctx, advancedAnalyticsQuery, area)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Data struct {
			PolygonStatistic struct {
				Analytics struct {
					AdvancedAnalytics []struct {
						Numerator        string `json:"numerator"`
						Denominator      string `json:"denominator"`
						NumeratorLabel   string `json:"numeratorLabel"`
						DenominatorLabel string `json:"denominatorLabel"`
						Resolution       int    `json:"resolution"`
						Analytics        []struct {
							Value       *float64 `json:"value"`
							Calculation string   `json:"calculation"`
							Quality     float64  `json:"quality"`
						} `json:"analytics"`
					} `json:"advancedAnalytics"`
				} `json:"analytics"`
			} `json:"polygonStatistic"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, errors.Upstream("insights-api", http.StatusBadRequest, err)
	}

	items := payload.Data.PolygonStatistic.Analytics.AdvancedAnalytics
	groups := make([]analytics.AxisGroup, 0, len(items))
	for _, item := range items {
		group := analytics.AxisGroup{
			Numerator:        item.Numerator,
			Denominator:      item.Denominator,
			NumeratorLabel:   item.NumeratorLabel,
			DenominatorLabel: item.DenominatorLabel,
			Resolution:       item.Resolution,
			Records:          make([]analytics.CalculationRecord, 0, len(item.Analytics)),
		}
		for _, rec := range item.Analytics {
			group.Records = append(group.Records, analytics.CalculationRecord{
				Calculation: rec.Calculation,
				Value:       rec.Value,
				Quality:     rec.Quality,
			})
		}
		groups = append(groups, group)
	}
	if len(groups) > 0 {
		// resolution is the same for all axes; log the first one for debug
		c.log.Debug("got analytics with resolution %d", groups[0].Resolution)
	}
	return groups, nil
}

// IndicatorMetadata returns the published-indicator lookup keyed by
// indicator id.
func (c *Client) IndicatorMetadata(ctx context.Context) (analytics.IndicatorMetadata, error) {
	raw, err := c.query(ctx, indicatorsQuery, nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Data struct {
			PolygonStatistic struct {
				BivariateStatistic struct {
					Indicators []struct {
						Name        string `json:"name"`
						Label       string `json:"label"`
						Description string `json:"description"`
						Emoji       string `json:"emoji"`
						Unit        *struct {
							LongName string `json:"longName"`
						} `json:"unit"`
					} `json:"indicators"`
				} `json:"bivariateStatistic"`
			} `json:"polygonStatistic"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, errors.Upstream("insights-api", http.StatusBadRequest, err)
	}

	meta := make(analytics.IndicatorMetadata)
	for _, indicator := range payload.Data.PolygonStatistic.BivariateStatistic.Indicators {
		unit := ""
		if indicator.Unit != nil {
			unit = indicator.Unit.LongName
		}
		meta[indicator.Name] = analytics.IndicatorMeta{
			Unit:        unit,
			Emoji:       indicator.Emoji,
			Label:       indicator.Label,
			Description: indicator.Description,
		}
	}
	c.log.Debug("got metadata for %d indicators", len(meta))
	return meta, nil
}

// query substitutes the area polygon into a GraphQL query template and
// posts it to the insights API.
func (c *Client) query(ctx context.Context, template string, area ports.GeoJSON) (json.RawMessage, error) {
	polygon := worldPolygon
	if len(area) > 0 {
		encoded, err := json.Marshal(area)
		if err != nil {
			return nil, errors.Wrap(err, "encode area geojson")
		}
		polygon = string(encoded)
	}
	// the polygon lands inside a double-quoted GraphQL string
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(polygon)
	query := fmt.Sprintf(template, escaped)

	body, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, errors.Wrap(err, "encode graphql request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "build insights-api request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Upstream("insights-api", http.StatusBadGateway, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Upstream("insights-api", http.StatusBadGateway, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Upstream("insights-api", resp.StatusCode, fmt.Errorf("%s", strings.TrimSpace(string(raw))))
	}

	var envelope struct {
		Errors json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, errors.Upstream("insights-api", http.StatusBadRequest, err)
	}
	if len(envelope.Errors) > 0 && string(envelope.Errors) != "null" {
		c.log.Error("error in insights-api response: %s", string(envelope.Errors))
		return nil, errors.Upstream("insights-api", http.StatusBadRequest, fmt.Errorf("graphql errors: %s", string(envelope.Errors)))
	}
	return raw, nil
}
