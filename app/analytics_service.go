package app

import (
	"context"
	"strings"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"github.com/konturio/insights-llm-api/domain/analytics"
	"github.com/konturio/insights-llm-api/internal"
	"github.com/konturio/insights-llm-api/ports"
)

// AreaAnalytics is the narrative material derived for a selected area:
// ranked comparison sentences plus the descriptions of the indicators
// they mention.
type AreaAnalytics struct {
	Sentences    []string
	Descriptions string
}

// AnalyticsService turns raw insights-API statistics into ranked
// deviation sentences.
type AnalyticsService struct {
	insights     ports.InsightsProvider
	maxSentences int
	log          *internal.Logger
}

// NewAnalyticsService creates an analytics service.
func NewAnalyticsService(insights ports.InsightsProvider, maxSentences int, log *internal.Logger) *AnalyticsService {
	return &AnalyticsService{
		insights:     insights,
		maxSentences: maxSentences,
		log:          log,
	}
}

// AreaAnalytics fetches statistics for the selected area, the world
// baseline and, when present, the user's reference area, then scores,
// ranks and renders them. referenceArea may be nil.
func (s *AnalyticsService) AreaAnalytics(ctx context.Context, selectedArea, referenceArea ports.GeoJSON) (*AreaAnalytics, error) {
	var (
		selectedGroups  []analytics.AxisGroup
		referenceGroups []analytics.AxisGroup
		worldGroups     []analytics.AxisGroup
		meta            analytics.IndicatorMetadata
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() (err error) {
		selectedGroups, err = s.insights.AdvancedAnalytics(groupCtx, selectedArea)
		return err
	})
	group.Go(func() (err error) {
		worldGroups, err = s.insights.AdvancedAnalytics(groupCtx, nil)
		return err
	})
	group.Go(func() (err error) {
		meta, err = s.insights.IndicatorMetadata(groupCtx)
		return err
	})
	if referenceArea != nil {
		group.Go(func() (err error) {
			referenceGroups, err = s.insights.AdvancedAnalytics(groupCtx, referenceArea)
			return err
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	selected := analytics.Flatten(selectedGroups, meta)
	world := analytics.Flatten(worldGroups, meta)
	var reference analytics.ObservationSet
	if referenceArea != nil {
		reference = analytics.Flatten(referenceGroups, meta)
	}

	scored := analytics.Score(selected, world, reference)
	ranked := analytics.Rank(scored, s.maxSentences)
	s.logSigmaSummary(ranked)

	return &AreaAnalytics{
		Sentences:    analytics.Sentences(ranked, world, reference),
		Descriptions: indicatorDescriptions(ranked, meta),
	}, nil
}

// logSigmaSummary reports how extreme the selected ranking is, for
// eyeballing prompt quality in the logs.
func (s *AnalyticsService) logSigmaSummary(ranked []analytics.Observation) {
	if len(ranked) == 0 {
		s.log.Info("no observations survived flattening")
		return
	}
	sigmas := make([]float64, 0, len(ranked))
	for _, obs := range ranked {
		sigmas = append(sigmas, obs.WorldSigma)
	}
	mean, _ := stats.Mean(sigmas)
	max, _ := stats.Max(sigmas)
	s.log.Debug("ranked %d observations, mean sigma %.2f, max sigma %.2f (tail prob %.2e)",
		len(ranked), mean, max, analytics.TailProbability(max))
}

// indicatorDescriptions collects descriptions for the indicators the
// ranked sentences mention, in rank order, deduplicated by label.
func indicatorDescriptions(ranked []analytics.Observation, meta analytics.IndicatorMetadata) string {
	seen := make(map[string]struct{})
	var parts []string
	for _, obs := range ranked {
		for _, id := range []string{obs.Numerator, obs.Denominator} {
			entry, ok := meta[id]
			if !ok || entry.Description == "" {
				continue
			}
			if _, dup := seen[entry.Label]; dup {
				continue
			}
			seen[entry.Label] = struct{}{}
			parts = append(parts, entry.Label+" - "+entry.Description)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "Here are descriptions for indicators: " + strings.Join(parts, ";\n")
}
