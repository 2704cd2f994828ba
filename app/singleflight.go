package app

import (
	"context"
	"errors"
	"time"

	"github.com/konturio/insights-llm-api/internal"
	apperrors "github.com/konturio/insights-llm-api/internal/errors"
	"github.com/konturio/insights-llm-api/internal/metrics"
	"github.com/konturio/insights-llm-api/ports"
)

// claimPollInterval is how long a caller that lost the claim race waits
// before re-checking for the winner's result. Overridden in tests.
var claimPollInterval = 500 * time.Millisecond

// computeOnce returns the cached response for a fingerprint, computing and
// caching it when absent. Concurrent callers with the same fingerprint
// collapse into a single computation: one claims the entry and computes,
// the rest poll until the committed result appears. A failed computation
// removes the pending entry, so the fingerprint stays retryable. Waiting is
// bounded by ctx and by the cache's stale-claim takeover, which lets a new
// caller reclaim a fingerprint whose owner died.
func computeOnce(
	ctx context.Context,
	cache ports.ComputeCache,
	cacheName string,
	hash, request, model string,
	log *internal.Logger,
	compute func(context.Context) (string, error),
) (string, error) {
	raced := false
	for {
		response, found, err := cache.Lookup(ctx, hash, model)
		if err != nil {
			return "", &apperrors.AppError{Code: apperrors.CodeDatabaseError, Message: "cache lookup", Cause: err}
		}
		if found {
			outcome := "hit"
			if raced {
				outcome = "raced"
			}
			metrics.CacheOutcomes.WithLabelValues(cacheName, outcome).Inc()
			log.Debug("%s cache %s for %s", cacheName, outcome, hash)
			return response, nil
		}

		claim, err := cache.Claim(ctx, hash, request, model)
		if errors.Is(err, ports.ErrFingerprintClaimed) {
			// another caller owns this fingerprint; wait for its result
			raced = true
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(claimPollInterval):
			}
			continue
		}
		if err != nil {
			return "", &apperrors.AppError{Code: apperrors.CodeDatabaseError, Message: "cache claim", Cause: err}
		}

		response, err = compute(ctx)
		if err != nil {
			metrics.CacheOutcomes.WithLabelValues(cacheName, "aborted").Inc()
			if abortErr := claim.Abort(); abortErr != nil {
				log.Error("abort %s claim for %s: %v", cacheName, hash, abortErr)
			}
			return "", err
		}
		if err := claim.Fulfill(ctx, response); err != nil {
			return "", &apperrors.AppError{Code: apperrors.CodeDatabaseError, Message: "cache fulfill", Cause: err}
		}
		metrics.CacheOutcomes.WithLabelValues(cacheName, "computed").Inc()
		log.Debug("%s cache computed for %s", cacheName, hash)
		return response, nil
	}
}
