package app

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"

	"github.com/konturio/insights-llm-api/internal"
	apperrors "github.com/konturio/insights-llm-api/internal/errors"
	"github.com/konturio/insights-llm-api/ports"
)

// SearchService resolves location queries through the geocoder, caching
// provider responses by request path.
type SearchService struct {
	geocoder ports.Geocoder
	cache    ports.ComputeCache
	log      *internal.Logger
}

// NewSearchService creates a search service.
func NewSearchService(geocoder ports.Geocoder, cache ports.ComputeCache, log *internal.Logger) *SearchService {
	return &SearchService{geocoder: geocoder, cache: cache, log: log}
}

// Locations geocodes a free-text query and returns the provider's
// GeoJSON feature collection. lang may be empty.
func (s *SearchService) Locations(ctx context.Context, query, lang string) (ports.GeoJSON, error) {
	path := s.geocoder.Query(query, lang)
	sum := md5.Sum([]byte(path))
	hash := hex.EncodeToString(sum[:])

	cached, err := computeOnce(ctx, s.cache, "nominatim", hash, path, "", s.log,
		func(ctx context.Context) (string, error) {
			raw, err := s.geocoder.Search(ctx, path)
			if err != nil {
				return "", err
			}
			return string(raw), nil
		})
	if err != nil {
		return nil, err
	}

	var result ports.GeoJSON
	if err := json.Unmarshal([]byte(cached), &result); err != nil {
		return nil, apperrors.Wrap(err, "decode geocoder response")
	}
	return result, nil
}
