package ports

import (
	"context"
	"encoding/json"
)

// Geocoder resolves free-text location queries against an external
// geocoding provider.
type Geocoder interface {
	// Query builds the provider request path for a search. The path doubles
	// as the cache fingerprint source, so it must be deterministic.
	Query(query, lang string) string

	// Search performs the request for a path previously built by Query and
	// returns the provider's raw GeoJSON response.
	Search(ctx context.Context, path string) (json.RawMessage, error)
}

// SearchChoiceRecorder persists which search result a user picked.
type SearchChoiceRecorder interface {
	RecordChoice(ctx context.Context, choice *SearchChoice) error
}

// SearchChoice is one recorded user selection from search results.
type SearchChoice struct {
	AppID               string
	Query               string
	SearchResults       json.RawMessage
	SelectedFeature     json.RawMessage
	SelectedFeatureType string
}
