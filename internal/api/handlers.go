package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/google/uuid"

	"github.com/konturio/insights-llm-api/app"
	"github.com/konturio/insights-llm-api/internal/errors"
	"github.com/konturio/insights-llm-api/ports"
)

type llmAnalyticsRequest struct {
	AppID    string        `json:"appId"`
	Features ports.GeoJSON `json:"features"`
}

type searchClickRequest struct {
	AppID               string          `json:"appId"`
	Query               string          `json:"query"`
	SearchResults       json.RawMessage `json:"searchResults"`
	SelectedFeature     json.RawMessage `json:"selectedFeature"`
	SelectedFeatureType string          `json:"selectedFeatureType"`
}

// handleLLMAnalytics serves POST /llm-analytics: it derives deviation
// sentences for the posted area and returns model commentary about them.
func (s *Server) handleLLMAnalytics(w http.ResponseWriter, r *http.Request) {
	var req llmAnalyticsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, errors.InvalidInput("malformed request"))
		return
	}
	if req.AppID == "" {
		s.respondError(w, errors.InvalidInput("missing appId"))
		return
	}
	if _, err := uuid.Parse(req.AppID); err != nil {
		s.respondError(w, errors.InvalidInput("appId is not a valid UUID"))
		return
	}
	if len(req.Features) == 0 {
		s.respondError(w, errors.InvalidInput("missing features"))
		return
	}

	userData, err := s.profiles.UserData(r.Context(), req.AppID, r.Header.Get("Authorization"), true)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if !userData.FeatureEnabled("llm_analytics") {
		s.respondError(w, errors.Forbidden("llm_analytics is not enabled for the user"))
		return
	}

	bio := userData.Bio()
	referenceArea := userData.ReferenceAreaGeometry()
	s.log.Debug("user bio: %s", bio)

	areaAnalytics, err := s.analytics.AreaAnalytics(r.Context(), req.Features, referenceArea)
	if err != nil {
		s.respondError(w, err)
		return
	}

	lang := r.Header.Get("User-Language")
	prompt := app.AnalyticsPrompt(
		areaAnalytics.Sentences, areaAnalytics.Descriptions,
		bio, lang, req.Features, referenceArea)

	commentary, err := s.commentary.CachedCommentary(r.Context(), prompt)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if r.URL.Query().Get("format") == "html" {
		commentary = string(markdown.ToHTML([]byte(commentary), nil, nil))
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"data": commentary})
}

// handleSearch serves GET /search: it geocodes the query when search is
// enabled for the app and returns an empty object otherwise.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	appID := r.URL.Query().Get("appId")
	if appID == "" {
		s.respondError(w, errors.InvalidInput("missing appId"))
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		s.respondError(w, errors.InvalidInput("missing query"))
		return
	}

	userData, err := s.profiles.UserData(r.Context(), appID, r.Header.Get("Authorization"), false)
	if err != nil {
		s.respondError(w, err)
		return
	}

	results := map[string]any{}
	if userData.FeatureEnabled("search_locations") {
		locations, err := s.search.Locations(r.Context(), query, r.Header.Get("User-Language"))
		if err != nil {
			s.respondError(w, err)
			return
		}
		// lift each feature's bbox into its properties for the frontend
		if features, ok := locations["features"].([]any); ok {
			for _, item := range features {
				feature, ok := item.(map[string]any)
				if !ok {
					continue
				}
				props, ok := feature["properties"].(map[string]any)
				if !ok {
					props = map[string]any{}
					feature["properties"] = props
				}
				props["bbox"] = feature["bbox"]
			}
		}
		results["locations"] = locations
	}
	s.respondJSON(w, http.StatusOK, results)
}

// handleSearchClick serves POST /search/click: it records which search
// result the user picked.
func (s *Server) handleSearchClick(w http.ResponseWriter, r *http.Request) {
	var req searchClickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, errors.InvalidInput("malformed request"))
		return
	}
	if req.AppID == "" {
		s.respondError(w, errors.InvalidInput("missing appId"))
		return
	}

	userData, err := s.profiles.UserData(r.Context(), req.AppID, r.Header.Get("Authorization"), false)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if !userData.FeatureEnabled("search_bar") {
		s.respondError(w, errors.Forbidden("search is not enabled for the user"))
		return
	}

	query := strings.TrimSpace(req.Query)
	switch {
	case query == "":
		s.respondError(w, errors.InvalidInput("missing query"))
		return
	case len(req.SearchResults) == 0:
		s.respondError(w, errors.InvalidInput("missing searchResults"))
		return
	case len(req.SelectedFeature) == 0:
		s.respondError(w, errors.InvalidInput("missing selectedFeature"))
		return
	case req.SelectedFeatureType == "":
		s.respondError(w, errors.InvalidInput("missing selectedFeatureType"))
		return
	}

	choice := &ports.SearchChoice{
		AppID:               req.AppID,
		Query:               query,
		SearchResults:       req.SearchResults,
		SelectedFeature:     req.SelectedFeature,
		SelectedFeatureType: req.SelectedFeatureType,
	}
	if err := s.choices.RecordChoice(r.Context(), choice); err != nil {
		s.respondError(w, err)
		return
	}
	s.log.Debug("saved user choice for query = %s", query)
	s.respondJSON(w, http.StatusOK, map[string]any{})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("encode response: %v", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed: %v", err)
	} else {
		s.log.Warn("request rejected: %v", err)
	}
	s.respondJSON(w, status, map[string]any{"detail": err.Error()})
}
