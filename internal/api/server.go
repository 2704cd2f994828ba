package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/konturio/insights-llm-api/app"
	"github.com/konturio/insights-llm-api/internal"
	"github.com/konturio/insights-llm-api/internal/metrics"
	"github.com/konturio/insights-llm-api/ports"
)

// AnalyticsService derives ranked deviation sentences for an area.
type AnalyticsService interface {
	AreaAnalytics(ctx context.Context, selectedArea, referenceArea ports.GeoJSON) (*app.AreaAnalytics, error)
}

// CommentaryService produces cached LLM commentary for a prompt.
type CommentaryService interface {
	CachedCommentary(ctx context.Context, prompt string) (string, error)
}

// SearchService geocodes free-text location queries.
type SearchService interface {
	Locations(ctx context.Context, query, lang string) (ports.GeoJSON, error)
}

// Server is the HTTP front of the service.
type Server struct {
	router     *chi.Mux
	analytics  AnalyticsService
	commentary CommentaryService
	search     SearchService
	profiles   ports.UserProfileProvider
	choices    ports.SearchChoiceRecorder
	log        *internal.Logger
}

// Config wires the server's collaborators.
type Config struct {
	Analytics  AnalyticsService
	Commentary CommentaryService
	Search     SearchService
	Profiles   ports.UserProfileProvider
	Choices    ports.SearchChoiceRecorder
	Logger     *internal.Logger
}

// NewServer creates the HTTP server and mounts its routes.
func NewServer(config Config) *Server {
	s := &Server{
		router:     chi.NewRouter(),
		analytics:  config.Analytics,
		commentary: config.Commentary,
		search:     config.Search,
		profiles:   config.Profiles,
		choices:    config.Choices,
		log:        config.Logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(requestMetrics)
}

func (s *Server) setupRoutes() {
	s.router.Post("/llm-analytics", s.handleLLMAnalytics)
	s.router.Get("/search", s.handleSearch)
	s.router.Post("/search/click", s.handleSearchClick)
	s.router.Get("/health", s.handleHealth)
	s.router.Handle("/metrics", metrics.Handler())
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the server on the given address until it fails.
func (s *Server) Start(addr string) error {
	s.log.Info("listening on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

// requestMetrics counts served requests by chi route pattern and status.
func requestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(ww.Status())).Inc()
	})
}
