package main

import (
	"context"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/konturio/insights-llm-api/adapters/geocoder"
	"github.com/konturio/insights-llm-api/adapters/insights"
	"github.com/konturio/insights-llm-api/adapters/llm"
	"github.com/konturio/insights-llm-api/adapters/postgres"
	"github.com/konturio/insights-llm-api/adapters/userprofile"
	"github.com/konturio/insights-llm-api/app"
	"github.com/konturio/insights-llm-api/internal"
	"github.com/konturio/insights-llm-api/internal/api"
	"github.com/konturio/insights-llm-api/internal/config"
	"github.com/konturio/insights-llm-api/internal/migration"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logger := internal.NewDefaultLogger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	if err := migration.NewRunner().Run(context.Background(), db); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	insightsClient := insights.NewClient(cfg.Insights.URL, cfg.Insights.UserAgent, logger)
	profileClient := userprofile.NewClient(cfg.UserProfile.URL, cfg.Insights.UserAgent, logger)
	geocoderClient := geocoder.NewClient(cfg.Geocoder.URL, cfg.Insights.UserAgent)

	llmClient, err := llm.NewClient(llm.Config{
		APIKey:       cfg.AI.APIKey,
		BaseURL:      cfg.AI.BaseURL,
		Model:        cfg.AI.Model,
		Instructions: cfg.AI.Instructions,
		Timeout:      cfg.AI.Timeout,
	})
	if err != nil {
		log.Fatalf("openai client setup failed: %v", err)
	}

	analyticsService := app.NewAnalyticsService(insightsClient, cfg.Analytics.MaxSentences, logger)
	commentaryService := app.NewCommentaryService(llmClient, postgres.NewCommentaryCache(db), cfg.AI.Instructions, logger)
	searchService := app.NewSearchService(geocoderClient, postgres.NewGeocoderCache(db), logger)

	server := api.NewServer(api.Config{
		Analytics:  analyticsService,
		Commentary: commentaryService,
		Search:     searchService,
		Profiles:   profileClient,
		Choices:    postgres.NewSearchHistoryRepository(db),
		Logger:     logger,
	})

	if err := server.Start(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
