package config

import (
	"os"
	"strconv"
	"time"

	"github.com/konturio/insights-llm-api/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Insights    InsightsConfig
	UserProfile UserProfileConfig
	AI          AIConfig
	Geocoder    GeocoderConfig
	Analytics   AnalyticsConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL string
}

// InsightsConfig holds insights API client settings
type InsightsConfig struct {
	URL       string
	UserAgent string
}

// UserProfileConfig holds user profile service client settings
type UserProfileConfig struct {
	URL string
}

// AIConfig holds LLM related settings
type AIConfig struct {
	APIKey       string
	BaseURL      string
	Model        string
	Instructions string
	Timeout      time.Duration
}

// GeocoderConfig holds geocoding proxy settings
type GeocoderConfig struct {
	URL string
}

// AnalyticsConfig holds narrative engine settings
type AnalyticsConfig struct {
	// MaxSentences bounds how many ranked observations get narrated.
	MaxSentences int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8000"),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Insights: InsightsConfig{
			URL:       os.Getenv("INSIGHTS_API_URL"),
			UserAgent: getEnvOrDefault("USER_AGENT", "insights-llm-api"),
		},
		UserProfile: UserProfileConfig{
			URL: os.Getenv("USER_PROFILE_API_URL"),
		},
		AI: AIConfig{
			APIKey:       os.Getenv("OPENAI_API_KEY"),
			BaseURL:      os.Getenv("OPENAI_BASE_URL"),
			Model:        getEnvOrDefault("OPENAI_MODEL", "gpt-4o"),
			Instructions: os.Getenv("OPENAI_ANALYTICS_INSTRUCTIONS"),
			Timeout:      getEnvDurationOrDefault("OPENAI_TIMEOUT", 40*time.Second),
		},
		Geocoder: GeocoderConfig{
			URL: getEnvOrDefault("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
		},
		Analytics: AnalyticsConfig{
			MaxSentences: getEnvIntOrDefault("MAX_ANALYTICS_SENTENCES", 30),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Database.URL == "" {
		return errors.ConfigInvalid("DATABASE_URL is required")
	}
	if config.Insights.URL == "" {
		return errors.ConfigInvalid("INSIGHTS_API_URL is required")
	}
	if config.UserProfile.URL == "" {
		return errors.ConfigInvalid("USER_PROFILE_API_URL is required")
	}
	if config.AI.APIKey == "" {
		return errors.ConfigInvalid("OPENAI_API_KEY is required")
	}
	return nil
}

// Helper functions for environment variable parsing

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
