package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/insights")
	t.Setenv("INSIGHTS_API_URL", "https://insights.example.com/graphql")
	t.Setenv("USER_PROFILE_API_URL", "https://ups.example.com")
	t.Setenv("OPENAI_API_KEY", "sk-test")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "insights-llm-api", cfg.Insights.UserAgent)
	assert.Equal(t, "gpt-4o", cfg.AI.Model)
	assert.Equal(t, 40*time.Second, cfg.AI.Timeout)
	assert.Equal(t, "https://nominatim.openstreetmap.org", cfg.Geocoder.URL)
	assert.Equal(t, 30, cfg.Analytics.MaxSentences)
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")
	t.Setenv("OPENAI_TIMEOUT", "90s")
	t.Setenv("MAX_ANALYTICS_SENTENCES", "10")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.Model)
	assert.Equal(t, 90*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 10, cfg.Analytics.MaxSentences)
}

func TestLoadRequiredVariables(t *testing.T) {
	required := []string{"DATABASE_URL", "INSIGHTS_API_URL", "USER_PROFILE_API_URL", "OPENAI_API_KEY"}
	for _, name := range required {
		t.Run(name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(name, "")

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadIgnoresMalformedOptionalValues(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MAX_ANALYTICS_SENTENCES", "many")
	t.Setenv("OPENAI_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Analytics.MaxSentences)
	assert.Equal(t, 40*time.Second, cfg.AI.Timeout)
}
