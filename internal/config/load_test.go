package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "an-environment-secret-of-sufficient-len"

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MNEMO_DATABASE_URL", "postgres://localhost:5432/mnemo_test")
	t.Setenv("MNEMO_AUTH_JWT_SECRET", testSecret)
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, 60, cfg.Auth.TokenLifetimeMinutes)
	assert.Equal(t, 10, cfg.Study.NewCardFallback)
	assert.Equal(t, 25, cfg.Study.DefaultBreakIntervalMinutes)
	assert.Equal(t, 30, cfg.Study.AnalyticsWindowDays)
}

func TestLoadEnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MNEMO_SERVER_PORT", "9090")
	t.Setenv("MNEMO_SERVER_LOG_LEVEL", "debug")
	t.Setenv("MNEMO_STUDY_NEW_CARD_FALLBACK", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, 5, cfg.Study.NewCardFallback)
	assert.Equal(t, testSecret, cfg.Auth.JWTSecret)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("MNEMO_AUTH_JWT_SECRET", testSecret)
	t.Setenv("MNEMO_DATABASE_URL", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsShortJWTSecret(t *testing.T) {
	t.Setenv("MNEMO_DATABASE_URL", "postgres://localhost:5432/mnemo_test")
	t.Setenv("MNEMO_AUTH_JWT_SECRET", "too-short")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsInvalidLogLevel(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MNEMO_SERVER_LOG_LEVEL", "verbose")

	_, err := Load()
	assert.Error(t, err)
}
