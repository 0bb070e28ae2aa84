package config_test

import (
	"testing"
	"time"

	"github.com/PalashJyoti/mindsight-client/internal/config"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	t.Setenv("MINDSIGHT_API_BASE_URL", "")
	t.Setenv("MINDSIGHT_TIMEOUT", "")
	t.Setenv("MINDSIGHT_MAX_RETRIES", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")

	c := config.New()
	require.Equal(t, "http://127.0.0.1:8080", c.GetBaseURL())
	require.Equal(t, 30*time.Second, c.GetRequestTimeout())
	require.Equal(t, 3, c.GetMaxRetries())
	require.Equal(t, "application/json", c.GetContentType())
	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, "debug", c.GetLogLevel())
	require.Equal(t, 10*time.Second, c.GetSignupRedirectDelay())
}

func TestConfig_Overrides(t *testing.T) {
	t.Setenv("MINDSIGHT_API_BASE_URL", "https://api.example.com/")
	t.Setenv("MINDSIGHT_TIMEOUT", "5s")
	t.Setenv("MINDSIGHT_MAX_RETRIES", "5")
	t.Setenv("MINDSIGHT_SESSION_FILE", "/tmp/session.json")
	t.Setenv("ENV", "PROD")
	t.Setenv("LOG_LEVEL", "")

	c := config.New()
	require.Equal(t, "https://api.example.com", c.GetBaseURL())
	require.Equal(t, 5*time.Second, c.GetRequestTimeout())
	require.Equal(t, 5, c.GetMaxRetries())
	require.Equal(t, "/tmp/session.json", c.GetSessionFile())
	require.Equal(t, "info", c.GetLogLevel())
}

func TestConfig_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("MINDSIGHT_TIMEOUT", "soon")
	t.Setenv("MINDSIGHT_MAX_RETRIES", "many")

	c := config.New()
	require.Equal(t, 30*time.Second, c.GetRequestTimeout())
	require.Equal(t, 3, c.GetMaxRetries())
}
