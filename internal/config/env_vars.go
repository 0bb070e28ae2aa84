package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	appNameVar     = "APP_NAME"
	baseURLVar     = "MINDSIGHT_API_BASE_URL"
	sessionFileVar = "MINDSIGHT_SESSION_FILE"
	redisURLVar    = "MINDSIGHT_REDIS_URL"
	logLevelVar    = "LOG_LEVEL"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "MindSight")
}

// GetBaseURL returns the backend API root (e.g. "http://127.0.0.1:8080").
// Trailing slashes are trimmed so paths can be appended directly.
func (EnvVars) GetBaseURL() string {
	return strings.TrimRight(GetEnv(baseURLVar, "http://127.0.0.1:8080"), "/")
}

// GetSessionFile is where the token and cached user survive between CLI runs.
func (EnvVars) GetSessionFile() string {
	if f := os.Getenv(sessionFileVar); f != "" {
		return f
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".mindsight", "session.json")
	}
	return filepath.Join(home, ".mindsight", "session.json")
}

// GetRedisURL selects the redis session store when set.
func (EnvVars) GetRedisURL() string {
	return GetEnv(redisURLVar, "")
}

func (e EnvVars) GetLogLevel() string {
	if e.GetEnv() == "DEV" {
		return GetEnv(logLevelVar, "debug")
	}
	return GetEnv(logLevelVar, "info")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetEnvInt falls back to defaultValue when the variable is unset or not a number.
func GetEnvInt(envVar string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(envVar))
	if err != nil {
		return defaultValue
	}
	return value
}
