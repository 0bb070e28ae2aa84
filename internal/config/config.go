package config

import "time"

type Config interface {
	EnvConfig
	ClientConfig
	FlowConfig
}

type EnvConfig interface {
	GetAppName() string
	GetBaseURL() string
	GetSessionFile() string
	GetRedisURL() string
	GetLogLevel() string
	GetEnv() string
}

type ClientConfig interface {
	GetRequestTimeout() time.Duration
	GetMaxRetries() int
	GetContentType() string
}

type FlowConfig interface {
	GetSignupRedirectDelay() time.Duration
	GetResetRedirectDelay() time.Duration
	GetLoginRoute() string
	GetDashboardRoute() string
}

type mainConfig struct {
	EnvVars
	Client
	Flow
}

func New() Config {
	return mainConfig{}
}
