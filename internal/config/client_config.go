package config

import "time"

const (
	timeoutVar    = "MINDSIGHT_TIMEOUT"
	maxRetriesVar = "MINDSIGHT_MAX_RETRIES"
)

type Client struct{}

var _ ClientConfig = Client{}

func (Client) GetRequestTimeout() time.Duration {
	d, err := time.ParseDuration(GetEnv(timeoutVar, ""))
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

func (Client) GetMaxRetries() int {
	n := GetEnvInt(maxRetriesVar, 3)
	if n < 0 {
		return 0
	}
	return n
}

func (Client) GetContentType() string {
	return "application/json"
}
