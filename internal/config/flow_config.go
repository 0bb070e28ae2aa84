package config

import "time"

type Flow struct{}

var _ FlowConfig = Flow{}

func (Flow) GetSignupRedirectDelay() time.Duration {
	return 10 * time.Second // Time to scan the enrolment QR code
}

func (Flow) GetResetRedirectDelay() time.Duration {
	return 2 * time.Second
}

func (Flow) GetLoginRoute() string {
	return "/login"
}

func (Flow) GetDashboardRoute() string {
	return "/dashboard"
}
