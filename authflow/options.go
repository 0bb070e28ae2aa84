package authflow

import (
	"github.com/PalashJyoti/mindsight-client/apiclient"
	"github.com/PalashJyoti/mindsight-client/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type options struct {
	scheduler Scheduler
	navigator apiclient.Navigator
	flow      config.FlowConfig
	logger    zerolog.Logger
}

// Option configures a flow at construction
type Option func(*options)

func WithScheduler(s Scheduler) Option {
	return func(o *options) {
		o.scheduler = s
	}
}

// WithNavigator overrides the client's navigator for this flow
func WithNavigator(nav apiclient.Navigator) Option {
	return func(o *options) {
		o.navigator = nav
	}
}

// WithFlowConfig sets routes and redirect delays
func WithFlowConfig(cfg config.FlowConfig) Option {
	return func(o *options) {
		o.flow = cfg
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func newOptions(client *apiclient.Client, opts []Option) options {
	o := options{
		scheduler: RealScheduler(),
		navigator: client.Navigator(),
		flow:      config.Flow{},
		logger:    log.Logger,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
