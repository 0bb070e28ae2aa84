package apiclient

import "github.com/rs/zerolog/log"

// Navigator moves the user to another screen, e.g. back to "/login" after
// the session expired.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to a Navigator
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) {
	f(path)
}

type logNavigator struct{}

// LogNavigator only records the navigation; used when nothing can be redirected.
func LogNavigator() Navigator {
	return logNavigator{}
}

func (logNavigator) Navigate(path string) {
	log.Info().Str("path", path).Msg("Navigate")
}
