package apiclient

import "net/http"

// Doer sends a single HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DoerFunc adapts a function to a Doer
type DoerFunc func(req *http.Request) (*http.Response, error)

func (f DoerFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Middleware decorates a Doer with behaviour that runs on every request and response.
type Middleware func(Doer) Doer

// Chain wraps base with mw. The first middleware is the outermost: it sees the
// request first and the response last.
func Chain(base Doer, mw ...Middleware) Doer {
	chained := base
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chained = mw[i](chained)
	}
	return chained
}
