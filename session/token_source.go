package session

import (
	"golang.org/x/oauth2"
)

type storeTokenSource struct {
	store Store
}

// TokenSource exposes the stored session token as a bearer oauth2.Token.
// It returns a nil token, not an error, when no one is signed in.
func TokenSource(store Store) oauth2.TokenSource {
	return storeTokenSource{store: store}
}

func (s storeTokenSource) Token() (*oauth2.Token, error) {
	raw, err := s.store.Token()
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}
	return &oauth2.Token{AccessToken: raw, TokenType: "Bearer"}, nil
}
