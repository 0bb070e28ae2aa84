package fakebackend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type contextKey string

const contextKeyUsername contextKey = "username"

// createToken signs a session token carrying the claims the client decodes.
func (b *Backend) createToken(a *account, ttl time.Duration) (string, error) {
	claims := jwtlib.MapClaims{
		"sub":  fmt.Sprintf("%d", a.ID),
		"name": a.Name,
		"role": a.Role,
		"iat":  NowTimeFunc().Unix(),
		"exp":  NowTimeFunc().Add(ttl).Unix(),
		"jti":  uuid.New().String(),
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(b.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return signed, nil
}

// TokenFor issues a session token for an existing user, skipping the login ceremony.
// A negative ttl yields an already expired token.
func (b *Backend) TokenFor(username string, ttl time.Duration) (string, error) {
	b.mu.Lock()
	a, ok := b.accounts[username]
	b.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("unknown user %q", username)
	}
	return b.createToken(a, ttl)
}

// requireAuth mirrors the backend's bearer check and its error texts.
func (b *Backend) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "Missing Authorization Header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
			writeError(w, http.StatusUnauthorized, "Bad Authorization header")
			return
		}

		claims := jwtlib.MapClaims{}
		token, err := jwtlib.ParseWithClaims(parts[1], claims, func(t *jwtlib.Token) (any, error) {
			return b.secret, nil
		}, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}), jwtlib.WithTimeFunc(NowTimeFunc))
		switch {
		case errors.Is(err, jwtlib.ErrTokenExpired):
			writeError(w, http.StatusUnauthorized, "Token has expired")
			return
		case err != nil || !token.Valid:
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		jti, _ := claims["jti"].(string)
		b.mu.Lock()
		revoked := b.revoked[jti]
		username := ""
		for _, a := range b.accounts {
			if fmt.Sprintf("%d", a.ID) == claims["sub"] {
				username = a.Username
			}
		}
		b.mu.Unlock()

		if revoked {
			writeError(w, http.StatusUnauthorized, "Token has been revoked")
			return
		}
		if username == "" {
			writeError(w, http.StatusUnauthorized, "User no longer exists")
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyUsername, username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (b *Backend) revokeRequestToken(r *http.Request) {
	raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	token, _, err := jwtlib.NewParser().ParseUnverified(raw, jwtlib.MapClaims{})
	if err != nil {
		return
	}
	if claims, ok := token.Claims.(jwtlib.MapClaims); ok {
		if jti, ok := claims["jti"].(string); ok {
			b.mu.Lock()
			b.revoked[jti] = true
			b.mu.Unlock()
		}
	}
}
