package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/promptana/promptana/internal/domain/user"
)

type authUserCtxKey struct{}

// TokenValidator verifies an access token and returns its claims.
type TokenValidator interface {
	ValidateAccessToken(token string) (*user.Claims, error)
}

// publicPaths are exempt from authentication.
var publicPaths = map[string]bool{
	"/health":              true,
	"/api/v1/auth/login":   true,
	"/api/v1/auth/signup":  true,
	"/api/v1/auth/refresh": true,
}

// Auth returns middleware that resolves the session token to a user id.
// Tokens are accepted from the Authorization header (Bearer) or the
// "session" cookie. Absence or invalidity yields 401 UNAUTHORIZED.
func Auth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			token := bearerToken(r)
			if token == "" {
				if c, err := r.Cookie("session"); err == nil {
					token = c.Value
				}
			}
			if token == "" {
				writeUnauthorized(w, "authorization required")
				return
			}

			claims, err := validator.ValidateAccessToken(token)
			if err != nil {
				writeUnauthorized(w, "invalid or expired session")
				return
			}

			ctx := context.WithValue(r.Context(), authUserCtxKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the authenticated claims from the request context.
func ClaimsFromContext(ctx context.Context) *user.Claims {
	c, _ := ctx.Value(authUserCtxKey{}).(*user.Claims)
	return c
}

// UserIDFromContext returns the authenticated user id, or "" when absent.
func UserIDFromContext(ctx context.Context) string {
	if c := ClaimsFromContext(ctx); c != nil {
		return c.UserID
	}
	return ""
}

// WithClaims injects claims into a context. Exported for handler tests.
func WithClaims(ctx context.Context, c *user.Claims) context.Context {
	return context.WithValue(ctx, authUserCtxKey{}, c)
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	token := strings.TrimPrefix(h, "Bearer ")
	if token == h {
		return ""
	}
	return token
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"` + msg + `"}}`))
}
