// Package middleware holds the HTTP middleware shared across routes:
// bearer-token authentication, request logging and Prometheus metrics.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Niklauzi/lyte/internal/auth"
	"github.com/Niklauzi/lyte/internal/models"
)

type contextKey int

const userKey contextKey = iota

// UserFrom returns the authenticated user stored by RequireUser or
// OptionalUser, if any.
func UserFrom(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok
}

// WithUser returns ctx carrying user. Exposed for handler tests.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// RequireUser rejects requests without a valid bearer session and puts the
// resolved user into the request context.
func RequireUser(sessions *auth.Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := userFromRequest(r, sessions)
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// OptionalUser resolves the bearer token when present but lets anonymous
// requests through untouched. Read endpoints use it so viewer-specific
// reaction flags can be filled in for logged-in readers.
func OptionalUser(sessions *auth.Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user, err := userFromRequest(r, sessions); err == nil {
				r = r.WithContext(WithUser(r.Context(), user))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin must run after RequireUser.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFrom(r.Context())
		if !ok || !user.IsAdmin {
			http.Error(w, "admin access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func userFromRequest(r *http.Request, sessions *auth.Sessions) (*models.User, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return nil, auth.ErrSessionExpired
	}
	return sessions.UserByToken(r.Context(), strings.TrimSpace(token))
}
