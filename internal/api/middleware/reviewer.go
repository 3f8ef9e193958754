package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/apexfab/roofmate/internal/api"
)

type contextKey string

const ReviewerKey contextKey = "reviewer"

// ReviewerAuth gates review endpoints behind a static bearer token. The
// reviewer identity comes from the X-Reviewer header once the token
// checks out. An empty configured token disables the endpoints entirely.
func ReviewerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				api.Error(w, http.StatusForbidden, "review endpoints are not configured")
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				api.Error(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				api.Error(w, http.StatusUnauthorized, "invalid authorization format")
				return
			}

			presented := strings.TrimPrefix(authHeader, "Bearer ")
			if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				api.Error(w, http.StatusUnauthorized, "invalid reviewer token")
				return
			}

			reviewer := r.Header.Get("X-Reviewer")
			if reviewer == "" {
				api.Error(w, http.StatusBadRequest, "missing X-Reviewer header")
				return
			}

			ctx := context.WithValue(r.Context(), ReviewerKey, reviewer)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetReviewer returns the authenticated reviewer identity from context.
func GetReviewer(ctx context.Context) string {
	reviewer, _ := ctx.Value(ReviewerKey).(string)
	return reviewer
}
