package middlewares

import (
	"context"
	"net/http"

	"github.com/marcopiovanello/yt-fetch/server/config"
	"github.com/marcopiovanello/yt-fetch/server/internal/auth"
)

type subjectKey struct{}

// Authenticated rejects requests without a valid session token.
func Authenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := auth.FromRequest(r)
		if err != nil {
			http.Error(w, "missing authorization", http.StatusUnauthorized)
			return
		}

		claims, err := auth.Parse([]byte(config.Instance().Authentication.JWTSecret), raw)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), subjectKey{}, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Subject of the authenticated request, empty when auth is disabled.
func Subject(ctx context.Context) string {
	s, _ := ctx.Value(subjectKey{}).(string)
	return s
}
