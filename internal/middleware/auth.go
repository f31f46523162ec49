package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// APIKeyAuth validates the configured API key from the Authorization header.
// An empty configured key disables auth entirely.
func APIKeyAuth(validKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if validKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			// Skip auth for health check
			if r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				http.Error(w, "missing Authorization header", http.StatusUnauthorized)
				return
			}

			// Support both "Bearer <key>" and "<key>" formats
			apiKey := strings.TrimPrefix(auth, "Bearer ")
			apiKey = strings.TrimSpace(apiKey)

			// Constant-time comparison to prevent timing attacks
			if subtle.ConstantTimeCompare([]byte(apiKey), []byte(validKey)) != 1 {
				http.Error(w, "invalid API key", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
