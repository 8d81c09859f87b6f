package handler

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"doc-intel-pipeline/internal/domain"
)

// APIKeyMiddleware guards the pipeline routes with a shared key sent either
// as "Authorization: Bearer <key>" or "X-API-Key: <key>".
type APIKeyMiddleware struct {
	apiKey string
	logger domain.Logger
}

// NewAPIKeyMiddleware creates the middleware. An empty key disables the check.
func NewAPIKeyMiddleware(apiKey string, logger domain.Logger) *APIKeyMiddleware {
	return &APIKeyMiddleware{apiKey: apiKey, logger: logger}
}

func (m *APIKeyMiddleware) Middleware(next http.Handler) http.Handler {
	if m.apiKey == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, err := extractKey(r)
		if err != "" {
			writeError(w, http.StatusUnauthorized, err)
			return
		}

		if subtle.ConstantTimeCompare([]byte(key), []byte(m.apiKey)) != 1 {
			m.logger.Warn("Rejected request with invalid API key", "path", r.URL.Path, "remote", r.RemoteAddr)
			writeError(w, http.StatusUnauthorized, "Invalid API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func extractKey(r *http.Request) (string, string) {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key, ""
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", "Authorization header required"
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", "Invalid authorization header format"
	}
	if strings.TrimSpace(parts[1]) == "" {
		return "", "Token required"
	}
	return strings.TrimSpace(parts[1]), ""
}
