// Package middleware provides HTTP middleware for the admin API.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/colonnadedb/colonnade/internal/admin/auth"
	"github.com/colonnadedb/colonnade/internal/logger"
)

// contextKey is a private type for context values to avoid collisions.
type contextKey string

// claimsContextKey is the context key under which validated claims are stored.
const claimsContextKey contextKey = "jwt_claims"

// GetClaimsFromContext returns the JWT claims stored by JWTAuth, or nil if
// the request was not authenticated.
func GetClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, ok := ctx.Value(claimsContextKey).(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}

// extractBearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme comparison is case-insensitive.
func extractBearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}

// JWTAuth returns middleware that requires a valid access token.
//
// On success the validated claims are stored in the request context and can
// be retrieved with GetClaimsFromContext. On failure the request is rejected
// with 401 and a JSON error body.
func JWTAuth(jwtService *auth.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := extractBearerToken(r)
			if !ok {
				writeUnauthorized(w, "Missing or malformed Authorization header")
				return
			}

			claims, err := jwtService.ValidateAccessToken(token)
			if err != nil {
				logger.Debug("Rejected admin API request",
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
					"error", err)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeUnauthorized writes a 401 response with a JSON error body.
// The middleware cannot use the handlers package response helpers without
// creating an import cycle, so it writes its own minimal envelope.
func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="colonnade"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": "error",
		"error":  message,
	})
}
