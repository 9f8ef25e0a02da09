package auth

import (
	"context"
	"net/http"
	"strings"
)

// contextKey is an unexported type for context keys in this package.
// Using a package-private type means no other package can read or shadow
// the identity value we store in the request context.
type contextKey string

const identityKey contextKey = "identity"

// RequireAuth enforces authentication on protected routes.
//
// The token is read from the Authorization header ("Bearer <jwt>"). A
// "token" query parameter is accepted as a fallback — browser-initiated
// file downloads (the CSV/PDF export links) cannot set request headers, so
// the client passes the token in the URL for those.
//
// A missing token stops the chain with 401; a present-but-invalid or
// expired token stops it with 403. On success the decoded Identity is
// stored in the request context for handlers and RequireAdmin to read.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := extractToken(r)
			if tokenStr == "" {
				writeAuthError(w, http.StatusUnauthorized, "unauthenticated", "authentication token required")
				return
			}

			identity, err := tokens.Validate(tokenStr)
			if err != nil {
				writeAuthError(w, http.StatusForbidden, "forbidden", "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin gates write operations. It must run after RequireAuth on the
// same route: it reads the Identity that RequireAuth stored and rejects
// anything but the admin role with 403.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok || !identity.IsAdmin() {
				writeAuthError(w, http.StatusForbidden, "forbidden", "administrator role required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IdentityFromContext retrieves the authenticated caller's identity.
// Returns (nil, false) on routes not behind RequireAuth.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey).(*Identity)
	return id, ok && id != nil
}

// extractToken pulls the JWT from the Authorization header, falling back to
// the "token" query parameter.
func extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

// writeAuthError writes the same JSON error shape the handlers use.
// Duplicated here (rather than importing the handler package) to keep the
// dependency direction handler → auth.
func writeAuthError(w http.ResponseWriter, status int, errType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + errType + `","message":"` + message + `"}`))
}
