package middleware

import (
	"context"
	"net/http"
	"strconv"
)

type contextKey string

// UserIDKey is the context key under which the resolved user ID is stored.
const UserIDKey contextKey = "userID"

// defaultUserID is used when no X-User-ID header is present. The dashboard is
// single-user by default; the header exists so tooling can act on behalf of
// another profile.
const defaultUserID int64 = 1

// UserContext resolves the caller's user ID from the X-User-ID header and
// stores it in the request context. Malformed headers are rejected rather
// than silently mapped to the default user.
func UserContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := defaultUserID

		if raw := r.Header.Get("X-User-ID"); raw != "" {
			parsed, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || parsed <= 0 {
				http.Error(w, "Invalid X-User-ID header", http.StatusBadRequest)
				return
			}
			userID = parsed
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
