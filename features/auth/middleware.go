package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"bookchat/internal/middleware"
)

type userKey int

const currentUserKey userKey = 0

// CurrentUser returns the authenticated user set by RequireAuth, or nil.
func CurrentUser(ctx context.Context) *User {
	if u, ok := ctx.Value(currentUserKey).(*User); ok {
		return u
	}
	return nil
}

// RequireAuth rejects requests without a valid bearer token and injects
// the authenticated user into the request context.
func (h *Handler) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		user, err := h.service.Authenticate(r.Context(), token)
		if err != nil {
			writeAuthError(r.Context(), w, "UNAUTHORIZED", "Not authenticated", http.StatusUnauthorized)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), currentUserKey, user)))
	}
}

// RequireAdmin is RequireAuth plus an admin-role check.
func (h *Handler) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return h.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r.Context())
		if user == nil || user.Role != RoleAdmin {
			writeAuthError(r.Context(), w, "FORBIDDEN", "Admins only", http.StatusForbidden)
			return
		}
		next(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	// Browser pages send the token as a cookie instead.
	if c, err := r.Cookie("access_token"); err == nil {
		return c.Value
	}
	return ""
}

func writeAuthError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"correlationId": middleware.GetCorrelationID(ctx),
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
