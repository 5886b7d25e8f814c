package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/campusvoice/portal/backend/internal/domain/entities"
)

// Headers set by the authenticating gateway in front of the API
const (
	HeaderUserID         = "X-User-ID"
	HeaderUserName       = "X-User-Name"
	HeaderUserRole       = "X-User-Role"
	HeaderUserExternalID = "X-User-External-ID"
)

type sessionKey struct{}

// SessionMiddleware reads the caller identity from gateway headers.
// Requests without a user id or with an unknown role carry no session.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(HeaderUserID))
		role, ok := entities.ParseRole(r.Header.Get(HeaderUserRole))
		if userID == "" || !ok {
			next.ServeHTTP(w, r)
			return
		}

		session := entities.Session{
			UserID:     userID,
			Name:       strings.TrimSpace(r.Header.Get(HeaderUserName)),
			Role:       role,
			ExternalID: strings.TrimSpace(r.Header.Get(HeaderUserExternalID)),
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
	})
}

// WithSession returns a copy of ctx carrying session
func WithSession(ctx context.Context, session entities.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

// SessionFromContext returns the caller's session, if any
func SessionFromContext(ctx context.Context) (entities.Session, bool) {
	session, ok := ctx.Value(sessionKey{}).(entities.Session)
	return session, ok
}

// RequireSession rejects anonymous requests with 401
func RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := SessionFromContext(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next(w, r)
	}
}

// RequireRole rejects callers without the given role with 403
func RequireRole(role entities.Role, next http.HandlerFunc) http.HandlerFunc {
	return RequireSession(func(w http.ResponseWriter, r *http.Request) {
		session, _ := SessionFromContext(r.Context())
		if session.Role != role {
			writeError(w, http.StatusForbidden, "insufficient role")
			return
		}
		next(w, r)
	})
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
