package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/caps-platform/scheduling-backend/internal/scheduling"
	"github.com/caps-platform/scheduling-backend/internal/services"
)

type contextKey string

// ActorContextKey is the request context key holding the authenticated actor.
const ActorContextKey contextKey = "actor"

// extractBearerToken returns the token from an "Authorization: Bearer <token>" header, or "".
func extractBearerToken(header string) string {
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"success":false,"message":"` + message + `"}`))
}

// RequireActor validates the session token and stores the resolved actor in the
// request context. Requests without a valid session get 401.
func RequireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeAuthError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		actor, ok := services.ResolveActor(token)
		if !ok {
			writeAuthError(w, http.StatusUnauthorized, "Invalid or expired session")
			return
		}
		ctx := context.WithValue(r.Context(), ActorContextKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole gates a route to the given roles. Must be used after RequireActor.
func RequireRole(roles ...scheduling.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			for _, role := range roles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeAuthError(w, http.StatusForbidden, "You do not have permission to access this resource")
		})
	}
}

// RequireInternalKey gates internal routes behind the X-Internal-Key header.
// Used for session minting by the identity service.
func RequireInternalKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get("X-Internal-Key")
			if key == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
				writeAuthError(w, http.StatusUnauthorized, "Invalid internal API key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ActorFromContext returns the authenticated actor stored by RequireActor.
func ActorFromContext(ctx context.Context) (scheduling.Actor, bool) {
	actor, ok := ctx.Value(ActorContextKey).(scheduling.Actor)
	return actor, ok
}
