package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/caps-platform/scheduling-backend/internal/scheduling"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestExtractBearerToken(t *testing.T) {
	assert.Equal(t, "abc123", extractBearerToken("Bearer abc123"))
	assert.Equal(t, "", extractBearerToken(""))
	assert.Equal(t, "", extractBearerToken("Basic abc123"))
	assert.Equal(t, "", extractBearerToken("abc123"))
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)

	SecurityHeaders(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestRequireInternalKey(t *testing.T) {
	handler := RequireInternalKey("sekrit")(okHandler())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/internal/sessions", nil)
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/internal/sessions", nil)
	req.Header.Set("X-Internal-Key", "wrong")
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/internal/sessions", nil)
	req.Header.Set("X-Internal-Key", "sekrit")
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// An empty configured key rejects everything rather than letting an
	// empty header through.
	unset := RequireInternalKey("")(okHandler())
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/internal/sessions", nil)
	unset.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(scheduling.RoleAdmin)(okHandler())

	// No actor in context.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/audit", nil)
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	withActor := func(a scheduling.Actor) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/api/admin/audit", nil)
		return r.WithContext(context.WithValue(r.Context(), ActorContextKey, a))
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, withActor(scheduling.Actor{ID: "s1", Role: scheduling.RoleStudent}))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, withActor(scheduling.Actor{ID: "a1", Role: scheduling.RoleAdmin}))
	assert.Equal(t, http.StatusOK, rec.Code)
}
