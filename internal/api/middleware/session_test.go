package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusvoice/portal/backend/internal/domain/entities"
)

func TestSessionMiddleware_ReadsGatewayHeaders(t *testing.T) {
	var got entities.Session
	var ok bool
	handler := SessionMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = SessionFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
	req.Header.Set(HeaderUserID, "s1")
	req.Header.Set(HeaderUserName, "Asha")
	req.Header.Set(HeaderUserRole, "Student")
	req.Header.Set(HeaderUserExternalID, "21BCE1001")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.True(t, ok)
	assert.Equal(t, entities.Session{UserID: "s1", Name: "Asha", Role: entities.RoleStudent, ExternalID: "21BCE1001"}, got)
}

func TestSessionMiddleware_IgnoresIncompleteIdentity(t *testing.T) {
	cases := map[string]map[string]string{
		"missing user": {HeaderUserRole: "admin"},
		"unknown role": {HeaderUserID: "s1", HeaderUserRole: "janitor"},
	}

	for name, headers := range cases {
		t.Run(name, func(t *testing.T) {
			var ok bool
			handler := SessionMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, ok = SessionFromContext(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range headers {
				req.Header.Set(k, v)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)
			assert.False(t, ok)
		})
	}
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(entities.RoleAdmin, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	anonymous := httptest.NewRecorder()
	handler(anonymous, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, anonymous.Code)

	student := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	handler(student, req.WithContext(WithSession(req.Context(), entities.Session{UserID: "s1", Role: entities.RoleStudent})))
	assert.Equal(t, http.StatusForbidden, student.Code)

	admin := httptest.NewRecorder()
	handler(admin, req.WithContext(WithSession(req.Context(), entities.Session{UserID: "a1", Role: entities.RoleAdmin})))
	assert.Equal(t, http.StatusNoContent, admin.Code)
}
