// AngelaMos | 2026
// handler_test.go

package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passthrough(next http.Handler) http.Handler { return next }

func newAuthRouter(t *testing.T) (http.Handler, *Service) {
	t.Helper()
	svc, _ := newTestService(t, nil)
	r := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(r, passthrough)
	return r, svc
}

func postLogin(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandlerAdminLogin(t *testing.T) {
	h, svc := newAuthRouter(t)
	admin, err := svc.EnsureDefaultAdmin(context.Background(), "ops@example.com", "s3cret-pass")
	require.NoError(t, err)

	rec := postLogin(h, `{"email":"OPS@example.com","password":"s3cret-pass"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, admin.ID, resp.ID)
	assert.Equal(t, "ops@example.com", resp.Email)
	assert.NotEmpty(t, resp.Token)
}

func TestHandlerAdminLoginFailures(t *testing.T) {
	h, svc := newAuthRouter(t)
	_, err := svc.EnsureDefaultAdmin(context.Background(), "ops@example.com", "s3cret-pass")
	require.NoError(t, err)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"wrong password", `{"email":"ops@example.com","password":"nope"}`, http.StatusUnauthorized},
		{"unknown email", `{"email":"who@example.com","password":"s3cret-pass"}`, http.StatusUnauthorized},
		{"invalid email", `{"email":"ops","password":"x"}`, http.StatusBadRequest},
		{"missing password", `{"email":"ops@example.com"}`, http.StatusBadRequest},
		{"malformed body", `{`, http.StatusBadRequest},
		{"password over bcrypt limit", `{"email":"ops@example.com","password":"` + strings.Repeat("x", 100) + `"}`, http.StatusBadRequest},
		{"multibyte password over byte limit", `{"email":"ops@example.com","password":"` + strings.Repeat("é", 40) + `"}`, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postLogin(h, tt.body)
			assert.Equal(t, tt.status, rec.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["message"])
		})
	}
}
