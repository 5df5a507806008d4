// AngelaMos | 2026
// handler_test.go

package verification_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/resale-console/internal/middleware"
	"github.com/carterperez-dev/templates/resale-console/internal/user/usertest"
	"github.com/carterperez-dev/templates/resale-console/internal/verification"
)

func headerAuth(store *usertest.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, id, ok := strings.Cut(r.Header.Get("X-Test-Identity"), ":")
			if !ok {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			identity := &middleware.Identity{ID: id, Role: middleware.Role(role)}
			if u, found := store.User(id); found {
				identity.State = u.State
			}
			next.ServeHTTP(w, r.WithContext(middleware.WithIdentity(r.Context(), identity)))
		})
	}
}

func newRouter(t *testing.T) (http.Handler, *fixture) {
	t.Helper()
	f := newFixture(t)

	r := chi.NewRouter()
	r.Route("/users", func(r chi.Router) {
		verification.NewHandler(f.workflow).RegisterRoutes(r, headerAuth(f.store))
	})
	return r, f
}

func do(
	t *testing.T,
	h http.Handler,
	method, path, identity string,
	body any,
	out any,
) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-Identity", identity)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if out != nil && rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec.Code
}

func TestHandlerWorkflow(t *testing.T) {
	h, f := newRouter(t)
	id := f.register(t, "9300000001")
	caller := "user:" + id

	var submitted map[string]any
	code := do(t, h, http.MethodPost, "/users/submit-payment", caller,
		map[string]string{"transactionId": "TXN-H1"}, &submitted)
	require.Equal(t, http.StatusOK, code)
	requestID, _ := submitted["requestId"].(string)
	require.NotEmpty(t, requestID)

	var again map[string]any
	code = do(t, h, http.MethodPost, "/users/submit-payment", caller,
		map[string]string{"userId": id, "transactionId": "TXN-H2"}, &again)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Subscription already paid", again["message"])

	var status map[string]any
	code = do(t, h, http.MethodGet, "/users/verification-status/"+id, caller, nil, &status)
	require.Equal(t, http.StatusOK, code)
	pending, ok := status["pendingRequest"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, requestID, pending["id"])

	var list []map[string]any
	code = do(t, h, http.MethodGet, "/users/verification-requests?status=pending", "admin:a1", nil, &list)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, list, 1)
	assert.Equal(t, requestID, list[0]["id"])

	var decided map[string]any
	code = do(t, h, http.MethodPut, "/users/verification-requests/"+requestID, "admin:a1",
		map[string]string{"status": "approved"}, &decided)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Verification request approved", decided["message"])

	stored, _ := f.store.User(id)
	assert.True(t, stored.Verified)
}

func TestHandlerSubmitPaymentForbiddenForOtherUser(t *testing.T) {
	h, f := newRouter(t)
	victim := f.register(t, "9300000002")
	attacker := f.register(t, "9300000003")

	var body map[string]any
	code := do(t, h, http.MethodPost, "/users/submit-payment", "user:"+attacker,
		map[string]string{"userId": victim, "transactionId": "TXN"}, &body)
	assert.Equal(t, http.StatusForbidden, code)

	code = do(t, h, http.MethodGet, "/users/verification-status/"+victim, "user:"+attacker, nil, &body)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestHandlerSubmitPaymentDeactivated(t *testing.T) {
	h, f := newRouter(t)
	id := f.register(t, "9300000004")
	u, _ := f.store.User(id)
	u.Active = false
	f.store.Seed(u)

	var body map[string]any
	code := do(t, h, http.MethodPost, "/users/submit-payment", "user:"+id,
		map[string]string{"transactionId": "TXN"}, &body)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Account is deactivated", body["message"])
}

func TestHandlerAdjudicateValidation(t *testing.T) {
	h, _ := newRouter(t)

	var body map[string]any
	code := do(t, h, http.MethodPut, "/users/verification-requests/r1", "admin:a1",
		map[string]string{"status": "maybe"}, &body)
	assert.Equal(t, http.StatusBadRequest, code)

	code = do(t, h, http.MethodPut, "/users/verification-requests/r1", "admin:a1",
		map[string]string{"status": "rejected"}, &body)
	assert.Equal(t, http.StatusBadRequest, code)

	code = do(t, h, http.MethodPut, "/users/verification-requests/r1", "admin:a1",
		map[string]string{"status": "approved"}, &body)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Verification request not found", body["message"])

	code = do(t, h, http.MethodGet, "/users/verification-requests?status=bogus", "admin:a1", nil, &body)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestHandlerAdminOnlyRoutes(t *testing.T) {
	h, f := newRouter(t)
	id := f.register(t, "9300000005")

	var body map[string]any
	code := do(t, h, http.MethodGet, "/users/verification-requests", "user:"+id, nil, &body)
	assert.Equal(t, http.StatusForbidden, code)

	code = do(t, h, http.MethodPut, "/users/"+id+"/verification", "user:"+id,
		map[string]bool{"isVerified": true}, &body)
	assert.Equal(t, http.StatusForbidden, code)

	code = do(t, h, http.MethodPut, "/users/"+id+"/verification", "admin:a1",
		map[string]bool{"isVerified": true}, &body)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "User verification approved successfully", body["message"])
}
