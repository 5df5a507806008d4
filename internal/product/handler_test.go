// AngelaMos | 2026
// handler_test.go

package product_test

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

	"github.com/carterperez-dev/templates/resale-console/internal/account"
	"github.com/carterperez-dev/templates/resale-console/internal/middleware"
	"github.com/carterperez-dev/templates/resale-console/internal/product"
)

// identities maps the X-Test-Identity header to a resolved caller.
var identities = map[string]*middleware.Identity{
	"admin": {ID: "a1", Role: middleware.RoleAdmin},
	"verified": {ID: "u1", Role: middleware.RoleUser, State: account.State{
		Active: true, SubscriptionPaid: true, Verified: true,
	}},
	"unpaid": {ID: "u2", Role: middleware.RoleUser, State: account.State{Active: true}},
}

func fakeAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := identities[r.Header.Get("X-Test-Identity")]
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(middleware.WithIdentity(r.Context(), id)))
	})
}

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	r := chi.NewRouter()
	product.NewHandler(product.NewService(newMemoryRepo())).RegisterRoutes(r, fakeAuth)
	return r
}

func do(
	t *testing.T,
	h http.Handler,
	method, path, identity string,
	body any,
) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("X-Test-Identity", identity)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestHandlerProductLifecycle(t *testing.T) {
	h := newRouter(t)

	rec, created := do(t, h, http.MethodPost, "/products", "admin",
		newProduct("Pixel 8", "Google", "LOT-1", "SKU-1"))
	require.Equal(t, http.StatusCreated, rec.Code)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, true, created["isActive"])

	rec, body := do(t, h, http.MethodPost, "/products", "admin",
		newProduct("Pixel 9", "Google", "LOT-2", "SKU-1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Product key must be unique", body["message"])

	rec, body = do(t, h, http.MethodGet, "/products?search=PIXEL", "verified", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	products, ok := body["products"].([]any)
	require.True(t, ok)
	assert.Len(t, products, 1)
	assert.EqualValues(t, 1, body["total"])
	assert.EqualValues(t, 1, body["currentPage"])
	assert.EqualValues(t, 1, body["totalPages"])

	rec, body = do(t, h, http.MethodPut, "/products/"+id, "admin",
		map[string]any{"grade": "B", "ssPrice": 80})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "B", body["grade"])

	rec, _ = do(t, h, http.MethodGet, "/products/"+id, "admin", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, body = do(t, h, http.MethodDelete, "/products/"+id, "admin", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Product removed", body["message"])

	rec, body = do(t, h, http.MethodGet, "/products/"+id, "admin", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Product not found", body["message"])
}

func TestHandlerProductValidation(t *testing.T) {
	h := newRouter(t)

	req := newProduct("Pixel 8", "Google", "LOT-1", "SKU-1")
	req.Grade = "D"
	rec, _ := do(t, h, http.MethodPost, "/products", "admin", req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = newProduct("Pixel 8", "Google", "LOT-1", "SKU-1")
	req.FloatedPrice = -1
	rec, body := do(t, h, http.MethodPost, "/products", "admin", req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["message"], "floatedPrice")

	rec, _ = do(t, h, http.MethodGet, "/products?isActive=maybe", "admin", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerProductGuards(t *testing.T) {
	h := newRouter(t)

	rec, body := do(t, h, http.MethodGet, "/products", "unpaid", nil)
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Equal(t, true, body["paymentRequired"])

	rec, _ = do(t, h, http.MethodPost, "/products", "verified",
		newProduct("Pixel 8", "Google", "LOT-1", "SKU-1"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = do(t, h, http.MethodGet, "/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = do(t, h, http.MethodDelete, "/products/"+strings.Repeat("x", 4), "verified", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
