// AngelaMos | 2026
// handler_test.go

package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/resale-console/internal/middleware"
	"github.com/carterperez-dev/templates/resale-console/internal/user"
	"github.com/carterperez-dev/templates/resale-console/internal/verification"
)

type fakeCounts struct {
	products int
	active   int
	byStatus map[user.RequestStatus]int
	recent   []verification.RequestListItem
	err      error
}

func (f *fakeCounts) Count(context.Context) (int, error) {
	return f.products, f.err
}

func (f *fakeCounts) CountActiveVerified(context.Context) (int, error) {
	return f.active, nil
}

func (f *fakeCounts) CountByStatus(context.Context) (map[user.RequestStatus]int, error) {
	return f.byStatus, nil
}

func (f *fakeCounts) RecentRequests(_ context.Context, limit int) ([]verification.RequestListItem, error) {
	if len(f.recent) > limit {
		return f.recent[:limit], nil
	}
	return f.recent, nil
}

func asAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := &middleware.Identity{ID: "a1", Role: middleware.RoleAdmin}
		if r.Header.Get("X-Test-Role") == "user" {
			id = &middleware.Identity{ID: "u1", Role: middleware.RoleUser}
		}
		next.ServeHTTP(w, r.WithContext(middleware.WithIdentity(r.Context(), id)))
	})
}

func newRouter(counts *fakeCounts) http.Handler {
	r := chi.NewRouter()
	NewHandler(HandlerConfig{
		Dashboard: NewDashboard(counts, counts, counts, 40),
		DBPing:    func(context.Context) error { return nil },
	}).RegisterRoutes(r, asAdmin)
	return r
}

func TestDashboard(t *testing.T) {
	recent := make([]verification.RequestListItem, 7)
	for i := range recent {
		recent[i].ID = string(rune('a' + i))
	}
	counts := &fakeCounts{
		products: 12,
		active:   3,
		byStatus: map[user.RequestStatus]int{
			user.StatusPending:  2,
			user.StatusApproved: 5,
			user.StatusRejected: 1,
		},
		recent: recent,
	}

	rec := httptest.NewRecorder()
	newRouter(counts).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp DashboardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 12, resp.TotalProducts)
	assert.Equal(t, 2, resp.PendingRequests)
	assert.Equal(t, 5, resp.ApprovedRequests)
	assert.Equal(t, 1, resp.RejectedRequests)
	assert.InDelta(t, 200.0, resp.TotalRevenue, 0.001)
	assert.Equal(t, 3, resp.ActiveUsers)
	assert.Len(t, resp.RecentRequests, recentRequestLimit)
}

func TestDashboardFailure(t *testing.T) {
	counts := &fakeCounts{err: errors.New("connection refused")}

	rec := httptest.NewRecorder()
	newRouter(counts).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAdminRoutesRejectUsers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	req.Header.Set("X-Test-Role", "user")

	rec := httptest.NewRecorder()
	newRouter(&fakeCounts{}).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSystemStats(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(&fakeCounts{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SystemStatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Database.Healthy)
	assert.False(t, resp.Redis.Healthy)
	assert.NotEmpty(t, resp.Runtime.GoVersion)
}
