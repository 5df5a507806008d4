// AngelaMos | 2026
// ratelimit_test.go

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/resale-console/internal/config"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func hit(h http.Handler, path, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiterLocalFallback(t *testing.T) {
	rl := NewRateLimiter(nil, RateLimitConfig{
		Limit:  redis_rate.Limit{Rate: 2, Burst: 2, Period: time.Minute},
		Prefix: "test",
	})
	h := rl.Handler(okHandler())

	assert.Equal(t, http.StatusOK, hit(h, "/login", "10.0.0.1:1234").Code)
	assert.Equal(t, http.StatusOK, hit(h, "/login", "10.0.0.1:1234").Code)

	rec := hit(h, "/login", "10.0.0.1:1234")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "Too many requests")

	assert.Equal(t, http.StatusOK, hit(h, "/login", "10.0.0.2:1234").Code)
}

func TestRateLimiterBypass(t *testing.T) {
	rl := NewRateLimiter(nil, RateLimitConfig{
		Limit:      redis_rate.Limit{Rate: 1, Burst: 1, Period: time.Minute},
		BypassFunc: BypassProbes("/healthz"),
	})
	h := rl.Handler(okHandler())

	for range 3 {
		assert.Equal(t, http.StatusOK, hit(h, "/healthz", "10.0.0.1:1").Code)
	}
}

func TestRateLimiterFailClosedOnInvalidLimit(t *testing.T) {
	rl := NewRateLimiter(nil, RateLimitConfig{Limit: redis_rate.Limit{}})
	assert.Equal(t, http.StatusServiceUnavailable, hit(rl.Handler(okHandler()), "/", "10.0.0.1:1").Code)

	open := NewRateLimiter(nil, RateLimitConfig{Limit: redis_rate.Limit{}, FailOpen: true})
	assert.Equal(t, http.StatusOK, hit(open.Handler(okHandler()), "/", "10.0.0.1:1").Code)
}

func TestLimitFromConfig(t *testing.T) {
	limit := LimitFromConfig(config.RateLimitConfig{Requests: 10, Window: time.Minute})
	assert.Equal(t, 10, limit.Rate)
	assert.Equal(t, 10, limit.Burst)
	assert.Equal(t, time.Minute, limit.Period)
}

func TestKeyByIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	assert.Equal(t, "ip:192.0.2.1", KeyByIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 198.51.100.7")
	assert.Equal(t, "ip:198.51.100.7", KeyByIP(req))
}
