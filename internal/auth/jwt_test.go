// AngelaMos | 2026
// jwt_test.go

package auth

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/resale-console/internal/config"
	"github.com/carterperez-dev/templates/resale-console/internal/core"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		TokenExpire: 30 * 24 * time.Hour,
		Issuer:      "resale-console",
	}
}

func newTestJWTManager(t *testing.T, clock *fakeClock) *JWTManager {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	opts := []JWTOption{}
	if clock != nil {
		opts = append(opts, WithClock(clock.Now))
	}

	m, err := NewJWTManagerFromKey(key, testJWTConfig(), opts...)
	require.NoError(t, err)
	return m
}

func TestCreateAndVerifyToken(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	m := newTestJWTManager(t, clock)

	token, expiresAt, err := m.CreateToken("user-1")
	require.NoError(t, err)
	assert.Equal(t, clock.t.Add(30*24*time.Hour), expiresAt)

	subject, err := m.VerifyToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", subject)
}

func TestVerifyTokenExpiresAfterThirtyDays(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	m := newTestJWTManager(t, clock)

	token, _, err := m.CreateToken("user-1")
	require.NoError(t, err)

	clock.Advance(29 * 24 * time.Hour)
	_, err = m.VerifyToken(context.Background(), token)
	require.NoError(t, err)

	clock.Advance(2 * 24 * time.Hour)
	_, err = m.VerifyToken(context.Background(), token)
	require.ErrorIs(t, err, core.ErrTokenExpired)
}

func TestVerifyTokenRejectsTampering(t *testing.T) {
	m := newTestJWTManager(t, nil)

	token, _, err := m.CreateToken("user-1")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = m.VerifyToken(context.Background(), tampered)
	require.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestVerifyTokenRejectsForeignKey(t *testing.T) {
	issuer := newTestJWTManager(t, nil)
	verifier := newTestJWTManager(t, nil)

	token, _, err := issuer.CreateToken("user-1")
	require.NoError(t, err)

	_, err = verifier.VerifyToken(context.Background(), token)
	require.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	m := newTestJWTManager(t, nil)

	_, err := m.VerifyToken(context.Background(), "not-a-token")
	require.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestJWKSHandlerPublishesKey(t *testing.T) {
	m := newTestJWTManager(t, nil)

	rec := httptest.NewRecorder()
	m.GetJWKSHandler()(rec, httptest.NewRequest(http.MethodGet, "/.well-known/jwks.json", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Keys []map[string]any `json:"keys"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Keys, 1)
	assert.Equal(t, m.GetKeyID(), body.Keys[0]["kid"])
	assert.NotContains(t, body.Keys[0], "d")
}
