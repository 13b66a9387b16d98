package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/fastpass/internal/config"
	"github.com/dropDatabas3/fastpass/internal/fastpass"
	"github.com/dropDatabas3/fastpass/internal/security/secretbox"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	var c config.Config
	c.Fastpass.ConsumerKey = "CK"
	c.Fastpass.ConsumerSecret = "CS"
	c.API.Key = "k"
	c.Identity.JWTSecret = "jwt"
	c.Identity.Leeway = "30s"
	c.Store.Kind = "memory"
	c.Replay.Enabled = true
	c.Replay.TTL = "10m"
	c.Replay.MaxAge = "5m"
	c.Rate.Enabled = true
	c.Rate.Window = "1m"
	c.Rate.MaxRequests = 100
	c.Log.ServiceName = "fastpass"
	return &c
}

func TestBuild_MemoryStack(t *testing.T) {
	t.Parallel()

	c, err := Build(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer c.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/fastpass/url", strings.NewReader(`{"email":"a@b.com","name":"A","uid":"1"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", "k")
	rr := httptest.NewRecorder()
	c.Handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"url":"http://getsatisfaction.com/fastpass?`)

	rr = httptest.NewRecorder()
	c.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestBuild_MissingCredentials(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Fastpass.ConsumerSecret = ""
	_, err := Build(context.Background(), cfg)
	assert.ErrorIs(t, err, fastpass.ErrConfiguration)
}

func TestBuild_SealedSecret(t *testing.T) {
	t.Parallel()

	master := "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY="
	box, err := secretbox.New(master)
	require.NoError(t, err)
	sealed, err := box.Seal("CS")
	require.NoError(t, err)

	cfg := testConfig(t)
	cfg.Fastpass.ConsumerSecret = sealed
	cfg.Security.SecretBoxMasterKey = master

	c, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, c.Close())
}

func TestBuild_RateLimitKeyHonorsTrustedProxies(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Rate.MaxRequests = 1
	cfg.Rate.Window = "1h"
	// httptest usa 192.0.2.1 como RemoteAddr
	cfg.Server.TrustedProxies = []string{"192.0.2.1"}

	c, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	defer c.Close()

	post := func(xff string) int {
		req := httptest.NewRequest(http.MethodPost, "/v1/fastpass/url", strings.NewReader(`{"email":"a@b.com","name":"A","uid":"1"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-API-Key", "k")
		req.Header.Set("X-Forwarded-For", xff)
		rr := httptest.NewRecorder()
		c.Handler.ServeHTTP(rr, req)
		return rr.Code
	}
	assert.Equal(t, http.StatusOK, post("198.51.100.1"))
	assert.Equal(t, http.StatusOK, post("198.51.100.2"))
	assert.Equal(t, http.StatusTooManyRequests, post("198.51.100.1"))
}

func TestBuild_InvalidTrustedProxy(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Server.TrustedProxies = []string{"not-an-ip"}
	_, err := Build(context.Background(), cfg)
	assert.Error(t, err)
}
