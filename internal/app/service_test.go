package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"drinks-service/internal/config"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(jwksURL string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:             "0",
			ShutdownTimeout:  time.Second,
			CORSAllowOrigins: []string{"*"},
			RateLimitRPS:     10,
			RateLimitBurst:   10,
		},
		Database: config.DatabaseConfig{Driver: config.DriverMemory},
		Auth: config.AuthConfig{
			Issuer:       "https://tenant.example.com/",
			Audience:     "drinks",
			AllowedAlgs:  []string{"RS256"},
			JWKSURL:      jwksURL,
			FetchTimeout: time.Second,
		},
		Redis: config.RedisConfig{MenuTTL: time.Minute},
	}
}

func TestNewServiceWithMemoryStorage(t *testing.T) {
	svc, err := NewService(context.Background(), testConfig("https://tenant.example.com/.well-known/jwks.json"), logr.Discard())
	require.NoError(t, err)
	defer svc.Close()

	assert.NotNil(t, svc.server)
	assert.NotNil(t, svc.resolver)
	assert.Nil(t, svc.redis)
}

func TestBuildGuardUsesDiscovery(t *testing.T) {
	var issuer string
	idp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"issuer":                 issuer,
			"jwks_uri":               issuer + "/keys",
			"authorization_endpoint": issuer + "/authorize",
			"token_endpoint":         issuer + "/token",
		})
	}))
	defer idp.Close()
	issuer = idp.URL

	cfg := testConfig("")
	cfg.Auth.Issuer = issuer
	cfg.Auth.Discovery = true

	guard, resolver, err := buildGuard(context.Background(), &cfg.Auth, logr.Discard())
	require.NoError(t, err)
	assert.NotNil(t, guard)
	assert.NotNil(t, resolver)
}

func TestRunStopsOnCancel(t *testing.T) {
	jwks := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer jwks.Close()

	svc, err := NewService(context.Background(), testConfig(jwks.URL), logr.Discard())
	require.NoError(t, err)
	defer svc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
