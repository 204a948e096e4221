package main

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	identityconfig "github.com/vasapolrittideah/identity-docstore/identity/config"
	"github.com/vasapolrittideah/identity-docstore/services/admin-service/internal/config"
	"github.com/vasapolrittideah/identity-docstore/shared/validation"
)

func testConfig(t *testing.T, httpAddr string) *config.AdminServiceConfig {
	t.Helper()

	return &config.AdminServiceConfig{
		HTTPAddr:   httpAddr,
		HealthAddr: "127.0.0.1:0",
		LogLevel:   "info",
		AdminRole:  "Administrator",
		Token: config.TokenConfig{
			Secret:    "0123456789abcdef0123456789abcdef",
			Issuer:    "identity-docstore",
			Audience:  "identity-admin",
			ExpiresIn: time.Minute,
		},
		Lockout: config.LockoutConfig{MaxFailedAttempts: 5, Duration: time.Minute},
		Identity: identityconfig.Config{
			ConnectionString: filepath.Join(t.TempDir(), "identity.db"),
		},
	}
}

func TestRun_ReturnsHTTPServerError(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = busy.Close() })

	logger := zerolog.Nop()
	done := make(chan error, 1)
	go func() {
		done <- run(context.Background(), testConfig(t, busy.Addr().String()), validation.New(), &logger)
	}()

	select {
	case err := <-done:
		assert.ErrorContains(t, err, "admin API")
	case <-time.After(10 * time.Second):
		t.Fatal("run did not return after the HTTP server failed")
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(200*time.Millisecond, cancel)

	logger := zerolog.Nop()
	err := run(ctx, testConfig(t, "127.0.0.1:0"), validation.New(), &logger)
	assert.NoError(t, err)
}
