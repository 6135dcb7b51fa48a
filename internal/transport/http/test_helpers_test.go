package http

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/dicode-app/dicode-server/internal/auth"
	"github.com/dicode-app/dicode-server/internal/config"
	"github.com/dicode-app/dicode-server/internal/core"
	"github.com/dicode-app/dicode-server/internal/service/friends"
	"github.com/dicode-app/dicode-server/internal/store"
	"github.com/dicode-app/dicode-server/internal/store/sqlite"
)

// createTestStore creates an in-memory SQLite store with schema applied.
func createTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	return st
}

// createTestAuthService creates an auth service for testing.
func createTestAuthService(st store.Store) *auth.Service {
	jwtConfig := &auth.JWTConfig{
		Secret:   []byte("test-secret"),
		Issuer:   "test",
		Audience: "test",
		TTL:      24 * time.Hour,
	}

	return auth.NewService(st, jwtConfig)
}

// startTestServer wires store, auth, friends and a running hub behind
// an httptest server. Returns the server and the backing store.
func startTestServer(t *testing.T) (*httptest.Server, store.Store, *auth.Service) {
	t.Helper()

	st := createTestStore(t)
	authService := createTestAuthService(st)
	friendsService := friends.New(st)

	logger := zerolog.Nop()
	hub := core.NewHub(st, &logger)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	cfg := config.Config{Addr: "127.0.0.1:0", ReadHeaderTimeout: 5 * time.Second}
	srv := NewServer(hub, authService, friendsService, st, cfg, &logger)

	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)

	return ts, st, authService
}
