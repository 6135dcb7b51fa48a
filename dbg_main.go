package main

import (
	"context"
	"net/http/httptest"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"github.com/dicode-app/dicode-server/internal/auth"
	"github.com/dicode-app/dicode-server/internal/config"
	"github.com/dicode-app/dicode-server/internal/core"
	"github.com/dicode-app/dicode-server/internal/service/friends"
	"github.com/dicode-app/dicode-server/internal/store/sqlite"
	httpx "github.com/dicode-app/dicode-server/internal/transport/http"
)

func main() {
	st, err := sqlite.New(":memory:")
	if err != nil {
		panic(err)
	}
	authService := auth.NewService(st, &auth.JWTConfig{Secret: []byte("s"), Issuer: "t", Audience: "t", TTL: time.Hour})
	logger := zerolog.New(os.Stderr)
	hub := core.NewHub(st, &logger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := httpx.NewServer(hub, authService, friends.New(st), st, config.Config{Addr: "127.0.0.1:0", ReadHeaderTimeout: time.Second}, &logger)
	ts := httptest.NewServer(srv.Handler)
	defer ts.Close()

	wsURL := "ws" + ts.URL[4:] + "/ws"
	dctx, dcancel := context.WithTimeout(ctx, 5*time.Second)
	defer dcancel()
	conn, _, err := websocket.Dial(dctx, wsURL, nil)
	if err != nil {
		logger.Error().Err(err).Msg("dial failed")
		return
	}
	conn.Close(websocket.StatusNormalClosure, "bye")
	time.Sleep(500 * time.Millisecond)
}
