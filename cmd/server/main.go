package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"tcpong/internal/config"
	"tcpong/internal/lobbyid"
	"tcpong/internal/netwrk"
)

func main() {
	var path string
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	cfg, err := config.LoadConfig(path, ".env")
	if err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger := cfg.Logger(os.Stderr)
	slog.SetDefault(logger)

	ids, err := newGenerator(cfg)
	if err != nil {
		logger.Error("failed to set up lobby ids", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := netwrk.NewServer(cfg, ids, logger)

	errc := make(chan error, 2)
	running := 1
	go func() { errc <- srv.ListenAndServe(ctx) }()
	if cfg.HTTPAddr != "" {
		running++
		go func() { errc <- srv.ListenAndServeHTTP(ctx) }()
	}

	logger.Info("tcpong server started", slog.String("addr", cfg.ListenAddr), slog.String("http_addr", cfg.HTTPAddr))

	code := 0
	for ; running > 0; running-- {
		if err := <-errc; err != nil {
			logger.Error("server stopped", slog.Any("error", err))
			code = 1
			// take the other listener down too
			stop()
		}
	}
	logger.Info("tcpong server stopped")
	stop()
	os.Exit(code)
}

func newGenerator(cfg config.Configuration) (*lobbyid.Generator, error) {
	key, err := cfg.LobbyKeyBytes()
	if err != nil {
		return nil, err
	}
	if key == nil {
		return lobbyid.NewRandom()
	}
	slog.Warn("using a pinned lobby key, lobby ids are predictable")
	g, err := lobbyid.New(key)
	if err != nil {
		return nil, fmt.Errorf("lobby key: %w", err)
	}
	return g, nil
}
