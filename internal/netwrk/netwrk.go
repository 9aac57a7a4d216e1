package netwrk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"golang.org/x/exp/rand"

	"tcpong/internal/config"
	"tcpong/internal/lobby"
	"tcpong/internal/lobbyid"
	"tcpong/internal/pong"
)

// Server accepts player connections and runs their lobbies and games.
type Server struct {
	cfg     config.Configuration
	log     *slog.Logger
	lobbies *lobby.Registry
	ids     *lobbyid.Generator

	rngMu sync.Mutex
	rng   *rand.Rand

	// conn id -> *player
	players sync.Map

	// guards wg.Add against a concurrent drain
	mu      sync.Mutex
	closing bool
	wg      sync.WaitGroup
}

type Stats struct {
	Lobbies lobby.Stats `json:"lobbies"`
	Players int         `json:"players"`
}

func NewServer(cfg config.Configuration, ids *lobbyid.Generator, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:     cfg,
		log:     logger,
		lobbies: lobby.NewRegistry(logger),
		ids:     ids,
		rng:     rand.New(rand.NewSource(uint64(time.Now().UnixNano()))),
	}
}

// ListenAndServe listens on the configured TCP address and serves players
// until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.ListenAddr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln, one handler goroutine each. When ctx is
// cancelled it closes ln, waits for every connection and game the server
// started to finish (WebSocket players included), and returns nil.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	s.log.Info("listening for players", slog.String("addr", ln.Addr().String()))
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				s.drain()
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				s.drain()
				return err
			}
			s.log.Warn("failed to accept connection", slog.Any("error", err))
			continue
		}

		if !s.track() {
			conn.Close()
			continue
		}
		go func() {
			defer s.wg.Done()
			s.handle(ctx, newTCPTransport(conn, s.cfg.WriteTimeout))
		}()
	}
}

// track adds one goroutine to wg. It reports false once the server is
// draining, and the caller must not start the goroutine then.
func (s *Server) track() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.wg.Add(1)
	return true
}

// drain stops new goroutines from being tracked and waits for the running ones.
func (s *Server) drain() {
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Server) Stats() Stats {
	st := Stats{Lobbies: s.lobbies.Stats()}
	s.players.Range(func(_, _ any) bool {
		st.Players++
		return true
	})
	return st
}

// serve returns the state a new game starts from.
func (s *Server) serve() pong.GameState {
	if !s.cfg.RandomServe {
		return pong.NewGameState()
	}
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return pong.RandomServe(s.rng)
}
