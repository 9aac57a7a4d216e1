package netwrk

import (
	"context"
	"log/slog"
	"time"

	"tcpong/internal/lobby"
	"tcpong/internal/pong"
)

// startGame runs the game loop for a lobby that just moved to Playing.
func (s *Server) startGame(ctx context.Context, game *lobby.Lobby) {
	if !s.track() {
		s.log.Debug("server is shutting down, game loop not started", slog.String("lobby_id", game.ID))
		return
	}
	go func() {
		defer s.wg.Done()
		s.gameLoop(ctx, game)
	}()
}

// gameLoop ticks the ball until a paddle misses, the lobby goes away or ctx is
// cancelled. It is bound to the lobby itself and not just its id, so a new
// lobby that reuses the id is never ticked by an old loop.
func (s *Server) gameLoop(ctx context.Context, game *lobby.Lobby) {
	log := s.log.With(slog.String("lobby_id", game.ID))
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	log.Debug("game loop started", slog.Duration("tick", s.cfg.TickInterval))
	for {
		select {
		case <-ctx.Done():
			log.Debug("game loop cancelled")
			return
		case <-ticker.C:
		}

		var (
			outcome pong.Outcome
			err     error
			same    bool
		)
		found := s.lobbies.Update(game.ID, func(l *lobby.Lobby) {
			if l != game {
				return
			}
			same = true
			outcome, err = l.Tick()
		})

		switch {
		case !found || !same:
			log.Debug("lobby closed, stopping game loop")
			return
		case err != nil:
			log.Error("game loop found lobby out of play", slog.Any("error", err))
			return
		case outcome != pong.None:
			log.Debug("game loop finished", slog.String("outcome", outcome.String()))
			return
		}
	}
}
