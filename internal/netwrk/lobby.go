package netwrk

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/google/uuid"

	"tcpong/internal/lobby"
	"tcpong/internal/protocol"
)

// player is one connection, as the lobbies see it.
type player struct {
	id string
	t  transport

	// serializes writes from the handler and the game loop
	mu sync.Mutex
}

func (p *player) ID() string { return p.id }

func (p *player) Send(m protocol.ServerMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.t.WriteMessage(m)
}

// connHandler owns the read loop of one connection. lobbyID is the lobby the
// connection last created or joined; it is only touched by the read loop.
type connHandler struct {
	srv     *Server
	ctx     context.Context
	p       *player
	log     *slog.Logger
	lobbyID string
}

// handle runs until the peer goes away or ctx is cancelled.
func (s *Server) handle(ctx context.Context, t transport) {
	p := &player{id: uuid.NewString(), t: t}
	h := &connHandler{
		srv: s,
		ctx: ctx,
		p:   p,
		log: s.log.With(slog.String("conn_id", p.id), slog.String("remote", t.RemoteAddr())),
	}

	s.players.Store(p.id, p)
	defer s.players.Delete(p.id)
	defer t.Close()
	stop := context.AfterFunc(ctx, func() { t.Close() })
	defer stop()

	h.log.Info("player connected")
	for {
		msg, err := t.ReadMessage()
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				h.log.Warn("failed to read from player, dropping connection", slog.Any("error", err))
			}
			h.disconnect()
			return
		}
		h.dispatch(msg)
	}
}

func (h *connHandler) dispatch(msg []byte) {
	if h.lobbyID != "" {
		member := false
		found := h.srv.lobbies.Update(h.lobbyID, func(l *lobby.Lobby) {
			if !l.Has(h.p) {
				return
			}
			member = true
			h.dispatchInLobby(l, msg)
		})
		if found && member {
			return
		}
		h.log.Debug("lobby is gone, back to the open state", slog.String("lobby_id", h.lobbyID))
		h.lobbyID = ""
	}
	h.dispatchOpen(msg)
}

// dispatchOpen handles a connection that is not in a lobby.
func (h *connHandler) dispatchOpen(msg []byte) {
	m, err := protocol.DecodeAwaitingOpen(msg)
	if err != nil {
		h.drop(err)
		return
	}

	switch m.Variant {
	case protocol.NewLobby:
		h.newLobby()
	case protocol.JoinLobby:
		if err := h.srv.lobbies.Join(m.LobbyID, h.p); err != nil {
			h.log.Info("join refused", slog.String("lobby_id", m.LobbyID), slog.Any("reason", err))
			return
		}
		h.lobbyID = m.LobbyID
	}
}

func (h *connHandler) newLobby() {
	for attempt := 1; attempt <= h.srv.cfg.MaxIDAttempts; attempt++ {
		id, err := h.srv.ids.Next()
		if err != nil {
			h.log.Error("failed to generate lobby id", slog.Any("error", err))
			return
		}
		err = h.srv.lobbies.Create(id, h.p)
		if errors.Is(err, lobby.ErrLobbyExists) {
			h.log.Debug("lobby id in use, trying another", slog.String("lobby_id", id), slog.Int("attempt", attempt))
			continue
		}
		if err != nil {
			h.log.Error("failed to create lobby", slog.Any("error", err))
			return
		}
		h.lobbyID = id
		return
	}
	h.log.Error("no free lobby id", slog.Int("attempts", h.srv.cfg.MaxIDAttempts))
}

// dispatchInLobby runs with l locked.
func (h *connHandler) dispatchInLobby(l *lobby.Lobby, msg []byte) {
	switch l.State {
	case lobby.AwaitingJoin:
		h.log.Debug("dropping message while waiting for an opponent", slog.String("lobby_id", l.ID))

	case lobby.AwaitingReadies:
		m, err := protocol.DecodeAwaitingReady(msg)
		if err != nil {
			h.drop(err)
			return
		}
		started, err := l.SetReady(h.p, m == protocol.Ready, h.srv.serve())
		if err != nil {
			h.log.Error("failed to set ready", slog.String("lobby_id", l.ID), slog.Any("error", err))
			return
		}
		if started {
			h.srv.startGame(h.ctx, l)
		}

	case lobby.Playing:
		m, err := protocol.DecodePlaying(msg)
		if err != nil {
			h.drop(err)
			return
		}
		if err := l.MovePaddle(h.p, m.Pos); err != nil {
			h.log.Error("failed to move paddle", slog.String("lobby_id", l.ID), slog.Any("error", err))
		}
	}
}

// drop logs a message that does not fit the connection's current state.
func (h *connHandler) drop(err error) {
	h.log.Warn("dropping message", slog.String("lobby_id", h.lobbyID), slog.Any("error", err))
}

func (h *connHandler) disconnect() {
	h.log.Info("player disconnected")
	if h.lobbyID == "" {
		return
	}
	h.srv.lobbies.Leave(h.lobbyID, h.p)
}
