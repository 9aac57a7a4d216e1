package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tcpong/internal/netwrk"
	"tcpong/internal/protocol"
)

var (
	ErrLobbyFull     = errors.New("lobby is full")
	ErrLobbyNotFound = errors.New("lobby not found")
)

type Result int

const (
	Won Result = iota + 1
	Lost
	OpponentLeft
)

func (r Result) String() string {
	switch r {
	case Won:
		return "won"
	case Lost:
		return "lost"
	case OpponentLeft:
		return "opponent left"
	default:
		return fmt.Sprintf("result(%d)", int(r))
	}
}

// Bot plays one game over conn without a screen. It readies up as soon as it
// is asked to play and keeps its paddle centred on the ball.
type Bot struct {
	conn *netwrk.ClientConn
	log  *slog.Logger

	// Idle keeps the paddle where it is for the whole game.
	Idle bool

	left bool
}

func NewBot(conn *netwrk.ClientConn, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{conn: conn, log: logger}
}

// NewLobby creates a lobby and returns its id. The bot plays on the left.
func (b *Bot) NewLobby() (string, error) {
	if err := b.conn.Send(protocol.AwaitingOpenMessage{Variant: protocol.NewLobby}); err != nil {
		return "", err
	}
	f, err := b.conn.ReadFrame()
	if err != nil {
		return "", fmt.Errorf("read lobby id: %w", err)
	}
	m, err := protocol.DecodeAwaitingNewLobby(f)
	if err != nil {
		return "", err
	}
	b.left = true
	b.log.Info("lobby created", slog.String("lobby_id", m.LobbyID))
	return m.LobbyID, nil
}

// WaitForOpponent blocks until someone joins the lobby from NewLobby.
func (b *Bot) WaitForOpponent() error {
	f, err := b.conn.ReadFrame()
	if err != nil {
		return fmt.Errorf("wait for opponent: %w", err)
	}
	if _, err := protocol.DecodeAwaitingOpponentJoin(f); err != nil {
		return err
	}
	b.log.Info("opponent joined")
	return nil
}

// JoinLobby joins lobby id. The bot plays on the right.
func (b *Bot) JoinLobby(id string) error {
	if err := b.conn.Send(protocol.AwaitingOpenMessage{Variant: protocol.JoinLobby, LobbyID: id}); err != nil {
		return err
	}
	f, err := b.conn.ReadFrame()
	if err != nil {
		return fmt.Errorf("read join reply: %w", err)
	}
	m, err := protocol.DecodeAwaitingJoinLobby(f)
	if err != nil {
		return err
	}
	switch m {
	case protocol.JoinedLobby:
		b.left = false
		b.log.Info("joined lobby", slog.String("lobby_id", id))
		return nil
	case protocol.LobbyFull:
		return fmt.Errorf("join %s: %w", id, ErrLobbyFull)
	default:
		return fmt.Errorf("join %s: %w", id, ErrLobbyNotFound)
	}
}

// Play readies up and plays until the game is decided, the opponent leaves or
// ctx is cancelled. Cancelling ctx closes the connection.
func (b *Bot) Play(ctx context.Context) (Result, error) {
	stop := context.AfterFunc(ctx, func() { b.conn.Close() })
	defer stop()

	if err := b.conn.Send(protocol.Ready); err != nil {
		return 0, err
	}

	for started := false; !started; {
		f, err := b.read(ctx)
		if err != nil {
			return 0, err
		}
		m, err := protocol.DecodeAwaitingReadyServer(f)
		if err != nil {
			b.log.Warn("unexpected message before the game", slog.Any("error", err))
			continue
		}
		switch m {
		case protocol.GameStarted:
			started = true
		case protocol.ReadyOpponentLeft:
			return OpponentLeft, nil
		default:
			b.log.Debug("lobby update", slog.String("message", m.String()))
		}
	}
	b.log.Info("game started", slog.Bool("left", b.left))

	for {
		f, err := b.read(ctx)
		if err != nil {
			return 0, err
		}
		m, err := protocol.DecodePlayingServer(f)
		if err != nil {
			b.log.Warn("unexpected message during the game", slog.Any("error", err))
			continue
		}
		switch m.Variant {
		case protocol.GameStateUpdated:
			if err := b.follow(m); err != nil {
				return 0, err
			}
		case protocol.YouWon:
			return Won, nil
		case protocol.OpponentWon:
			return Lost, nil
		case protocol.PlayingOpponentLeft:
			return OpponentLeft, nil
		}
	}
}

func (b *Bot) read(ctx context.Context) ([]byte, error) {
	f, err := b.conn.ReadFrame()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("read from server: %w", err)
	}
	return f, nil
}

func (b *Bot) follow(m protocol.PlayingServerMessage) error {
	if b.Idle {
		return nil
	}
	current := m.GameState.RightPaddle
	if b.left {
		current = m.GameState.LeftPaddle
	}
	target := PaddleFor(m.GameState.Ball.Y)
	if target == current {
		return nil
	}
	return b.conn.Send(protocol.MovePaddle(target))
}
