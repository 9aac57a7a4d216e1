package lobby

import (
	"errors"
	"fmt"
	"log/slog"

	"tcpong/internal/pong"
	"tcpong/internal/protocol"
)

// Conn is one player's connection as seen by a lobby.
type Conn interface {
	// ID is unique for the lifetime of the process.
	ID() string
	Send(m protocol.ServerMessage) error
}

type State int

const (
	// AwaitingJoin holds only the host.
	AwaitingJoin State = iota
	// AwaitingReadies holds both players, waiting for both to be ready.
	AwaitingReadies
	Playing
)

func (s State) String() string {
	switch s {
	case AwaitingJoin:
		return "awaiting_join"
	case AwaitingReadies:
		return "awaiting_readies"
	case Playing:
		return "playing"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	ErrLobbyExists   = errors.New("lobby already exists")
	ErrLobbyNotFound = errors.New("lobby not found")
	ErrLobbyFull     = errors.New("lobby is full")
	ErrNotMember     = errors.New("connection is not a member of the lobby")
	ErrWrongState    = errors.New("lobby is in the wrong state")
)

// Lobby is a room for two players. The host plays on the left. A Lobby is only
// ever touched through Registry.Update or the Registry methods, which hold the
// lobby's lock for the whole transition including the messages it sends.
type Lobby struct {
	ID    string
	State State

	Left  Conn
	Right Conn

	LeftReady  bool
	RightReady bool

	Game pong.GameState

	log *slog.Logger
}

func (l *Lobby) Has(c Conn) bool {
	return l.IsLeft(c) || (l.Right != nil && l.Right.ID() == c.ID())
}

func (l *Lobby) IsLeft(c Conn) bool {
	return l.Left != nil && l.Left.ID() == c.ID()
}

// Opponent returns the other player, or nil while the lobby is not full.
func (l *Lobby) Opponent(c Conn) Conn {
	if l.IsLeft(c) {
		return l.Right
	}
	return l.Left
}

// join moves an AwaitingJoin lobby to AwaitingReadies with c on the right.
func (l *Lobby) join(c Conn) error {
	if l.State != AwaitingJoin {
		l.send(c, protocol.LobbyFull)
		return ErrLobbyFull
	}
	l.Right = c
	l.LeftReady, l.RightReady = false, false
	l.State = AwaitingReadies

	l.send(c, protocol.JoinedLobby)
	l.send(l.Left, protocol.OpponentJoined)
	l.log.Info("opponent joined lobby", slog.String("conn_id", c.ID()))
	return nil
}

// SetReady records c's readiness. Once both players are ready the lobby moves
// to Playing with serve as the initial game state, both players get
// GameStarted and then the first GameStateUpdated, and started is true.
func (l *Lobby) SetReady(c Conn, ready bool, serve pong.GameState) (started bool, err error) {
	if l.State != AwaitingReadies {
		return false, ErrWrongState
	}
	if !l.Has(c) {
		return false, ErrNotMember
	}

	if l.IsLeft(c) {
		l.LeftReady = ready
	} else {
		l.RightReady = ready
	}
	opponent := l.Opponent(c)

	if ready {
		l.send(c, protocol.YouReadied)
	} else {
		l.send(c, protocol.YouUnreadied)
	}

	if !(l.LeftReady && l.RightReady) {
		if ready {
			l.send(opponent, protocol.OpponentReadied)
		} else {
			l.send(opponent, protocol.OpponentUnreadied)
		}
		return false, nil
	}

	l.State = Playing
	l.Game = serve
	l.send(c, protocol.GameStarted)
	l.send(opponent, protocol.GameStarted)
	l.broadcast(protocol.GameStateUpdate(l.Game))
	l.log.Info("game started")
	return true, nil
}

// MovePaddle sets c's paddle as sent by the client and broadcasts the new
// state. The position is trusted, the client keeps it on the board.
func (l *Lobby) MovePaddle(c Conn, pos uint8) error {
	if l.State != Playing {
		return ErrWrongState
	}
	if !l.Has(c) {
		return ErrNotMember
	}

	if l.IsLeft(c) {
		l.Game.LeftPaddle = pos
	} else {
		l.Game.RightPaddle = pos
	}
	l.broadcast(protocol.GameStateUpdate(l.Game))
	return nil
}

// Tick advances the ball one step, tells both players who won if a paddle
// missed, and broadcasts the new state either way.
func (l *Lobby) Tick() (pong.Outcome, error) {
	if l.State != Playing {
		return pong.None, ErrWrongState
	}

	outcome := pong.Step(&l.Game)
	switch outcome {
	case pong.LeftMissed:
		l.send(l.Left, protocol.PlayingServerMessage{Variant: protocol.OpponentWon})
		l.send(l.Right, protocol.PlayingServerMessage{Variant: protocol.YouWon})
	case pong.RightMissed:
		l.send(l.Left, protocol.PlayingServerMessage{Variant: protocol.YouWon})
		l.send(l.Right, protocol.PlayingServerMessage{Variant: protocol.OpponentWon})
	}
	if outcome != pong.None {
		l.log.Info("game over", slog.String("outcome", outcome.String()))
	}

	l.broadcast(protocol.GameStateUpdate(l.Game))
	return outcome, nil
}

// notifyLeft tells the player who stayed behind that c has gone.
func (l *Lobby) notifyLeft(c Conn) {
	opponent := l.Opponent(c)
	if opponent == nil {
		return
	}
	switch l.State {
	case AwaitingReadies:
		l.send(opponent, protocol.ReadyOpponentLeft)
	case Playing:
		l.send(opponent, protocol.PlayingServerMessage{Variant: protocol.PlayingOpponentLeft})
	}
}

func (l *Lobby) broadcast(m protocol.ServerMessage) {
	l.send(l.Left, m)
	l.send(l.Right, m)
}

// send never stops at a failed write, the other player still gets theirs.
func (l *Lobby) send(c Conn, m protocol.ServerMessage) {
	if c == nil {
		return
	}
	if err := c.Send(m); err != nil {
		l.log.Warn("failed to send message",
			slog.String("conn_id", c.ID()),
			slog.String("message", m.String()),
			slog.Any("error", err))
	}
}
