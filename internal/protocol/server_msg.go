package protocol

import (
	"fmt"
	"unicode/utf8"

	"tcpong/internal/pong"
)

// Server state ids.
const (
	awaitingNewLobbyState     uint8 = 0
	awaitingJoinLobbyState    uint8 = 1
	awaitingOpponentJoinState uint8 = 2
	awaitingReadyServerState  uint8 = 3
	playingServerState        uint8 = 4
)

// MaxServerMessageSize is the size of the largest server message,
// NewLobbyCreated, without its delimiter.
const MaxServerMessageSize = 1 + LobbyIDLen

// AwaitingNewLobbyServerMessage answers NewLobby. Its only variant is
// NewLobbyCreated.
type AwaitingNewLobbyServerMessage struct {
	LobbyID string
}

const newLobbyCreated uint8 = 0

func NewLobbyCreated(id string) AwaitingNewLobbyServerMessage {
	return AwaitingNewLobbyServerMessage{LobbyID: id}
}

func (m AwaitingNewLobbyServerMessage) Encode() []byte {
	return append([]byte{header(awaitingNewLobbyState, newLobbyCreated)}, m.LobbyID...)
}

func (m AwaitingNewLobbyServerMessage) String() string {
	return fmt.Sprintf("NewLobbyCreated(%s)", m.LobbyID)
}

func DecodeAwaitingNewLobby(b []byte) (AwaitingNewLobbyServerMessage, error) {
	const family = "awaiting new lobby"
	v, err := variantOf(b, awaitingNewLobbyState)
	if err != nil {
		return AwaitingNewLobbyServerMessage{}, decodeErr(family, b, err)
	}
	if v != newLobbyCreated {
		return AwaitingNewLobbyServerMessage{}, decodeErr(family, b, ErrUnrecognisedMessageVariant)
	}
	if err := expectLen(b, 1+LobbyIDLen); err != nil {
		return AwaitingNewLobbyServerMessage{}, decodeErr(family, b, err)
	}
	if !utf8.Valid(b[1:]) {
		return AwaitingNewLobbyServerMessage{}, decodeErr(family, b, ErrInvalidUTF8)
	}
	return AwaitingNewLobbyServerMessage{LobbyID: string(b[1:])}, nil
}

// AwaitingJoinLobbyServerMessage answers JoinLobby.
type AwaitingJoinLobbyServerMessage uint8

const (
	JoinedLobby AwaitingJoinLobbyServerMessage = iota
	LobbyFull
	LobbyNotFound
)

func (m AwaitingJoinLobbyServerMessage) Encode() []byte {
	return []byte{header(awaitingJoinLobbyState, uint8(m))}
}

func (m AwaitingJoinLobbyServerMessage) String() string {
	switch m {
	case JoinedLobby:
		return "JoinedLobby"
	case LobbyFull:
		return "LobbyFull"
	case LobbyNotFound:
		return "LobbyNotFound"
	default:
		return fmt.Sprintf("AwaitingJoinLobby(%d)", uint8(m))
	}
}

func DecodeAwaitingJoinLobby(b []byte) (AwaitingJoinLobbyServerMessage, error) {
	const family = "awaiting join lobby"
	v, err := variantOf(b, awaitingJoinLobbyState)
	if err != nil {
		return 0, decodeErr(family, b, err)
	}
	switch m := AwaitingJoinLobbyServerMessage(v); m {
	case JoinedLobby, LobbyFull, LobbyNotFound:
		if err := expectLen(b, 1); err != nil {
			return 0, decodeErr(family, b, err)
		}
		return m, nil
	default:
		return 0, decodeErr(family, b, ErrUnrecognisedMessageVariant)
	}
}

// AwaitingOpponentJoinServerMessage is sent to a lobby host.
type AwaitingOpponentJoinServerMessage uint8

const OpponentJoined AwaitingOpponentJoinServerMessage = 0

func (m AwaitingOpponentJoinServerMessage) Encode() []byte {
	return []byte{header(awaitingOpponentJoinState, uint8(m))}
}

func (m AwaitingOpponentJoinServerMessage) String() string {
	if m == OpponentJoined {
		return "OpponentJoined"
	}
	return fmt.Sprintf("AwaitingOpponentJoin(%d)", uint8(m))
}

func DecodeAwaitingOpponentJoin(b []byte) (AwaitingOpponentJoinServerMessage, error) {
	const family = "awaiting opponent join"
	v, err := variantOf(b, awaitingOpponentJoinState)
	if err != nil {
		return 0, decodeErr(family, b, err)
	}
	if AwaitingOpponentJoinServerMessage(v) != OpponentJoined {
		return 0, decodeErr(family, b, ErrUnrecognisedMessageVariant)
	}
	if err := expectLen(b, 1); err != nil {
		return 0, decodeErr(family, b, err)
	}
	return OpponentJoined, nil
}

// AwaitingReadyServerMessage is sent to both players of a full lobby until the
// game starts.
type AwaitingReadyServerMessage uint8

const (
	ReadyOpponentLeft AwaitingReadyServerMessage = iota
	OpponentReadied
	OpponentUnreadied
	YouReadied
	YouUnreadied
	GameStarted
)

func (m AwaitingReadyServerMessage) Encode() []byte {
	return []byte{header(awaitingReadyServerState, uint8(m))}
}

func (m AwaitingReadyServerMessage) String() string {
	switch m {
	case ReadyOpponentLeft:
		return "OpponentLeft"
	case OpponentReadied:
		return "OpponentReadied"
	case OpponentUnreadied:
		return "OpponentUnreadied"
	case YouReadied:
		return "YouReadied"
	case YouUnreadied:
		return "YouUnreadied"
	case GameStarted:
		return "GameStarted"
	default:
		return fmt.Sprintf("AwaitingReady(%d)", uint8(m))
	}
}

func DecodeAwaitingReadyServer(b []byte) (AwaitingReadyServerMessage, error) {
	const family = "awaiting ready server"
	v, err := variantOf(b, awaitingReadyServerState)
	if err != nil {
		return 0, decodeErr(family, b, err)
	}
	m := AwaitingReadyServerMessage(v)
	if m > GameStarted {
		return 0, decodeErr(family, b, ErrUnrecognisedMessageVariant)
	}
	if err := expectLen(b, 1); err != nil {
		return 0, decodeErr(family, b, err)
	}
	return m, nil
}

type PlayingServerVariant uint8

const (
	PlayingOpponentLeft PlayingServerVariant = iota
	OpponentWon
	YouWon
	GameStateUpdated
)

// PlayingServerMessage is sent to both players during a game. GameState is
// only meaningful for GameStateUpdated.
type PlayingServerMessage struct {
	Variant   PlayingServerVariant
	GameState pong.GameState
}

func GameStateUpdate(state pong.GameState) PlayingServerMessage {
	return PlayingServerMessage{Variant: GameStateUpdated, GameState: state}
}

// Encode never fails. Out of range fields are cut down to the bits the
// packed layout has room for: the left paddle keeps its low 4 bits, the right
// paddle its low 4 bits, and ball x and y their low 7 bits.
func (m PlayingServerMessage) Encode() []byte {
	h := header(playingServerState, uint8(m.Variant))
	if m.Variant != GameStateUpdated {
		return []byte{h}
	}
	gs := m.GameState
	return []byte{
		h,
		gs.LeftPaddle<<4 | gs.RightPaddle&0x0F,
		gs.Ball.X<<1 | boolBit(gs.Ball.MovingRight),
		gs.Ball.Y<<1 | boolBit(gs.Ball.MovingDown),
	}
}

func (m PlayingServerMessage) String() string {
	switch m.Variant {
	case PlayingOpponentLeft:
		return "OpponentLeft"
	case OpponentWon:
		return "OpponentWon"
	case YouWon:
		return "YouWon"
	case GameStateUpdated:
		gs := m.GameState
		return fmt.Sprintf("GameStateUpdated(left=%d right=%d ball=%d,%d)",
			gs.LeftPaddle, gs.RightPaddle, gs.Ball.X, gs.Ball.Y)
	default:
		return fmt.Sprintf("Playing(%d)", uint8(m.Variant))
	}
}

func DecodePlayingServer(b []byte) (PlayingServerMessage, error) {
	const family = "playing server"
	v, err := variantOf(b, playingServerState)
	if err != nil {
		return PlayingServerMessage{}, decodeErr(family, b, err)
	}
	switch variant := PlayingServerVariant(v); variant {
	case PlayingOpponentLeft, OpponentWon, YouWon:
		if err := expectLen(b, 1); err != nil {
			return PlayingServerMessage{}, decodeErr(family, b, err)
		}
		return PlayingServerMessage{Variant: variant}, nil
	case GameStateUpdated:
		if err := expectLen(b, 4); err != nil {
			return PlayingServerMessage{}, decodeErr(family, b, err)
		}
		left, right := b[1]>>4, b[1]&0x0F
		if left > pong.MaxPaddle || right > pong.MaxPaddle {
			return PlayingServerMessage{}, decodeErr(family, b, ErrInvalidPaddlePosition)
		}
		x, y := b[2]>>1, b[3]>>1
		if x >= pong.GameWidth || y >= pong.GameHeight {
			return PlayingServerMessage{}, decodeErr(family, b, ErrInvalidBallPosition)
		}
		return GameStateUpdate(pong.GameState{
			LeftPaddle:  left,
			RightPaddle: right,
			Ball: pong.Ball{
				X:           x,
				Y:           y,
				MovingRight: b[2]&1 == 1,
				MovingDown:  b[3]&1 == 1,
			},
		}), nil
	default:
		return PlayingServerMessage{}, decodeErr(family, b, ErrUnrecognisedMessageVariant)
	}
}

func boolBit(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
