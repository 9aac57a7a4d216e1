package protocol

import (
	"fmt"
	"unicode/utf8"
)

// Client state ids.
const (
	awaitingOpenState  uint8 = 0
	awaitingReadyState uint8 = 1
	playingState       uint8 = 2
)

// MaxClientMessageSize is the size of the largest client message, JoinLobby.
const MaxClientMessageSize = 1 + LobbyIDLen

type AwaitingOpenVariant uint8

const (
	NewLobby AwaitingOpenVariant = iota
	JoinLobby
)

// AwaitingOpenMessage is sent by a client that is not in a lobby yet.
// LobbyID is only set for JoinLobby.
type AwaitingOpenMessage struct {
	Variant AwaitingOpenVariant
	LobbyID string
}

func (m AwaitingOpenMessage) Encode() []byte {
	b := []byte{header(awaitingOpenState, uint8(m.Variant))}
	if m.Variant == JoinLobby {
		b = append(b, m.LobbyID...)
	}
	return b
}

func (m AwaitingOpenMessage) String() string {
	if m.Variant == JoinLobby {
		return fmt.Sprintf("JoinLobby(%s)", m.LobbyID)
	}
	return "NewLobby"
}

func DecodeAwaitingOpen(b []byte) (AwaitingOpenMessage, error) {
	const family = "awaiting open"
	v, err := variantOf(b, awaitingOpenState)
	if err != nil {
		return AwaitingOpenMessage{}, decodeErr(family, b, err)
	}
	switch AwaitingOpenVariant(v) {
	case NewLobby:
		if err := expectLen(b, 1); err != nil {
			return AwaitingOpenMessage{}, decodeErr(family, b, err)
		}
		return AwaitingOpenMessage{Variant: NewLobby}, nil
	case JoinLobby:
		if err := expectLen(b, 1+LobbyIDLen); err != nil {
			return AwaitingOpenMessage{}, decodeErr(family, b, err)
		}
		if !utf8.Valid(b[1:]) {
			return AwaitingOpenMessage{}, decodeErr(family, b, ErrInvalidUTF8)
		}
		return AwaitingOpenMessage{Variant: JoinLobby, LobbyID: string(b[1:])}, nil
	default:
		return AwaitingOpenMessage{}, decodeErr(family, b, ErrUnrecognisedMessageVariant)
	}
}

// AwaitingReadyMessage is sent by a player sitting in a full lobby.
type AwaitingReadyMessage uint8

const (
	Ready AwaitingReadyMessage = iota
	Unready
)

func (m AwaitingReadyMessage) Encode() []byte {
	return []byte{header(awaitingReadyState, uint8(m))}
}

func (m AwaitingReadyMessage) String() string {
	switch m {
	case Ready:
		return "Ready"
	case Unready:
		return "Unready"
	default:
		return fmt.Sprintf("AwaitingReady(%d)", uint8(m))
	}
}

func DecodeAwaitingReady(b []byte) (AwaitingReadyMessage, error) {
	const family = "awaiting ready"
	v, err := variantOf(b, awaitingReadyState)
	if err != nil {
		return 0, decodeErr(family, b, err)
	}
	switch m := AwaitingReadyMessage(v); m {
	case Ready, Unready:
		if err := expectLen(b, 1); err != nil {
			return 0, decodeErr(family, b, err)
		}
		return m, nil
	default:
		return 0, decodeErr(family, b, ErrUnrecognisedMessageVariant)
	}
}

// PlayingMessage is the only message a client sends during a game: MovePaddle
// with the new top position of its paddle.
type PlayingMessage struct {
	Pos uint8
}

const movePaddle uint8 = 0

func MovePaddle(pos uint8) PlayingMessage {
	return PlayingMessage{Pos: pos}
}

func (m PlayingMessage) Encode() []byte {
	return []byte{header(playingState, movePaddle), m.Pos}
}

func (m PlayingMessage) String() string {
	return fmt.Sprintf("MovePaddle(%d)", m.Pos)
}

func DecodePlaying(b []byte) (PlayingMessage, error) {
	const family = "playing"
	v, err := variantOf(b, playingState)
	if err != nil {
		return PlayingMessage{}, decodeErr(family, b, err)
	}
	if v != movePaddle {
		return PlayingMessage{}, decodeErr(family, b, ErrUnrecognisedMessageVariant)
	}
	if err := expectLen(b, 2); err != nil {
		return PlayingMessage{}, decodeErr(family, b, err)
	}
	return PlayingMessage{Pos: b[1]}, nil
}

// ClientFrameLength returns the size of the client message announced by a
// header byte. Client state ids are unique, so the header alone decides it.
func ClientFrameLength(h byte) (int, bool) {
	state, variant := h>>4, h&0x0F
	switch {
	case state == awaitingOpenState && AwaitingOpenVariant(variant) == NewLobby:
		return 1, true
	case state == awaitingOpenState && AwaitingOpenVariant(variant) == JoinLobby:
		return 1 + LobbyIDLen, true
	case state == awaitingReadyState && (AwaitingReadyMessage(variant) == Ready || AwaitingReadyMessage(variant) == Unready):
		return 1, true
	case state == playingState && variant == movePaddle:
		return 2, true
	default:
		return 0, false
	}
}
