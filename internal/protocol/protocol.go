// Package protocol implements the binary wire format spoken between the pong
// server and its clients.
//
// Every message starts with a header byte: the high nibble is the id of the
// protocol state (message family) the message belongs to and the low nibble
// selects the variant inside that family. The rest of the message is the
// variant's fixed size payload. State ids are only unique per direction.
package protocol

import (
	"errors"
	"fmt"
)

// LobbyIDLen is the number of bytes in a lobby id.
const LobbyIDLen = 4

var (
	ErrEmptyMessage               = errors.New("empty message")
	ErrInvalidState               = errors.New("invalid state")
	ErrUnrecognisedMessageVariant = errors.New("unrecognised message")
	ErrInvalidByteCount           = errors.New("invalid amount of bytes")
	ErrInvalidUTF8                = errors.New("invalid utf-8 in lobby id")
	ErrInvalidPaddlePosition      = errors.New("invalid paddle position")
	ErrInvalidBallPosition        = errors.New("invalid ball position")
)

// DecodeError records which family a message failed to decode as.
type DecodeError struct {
	Family string
	Len    int
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s message (%d bytes): %v", e.Family, e.Len, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ServerMessage is any message the server can send to a client.
type ServerMessage interface {
	fmt.Stringer
	Encode() []byte
}

func header(state, variant uint8) byte {
	return state<<4 | variant&0x0F
}

// variantOf checks the state nibble of b and returns the variant nibble.
// The state is always checked before anything about the payload.
func variantOf(b []byte, state uint8) (uint8, error) {
	if len(b) == 0 {
		return 0, ErrEmptyMessage
	}
	if b[0]>>4 != state {
		return 0, ErrInvalidState
	}
	return b[0] & 0x0F, nil
}

func expectLen(b []byte, n int) error {
	if len(b) != n {
		return ErrInvalidByteCount
	}
	return nil
}

func decodeErr(family string, b []byte, err error) error {
	return &DecodeError{Family: family, Len: len(b), Err: err}
}
