package protocol_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tcpong/internal/pong"
	"tcpong/internal/protocol"
)

func TestAwaitingNewLobby(t *testing.T) {
	assert.Equal(t, join(0, "A5EZ"), protocol.NewLobbyCreated("A5EZ").Encode())

	got, err := protocol.DecodeAwaitingNewLobby(join(0, "F7BW"))
	require.NoError(t, err)
	assert.Equal(t, protocol.NewLobbyCreated("F7BW"), got)

	errs := []struct {
		name    string
		in      []byte
		wantErr error
	}{
		{name: "empty", in: nil, wantErr: protocol.ErrEmptyMessage},
		{name: "no id", in: []byte{0}, wantErr: protocol.ErrInvalidByteCount},
		{name: "short id", in: join(0, "A5E"), wantErr: protocol.ErrInvalidByteCount},
		{name: "long id", in: join(0, "A5EZ8"), wantErr: protocol.ErrInvalidByteCount},
		{name: "invalid utf-8", in: []byte{0, 255, 255, 255, 255}, wantErr: protocol.ErrInvalidUTF8},
		{name: "wrong state", in: []byte{1 << 4}, wantErr: protocol.ErrInvalidState},
		{name: "unknown variant", in: []byte{1}, wantErr: protocol.ErrUnrecognisedMessageVariant},
	}
	for _, tt := range errs {
		t.Run(tt.name, func(t *testing.T) {
			_, err := protocol.DecodeAwaitingNewLobby(tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAwaitingJoinLobby(t *testing.T) {
	assert.Equal(t, []byte{1 << 4}, protocol.JoinedLobby.Encode())
	assert.Equal(t, []byte{1<<4 | 1}, protocol.LobbyFull.Encode())
	assert.Equal(t, []byte{1<<4 | 2}, protocol.LobbyNotFound.Encode())

	for _, m := range []protocol.AwaitingJoinLobbyServerMessage{protocol.JoinedLobby, protocol.LobbyFull, protocol.LobbyNotFound} {
		got, err := protocol.DecodeAwaitingJoinLobby(m.Encode())
		require.NoError(t, err)
		assert.Equal(t, m, got)

		_, err = protocol.DecodeAwaitingJoinLobby(append(m.Encode(), "A5EZ"...))
		assert.ErrorIs(t, err, protocol.ErrInvalidByteCount)
	}

	_, err := protocol.DecodeAwaitingJoinLobby(nil)
	assert.ErrorIs(t, err, protocol.ErrEmptyMessage)
	_, err = protocol.DecodeAwaitingJoinLobby([]byte{0})
	assert.ErrorIs(t, err, protocol.ErrInvalidState)
	_, err = protocol.DecodeAwaitingJoinLobby([]byte{1<<4 | 3})
	assert.ErrorIs(t, err, protocol.ErrUnrecognisedMessageVariant)
}

func TestAwaitingOpponentJoin(t *testing.T) {
	assert.Equal(t, []byte{2 << 4}, protocol.OpponentJoined.Encode())

	got, err := protocol.DecodeAwaitingOpponentJoin([]byte{2 << 4})
	require.NoError(t, err)
	assert.Equal(t, protocol.OpponentJoined, got)

	_, err = protocol.DecodeAwaitingOpponentJoin(nil)
	assert.ErrorIs(t, err, protocol.ErrEmptyMessage)
	_, err = protocol.DecodeAwaitingOpponentJoin([]byte{2 << 4, 0})
	assert.ErrorIs(t, err, protocol.ErrInvalidByteCount)
	_, err = protocol.DecodeAwaitingOpponentJoin([]byte{0})
	assert.ErrorIs(t, err, protocol.ErrInvalidState)
	_, err = protocol.DecodeAwaitingOpponentJoin([]byte{2<<4 | 1})
	assert.ErrorIs(t, err, protocol.ErrUnrecognisedMessageVariant)
}

func TestAwaitingReadyServer(t *testing.T) {
	all := []protocol.AwaitingReadyServerMessage{
		protocol.ReadyOpponentLeft,
		protocol.OpponentReadied,
		protocol.OpponentUnreadied,
		protocol.YouReadied,
		protocol.YouUnreadied,
		protocol.GameStarted,
	}
	for i, m := range all {
		assert.Equal(t, []byte{3<<4 | byte(i)}, m.Encode())

		got, err := protocol.DecodeAwaitingReadyServer(m.Encode())
		require.NoError(t, err)
		assert.Equal(t, m, got)

		_, err = protocol.DecodeAwaitingReadyServer(append(m.Encode(), 0))
		assert.ErrorIs(t, err, protocol.ErrInvalidByteCount)
	}

	_, err := protocol.DecodeAwaitingReadyServer([]byte{})
	assert.ErrorIs(t, err, protocol.ErrEmptyMessage)
	_, err = protocol.DecodeAwaitingReadyServer([]byte{4 << 4})
	assert.ErrorIs(t, err, protocol.ErrInvalidState)
	_, err = protocol.DecodeAwaitingReadyServer([]byte{3<<4 | 6})
	assert.ErrorIs(t, err, protocol.ErrUnrecognisedMessageVariant)
}

func TestPlayingServer_Encode(t *testing.T) {
	assert.Equal(t, []byte{4 << 4}, protocol.PlayingServerMessage{Variant: protocol.PlayingOpponentLeft}.Encode())
	assert.Equal(t, []byte{4<<4 | 1}, protocol.PlayingServerMessage{Variant: protocol.OpponentWon}.Encode())
	assert.Equal(t, []byte{4<<4 | 2}, protocol.PlayingServerMessage{Variant: protocol.YouWon}.Encode())

	m := protocol.GameStateUpdate(pong.GameState{
		LeftPaddle:  3,
		RightPaddle: 6,
		Ball:        pong.Ball{X: 25, Y: 10, MovingRight: true, MovingDown: false},
	})
	assert.Equal(t, []byte{4<<4 | 3, 3<<4 | 6, 25<<1 | 1, 10 << 1}, m.Encode())
}

// Out of range fields lose their high bits instead of failing.
func TestPlayingServer_EncodeTruncates(t *testing.T) {
	wide := protocol.GameStateUpdate(pong.GameState{
		LeftPaddle:  0b10110111,
		RightPaddle: 0b11110010,
		Ball:        pong.Ball{X: 0b10000011, Y: 0b11000001, MovingRight: false, MovingDown: true},
	})
	narrow := protocol.GameStateUpdate(pong.GameState{
		LeftPaddle:  0b0111,
		RightPaddle: 0b0010,
		Ball:        pong.Ball{X: 0b0000011, Y: 0b1000001, MovingRight: false, MovingDown: true},
	})
	assert.Equal(t, narrow.Encode(), wide.Encode())
	assert.Equal(t, []byte{4<<4 | 3, 0x72, 0x06, 0x83}, wide.Encode())
}

func TestDecodePlayingServer(t *testing.T) {
	tests := []struct {
		name    string
		in      []byte
		want    protocol.PlayingServerMessage
		wantErr error
	}{
		{name: "opponent left", in: []byte{4 << 4}, want: protocol.PlayingServerMessage{Variant: protocol.PlayingOpponentLeft}},
		{name: "opponent won", in: []byte{4<<4 | 1}, want: protocol.PlayingServerMessage{Variant: protocol.OpponentWon}},
		{name: "you won", in: []byte{4<<4 | 2}, want: protocol.PlayingServerMessage{Variant: protocol.YouWon}},
		{
			name: "game state",
			in:   []byte{4<<4 | 3, 6<<4 | 0, 50<<1 | 0, 0<<1 | 1},
			want: protocol.GameStateUpdate(pong.GameState{
				LeftPaddle:  6,
				RightPaddle: 0,
				Ball:        pong.Ball{X: 50, Y: 0, MovingRight: false, MovingDown: true},
			}),
		},
		{name: "empty", in: nil, wantErr: protocol.ErrEmptyMessage},
		{name: "opponent left extra bytes", in: []byte{4 << 4, 1}, wantErr: protocol.ErrInvalidByteCount},
		{name: "game state short", in: []byte{4<<4 | 3, 0, 0}, wantErr: protocol.ErrInvalidByteCount},
		{name: "game state long", in: []byte{4<<4 | 3, 0, 0, 0, 0}, wantErr: protocol.ErrInvalidByteCount},
		{name: "left paddle too low", in: []byte{4<<4 | 3, 7 << 4, 0, 0}, wantErr: protocol.ErrInvalidPaddlePosition},
		{name: "right paddle too low", in: []byte{4<<4 | 3, 7, 0, 0}, wantErr: protocol.ErrInvalidPaddlePosition},
		{name: "ball x off board", in: []byte{4<<4 | 3, 0, 51 << 1, 0}, wantErr: protocol.ErrInvalidBallPosition},
		{name: "ball y off board", in: []byte{4<<4 | 3, 0, 0, 11 << 1}, wantErr: protocol.ErrInvalidBallPosition},
		{name: "wrong state", in: []byte{3<<4 | 3, 0, 0, 0}, wantErr: protocol.ErrInvalidState},
		{name: "unknown variant", in: []byte{4<<4 | 4}, wantErr: protocol.ErrUnrecognisedMessageVariant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := protocol.DecodePlayingServer(tt.in)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestServerRoundTrip(t *testing.T) {
	got, err := protocol.DecodeAwaitingNewLobby(protocol.NewLobbyCreated("H5MS").Encode())
	require.NoError(t, err)
	assert.Equal(t, protocol.NewLobbyCreated("H5MS"), got)

	// every reachable board position survives the packing
	for left := uint8(0); left <= pong.MaxPaddle; left++ {
		for x := uint8(0); x < pong.GameWidth; x++ {
			for y := uint8(0); y < pong.GameHeight; y++ {
				m := protocol.GameStateUpdate(pong.GameState{
					LeftPaddle:  left,
					RightPaddle: pong.MaxPaddle - left,
					Ball:        pong.Ball{X: x, Y: y, MovingRight: x%2 == 0, MovingDown: y%3 == 0},
				})
				got, err := protocol.DecodePlayingServer(m.Encode())
				require.NoError(t, err)
				require.Equal(t, m, got)
			}
		}
	}
}

func TestServerMessageStrings(t *testing.T) {
	assert.Equal(t, "NewLobbyCreated(ABCD)", protocol.NewLobbyCreated("ABCD").String())
	assert.Equal(t, "LobbyFull", protocol.LobbyFull.String())
	assert.Equal(t, "OpponentJoined", protocol.OpponentJoined.String())
	assert.Equal(t, "GameStarted", protocol.GameStarted.String())
	assert.Equal(t, "YouWon", protocol.PlayingServerMessage{Variant: protocol.YouWon}.String())
	assert.Equal(t, "GameStateUpdated(left=1 right=2 ball=3,4)",
		protocol.GameStateUpdate(pong.GameState{LeftPaddle: 1, RightPaddle: 2, Ball: pong.Ball{X: 3, Y: 4}}).String())
}
