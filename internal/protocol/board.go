package protocol

import "tcpong/internal/pong"

// The GameStateUpdated payload packs the ball's position and direction for each
// axis into one byte, and both paddles into one byte. These constants stop
// compiling (negative uint8) if the board ever outgrows that layout.
const (
	// height and the vertical direction bit fit in a byte
	_ uint8 = 1<<7 - 1 - pong.GameHeight - 1
	// width and the horizontal direction bit fit in a byte
	_ uint8 = 1<<7 - 1 - pong.GameWidth - 1
	// both paddle positions fit in a byte
	_ uint8 = 1<<4 - 1 - (pong.GameHeight - pong.PaddleHeight) - 1
)
