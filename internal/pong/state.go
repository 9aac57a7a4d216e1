package pong

// Board dimensions shared by server and client. The wire format packs these
// into sub-byte fields, see protocol's board checks.
const (
	GameWidth    uint8 = 51
	GameHeight   uint8 = 11
	PaddleHeight uint8 = 5
)

// MaxPaddle is the highest valid paddle position (top edge of the paddle).
const MaxPaddle = GameHeight - PaddleHeight

type GameState struct {
	LeftPaddle  uint8
	RightPaddle uint8
	Ball        Ball
}

type Ball struct {
	X           uint8
	Y           uint8
	MovingRight bool
	MovingDown  bool
}

// NewGameState returns the serve position: paddles at the top, ball in the
// middle of the board heading right and down.
func NewGameState() GameState {
	return GameState{
		LeftPaddle:  0,
		RightPaddle: 0,
		Ball: Ball{
			X:           GameWidth / 2,
			Y:           GameHeight / 2,
			MovingRight: true,
			MovingDown:  true,
		},
	}
}
