package pong

import (
	"golang.org/x/exp/rand"
)

type Outcome int

const (
	None Outcome = iota
	// LeftMissed means the ball got past the left paddle, the right player wins.
	LeftMissed
	// RightMissed means the ball got past the right paddle, the left player wins.
	RightMissed
)

func (o Outcome) String() string {
	switch o {
	case LeftMissed:
		return "left_missed"
	case RightMissed:
		return "right_missed"
	default:
		return "none"
	}
}

// RandomServe returns the serve position with a random ball direction.
func RandomServe(r *rand.Rand) GameState {
	s := NewGameState()
	s.Ball.MovingRight = r.Intn(2) == 1
	s.Ball.MovingDown = r.Intn(2) == 1
	return s
}

// Step advances the ball by one tick.
//
// In the column next to each paddle the ball either bounces off the paddle or
// the game is lost for that side. The top and bottom rows always bounce. The
// ball then moves one unit along each axis. After a miss the caller is
// expected to stop stepping this state.
func Step(state *GameState) Outcome {
	outcome := None
	ball := &state.Ball

	if ball.X == 1 {
		if covers(state.LeftPaddle, ball.Y) {
			ball.MovingRight = !ball.MovingRight
		} else {
			outcome = LeftMissed
		}
	}
	if ball.X == GameWidth-2 {
		if covers(state.RightPaddle, ball.Y) {
			ball.MovingRight = !ball.MovingRight
		} else {
			outcome = RightMissed
		}
	}

	if ball.Y == 0 || ball.Y == GameHeight-1 {
		ball.MovingDown = !ball.MovingDown
	}

	if ball.MovingRight {
		ball.X++
	} else {
		ball.X--
	}
	if ball.MovingDown {
		ball.Y++
	} else {
		ball.Y--
	}

	return outcome
}

// covers reports whether a paddle whose top edge is at paddle spans row y.
// Paddle positions come straight from clients, so widen before adding.
func covers(paddle, y uint8) bool {
	top := int(paddle)
	return top <= int(y) && int(y) < top+int(PaddleHeight)
}
