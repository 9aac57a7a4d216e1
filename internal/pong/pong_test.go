package pong_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/rand"

	"tcpong/internal/pong"
)

func TestNewGameState(t *testing.T) {
	s := pong.NewGameState()
	assert.Equal(t, uint8(0), s.LeftPaddle)
	assert.Equal(t, uint8(0), s.RightPaddle)
	assert.Equal(t, pong.Ball{X: 25, Y: 5, MovingRight: true, MovingDown: true}, s.Ball)
}

func TestStep(t *testing.T) {
	tests := []struct {
		name    string
		state   pong.GameState
		want    pong.GameState
		outcome pong.Outcome
	}{
		{
			name:  "free flight",
			state: pong.GameState{Ball: pong.Ball{X: 10, Y: 4, MovingRight: true, MovingDown: false}},
			want:  pong.GameState{Ball: pong.Ball{X: 11, Y: 3, MovingRight: true, MovingDown: false}},
		},
		{
			name:  "left paddle hit reverses",
			state: pong.GameState{LeftPaddle: 0, Ball: pong.Ball{X: 1, Y: 3, MovingRight: false, MovingDown: true}},
			want:  pong.GameState{LeftPaddle: 0, Ball: pong.Ball{X: 2, Y: 4, MovingRight: true, MovingDown: true}},
		},
		{
			name:  "left paddle bottom edge still hits",
			state: pong.GameState{LeftPaddle: 0, Ball: pong.Ball{X: 1, Y: 4, MovingRight: false, MovingDown: true}},
			want:  pong.GameState{LeftPaddle: 0, Ball: pong.Ball{X: 2, Y: 5, MovingRight: true, MovingDown: true}},
		},
		{
			name:    "left paddle miss",
			state:   pong.GameState{LeftPaddle: 6, Ball: pong.Ball{X: 1, Y: 3, MovingRight: false, MovingDown: true}},
			want:    pong.GameState{LeftPaddle: 6, Ball: pong.Ball{X: 0, Y: 4, MovingRight: false, MovingDown: true}},
			outcome: pong.LeftMissed,
		},
		{
			name:    "left paddle just below ball",
			state:   pong.GameState{LeftPaddle: 4, Ball: pong.Ball{X: 1, Y: 3, MovingRight: false, MovingDown: false}},
			want:    pong.GameState{LeftPaddle: 4, Ball: pong.Ball{X: 0, Y: 2, MovingRight: false, MovingDown: false}},
			outcome: pong.LeftMissed,
		},
		{
			name:  "right paddle hit reverses",
			state: pong.GameState{RightPaddle: 6, Ball: pong.Ball{X: 49, Y: 8, MovingRight: true, MovingDown: false}},
			want:  pong.GameState{RightPaddle: 6, Ball: pong.Ball{X: 48, Y: 7, MovingRight: false, MovingDown: false}},
		},
		{
			name:    "right paddle miss",
			state:   pong.GameState{RightPaddle: 0, Ball: pong.Ball{X: 49, Y: 8, MovingRight: true, MovingDown: false}},
			want:    pong.GameState{RightPaddle: 0, Ball: pong.Ball{X: 50, Y: 7, MovingRight: true, MovingDown: false}},
			outcome: pong.RightMissed,
		},
		{
			name:  "top wall bounces",
			state: pong.GameState{Ball: pong.Ball{X: 20, Y: 0, MovingRight: true, MovingDown: false}},
			want:  pong.GameState{Ball: pong.Ball{X: 21, Y: 1, MovingRight: true, MovingDown: true}},
		},
		{
			name:  "bottom wall bounces",
			state: pong.GameState{Ball: pong.Ball{X: 20, Y: 10, MovingRight: false, MovingDown: true}},
			want:  pong.GameState{Ball: pong.Ball{X: 19, Y: 9, MovingRight: false, MovingDown: false}},
		},
		{
			name:  "corner hit flips both",
			state: pong.GameState{LeftPaddle: 0, Ball: pong.Ball{X: 1, Y: 0, MovingRight: false, MovingDown: false}},
			want:  pong.GameState{LeftPaddle: 0, Ball: pong.Ball{X: 2, Y: 1, MovingRight: true, MovingDown: true}},
		},
		{
			name:    "out of range paddle does not wrap into a hit",
			state:   pong.GameState{LeftPaddle: 253, Ball: pong.Ball{X: 1, Y: 1, MovingRight: false, MovingDown: true}},
			want:    pong.GameState{LeftPaddle: 253, Ball: pong.Ball{X: 0, Y: 2, MovingRight: false, MovingDown: true}},
			outcome: pong.LeftMissed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := tt.state
			outcome := pong.Step(&state)
			assert.Equal(t, tt.outcome, outcome)
			assert.Equal(t, tt.want, state)
		})
	}
}

func TestStep_RallyStaysInBounds(t *testing.T) {
	// paddles that follow the ball never miss
	state := pong.NewGameState()
	for i := 0; i < 1000; i++ {
		follow := func(y uint8) uint8 {
			if y < pong.PaddleHeight/2 {
				return 0
			}
			return min(y-pong.PaddleHeight/2, pong.MaxPaddle)
		}
		state.LeftPaddle = follow(state.Ball.Y)
		state.RightPaddle = follow(state.Ball.Y)

		outcome := pong.Step(&state)
		if !assert.Equal(t, pong.None, outcome, "tick %d", i) {
			return
		}
		assert.Less(t, state.Ball.X, pong.GameWidth)
		assert.Less(t, state.Ball.Y, pong.GameHeight)
	}
}

func TestRandomServe(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	seen := map[[2]bool]bool{}
	for i := 0; i < 64; i++ {
		s := pong.RandomServe(r)
		assert.Equal(t, pong.GameWidth/2, s.Ball.X)
		assert.Equal(t, pong.GameHeight/2, s.Ball.Y)
		seen[[2]bool{s.Ball.MovingRight, s.Ball.MovingDown}] = true
	}
	assert.Len(t, seen, 4)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "none", pong.None.String())
	assert.Equal(t, "left_missed", pong.LeftMissed.String())
	assert.Equal(t, "right_missed", pong.RightMissed.String())
}
