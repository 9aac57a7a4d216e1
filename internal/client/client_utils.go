package client

import (
	"fmt"
	"strings"

	"tcpong/internal/lobbyid"
	"tcpong/internal/pong"
)

var usage = fmt.Errorf("use new to create a lobby\nor join <lobby id> to join one")

type Command struct {
	New     bool
	LobbyID string
}

// ParseCommand reads the arguments "new" or "join <lobby id>". Lobby ids are
// accepted in any case.
func ParseCommand(args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, usage
	}
	switch args[0] {
	case "new", "n":
		if len(args) != 1 {
			return Command{}, usage
		}
		return Command{New: true}, nil
	case "join", "j":
		if len(args) != 2 {
			return Command{}, usage
		}
		id := strings.ToUpper(args[1])
		if !lobbyid.Valid(id) {
			return Command{}, fmt.Errorf("%q is not a lobby id", args[1])
		}
		return Command{LobbyID: id}, nil
	default:
		return Command{}, usage
	}
}

// PaddleFor returns the paddle position that centres the paddle on row y.
func PaddleFor(y uint8) uint8 {
	top := int(y) - int(pong.PaddleHeight)/2
	switch {
	case top < 0:
		return 0
	case top > int(pong.MaxPaddle):
		return pong.MaxPaddle
	default:
		return uint8(top)
	}
}
