package protocol

import (
	"bufio"
	"errors"
	"io"
)

// Delimiter terminates every server message. No encoded server byte can take
// this value: headers stay below 0x50, packed game state below 0x80 and lobby
// ids are ASCII.
const Delimiter byte = 0xFF

// Frame encodes m and appends the delimiter.
func Frame(m ServerMessage) []byte {
	return append(m.Encode(), Delimiter)
}

// ReadFrame reads one delimited server message and returns it without the
// delimiter. A stream that ends part way through a message yields
// io.ErrUnexpectedEOF.
func ReadFrame(r *bufio.Reader) ([]byte, error) {
	b, err := r.ReadBytes(Delimiter)
	if err != nil {
		if errors.Is(err, io.EOF) && len(b) > 0 {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return b[:len(b)-1], nil
}

// SplitClientFrames is a bufio.SplitFunc that yields one client message per
// token. Client messages carry no delimiter; their size follows from the
// header byte. Bytes starting with an unknown header are returned as a single
// token so the caller's decoder can reject them.
func SplitClientFrames(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if len(data) == 0 {
		return 0, nil, nil
	}
	n, ok := ClientFrameLength(data[0])
	if !ok {
		return len(data), data, nil
	}
	if len(data) >= n {
		return n, data[:n], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
