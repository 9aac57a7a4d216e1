package netwrk

import (
	"bufio"
	"bytes"
	"io"
	"net"
	"time"

	"github.com/gorilla/websocket"

	"tcpong/internal/protocol"
)

// transport carries raw client messages in and server messages out.
// ReadMessage returns io.EOF once the peer has closed cleanly.
type transport interface {
	ReadMessage() ([]byte, error)
	WriteMessage(m protocol.ServerMessage) error
	RemoteAddr() string
	Close() error
}

// tcpTransport splits the incoming stream on the fixed size implied by each
// header byte and writes delimiter-terminated frames.
type tcpTransport struct {
	conn         net.Conn
	scanner      *bufio.Scanner
	writeTimeout time.Duration
}

func newTCPTransport(conn net.Conn, writeTimeout time.Duration) *tcpTransport {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 512), 4096)
	scanner.Split(protocol.SplitClientFrames)
	return &tcpTransport{
		conn:         conn,
		scanner:      scanner,
		writeTimeout: writeTimeout,
	}
}

func (t *tcpTransport) ReadMessage() ([]byte, error) {
	if t.scanner.Scan() {
		return bytes.Clone(t.scanner.Bytes()), nil
	}
	if err := t.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

func (t *tcpTransport) WriteMessage(m protocol.ServerMessage) error {
	if t.writeTimeout > 0 {
		if err := t.conn.SetWriteDeadline(time.Now().Add(t.writeTimeout)); err != nil {
			return err
		}
	}
	_, err := t.conn.Write(protocol.Frame(m))
	return err
}

func (t *tcpTransport) RemoteAddr() string { return t.conn.RemoteAddr().String() }

func (t *tcpTransport) Close() error { return t.conn.Close() }

// wsTransport maps one binary websocket message to one protocol message in
// each direction, so no delimiter is written.
type wsTransport struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
}

// Well above MaxClientMessageSize so a malformed message is decoded and
// dropped. Only something larger closes the connection.
const wsReadLimit = 512

func newWSTransport(conn *websocket.Conn, writeTimeout time.Duration) *wsTransport {
	conn.SetReadLimit(wsReadLimit)
	return &wsTransport{conn: conn, writeTimeout: writeTimeout}
}

func (t *wsTransport) ReadMessage() ([]byte, error) {
	_, b, err := t.conn.ReadMessage()
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
		return nil, io.EOF
	}
	return b, err
}

func (t *wsTransport) WriteMessage(m protocol.ServerMessage) error {
	if t.writeTimeout > 0 {
		if err := t.conn.SetWriteDeadline(time.Now().Add(t.writeTimeout)); err != nil {
			return err
		}
	}
	return t.conn.WriteMessage(websocket.BinaryMessage, m.Encode())
}

func (t *wsTransport) RemoteAddr() string { return t.conn.RemoteAddr().String() }

func (t *wsTransport) Close() error { return t.conn.Close() }
