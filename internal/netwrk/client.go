package netwrk

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"tcpong/internal/protocol"
)

// ClientMessage is anything a client can put on the wire.
type ClientMessage interface {
	fmt.Stringer
	Encode() []byte
}

// ClientConn is the player's end of a TCP game connection.
type ClientConn struct {
	conn net.Conn
	r    *bufio.Reader

	mu sync.Mutex
}

func Dial(ctx context.Context, addr string) (*ClientConn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", addr, err)
	}
	return NewClientConn(conn), nil
}

func NewClientConn(conn net.Conn) *ClientConn {
	return &ClientConn{conn: conn, r: bufio.NewReader(conn)}
}

// Send writes m as one message. Safe for concurrent use.
func (c *ClientConn) Send(m ClientMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.conn.Write(m.Encode()); err != nil {
		return fmt.Errorf("send %s: %w", m, err)
	}
	return nil
}

// ReadFrame returns the next server message without its delimiter. It must
// not be called concurrently.
func (c *ClientConn) ReadFrame() ([]byte, error) {
	return protocol.ReadFrame(c.r)
}

func (c *ClientConn) SetReadDeadline(t time.Time) error {
	return c.conn.SetReadDeadline(t)
}

func (c *ClientConn) Close() error {
	return c.conn.Close()
}
