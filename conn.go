package zk

import (
	"io"
	"net"
	"time"
)

// NetworkConn is the byte stream the client talks to a server over.
// Deadlines are relative durations, a zero duration clears the deadline.
type NetworkConn interface {
	io.Reader
	io.Writer
	io.Closer

	SetReadDeadline(d time.Duration) error
	SetWriteDeadline(d time.Duration) error
}

type tcpConnImpl struct {
	conn net.Conn
}

// NewTCPConn wraps a net.Conn into a NetworkConn.
func NewTCPConn(conn net.Conn) NetworkConn {
	return &tcpConnImpl{
		conn: conn,
	}
}

var _ NetworkConn = &tcpConnImpl{}

func dialTCP(addr string, timeout time.Duration) (NetworkConn, error) {
	netConn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, err
	}
	return NewTCPConn(netConn), nil
}

func (c *tcpConnImpl) Write(p []byte) (int, error) {
	return c.conn.Write(p)
}

func (c *tcpConnImpl) Read(p []byte) (int, error) {
	return c.conn.Read(p)
}

func (c *tcpConnImpl) SetReadDeadline(d time.Duration) error {
	return c.conn.SetReadDeadline(deadlineFrom(d))
}

func (c *tcpConnImpl) SetWriteDeadline(d time.Duration) error {
	return c.conn.SetWriteDeadline(deadlineFrom(d))
}

func deadlineFrom(d time.Duration) time.Time {
	if d == 0 {
		return time.Time{}
	}
	return time.Now().Add(d)
}

func (c *tcpConnImpl) Close() error {
	return c.conn.Close()
}
