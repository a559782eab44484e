// Package net wraps client TCP sockets with the serialized read/write
// and idempotent-shutdown contract required by the connection lifecycle
// manager.
package net

import (
	"bufio"
	"net"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Connection represents one client socket. All reads and all writes on
// a single Connection are serialized by writeMu/the caller's own
// sequential read loop, so the same Connection never has two in-flight
// reads or writes concurrently.
type Connection struct {
	ID string

	conn    net.Conn
	reader  *bufio.Reader
	writeMu sync.Mutex
	active  atomic.Bool

	CountryID int32
}

// NewConnection wraps an accepted net.Conn.
func NewConnection(conn net.Conn) *Connection {
	c := &Connection{
		ID:     uuid.New().String(),
		conn:   conn,
		reader: bufio.NewReader(conn),
	}
	c.active.Store(true)
	return c
}

// ReadLine reads one '\n'-terminated line, without the terminator. It
// is the caller's responsibility to issue reads sequentially; Connection
// does not itself guard against concurrent ReadLine calls.
func (c *Connection) ReadLine() (string, error) {
	line, err := c.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return trimNewline(line), nil
}

// Write sends bytes to the peer, serialized against concurrent writes
// from other goroutines (the registry's ShutdownAll does not write, but
// nothing prevents future writers from sharing a Connection).
func (c *Connection) Write(b []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_, err := c.conn.Write(b)
	return err
}

// Active reports whether the connection has not yet been shut down.
func (c *Connection) Active() bool {
	return c.active.Load()
}

// Shutdown is idempotent: it flips the active flag and closes the
// socket. Further read/write attempts return an error rather than
// panicking or blocking.
func (c *Connection) Shutdown() error {
	if !c.active.CompareAndSwap(true, false) {
		return nil
	}
	return c.conn.Close()
}

func trimNewline(s string) string {
	n := len(s)
	if n > 0 && s[n-1] == '\n' {
		n--
	}
	if n > 0 && s[n-1] == '\r' {
		n--
	}
	return s[:n]
}
