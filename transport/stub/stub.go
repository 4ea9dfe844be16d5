// Package stub provides scripted in-memory transports.
// Reads replay a fixed list of outcomes, which makes partial reads,
// would-block and failures reproducible without real sockets.
package stub

import (
	"bytes"
	"io"
	"net"
	"slices"
	"time"

	"micro-http/transport"
)

type Addr struct {
	Name string
}

func (a Addr) Network() string { return "stub" }
func (a Addr) String() string  { return a.Name }

var _ net.Addr = Addr{}

// Step is a single scripted read outcome.
// Data is handed out first. Err is returned once Data is used up.
type Step struct {
	Data []byte
	Err  error
}

type Conn struct {
	steps []Step

	written bytes.Buffer
	// FailWriteAt makes writes fail with WriteErr once that many bytes were accepted.
	// Negative disables it.
	FailWriteAt int
	WriteErr    error

	closed     bool
	closeCount int

	local, remote net.Addr

	ReadDeadLine, WriteDeadLine time.Time
}

var _ transport.Conn = (*Conn)(nil)

func NewConn(remote net.Addr, steps ...Step) *Conn {
	return &Conn{
		steps:       slices.Clone(steps),
		FailWriteAt: -1,
		local:       Addr{Name: "local"},
		remote:      remote,
	}
}

func (c *Conn) TryRead(p []byte) (n int, err error) {
	if c.closed {
		return 0, transport.ErrConnClosed
	}
	if len(c.steps) == 0 {
		return 0, transport.ErrWouldBlock
	}

	step := &c.steps[0]
	n = copy(p, step.Data)
	step.Data = step.Data[n:]

	if len(step.Data) > 0 {
		return n, nil
	}

	err = step.Err
	c.steps = c.steps[1:]
	return n, err
}

func (c *Conn) Read(p []byte) (n int, err error) {
	n, err = c.TryRead(p)
	if err == transport.ErrWouldBlock {
		return n, io.EOF
	}
	return n, err
}

func (c *Conn) Write(p []byte) (n int, err error) {
	if c.closed {
		return 0, transport.ErrConnClosed
	}

	if c.FailWriteAt >= 0 && c.written.Len()+len(p) > c.FailWriteAt {
		n = max(c.FailWriteAt-c.written.Len(), 0)
		c.written.Write(p[:n])
		return n, c.WriteErr
	}

	return c.written.Write(p)
}

func (c *Conn) Close() error {
	c.closeCount++
	if c.closed {
		return transport.ErrConnClosed
	}
	c.closed = true
	return nil
}

func (c *Conn) LocalAddr() net.Addr  { return c.local }
func (c *Conn) RemoteAddr() net.Addr { return c.remote }

func (c *Conn) SetReadDeadLine(t time.Time)  { c.ReadDeadLine = t }
func (c *Conn) SetWriteDeadLine(t time.Time) { c.WriteDeadLine = t }

// Written returns everything written so far.
func (c *Conn) Written() []byte { return c.written.Bytes() }

func (c *Conn) Closed() bool { return c.closed }

// CloseCount reports how many times Close was called.
func (c *Conn) CloseCount() int { return c.closeCount }

type accepted struct {
	conn *Conn
	err  error
}

type Listener struct {
	pending []accepted

	Nonblocking bool
	closed      bool

	addr Addr
}

var _ transport.ConnListener = (*Listener)(nil)

func NewListener(addr Addr) *Listener {
	return &Listener{addr: addr, Nonblocking: true}
}

// Queue makes c available to the next accept.
func (l *Listener) Queue(c *Conn) { l.pending = append(l.pending, accepted{conn: c}) }

// QueueErr makes the next accept fail with err.
func (l *Listener) QueueErr(err error) { l.pending = append(l.pending, accepted{err: err}) }

// TryAccept never blocks, even in blocking mode.
// With nothing queued it reports [transport.ErrWouldBlock].
func (l *Listener) TryAccept() (transport.Conn, error) {
	if l.closed {
		return nil, transport.ErrConnListenerClosed
	}
	if len(l.pending) == 0 {
		return nil, transport.ErrWouldBlock
	}

	next := l.pending[0]
	l.pending = l.pending[1:]
	if next.err != nil {
		return nil, next.err
	}
	return next.conn, nil
}

func (l *Listener) SetNonblocking(nonblocking bool) error {
	if l.closed {
		return transport.ErrConnListenerClosed
	}
	l.Nonblocking = nonblocking
	return nil
}

func (l *Listener) Addr() net.Addr { return l.addr }

func (l *Listener) Close() error {
	l.closed = true
	return nil
}
