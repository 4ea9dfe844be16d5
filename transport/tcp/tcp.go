// Package tcp implements [transport.ConnListener] and [transport.Conn]
// on top of operating system TCP sockets.
//
// Accepting and draining never suspend the caller:
// on unix the raw socket is driven directly,
// elsewhere a short deadline stands in for the would-block signal.
package tcp

import (
	"net"
	"os"
	"syscall"
	"time"

	"micro-http/transport"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

// DefaultDrainWindow is how long a non-suspending operation may wait
// on platforms that lack a raw non-blocking path.
const DefaultDrainWindow = 10 * time.Millisecond

type Options struct {
	// DrainWindow is ignored on unix.
	DrainWindow time.Duration
}

type Listener struct {
	ln  *net.TCPListener
	raw syscall.RawConn

	nonblocking bool
	closed      bool

	clock clock.Clock
	opts  Options
}

var _ transport.ConnListener = (*Listener)(nil)

// Listen binds a listening socket to address in non-blocking mode.
func Listen(address string, clock clock.Clock, opts Options) (*Listener, error) {
	if opts.DrainWindow <= 0 {
		opts.DrainWindow = DefaultDrainWindow
	}

	ln, err := net.Listen(transport.TCP.Network(), address)
	if err != nil {
		return nil, errors.Wrapf(err, "binding %q", address)
	}

	tl := ln.(*net.TCPListener)
	raw, err := tl.SyscallConn()
	if err != nil {
		tl.Close()
		return nil, errors.Wrap(err, "getting raw listener")
	}

	return &Listener{
		ln:          tl,
		raw:         raw,
		nonblocking: true,
		clock:       clock,
		opts:        opts,
	}, nil
}

func (l *Listener) SetNonblocking(nonblocking bool) error {
	if l.closed {
		return transport.ErrConnListenerClosed
	}
	l.nonblocking = nonblocking
	return nil
}

func (l *Listener) TryAccept() (transport.Conn, error) {
	if l.closed {
		return nil, transport.ErrConnListenerClosed
	}

	c, err := l.accept()
	if err != nil {
		if errors.Is(err, transport.ErrConnClosed) {
			return nil, transport.ErrConnListenerClosed
		}
		return nil, err
	}

	return newConn(c, l.clock, l.opts)
}

func (l *Listener) Addr() net.Addr { return l.ln.Addr() }

func (l *Listener) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	return l.ln.Close()
}

type conn struct {
	c   *net.TCPConn
	raw syscall.RawConn

	// rdeadline mirrors the caller's read deadline
	// so a drain window never extends it.
	rdeadline time.Time

	clock clock.Clock
	opts  Options
}

var _ transport.Conn = (*conn)(nil)

func newConn(c *net.TCPConn, clock clock.Clock, opts Options) (*conn, error) {
	raw, err := c.SyscallConn()
	if err != nil {
		c.Close()
		return nil, errors.Wrap(err, "getting raw connection")
	}

	return &conn{c: c, raw: raw, clock: clock, opts: opts}, nil
}

func (c *conn) Read(p []byte) (n int, err error) {
	n, err = c.c.Read(p)
	return n, convertErr(err)
}

func (c *conn) Write(p []byte) (n int, err error) {
	n, err = c.c.Write(p)
	return n, convertErr(err)
}

func (c *conn) Close() error {
	if err := c.c.Close(); err != nil {
		return convertErr(err)
	}
	return nil
}

func (c *conn) LocalAddr() net.Addr  { return c.c.LocalAddr() }
func (c *conn) RemoteAddr() net.Addr { return c.c.RemoteAddr() }

func (c *conn) SetReadDeadLine(t time.Time) {
	c.rdeadline = t
	c.c.SetReadDeadline(t)
}

func (c *conn) SetWriteDeadLine(t time.Time) {
	c.c.SetWriteDeadline(t)
}

// convertErr maps net package errors into transport errors.
// Anything else is returned untouched so callers can still match errno values.
func convertErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, os.ErrDeadlineExceeded):
		return transport.ErrDeadLineExceeded
	case errors.Is(err, net.ErrClosed):
		return transport.ErrConnClosed
	}
	return err
}
