package server

import (
	"log/slog"
	"net"

	"micro-http/transport"
	"micro-http/transport/tcp"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

// Listener hands out one [Conn] per accepted connection.
// It is not safe for concurrent use; polling is expected from a single loop.
type Listener struct {
	l transport.ConnListener

	logger *slog.Logger
	clock  clock.Clock
	opts   Options
}

// Listen binds a TCP listener to address (host:port) in non-blocking mode.
func Listen(address string, logger *slog.Logger, clock clock.Clock, opts Options) (*Listener, error) {
	l, err := tcp.Listen(address, clock, opts.TCP)
	if err != nil {
		return nil, newError(ErrBind, err)
	}

	logger.Debug("listening", "addr", l.Addr())

	return NewListener(l, logger, clock, opts), nil
}

func NewListener(
	l transport.ConnListener,
	logger *slog.Logger,
	clock clock.Clock,
	opts Options,
) *Listener {
	if opts.ReadBufferSize <= 0 {
		opts.ReadBufferSize = DefaultReadBufferSize
	}

	return &Listener{
		l:      l,
		logger: logger,
		clock:  clock,
		opts:   opts,
	}
}

func (l *Listener) SetNonblocking(nonblocking bool) error {
	if err := l.l.SetNonblocking(nonblocking); err != nil {
		return newError(ErrAccept, errors.Wrap(err, "setting accept mode"))
	}
	return nil
}

// Poll makes a single accept attempt.
// It returns (nil, nil) when nobody is waiting.
// When somebody is, the request is already drained and parsed by the time Poll returns.
func (l *Listener) Poll() (*Conn, error) {
	con, err := l.l.TryAccept()
	switch {
	case errors.Is(err, transport.ErrWouldBlock):
		return nil, nil
	case err != nil:
		return nil, newError(ErrAccept, err)
	}

	return newConn(con, l.logger, l.clock, l.opts)
}

func (l *Listener) Addr() net.Addr { return l.l.Addr() }

func (l *Listener) Close() error {
	l.logger.Debug("closing listener")
	return l.l.Close()
}
