package server

import (
	"bytes"
	"io"
	"log/slog"
	"net"

	"micro-http/application/http"
	"micro-http/application/http/status"
	"micro-http/transport"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

// Conn is a single accepted connection.
// It owns the socket: Close releases it whether or not a response was sent.
// One response per Conn is all HTTP/1.0 framing allows.
type Conn struct {
	con        transport.Conn
	remoteAddr net.Addr

	raw        []byte
	request    string
	hasRequest bool
	parseErr   error

	closed bool

	enc    *http.ResponseEncoder
	clock  clock.Clock
	logger *slog.Logger

	opts Options
}

func newConn(con transport.Conn, logger *slog.Logger, clock clock.Clock, opts Options) (*Conn, error) {
	remoteAddr := con.RemoteAddr()
	logger = logger.With("conn", remoteAddr)

	if timeout := opts.Timeout.ReadTimeout; timeout > 0 {
		con.SetReadDeadLine(clock.Now().Add(timeout))
	}

	raw, err := drain(con, opts.ReadBufferSize, opts.TimeoutIsDrained)
	if err != nil {
		if err := con.Close(); err != nil {
			logger.Error("error when closing connection", "error", err)
		}
		return nil, newError(ErrRead, err)
	}

	c := &Conn{
		con:        con,
		remoteAddr: remoteAddr,
		raw:        raw,
		enc:        http.NewResponseEncoder(con, opts.Encode),
		clock:      clock,
		logger:     logger,
		opts:       opts,
	}

	c.request, c.hasRequest, err = http.ScanRequestTarget(raw, http.DecodeOptions{
		OnMalformedLine: func(line []byte) {
			logger.Warn("invalid GET line", "line", string(line))
		},
	})
	if err != nil {
		c.parseErr = newError(ErrParse, err)
		logger.Warn("could not parse request", "error", err)
	}

	logger.Debug("accepted connection", "bytes", len(raw), "request", c.request)

	return c, nil
}

// drain reads until the peer has nothing more pending.
// A read shorter than the buffer, an empty read, would-block
// and end of stream all end it normally.
func drain(con transport.Conn, bufSize int, timeoutIsDrained bool) ([]byte, error) {
	var raw []byte
	buf := make([]byte, bufSize)

	for {
		n, err := con.TryRead(buf)
		raw = append(raw, buf[:n]...)

		switch {
		case err == nil:
		case errors.Is(err, transport.ErrWouldBlock), errors.Is(err, io.EOF):
			return raw, nil
		case timeoutIsDrained && errors.Is(err, transport.ErrDeadLineExceeded):
			return raw, nil
		default:
			return nil, errors.Wrapf(err, "draining request after %d bytes", len(raw))
		}

		if n < len(buf) {
			return raw, nil
		}
	}
}

func (c *Conn) RemoteAddr() net.Addr { return c.remoteAddr }

// Request returns the target of the GET line the client sent, e.g. "/cat.txt".
// ok is false when no well-formed GET line arrived.
func (c *Conn) Request() (target string, ok bool) { return c.request, c.hasRequest }

// ParseErr reports why the request bytes could not be decoded, if they could not.
// Such a connection has no request but can still be responded to.
func (c *Conn) ParseErr() error { return c.parseErr }

// Raw returns a copy of every byte drained from the client.
func (c *Conn) Raw() []byte { return bytes.Clone(c.raw) }

func (c *Conn) RespondOK(body []byte) (uint, error) {
	return c.Respond(status.OK.Text(), body, nil)
}

func (c *Conn) RespondOKStreamed(body io.Reader, length uint) (uint, error) {
	return c.RespondStreamed(status.OK.Text(), body, length, nil)
}

// Respond sends statusText (e.g. "404 Not Found"), a Content-Length header,
// headers as given and body. It returns how many bytes went out,
// which on failure tells how much of the response the client may have seen.
func (c *Conn) Respond(statusText string, body []byte, headers []string) (uint, error) {
	c.setWriteDeadLine()

	n, err := c.enc.Encode(statusText, body, headers)
	if err != nil {
		return n, newError(ErrWrite, err)
	}

	c.logger.Debug("sent response", "status", statusText, "bytes", n)
	return n, nil
}

// RespondStreamed is [Conn.Respond] with a body copied from body in chunks.
// length is sent as Content-Length; a body that does not hold exactly
// length bytes fails with [http.ErrBodyLengthMismatch].
func (c *Conn) RespondStreamed(statusText string, body io.Reader, length uint, headers []string) (uint, error) {
	c.setWriteDeadLine()

	n, err := c.enc.EncodeStreamed(statusText, body, length, headers)
	if err != nil {
		return n, newError(ErrWrite, err)
	}

	c.logger.Debug("sent streamed response", "status", statusText, "bytes", n)
	return n, nil
}

func (c *Conn) setWriteDeadLine() {
	if timeout := c.opts.Timeout.WriteTimeout; timeout > 0 {
		c.con.SetWriteDeadLine(c.clock.Now().Add(timeout))
	}
}

// Close closes the connection. Calling it again is a no-op.
func (c *Conn) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	c.logger.Debug("closing connection")
	if err := c.con.Close(); err != nil {
		return errors.Wrap(err, "closing connection")
	}
	return nil
}
