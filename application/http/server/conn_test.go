package server

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"syscall"
	"testing"
	"time"

	"micro-http/application/http"
	"micro-http/transport"
	"micro-http/transport/stub"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/suite"
)

type ConnTestSuite struct {
	suite.Suite

	logger *slog.Logger
	clock  *clock.Mock
	opts   Options

	peer stub.Addr
}

func TestConnTestSuite(t *testing.T) {
	suite.Run(t, new(ConnTestSuite))
}

func (s *ConnTestSuite) SetupTest() {
	s.logger = slog.New(slog.DiscardHandler)
	s.clock = clock.NewMock()
	s.opts = DefaultOptions
	s.opts.TimeoutIsDrained = false
	s.peer = stub.Addr{Name: "1.2.3.4:9435"}
}

func (s *ConnTestSuite) newConn(steps ...stub.Step) (*Conn, *stub.Conn, error) {
	con := stub.NewConn(s.peer, steps...)
	c, err := newConn(con, s.logger, s.clock, s.opts)
	return c, con, err
}

func (s *ConnTestSuite) TestDrain() {
	full := bytes.Repeat([]byte{'a'}, DefaultReadBufferSize)

	testcases := []struct {
		desc      string
		steps     []stub.Step
		expected  []byte
		remaining bool // whether the drain must leave scripted reads untouched.
	}{
		{
			desc:     "nothing sent",
			expected: nil,
		},
		{
			desc:     "single short read",
			steps:    []stub.Step{{Data: []byte("GET / HTTP/1.0\r\n\r\n")}},
			expected: []byte("GET / HTTP/1.0\r\n\r\n"),
		},
		{
			desc: "short read ends the drain",
			steps: []stub.Step{
				{Data: []byte("GET /")},
				{Data: []byte(" HTTP/1.0\r\n\r\n")},
			},
			expected:  []byte("GET /"),
			remaining: true,
		},
		{
			desc: "full reads keep going",
			steps: []stub.Step{
				{Data: full},
				{Data: full},
				{Data: []byte("tail")},
			},
			expected: append(append(bytes.Clone(full), full...), "tail"...),
		},
		{
			desc:     "would-block after a full read",
			steps:    []stub.Step{{Data: full}},
			expected: full,
		},
		{
			desc: "end of stream after a full read",
			steps: []stub.Step{
				{Data: full},
				{Err: io.EOF},
			},
			expected: full,
		},
		{
			desc: "zero byte read",
			steps: []stub.Step{
				{Data: full},
				{},
				{Data: []byte("never read")},
			},
			expected:  full,
			remaining: true,
		},
	}

	for _, tc := range testcases {
		s.Run(tc.desc, func() {
			con := stub.NewConn(s.peer, tc.steps...)

			raw, err := drain(con, DefaultReadBufferSize, false)
			s.Require().NoError(err)
			s.Equal(tc.expected, raw)

			_, err = con.TryRead(make([]byte, 1))
			if tc.remaining {
				s.NoError(err)
			} else {
				s.ErrorIs(err, transport.ErrWouldBlock)
			}
		})
	}
}

func (s *ConnTestSuite) TestConstruct() {
	c, con, err := s.newConn(stub.Step{Data: []byte("GET /cat.txt HTTP/1.0\r\nHost: localhost\r\n\r\n")})
	s.Require().NoError(err)

	target, ok := c.Request()
	s.True(ok)
	s.Equal("/cat.txt", target)
	s.Equal(s.peer, c.RemoteAddr())
	s.NoError(c.ParseErr())
	s.Equal("GET /cat.txt HTTP/1.0\r\nHost: localhost\r\n\r\n", string(c.Raw()))
	s.False(con.Closed())
}

func (s *ConnTestSuite) TestConstructWithoutRequest() {
	c, _, err := s.newConn(stub.Step{Data: []byte("POST /form HTTP/1.0\r\n\r\n")})
	s.Require().NoError(err)

	target, ok := c.Request()
	s.False(ok)
	s.Empty(target)
	s.NoError(c.ParseErr())
}

func (s *ConnTestSuite) TestConstructEmptyTarget() {
	c, _, err := s.newConn(stub.Step{Data: []byte("GET  HTTP/1.0\r\nGET /later HTTP/1.0\r\n\r\n")})
	s.Require().NoError(err)

	target, ok := c.Request()
	s.True(ok)
	s.Empty(target)
	s.NoError(c.ParseErr())
}

func (s *ConnTestSuite) TestConstructInvalidEncoding() {
	c, con, err := s.newConn(stub.Step{Data: []byte("GET /\xff HTTP/1.0\r\n\r\n")})
	s.Require().NoError(err)

	_, ok := c.Request()
	s.False(ok)
	s.ErrorIs(c.ParseErr(), ErrParse)
	s.ErrorIs(c.ParseErr(), http.ErrInvalidEncoding)

	// Still allowed to respond.
	_, err = c.RespondOK([]byte("ok"))
	s.NoError(err)
	s.Equal("HTTP/1.0 200 OK\r\nContent-Length: 2\r\n\r\nok", string(con.Written()))
}

func (s *ConnTestSuite) TestConstructReadError() {
	c, con, err := s.newConn(
		stub.Step{Data: bytes.Repeat([]byte{'a'}, DefaultReadBufferSize)},
		stub.Step{Err: syscall.ECONNRESET},
	)
	s.Nil(c)
	s.ErrorIs(err, ErrRead)
	s.ErrorIs(err, syscall.ECONNRESET)
	s.NotErrorIs(err, ErrParse)
	s.True(con.Closed())
}

func (s *ConnTestSuite) TestReadTimeout() {
	// A short first read would end the drain before the timeout is seen.
	steps := []stub.Step{
		{Data: bytes.Repeat([]byte{'a'}, DefaultReadBufferSize)},
		{Err: transport.ErrDeadLineExceeded},
	}

	s.Run("timeout is an error", func() {
		s.opts.TimeoutIsDrained = false

		c, con, err := s.newConn(steps...)
		s.Nil(c)
		s.ErrorIs(err, ErrRead)
		s.ErrorIs(err, transport.ErrDeadLineExceeded)
		s.True(con.Closed())
	})

	s.Run("timeout means drained", func() {
		s.opts.TimeoutIsDrained = true

		c, con, err := s.newConn(steps...)
		s.Require().NoError(err)
		s.Len(c.Raw(), DefaultReadBufferSize)
		s.False(con.Closed())
	})
}

func (s *ConnTestSuite) TestDeadLines() {
	s.opts.Timeout = TimeoutOptions{
		ReadTimeout:  time.Second,
		WriteTimeout: 2 * time.Second,
	}
	s.clock.Add(time.Hour)

	c, con, err := s.newConn(stub.Step{Data: []byte("GET / HTTP/1.0\r\n\r\n")})
	s.Require().NoError(err)
	s.Equal(s.clock.Now().Add(time.Second), con.ReadDeadLine)
	s.True(con.WriteDeadLine.IsZero())

	s.clock.Add(time.Minute)
	_, err = c.RespondOK(nil)
	s.Require().NoError(err)
	s.Equal(s.clock.Now().Add(2*time.Second), con.WriteDeadLine)
}

func (s *ConnTestSuite) TestNoDeadLinesByDefault() {
	c, con, err := s.newConn()
	s.Require().NoError(err)

	_, err = c.RespondOK(nil)
	s.Require().NoError(err)
	s.True(con.ReadDeadLine.IsZero())
	s.True(con.WriteDeadLine.IsZero())
}

func (s *ConnTestSuite) TestRespond() {
	testcases := []struct {
		desc     string
		respond  func(c *Conn) (uint, error)
		expected string
	}{
		{
			desc:     "ok",
			respond:  func(c *Conn) (uint, error) { return c.RespondOK([]byte("Cats are nice.\n")) },
			expected: "HTTP/1.0 200 OK\r\nContent-Length: 15\r\n\r\nCats are nice.\n",
		},
		{
			desc: "ok streamed",
			respond: func(c *Conn) (uint, error) {
				return c.RespondOKStreamed(strings.NewReader("Cats are nice.\n"), 15)
			},
			expected: "HTTP/1.0 200 OK\r\nContent-Length: 15\r\n\r\nCats are nice.\n",
		},
		{
			desc: "status and headers",
			respond: func(c *Conn) (uint, error) {
				return c.Respond("404 Not Found", []byte("nope"), []string{"Content-Type: text/plain"})
			},
			expected: "HTTP/1.0 404 Not Found\r\nContent-Length: 4\r\nContent-Type: text/plain\r\n\r\nnope",
		},
		{
			desc: "streamed status and headers",
			respond: func(c *Conn) (uint, error) {
				return c.RespondStreamed("404 Not Found", strings.NewReader("nope"), 4, []string{"Content-Type: text/plain"})
			},
			expected: "HTTP/1.0 404 Not Found\r\nContent-Length: 4\r\nContent-Type: text/plain\r\n\r\nnope",
		},
	}

	for _, tc := range testcases {
		s.Run(tc.desc, func() {
			c, con, err := s.newConn()
			s.Require().NoError(err)

			n, err := tc.respond(c)
			s.Require().NoError(err)
			s.Equal(tc.expected, string(con.Written()))
			s.Equal(uint(len(tc.expected)), n)
		})
	}
}

func (s *ConnTestSuite) TestRespondWriteError() {
	c, con, err := s.newConn()
	s.Require().NoError(err)

	con.FailWriteAt = 10
	con.WriteErr = syscall.ECONNRESET

	n, err := c.RespondOK([]byte("Cats are nice.\n"))
	s.ErrorIs(err, ErrWrite)
	s.ErrorIs(err, syscall.ECONNRESET)
	s.Equal(uint(10), n)
	s.Equal("HTTP/1.0 2", string(con.Written()))
}

func (s *ConnTestSuite) TestRespondStreamedLengthMismatch() {
	c, con, err := s.newConn()
	s.Require().NoError(err)

	n, err := c.RespondOKStreamed(strings.NewReader("ab"), 4)
	s.ErrorIs(err, ErrWrite)
	s.ErrorIs(err, http.ErrBodyLengthMismatch)
	s.Equal(uint(len(con.Written())), n)
}

func (s *ConnTestSuite) TestRespondAfterClose() {
	c, _, err := s.newConn()
	s.Require().NoError(err)
	s.Require().NoError(c.Close())

	_, err = c.RespondOK([]byte("late"))
	s.ErrorIs(err, ErrWrite)
	s.ErrorIs(err, transport.ErrConnClosed)
}

func (s *ConnTestSuite) TestClose() {
	c, con, err := s.newConn()
	s.Require().NoError(err)

	s.NoError(c.Close())
	s.NoError(c.Close())
	s.True(con.Closed())
	s.Equal(1, con.CloseCount())
}
