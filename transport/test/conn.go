// Package test holds conformance suites shared by transport implementations.
package test

import (
	"errors"
	"io"
	"time"

	"micro-http/transport"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"
)

// ConnTestSuite checks a connected pair of [transport.Conn].
// Embedders set C1 and C2 after calling SetupTest.
type ConnTestSuite struct {
	suite.Suite
	C1, C2 transport.Conn
	Clock  clock.Clock

	// IdleTimeouts tells that an idle TryRead reports a deadline
	// instead of would-block on this transport.
	IdleTimeouts bool

	done  chan struct{}
	timer *time.Timer
}

func (s *ConnTestSuite) SetupTest() {
	s.done = make(chan struct{})
	s.Clock = clock.New() // Sockets only understand real time.

	s.timer = time.AfterFunc(5*time.Second, func() {
		select {
		case <-s.done:
		default:
			s.FailNow("timeout exceeded")
		}
	})
}

func (s *ConnTestSuite) TearDownTest() {
	defer goleak.VerifyNone(s.T())
	for _, c := range []transport.Conn{s.C1, s.C2} {
		if err := c.Close(); err != nil {
			s.ErrorIs(err, transport.ErrConnClosed)
		}
	}
	close(s.done)
	s.timer.Stop()
}

func (s *ConnTestSuite) isIdle(err error) bool {
	if errors.Is(err, transport.ErrWouldBlock) {
		return true
	}
	return s.IdleTimeouts && errors.Is(err, transport.ErrDeadLineExceeded)
}

// tryReadEventually retries TryRead while the peer's bytes are in flight.
func (s *ConnTestSuite) tryReadEventually(c transport.Conn, p []byte) (int, error) {
	for range 100 {
		n, err := c.TryRead(p)
		if !s.isIdle(err) {
			return n, err
		}
		time.Sleep(10 * time.Millisecond)
	}
	return 0, transport.ErrWouldBlock
}

func (s *ConnTestSuite) TestReadWrite() {
	data := []byte("Hello, World!")

	n, err := s.C1.Write(data)
	s.Require().NoError(err)
	s.Equal(len(data), n)

	buf := make([]byte, len(data))
	_, err = io.ReadFull(s.C2, buf)
	s.Require().NoError(err)
	s.Equal(data, buf)
}

func (s *ConnTestSuite) TestTryReadIdle() {
	n, err := s.C2.TryRead(make([]byte, 10))
	s.True(s.isIdle(err), "unexpected error: %v", err)
	s.Zero(n)
}

func (s *ConnTestSuite) TestTryReadPartial() {
	data := []byte("Hello, World!")

	_, err := s.C1.Write(data)
	s.Require().NoError(err)

	result := make([]byte, 0, len(data))
	buf := make([]byte, 5)
	for len(result) < len(data) {
		n, err := s.tryReadEventually(s.C2, buf)
		s.Require().NoError(err)
		s.LessOrEqual(n, len(buf))
		result = append(result, buf[:n]...)
	}
	s.Equal(data, result)
}

func (s *ConnTestSuite) TestTryReadAfterPeerClose() {
	_, err := s.C1.Write([]byte("bye"))
	s.Require().NoError(err)
	s.Require().NoError(s.C1.Close())

	buf := make([]byte, 10)
	n, err := s.tryReadEventually(s.C2, buf)
	s.Require().NoError(err)
	s.Equal("bye", string(buf[:n]))

	n, err = s.tryReadEventually(s.C2, buf)
	s.ErrorIs(err, io.EOF)
	s.Zero(n)
}

func (s *ConnTestSuite) TestClose() {
	s.Require().NoError(s.C1.Close())

	buf := make([]byte, 10)

	n, err := s.C1.Read(buf)
	s.ErrorIs(err, transport.ErrConnClosed)
	s.Zero(n)

	n, err = s.C1.TryRead(buf)
	s.ErrorIs(err, transport.ErrConnClosed)
	s.Zero(n)

	n, err = s.C1.Write(buf)
	s.ErrorIs(err, transport.ErrConnClosed)
	s.Zero(n)
}

func (s *ConnTestSuite) TestReadDeadLine() {
	s.C1.SetReadDeadLine(s.Clock.Now().Add(-time.Second))

	b := make([]byte, 1)
	n, err := s.C1.Read(b)
	s.ErrorIs(err, transport.ErrDeadLineExceeded)
	s.Zero(n)

	n, err = s.C1.TryRead(b)
	s.ErrorIs(err, transport.ErrDeadLineExceeded)
	s.Zero(n)
}

func (s *ConnTestSuite) TestWriteDeadLine() {
	s.C1.SetWriteDeadLine(s.Clock.Now().Add(-time.Second))

	b := make([]byte, 1)
	n, err := s.C1.Write(b)
	s.ErrorIs(err, transport.ErrDeadLineExceeded)
	s.Zero(n)
}

func (s *ConnTestSuite) TestAddr() {
	local1, remote1 := s.C1.LocalAddr(), s.C1.RemoteAddr()
	local2, remote2 := s.C2.LocalAddr(), s.C2.RemoteAddr()

	s.Equal(local1.String(), remote2.String())
	s.Equal(local2.String(), remote1.String())
}
