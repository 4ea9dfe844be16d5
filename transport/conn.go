package transport

import (
	"errors"
	"net"
	"time"
)

var (
	ErrConnClosed         = errors.New("connection is closed")
	ErrConnListenerClosed = errors.New("conn listener is closed")
	ErrDeadLineExceeded   = errors.New("deadline exceeded")

	// ErrWouldBlock is returned by non-suspending operations
	// when nothing is ready right now. It is not a failure.
	ErrWouldBlock = errors.New("operation would block")
)

type Conn interface {
	Read(p []byte) (n int, err error)
	Write(p []byte) (n int, err error)
	Close() error

	// TryRead reads whatever is immediately available without suspending.
	// It returns [ErrWouldBlock] when no byte is pending
	// and (0, io.EOF) once the peer has shut down its side.
	TryRead(p []byte) (n int, err error)

	LocalAddr() net.Addr
	RemoteAddr() net.Addr

	SetReadDeadLine(t time.Time)
	SetWriteDeadLine(t time.Time)
}

type ConnListener interface {
	// TryAccept performs a single accept attempt.
	// In non-blocking mode it returns [ErrWouldBlock] when no peer is waiting.
	TryAccept() (Conn, error)
	SetNonblocking(nonblocking bool) error

	Addr() net.Addr
	Close() error
}
