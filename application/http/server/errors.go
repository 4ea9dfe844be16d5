package server

import (
	"github.com/pkg/errors"
)

// Every error returned by this package matches exactly one of these with [errors.Is].
var (
	// ErrBind means the listening socket could not be set up.
	ErrBind = errors.New("bind failed")
	// ErrAccept is an OS failure while polling for a connection.
	// Callers usually stop serving on it.
	ErrAccept = errors.New("accept failed")
	// ErrRead is a failure while draining a freshly accepted connection.
	// The connection is already closed when it is returned.
	ErrRead = errors.New("read failed")
	// ErrParse means the request bytes could not be decoded.
	// It is never returned; see [Conn.ParseErr].
	ErrParse = errors.New("parse failed")
	// ErrWrite is a failure while sending a response.
	// Bytes already on the wire stay there.
	ErrWrite = errors.New("write failed")
)

type Error struct {
	kind  error
	cause error
}

func newError(kind, cause error) *Error {
	return &Error{kind: kind, cause: cause}
}

func (e *Error) Error() string {
	if e.cause == nil {
		return e.kind.Error()
	}
	return e.kind.Error() + ": " + e.cause.Error()
}

// Kind returns the sentinel this error matches.
func (e *Error) Kind() error { return e.kind }

func (e *Error) Cause() error  { return e.cause }
func (e *Error) Unwrap() error { return e.cause }

func (e *Error) Is(target error) bool { return target == e.kind }
