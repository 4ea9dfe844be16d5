//go:build unix

package tcp

import (
	"io"
	"net"
	"os"

	"micro-http/transport"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// SpuriousReadTimeouts reports whether an idle read on this platform
// surfaces as a timeout instead of would-block.
// Raw sockets report EAGAIN here, so it never happens.
const SpuriousReadTimeouts = false

func (l *Listener) accept() (*net.TCPConn, error) {
	if !l.nonblocking {
		c, err := l.ln.AcceptTCP()
		return c, convertErr(err)
	}

	var nfd int
	var opErr error

	// Listeners only support Control. The descriptor is already
	// non-blocking, so accept reports EAGAIN instead of waiting.
	err := l.raw.Control(func(fd uintptr) {
		for {
			nfd, _, opErr = unix.Accept(int(fd))
			if opErr != unix.EINTR {
				return
			}
		}
	})
	if err != nil {
		return nil, convertErr(err)
	}

	if err := acceptErr(opErr); err != nil {
		return nil, err
	}

	unix.CloseOnExec(nfd)
	if err := unix.SetNonblock(nfd, true); err != nil {
		unix.Close(nfd)
		return nil, os.NewSyscallError("setnonblock", err)
	}

	// FileConn duplicates the descriptor, so the file is closed either way.
	f := os.NewFile(uintptr(nfd), "tcp")
	defer f.Close()

	c, err := net.FileConn(f)
	if err != nil {
		return nil, errors.Wrap(err, "wrapping accepted socket")
	}

	tc, ok := c.(*net.TCPConn)
	if !ok {
		c.Close()
		return nil, errors.Errorf("accepted socket is not tcp: %T", c)
	}

	return tc, nil
}

// acceptErr maps the errno of a raw accept.
// Only EAGAIN means nothing is waiting. Everything else, ECONNABORTED
// included, is reported to the caller.
func acceptErr(errno error) error {
	switch errno {
	case nil:
		return nil
	case unix.EAGAIN:
		return transport.ErrWouldBlock
	default:
		return os.NewSyscallError("accept", errno)
	}
}

func (c *conn) TryRead(p []byte) (int, error) {
	var n int
	var opErr error

	err := c.raw.Read(func(fd uintptr) bool {
		for {
			n, opErr = unix.Read(int(fd), p)
			if opErr != unix.EINTR {
				return true
			}
		}
	})
	if err != nil {
		return 0, convertErr(err)
	}

	switch {
	case opErr == unix.EAGAIN:
		return 0, transport.ErrWouldBlock
	case opErr != nil:
		return 0, os.NewSyscallError("read", opErr)
	case n == 0 && len(p) > 0:
		return 0, io.EOF
	}

	return n, nil
}
