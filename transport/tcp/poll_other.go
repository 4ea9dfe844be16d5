//go:build !unix

package tcp

import (
	"net"
	"os"
	"time"

	"micro-http/transport"

	"github.com/pkg/errors"
)

// SpuriousReadTimeouts reports whether an idle read on this platform
// surfaces as a timeout instead of would-block.
// Without raw sockets the drain relies on a short deadline, so it does.
const SpuriousReadTimeouts = true

func (l *Listener) accept() (*net.TCPConn, error) {
	deadline := time.Time{}
	if l.nonblocking {
		deadline = l.clock.Now().Add(l.opts.DrainWindow)
	}
	l.ln.SetDeadline(deadline)

	c, err := l.ln.AcceptTCP()
	if err != nil {
		if l.nonblocking && errors.Is(err, os.ErrDeadlineExceeded) {
			return nil, transport.ErrWouldBlock
		}
		return nil, convertErr(err)
	}

	return c, nil
}

func (c *conn) TryRead(p []byte) (int, error) {
	deadline := c.clock.Now().Add(c.opts.DrainWindow)
	if !c.rdeadline.IsZero() && c.rdeadline.Before(deadline) {
		deadline = c.rdeadline
	}

	c.c.SetReadDeadline(deadline)
	defer c.c.SetReadDeadline(c.rdeadline)

	n, err := c.c.Read(p)
	return n, convertErr(err)
}
