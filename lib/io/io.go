package iolib

import (
	"io"

	"github.com/pkg/errors"
)

// WriteFull keeps writing until buf is fully written or w fails.
func WriteFull(w io.Writer, buf []byte) (uint, error) {
	total := uint(0)
	for total < uint(len(buf)) {
		n, err := w.Write(buf[total:])
		total += uint(n)
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, io.ErrShortWrite
		}
	}
	return total, nil
}

// CopyChunked copies r into w through a chunkSize buffer until r reports [io.EOF].
// Each chunk is written with [WriteFull] before the next one is read.
func CopyChunked(w io.Writer, r io.Reader, chunkSize int) (uint, error) {
	buf := make([]byte, chunkSize)
	total := uint(0)

	for {
		n, rerr := r.Read(buf)
		if n > 0 {
			written, err := WriteFull(w, buf[:n])
			total += written
			if err != nil {
				return total, errors.Wrap(err, "writing chunk")
			}
		}

		switch {
		case rerr == io.EOF:
			return total, nil
		case rerr != nil:
			return total, errors.Wrap(rerr, "reading chunk")
		}
	}
}
