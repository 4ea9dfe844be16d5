package http

import (
	"bytes"
	"io"
	"strconv"

	"micro-http/application/util/rule"
	iolib "micro-http/lib/io"

	"github.com/pkg/errors"
)

const DefaultChunkSize = 4096

type EncodeOptions struct {
	// ChunkSize is the buffer size used when copying a streamed body.
	// Zero means [DefaultChunkSize].
	ChunkSize int
}

var DefaultEncodeOptions = EncodeOptions{
	ChunkSize: DefaultChunkSize,
}

// ErrBodyLengthMismatch is returned when a streamed body does not
// hold exactly the declared number of bytes.
// The wire never carries more body bytes than declared.
var ErrBodyLengthMismatch = errors.New("body length does not match declared content length")

// ResponseEncoder writes HTTP/1.0 responses.
// Status and headers are written verbatim; the only header it adds is Content-Length.
type ResponseEncoder struct {
	w    io.Writer
	opts EncodeOptions
}

func NewResponseEncoder(w io.Writer, opts EncodeOptions) *ResponseEncoder {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	return &ResponseEncoder{w: w, opts: opts}
}

// Encode writes a response whose body is fully in memory.
// It returns the number of bytes written, including when it fails halfway.
func (re *ResponseEncoder) Encode(status string, body []byte, headers []string) (uint, error) {
	written, err := re.writeHead(status, uint(len(body)), headers)
	if err != nil {
		return written, err
	}

	n, err := iolib.WriteFull(re.w, body)
	written += n
	if err != nil {
		return written, errors.Wrap(err, "writing response body")
	}

	return written, nil
}

// EncodeStreamed writes a response whose body is copied from body in chunks.
// length is sent as Content-Length and at most length bytes are copied.
// A body that ends early or holds more than length bytes yields [ErrBodyLengthMismatch].
//
// body must be at EOF after length bytes: one more read is made once the
// response is written, and it blocks for as long as body does.
func (re *ResponseEncoder) EncodeStreamed(status string, body io.Reader, length uint, headers []string) (uint, error) {
	if body == nil {
		body = bytes.NewReader(nil)
	}

	written, err := re.writeHead(status, length, headers)
	if err != nil {
		return written, err
	}

	lr := iolib.LimitReader(body, length)
	n, err := iolib.CopyChunked(re.w, lr, re.opts.ChunkSize)
	written += n
	if err != nil {
		return written, errors.Wrap(err, "writing response body")
	}

	if lr.N > 0 {
		return written, errors.Wrapf(ErrBodyLengthMismatch, "body ended %d bytes short of %d", lr.N, length)
	}

	var probe [1]byte
	extra, err := io.ReadAtLeast(body, probe[:], 1)
	switch {
	case extra > 0:
		return written, errors.Wrapf(ErrBodyLengthMismatch, "body is longer than %d bytes", length)
	case err == io.EOF:
		return written, nil
	default:
		return written, errors.Wrap(err, "reading past response body")
	}
}

func (re *ResponseEncoder) writeHead(status string, contentLength uint, headers []string) (uint, error) {
	buf := bytes.NewBuffer(nil)

	buf.Write(Version10.Text())
	buf.WriteByte(rule.SP)
	buf.WriteString(status)
	buf.Write(rule.CRLF)

	buf.WriteString("Content-Length: ")
	buf.WriteString(strconv.FormatUint(uint64(contentLength), 10))
	buf.Write(rule.CRLF)

	for _, h := range headers {
		buf.WriteString(h)
		buf.Write(rule.CRLF)
	}

	// Write a empty line as all the headers are written.
	buf.Write(rule.CRLF)

	written, err := iolib.WriteFull(re.w, buf.Bytes())
	if err != nil {
		return written, errors.Wrap(err, "writing status line & headers")
	}

	return written, nil
}
