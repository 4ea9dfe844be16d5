package server

import (
	"time"

	"micro-http/application/http"
	"micro-http/transport/tcp"
)

const DefaultReadBufferSize = 4096

type Options struct {
	// TimeoutIsDrained makes a read timeout end the drain the way would-block does.
	// Only platforms whose idle reads surface as timeouts need it.
	TimeoutIsDrained bool

	// ReadBufferSize is the size of a single drain read.
	// A read shorter than this ends the drain.
	ReadBufferSize int

	Timeout TimeoutOptions
	Encode  http.EncodeOptions
	TCP     tcp.Options
}

// TimeoutOptions are off when zero.
type TimeoutOptions struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultOptions is resolved for the platform at compile time.
var DefaultOptions = Options{
	TimeoutIsDrained: tcp.SpuriousReadTimeouts,
	ReadBufferSize:   DefaultReadBufferSize,
	Encode:           http.DefaultEncodeOptions,
}
