package http

import (
	"bytes"
	"strconv"
)

const MethodGet = "GET"

// [Major, Minor]
type Version [2]uint

// Version10 is the only version this package speaks.
var Version10 = Version{1, 0}

func (ver Version) Text() []byte {
	buf := bytes.NewBuffer(nil)
	buf.Write([]byte("HTTP/"))
	buf.Write([]byte(strconv.FormatUint(uint64(ver[0]), 10)))
	buf.Write([]byte{'.'})
	buf.Write([]byte(strconv.FormatUint(uint64(ver[1]), 10)))
	return buf.Bytes()
}
