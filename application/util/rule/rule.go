// Package rule holds the wire-level constants of HTTP/1.0 messages.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc1945#section-2.2
package rule

const (
	CR byte = '\r'
	LF byte = '\n'
	SP byte = ' '
)

var CRLF = []byte{CR, LF}
