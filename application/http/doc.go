// Package http implements the wire format of a minimal HTTP/1.0 exchange:
// scanning the request line of a GET request and encoding responses.
//
// Reference:
//
// - https://datatracker.ietf.org/doc/html/rfc1945
package http
