// Package status lists the status codes defined for HTTP/1.0.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc1945#section-9
package status

import "strconv"

type Status struct {
	Code         uint
	ReasonPhrase string
}

// Text renders the status the way it follows the version on a status line,
// e.g. "404 Not Found".
func (s Status) Text() string {
	code := strconv.FormatUint(uint64(s.Code), 10)
	if s.ReasonPhrase == "" {
		return code
	}
	return code + " " + s.ReasonPhrase
}

func (s Status) String() string { return s.Text() }

// Successful 2xx
// Reference: https://datatracker.ietf.org/doc/html/rfc1945#section-9.2
var (
	OK        = add(Status{200, "OK"})
	Created   = add(Status{201, "Created"})
	Accepted  = add(Status{202, "Accepted"})
	NoContent = add(Status{204, "No Content"})
)

// Redirection 3xx
// Reference: https://datatracker.ietf.org/doc/html/rfc1945#section-9.3
var (
	MultipleChoices  = add(Status{300, "Multiple Choices"})
	MovedPermanently = add(Status{301, "Moved Permanently"})
	MovedTemporarily = add(Status{302, "Moved Temporarily"})
	NotModified      = add(Status{304, "Not Modified"})
)

// Client Error 4xx
// Reference: https://datatracker.ietf.org/doc/html/rfc1945#section-9.4
var (
	BadRequest   = add(Status{400, "Bad Request"})
	Unauthorized = add(Status{401, "Unauthorized"})
	Forbidden    = add(Status{403, "Forbidden"})
	NotFound     = add(Status{404, "Not Found"})
)

// Server Error 5xx
// Reference: https://datatracker.ietf.org/doc/html/rfc1945#section-9.5
var (
	InternalServerError = add(Status{500, "Internal Server Error"})
	NotImplemented      = add(Status{501, "Not Implemented"})
	BadGateway          = add(Status{502, "Bad Gateway"})
	ServiceUnavailable  = add(Status{503, "Service Unavailable"})
)

var sm = make(map[uint]*Status)

func add(status Status) Status {
	sm[status.Code] = &status
	return status
}

// FromCode looks up a registered status.
// Unknown codes come back with an empty reason phrase and ok set to false.
func FromCode(code uint) (status Status, ok bool) {
	s, ok := sm[code]
	if !ok {
		return Status{Code: code, ReasonPhrase: ""}, false
	}

	return *s, true
}
