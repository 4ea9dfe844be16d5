package http

import (
	"bytes"
	"unicode/utf8"

	"micro-http/application/util/rule"

	"github.com/pkg/errors"
)

var ErrInvalidEncoding = errors.New("request is not valid utf-8")

type DecodeOptions struct {
	// OnMalformedLine is called with every GET line that splits into
	// fewer than two tokens. Such lines are skipped.
	OnMalformedLine func(line []byte)
}

var getPrefix = append([]byte(MethodGet), rule.SP)

// ScanRequestTarget finds the first well-formed GET line in raw
// and returns its second single-space-delimited token, which may be empty
// ("GET  HTTP/1.0" has the empty target).
// Lines are CRLF delimited and everything besides GET lines is ignored,
// including the version token and any header.
//
// found is false when raw holds no well-formed GET line.
// Input that is not valid UTF-8 yields [ErrInvalidEncoding].
func ScanRequestTarget(raw []byte, opts DecodeOptions) (target string, found bool, err error) {
	if !utf8.Valid(raw) {
		return "", false, ErrInvalidEncoding
	}

	for _, line := range bytes.Split(raw, rule.CRLF) {
		if !bytes.HasPrefix(line, getPrefix) {
			continue
		}

		tokens := bytes.Split(line, []byte{rule.SP})
		if len(tokens) < 2 {
			if opts.OnMalformedLine != nil {
				opts.OnMalformedLine(line)
			}
			continue
		}

		return string(tokens[1]), true, nil
	}

	return "", false, nil
}
