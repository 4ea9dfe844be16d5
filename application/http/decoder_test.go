package http

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type RequestScannerTestSuite struct {
	suite.Suite
}

func TestRequestScannerTestSuite(t *testing.T) {
	suite.Run(t, new(RequestScannerTestSuite))
}

func (s *RequestScannerTestSuite) TestScanRequestTarget() {
	testcases := []struct {
		desc     string
		input    string
		expected string
		found    bool
		wantErr  error
	}{
		{
			desc:     "simple request",
			input:    "GET /cat.txt HTTP/1.0\r\nHost: example.com\r\n\r\n",
			expected: "/cat.txt",
			found:    true,
		},
		{
			desc:     "no version token",
			input:    "GET /cat.txt\r\n\r\n",
			expected: "/cat.txt",
			found:    true,
		},
		{
			desc:     "query is kept",
			input:    "GET /search?q=cats&page=2 HTTP/1.0\r\n\r\n",
			expected: "/search?q=cats&page=2",
			found:    true,
		},
		{
			desc:     "no trailing line terminator",
			input:    "GET /",
			expected: "/",
			found:    true,
		},
		{
			desc:  "empty input",
			input: "",
		},
		{
			desc:  "other method",
			input: "POST /form HTTP/1.0\r\nContent-Length: 0\r\n\r\n",
		},
		{
			desc:  "method is case sensitive",
			input: "get /lower HTTP/1.0\r\n\r\n",
		},
		{
			desc:  "sole LF is not a line terminator",
			input: "HEAD / HTTP/1.0\nGET /hidden HTTP/1.0\n\n",
		},
		{
			desc:     "GET line after other lines",
			input:    "POST /form HTTP/1.0\r\nGET /second HTTP/1.0\r\n\r\n",
			expected: "/second",
			found:    true,
		},
		{
			desc:     "first GET line wins",
			input:    "GET /first HTTP/1.0\r\nGET /second HTTP/1.0\r\n\r\n",
			expected: "/first",
			found:    true,
		},
		{
			desc:  "empty target ends the scan",
			input: "GET \r\nGET /later HTTP/1.0\r\n\r\n",
			found: true,
		},
		{
			desc:  "double space yields the empty target",
			input: "GET  /spaced HTTP/1.0\r\n\r\n",
			found: true,
		},
		{
			desc:  "empty target before the version",
			input: "GET  HTTP/1.0\r\n\r\n",
			found: true,
		},
		{
			desc:    "invalid utf-8",
			input:   "GET /\xff\xfe HTTP/1.0\r\n\r\n",
			wantErr: ErrInvalidEncoding,
		},
	}

	for _, tc := range testcases {
		s.Run(tc.desc, func() {
			var malformed []string
			opts := DecodeOptions{
				OnMalformedLine: func(line []byte) { malformed = append(malformed, string(line)) },
			}

			target, found, err := ScanRequestTarget([]byte(tc.input), opts)
			if tc.wantErr != nil {
				s.ErrorIs(err, tc.wantErr)
				s.False(found)
				return
			}

			s.Require().NoError(err)
			s.Equal(tc.found, found)
			s.Equal(tc.expected, target)
			s.Empty(malformed)
		})
	}
}

func (s *RequestScannerTestSuite) TestRestIsIgnored() {
	rests := []string{
		"",
		"\r\n",
		"Host: localhost\r\n\r\n",
		"GET /other HTTP/1.0\r\n\r\n",
		"\x00\x01 binary-ish but valid utf-8 é\r\n",
	}

	for _, rest := range rests {
		input := "GET /target HTTP/1.0\r\n" + rest

		target, found, err := ScanRequestTarget([]byte(input), DecodeOptions{})
		s.Require().NoError(err)
		s.True(found)
		s.Equal("/target", target)
	}
}

func (s *RequestScannerTestSuite) TestTargetIsVerbatim() {
	targets := []string{"", "/", "/cat.txt", "*", "http://example.com/x?y=z", "/é"}

	for _, target := range targets {
		input := "GET " + target + " HTTP/1.0\r\nGET /other HTTP/1.0\r\n\r\n"

		got, found, err := ScanRequestTarget([]byte(input), DecodeOptions{})
		s.Require().NoError(err)
		s.True(found, "target %q", target)
		s.Equal(target, got)
	}
}

func (s *RequestScannerTestSuite) TestNilObserver() {
	target, found, err := ScanRequestTarget([]byte("POST /\r\nGET \r\n"), DecodeOptions{})
	s.NoError(err)
	s.True(found)
	s.Empty(target)
}
