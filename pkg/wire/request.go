package wire

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DefaultMaxRequestBytes is the size of the single read performed per connection.
const DefaultMaxRequestBytes = 4096

var (
	crlf          = []byte("\r\n")
	headerBodySep = []byte("\r\n\r\n")
)

// Request is the part of an HTTP/1.1 request the service looks at.
type Request struct {
	// Method is the first token of the request line ("GET", "POST", ...).
	Method string

	// Path is the second token of the request line, query string included.
	// Empty when the request line has a single token.
	Path string

	// Body is everything after the first blank line. Empty if there is none.
	Body []byte

	// Raw is the bytes read from the connection.
	Raw []byte
}

// ReadRequest performs exactly one Read of at most max bytes from r and parses
// whatever arrived. Requests longer than max are truncated and bytes that arrive
// in a later TCP segment are never seen.
//
// An io.EOF with zero bytes read yields an empty request and a nil error, so the
// caller still answers (with a 404). Other read errors are returned together
// with the request parsed from any bytes that did arrive.
func ReadRequest(r io.Reader, max int) (*Request, error) {
	if max <= 0 {
		max = DefaultMaxRequestBytes
	}
	buf := make([]byte, max)
	n, err := r.Read(buf)
	req := ParseRequest(buf[:n])
	if err != nil && !errors.Is(err, io.EOF) {
		return req, fmt.Errorf("read request: %w", err)
	}
	return req, nil
}

// ParseRequest splits raw into request line and body. It never fails: a buffer
// that is not HTTP at all produces a Request whose Method and Path match no route.
func ParseRequest(raw []byte) *Request {
	req := &Request{Raw: raw}

	line := raw
	if i := bytes.Index(raw, crlf); i >= 0 {
		line = raw[:i]
	}

	// Single-space split keeps the request line comparable to a literal
	// "METHOD /path" prefix: "GET  /health" does not produce path "/health".
	parts := bytes.SplitN(line, []byte(" "), 3)
	req.Method = string(parts[0])
	if len(parts) > 1 {
		req.Path = string(parts[1])
	}

	if i := bytes.Index(raw, headerBodySep); i >= 0 {
		req.Body = raw[i+len(headerBodySep):]
	}

	return req
}

// HasPrefix reports whether the request line starts with "<method> <pathPrefix>".
func (r *Request) HasPrefix(method, pathPrefix string) bool {
	return r.Method == method && strings.HasPrefix(r.Path, pathPrefix)
}
