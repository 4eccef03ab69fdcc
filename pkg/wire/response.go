package wire

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
)

// Header is a single response header. Order is preserved when framing.
type Header struct {
	Name  string
	Value string
}

// Response is a fully buffered HTTP/1.1 response.
type Response struct {
	Status  int
	Headers []Header
	Body    []byte
}

// JSON returns a response carrying body as application/json.
func JSON(status int, body []byte) *Response {
	return &Response{
		Status:  status,
		Headers: []Header{{Name: "Content-Type", Value: "application/json"}},
		Body:    body,
	}
}

// NotFound returns a 404 with an empty body and no content type.
func NotFound() *Response {
	return &Response{Status: http.StatusNotFound}
}

// Header returns the value of the first header named name, or "".
func (r *Response) Header(name string) string {
	for _, h := range r.Headers {
		if http.CanonicalHeaderKey(h.Name) == http.CanonicalHeaderKey(name) {
			return h.Value
		}
	}
	return ""
}

// Bytes frames the response for the wire. Content-Length is always computed
// from Body; a Content-Length or Connection header set by the caller is dropped.
func (r *Response) Bytes() []byte {
	var b bytes.Buffer
	b.Grow(64 + len(r.Body))

	b.WriteString("HTTP/1.1 ")
	b.WriteString(strconv.Itoa(r.Status))
	b.WriteByte(' ')
	b.WriteString(http.StatusText(r.Status))
	b.WriteString("\r\n")

	for _, h := range r.Headers {
		switch http.CanonicalHeaderKey(h.Name) {
		case "Content-Length", "Connection":
			continue
		}
		b.WriteString(h.Name)
		b.WriteString(": ")
		b.WriteString(h.Value)
		b.WriteString("\r\n")
	}

	b.WriteString("Content-Length: ")
	b.WriteString(strconv.Itoa(len(r.Body)))
	b.WriteString("\r\nConnection: close\r\n\r\n")
	b.Write(r.Body)

	return b.Bytes()
}

// WriteTo writes the framed response to w in a single Write call.
func (r *Response) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.Bytes())
	return int64(n), err
}
