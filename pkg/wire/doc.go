// Package wire reads and writes the small slice of HTTP/1.1 the service speaks.
//
// Requests are read with a single bounded Read and split into a request line and
// a body; headers are never parsed and Content-Length on input is ignored. There
// is no chunked transfer, no keep-alive and no reassembly of requests split across
// TCP segments.
//
// Responses are always fully buffered and framed with a Content-Length equal to the
// body size, followed by "Connection: close" since every connection carries exactly
// one exchange:
//
//	resp := wire.JSON(http.StatusOK, []byte(`{"status":"healthy"}`))
//	if _, err := resp.WriteTo(conn); err != nil {
//	    return err
//	}
package wire
