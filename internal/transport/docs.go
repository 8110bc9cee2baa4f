// package transport contains the implementation of the *message syntax* of
// HTTP/1.0 as defined by RFC1945, restricted to what a one-shot client needs:
//
//	a request line, header fields and an optional body are written;
//	a status line and header fields are read, and the rest of the stream
//	up to EOF is the response body.
//
// HTTP/1.0 has no chunked transfer coding and no persistent connections, so
// the end of the body is always the end of the connection.

package transport
