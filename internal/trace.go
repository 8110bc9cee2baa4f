package internal

import (
	"context"
	"io"
	"net"
	"net/http/httptrace"
	"sync"
)

// tracer fires the httptrace.ClientTrace hooks that make sense for a single
// unpooled HTTP/1.0 exchange. DNS and connect hooks are fired by net.Dialer
// itself since it reads the same context.
type tracer struct {
	*httptrace.ClientTrace
}

func traceFrom(ctx context.Context) tracer {
	return tracer{httptrace.ContextClientTrace(ctx)}
}

func (t tracer) getConn(hostPort string) {
	if t.ClientTrace != nil && t.GetConn != nil {
		t.GetConn(hostPort)
	}
}

func (t tracer) gotConn(conn io.ReadWriteCloser) {
	if t.ClientTrace == nil || t.GotConn == nil {
		return
	}
	nc, _ := conn.(net.Conn)
	t.GotConn(httptrace.GotConnInfo{Conn: nc})
}

func (t tracer) wroteRequest(err error) {
	if t.ClientTrace != nil && t.WroteRequest != nil {
		t.WroteRequest(httptrace.WroteRequestInfo{Err: err})
	}
}

// firstByte wraps the response side of conn so GotFirstResponseByte fires
// on the first successful read.
func (t tracer) firstByte(conn io.ReadCloser) io.ReadCloser {
	if t.ClientTrace == nil || t.GotFirstResponseByte == nil {
		return conn
	}
	return &firstByteReader{ReadCloser: conn, fire: t.GotFirstResponseByte}
}

type firstByteReader struct {
	io.ReadCloser
	once sync.Once
	fire func()
}

func (r *firstByteReader) Read(p []byte) (int, error) {
	n, err := r.ReadCloser.Read(p)
	if n > 0 {
		r.once.Do(r.fire)
	}
	return n, err
}
