package internal_test

import (
	"bufio"
	"context"
	"io"
	nethttp "net/http"
	"strings"
	"testing"

	"golang.org/x/net/nettest"
	"golang.org/x/sync/errgroup"

	"github.com/frankli0324/go-microhttp/internal"
	"github.com/frankli0324/go-microhttp/internal/dialer"
	"github.com/frankli0324/go-microhttp/internal/http"
)

type CombinedReadWriteCloser struct {
	io.Reader
	io.Writer
	io.Closer
}

type TestDialer struct {
	io.ReadWriteCloser
}

// Dial implements dialer.Dialer.
func (t *TestDialer) Dial(ctx context.Context, r *http.PreparedRequest) (io.ReadWriteCloser, error) {
	return t.ReadWriteCloser, nil
}

// Unwrap implements dialer.Dialer.
func (t *TestDialer) Unwrap() dialer.Dialer {
	return nil
}

// SendSingleRequest runs req against a canned response and returns the
// bytes the client wrote. done yields the result of the call once the client
// has released the connection.
func SendSingleRequest(t *testing.T, req *http.Request) (written io.Reader, done <-chan error) {
	readResponse, writeResponse := io.Pipe()
	go func() {
		io.Copy(writeResponse, strings.NewReader("HTTP/1.0 200 OK\r\nServer: test\r\n\r\n"))
		writeResponse.Close()
	}()

	readRequest, writeRequest := io.Pipe()
	c := &internal.Client{}
	c.UseDialer(func(dialer.Dialer) dialer.Dialer {
		return &TestDialer{CombinedReadWriteCloser{
			Reader: readResponse,
			Writer: writeRequest,
			Closer: writeRequest,
		}}
	})
	errc := make(chan error, 1)
	go func() {
		resp, err := c.Do(context.Background(), req)
		if err == nil {
			resp.Close()
		}
		errc <- err
	}()
	return readRequest, errc
}

// serveOnce accepts a single connection on a local listener, parses the
// request with net/http and writes whatever respond returns.
func serveOnce(t *testing.T, respond func(r *nethttp.Request, body []byte) string) (string, *errgroup.Group) {
	t.Helper()
	ln, err := nettest.NewLocalListener("tcp")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ln.Close() })
	var g errgroup.Group
	g.Go(func() error {
		defer ln.Close()
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		defer conn.Close()
		req, err := nethttp.ReadRequest(bufio.NewReader(conn))
		if err != nil {
			return err
		}
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return err
		}
		_, err = io.WriteString(conn, respond(req, body))
		return err
	})
	return "http://" + ln.Addr().String(), &g
}

func respondWith(raw string) func(*nethttp.Request, []byte) string {
	return func(*nethttp.Request, []byte) string { return raw }
}
