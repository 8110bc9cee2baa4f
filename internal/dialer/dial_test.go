package dialer

import (
	"bufio"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net"
	nethttp "net/http"
	"strconv"
	"testing"

	"golang.org/x/net/nettest"
	"golang.org/x/sync/errgroup"

	"github.com/frankli0324/go-microhttp/internal/http"
)

func listen(t *testing.T) (net.Listener, int) {
	t.Helper()
	ln, err := nettest.NewLocalListener("tcp4")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ln.Close() })
	return ln, ln.Addr().(*net.TCPAddr).Port
}

func prepared(t *testing.T, url string) *http.PreparedRequest {
	t.Helper()
	target, err := Resolve(url)
	if err != nil {
		t.Fatal(err)
	}
	pr, err := (&http.Request{Method: "GET", URL: url}).Prepare(target)
	if err != nil {
		t.Fatal(err)
	}
	return pr
}

// echoOnce answers the first line of the first connection with itself.
func echoOnce(ln net.Listener, g *errgroup.Group) {
	g.Go(func() error {
		c, err := ln.Accept()
		if err != nil {
			return err
		}
		defer c.Close()
		line, err := bufio.NewReader(c).ReadString('\n')
		if err != nil {
			return err
		}
		_, err = io.WriteString(c, line)
		return err
	})
}

func roundTrip(t *testing.T, conn io.ReadWriteCloser) {
	t.Helper()
	defer conn.Close()
	if _, err := io.WriteString(conn, "ping\n"); err != nil {
		t.Fatal(err)
	}
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil || line != "ping\n" {
		t.Fatalf("read %q, %v", line, err)
	}
}

func TestDialStaticHosts(t *testing.T) {
	ln, port := listen(t)
	var g errgroup.Group
	echoOnce(ln, &g)

	d := NewCoreDialer()
	d.ResolveConfig.Network = "ip4"
	d.ResolveConfig.StaticHosts = map[string]string{"device.invalid": "127.0.0.1"}
	d.Socket = &SocketConfig{ReadBuffer: 32 << 10, WriteBuffer: 32 << 10}
	conn, err := d.Dial(context.Background(), prepared(t, "http://device.invalid:"+strconv.Itoa(port)+"/"))
	if err != nil {
		t.Fatal(err)
	}
	roundTrip(t, conn)
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
}

func TestDialRefused(t *testing.T) {
	ln, port := listen(t)
	ln.Close()
	_, err := NewCoreDialer().Dial(context.Background(), prepared(t, "http://127.0.0.1:"+strconv.Itoa(port)+"/"))
	var he *http.Error
	if !errors.Is(err, http.ErrTransport) || !errors.As(err, &he) || he.Op != "dial" {
		t.Fatalf("err=%v", err)
	}
}

type fakeTLS struct {
	available bool
	names     []string
}

func (f *fakeTLS) Available() bool { return f.available }

func (f *fakeTLS) Client(_ context.Context, conn net.Conn, serverName string) (net.Conn, error) {
	f.names = append(f.names, serverName)
	return conn, nil
}

func TestDialTLSCapability(t *testing.T) {
	ln, port := listen(t)
	var g errgroup.Group
	echoOnce(ln, &g)

	tc := &fakeTLS{available: true}
	d := NewCoreDialer()
	d.TLS = tc
	d.ResolveConfig.StaticHosts = map[string]string{"secure.invalid": "127.0.0.1"}
	conn, err := d.Dial(context.Background(), prepared(t, "https://secure.invalid:"+strconv.Itoa(port)+"/"))
	if err != nil {
		t.Fatal(err)
	}
	roundTrip(t, conn)
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	if len(tc.names) != 1 || tc.names[0] != "secure.invalid" {
		t.Fatalf("handshakes: %v", tc.names)
	}
}

func TestDialTLSUnavailable(t *testing.T) {
	d := NewCoreDialer()
	d.TLS = NoTLS{}
	_, err := d.Dial(context.Background(), prepared(t, "https://www.example.com/"))
	if !errors.Is(err, http.ErrTLSUnavailable) || !errors.Is(err, http.ErrTransport) {
		t.Fatalf("err=%v", err)
	}
}

// fakeProxy accepts one CONNECT and then behaves like the tunneled echo server.
func fakeProxy(t *testing.T, g *errgroup.Group, check func(*nethttp.Request) string) string {
	ln, port := listen(t)
	g.Go(func() error {
		c, err := ln.Accept()
		if err != nil {
			return err
		}
		defer c.Close()
		br := bufio.NewReader(c)
		req, err := nethttp.ReadRequest(br)
		if err != nil {
			return err
		}
		status := check(req)
		if _, err := io.WriteString(c, "HTTP/1.0 "+status+"\r\n\r\n"); err != nil {
			return err
		}
		if status[:3] != "200" {
			return nil
		}
		line, err := br.ReadString('\n')
		if err != nil {
			return err
		}
		_, err = io.WriteString(c, line)
		return err
	})
	return "http://127.0.0.1:" + strconv.Itoa(port)
}

func TestDialProxy(t *testing.T) {
	var (
		g         errgroup.Group
		method    string
		authority string
		auth      string
	)
	proxy := fakeProxy(t, &g, func(r *nethttp.Request) string {
		method, authority, auth = r.Method, r.RequestURI, r.Header.Get("Proxy-Authorization")
		return "200 Connection established"
	})

	d := NewCoreDialer()
	d.ProxyConfig.Auth = "user:secret"
	d.GetProxy = func(context.Context, *http.Request) (string, error) { return proxy, nil }
	conn, err := d.Dial(context.Background(), prepared(t, "http://backend.invalid:8080/"))
	if err != nil {
		t.Fatal(err)
	}
	roundTrip(t, conn)
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	if method != "CONNECT" || authority != "backend.invalid:8080" {
		t.Fatalf("%s %s", method, authority)
	}
	if auth != "Basic "+base64.StdEncoding.EncodeToString([]byte("user:secret")) {
		t.Fatalf("Proxy-Authorization=%q", auth)
	}
}

func TestDialProxyResolveLocally(t *testing.T) {
	var (
		g         errgroup.Group
		authority string
	)
	proxy := fakeProxy(t, &g, func(r *nethttp.Request) string {
		authority = r.RequestURI
		return "200 OK"
	})

	d := NewCoreDialer()
	d.ResolveConfig.StaticHosts = map[string]string{"backend.invalid": "10.1.2.3"}
	d.ProxyConfig.ResolveLocally = true
	d.GetProxy = func(context.Context, *http.Request) (string, error) { return proxy, nil }
	conn, err := d.Dial(context.Background(), prepared(t, "http://backend.invalid/"))
	if err != nil {
		t.Fatal(err)
	}
	roundTrip(t, conn)
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	if authority != "10.1.2.3:80" {
		t.Fatalf("CONNECT %s", authority)
	}
}

func TestDialProxyRefused(t *testing.T) {
	var g errgroup.Group
	proxy := fakeProxy(t, &g, func(*nethttp.Request) string {
		return "407 Proxy Authentication Required"
	})
	d := NewCoreDialer()
	d.GetProxy = func(context.Context, *http.Request) (string, error) { return proxy, nil }
	_, err := d.Dial(context.Background(), prepared(t, "http://backend.invalid/"))
	g.Wait()
	var he *http.Error
	if !errors.Is(err, http.ErrTransport) || !errors.As(err, &he) || he.Op != "proxy" {
		t.Fatalf("err=%v", err)
	}
}

func TestResolveConfigMerge(t *testing.T) {
	own := &ResolveConfig{StaticHosts: map[string]string{"a": "1"}}
	fallback := &ResolveConfig{
		CustomDNSServer: "10.0.0.53:53",
		Network:         "ip6",
		StaticHosts:     map[string]string{"a": "2", "b": "3"},
	}
	m := own.Merge(fallback)
	if m.CustomDNSServer != "10.0.0.53:53" || m.Network != "ip6" {
		t.Fatalf("merged %+v", m)
	}
	if m.StaticHosts["a"] != "1" || m.StaticHosts["b"] != "3" {
		t.Fatalf("merged hosts %v", m.StaticHosts)
	}
	if len(own.StaticHosts) != 1 {
		t.Fatal("Merge modified its receiver")
	}
	var none *ResolveConfig
	if none.Merge(nil) != nil || none.Merge(fallback).Network != "ip6" {
		t.Fatal("nil receiver")
	}
}

func TestCoreDialerClone(t *testing.T) {
	d := NewCoreDialer()
	d.ResolveConfig.StaticHosts = map[string]string{"a": "1"}
	d.Socket = &SocketConfig{ReadBuffer: 1}
	c := d.Clone()
	c.ResolveConfig.StaticHosts["a"] = "2"
	c.Socket.ReadBuffer = 2
	c.ProxyConfig.Auth = "x:y"
	if d.ResolveConfig.StaticHosts["a"] != "1" || d.Socket.ReadBuffer != 1 || d.ProxyConfig.Auth != "" {
		t.Fatal("clone shares configuration")
	}
}
