package dialer

import (
	"context"
	"io"
	"net"
	"strconv"

	"github.com/frankli0324/go-microhttp/internal/http"
)

var zeroDialer net.Dialer

// Dial connects to the request target, through a proxy when GetProxy names
// one, and performs the TLS handshake for https targets with the host name
// as server name. every failure is an *http.Error of kind ErrTransport.
func (d *CoreDialer) Dial(ctx context.Context, r *http.PreparedRequest) (io.ReadWriteCloser, error) {
	t := r.Target
	if t.TLS() && !d.tlsCapability().Available() && !d.AllowPlaintextFallback {
		return nil, t.Fail(http.ErrTransport, "tls", http.ErrTLSUnavailable)
	}
	conn, err := d.tryDialProxy(ctx, r)
	if err != nil {
		return nil, t.Fail(http.ErrTransport, "proxy", err)
	}
	if conn == nil {
		if conn, err = d.dialDirect(ctx, t.Host, t.Port); err != nil {
			return nil, t.Fail(http.ErrTransport, "dial", err)
		}
	}
	if t.TLS() {
		c, err := d.upgrade(ctx, conn, t.Host)
		if err != nil {
			conn.Close()
			return nil, t.Fail(http.ErrTransport, "tls", err)
		}
		conn = c
	}
	return conn, nil
}

func (d *CoreDialer) netDialer() *net.Dialer {
	return &net.Dialer{Timeout: d.Timeout, Control: d.Socket.control()}
}

func (d *CoreDialer) dialDirect(ctx context.Context, host string, port int) (net.Conn, error) {
	cfg := d.ResolveConfig
	if cfg == nil {
		cfg = &ResolveConfig{}
	}
	// as of now net.Dialer could handle current DNS configurations
	network, dialctx, dst := "tcp", ctx, net.JoinHostPort(host, strconv.Itoa(port))
	switch cfg.Network {
	case "ip4":
		network = "tcp4"
	case "ip6":
		network = "tcp6"
	}
	if static, ok := cfg.StaticHosts[host]; ok {
		dst = net.JoinHostPort(static, strconv.Itoa(port))
	}
	nd := d.netDialer()
	if dns := cfg.CustomDNSServer; dns != "" {
		dialctx = withDNSServer(dialctx, dns)
		nd.Resolver = serverResolver
	}
	return nd.DialContext(dialctx, network, dst)
}

func (d *CoreDialer) tlsCapability() TLSCapability {
	if d.TLS == nil {
		return StdTLS{}
	}
	return d.TLS
}

func (d *CoreDialer) upgrade(ctx context.Context, conn net.Conn, serverName string) (net.Conn, error) {
	tc := d.tlsCapability()
	if !tc.Available() {
		if !d.AllowPlaintextFallback {
			return nil, http.ErrTLSUnavailable
		}
		d.logger().Warn("https not supported, continuing without tls", "host", serverName)
		return conn, nil
	}
	return tc.Client(ctx, conn, serverName)
}
