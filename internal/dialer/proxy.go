package dialer

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"strconv"

	"github.com/frankli0324/go-microhttp/internal/http"
	"github.com/frankli0324/go-microhttp/internal/transport"
)

type ProxyConfig struct {
	TLS            TLSCapability // used with https proxies, if nil, *[CoreDialer.TLS] will be used
	Auth           string        // "user:password" sent as Basic Proxy-Authorization
	ResolveLocally bool
	ResolveConfig  *ResolveConfig // overrides the resolver config for dialer for proxy
}

func (c *ProxyConfig) Clone() *ProxyConfig {
	if c == nil {
		return nil
	}
	return &ProxyConfig{
		TLS:            c.TLS,
		Auth:           c.Auth,
		ResolveLocally: c.ResolveLocally,
		ResolveConfig:  c.ResolveConfig.Clone(),
	}
}

var h10 = transport.HTTP10{}

func (d *CoreDialer) tryDialProxy(ctx context.Context, r *http.PreparedRequest) (net.Conn, error) {
	if d.GetProxy != nil {
		proxy, perr := d.GetProxy(ctx, r.Request)
		if perr != nil {
			return nil, perr
		}
		if proxy != "" {
			return d.DialContextOverProxy(ctx, r.Target, proxy)
		}
	}
	return nil, nil
}

// DialContextOverProxy opens a CONNECT tunnel to remote through an http or
// https proxy. the returned connection is positioned right after the proxy's
// response header, ready for the TLS handshake or the request itself.
func (d *CoreDialer) DialContextOverProxy(ctx context.Context, remote http.Target, proxyURL string) (net.Conn, error) {
	proxy, err := Resolve(proxyURL)
	if err != nil {
		return nil, err
	}
	cfg := d.ProxyConfig
	if cfg == nil {
		cfg = &ProxyConfig{}
	}

	conn, err := d.netDialer().DialContext(ctx, "tcp", proxy.Addr())
	if err != nil {
		return nil, err
	}
	if proxy.TLS() {
		tc := cfg.TLS
		if tc == nil {
			tc = d.tlsCapability()
		}
		if !tc.Available() {
			conn.Close()
			return nil, http.ErrTLSUnavailable
		}
		c, err := tc.Client(ctx, conn, proxy.Host)
		if err != nil {
			conn.Close()
			return nil, err
		}
		conn = c
	}

	addr := remote.Host
	if cfg.ResolveLocally {
		dnsCfg := cfg.ResolveConfig.Merge(d.ResolveConfig)
		if dnsCfg == nil {
			dnsCfg = &ResolveConfig{}
		}
		if res, ok := dnsCfg.StaticHosts[addr]; ok {
			addr = res
		} else {
			ips, err := d.lookup(ctx, dnsCfg, addr)
			if err != nil {
				conn.Close()
				return nil, err
			}
			if len(ips) == 0 {
				conn.Close()
				return nil, errors.New("no address for " + addr)
			}
			addr = ips[rand.Intn(len(ips))].String()
		}
	}

	authority := net.JoinHostPort(addr, strconv.Itoa(remote.Port))
	connReq := &http.PreparedRequest{
		Request:       &http.Request{Method: "CONNECT"},
		Target:        remote,
		RequestURI:    authority,
		Preamble:      http.NewHeader("Host", authority),
		ContentLength: -1,
	}
	if cfg.Auth != "" {
		connReq.Header = http.NewHeader(
			"Proxy-Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(cfg.Auth)),
		)
	}
	if err := h10.Write(conn, connReq); err != nil {
		conn.Close()
		return nil, err
	}
	// nothing follows the proxy's header until the client speaks, so the
	// read buffer holds no tunnel bytes
	resp, err := h10.Read(conn, connReq)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if resp.StatusCode != 200 {
		conn.Close()
		return nil, fmt.Errorf("proxy server returned error. status:%d %s", resp.StatusCode, resp.Reason)
	}
	return conn, nil
}
