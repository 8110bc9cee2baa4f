package dialer

import (
	"context"
	"net"
)

type ResolveConfig struct {
	CustomDNSServer string            // host:port of a DNS server used instead of the system one
	Network         string            // one of "ip4", "ip6", default is "ip"
	StaticHosts     map[string]string // resembles /etc/hosts
}

func (c *ResolveConfig) Clone() *ResolveConfig {
	if c == nil {
		return nil
	}
	hosts := make(map[string]string, len(c.StaticHosts))
	for k, v := range c.StaticHosts {
		hosts[k] = v
	}
	return &ResolveConfig{
		CustomDNSServer: c.CustomDNSServer,
		Network:         c.Network,
		StaticHosts:     hosts,
	}
}

// Merge fills the zero fields of c from fallback. static hosts of c win.
func (c *ResolveConfig) Merge(fallback *ResolveConfig) *ResolveConfig {
	m := c.Clone()
	if m == nil {
		return fallback.Clone()
	}
	if fallback == nil {
		return m
	}
	if m.CustomDNSServer == "" {
		m.CustomDNSServer = fallback.CustomDNSServer
	}
	if m.Network == "" {
		m.Network = fallback.Network
	}
	for k, v := range fallback.StaticHosts {
		if _, ok := m.StaticHosts[k]; !ok {
			m.StaticHosts[k] = v
		}
	}
	return m
}

// serverCtx carries the DNS server chosen for one Dial down to
// serverResolver. Only the resolver looks the key up, other Value calls fall
// through to the parent.
type serverCtx struct {
	context.Context
	server string
}

type serverCtxKey struct{}

func withDNSServer(ctx context.Context, server string) context.Context {
	if server == "" {
		return ctx
	}
	return serverCtx{ctx, server}
}

func (c serverCtx) Value(key interface{}) interface{} {
	if _, ok := key.(serverCtxKey); ok {
		return c.server
	}
	return c.Context.Value(key)
}

// serverResolver is a pure Go resolver whose queries go to the server found
// in the context, or to the system one when there is none.
var serverResolver = &net.Resolver{
	PreferGo: true,
	Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
		if server, ok := ctx.Value(serverCtxKey{}).(string); ok {
			address = server
		}
		return zeroDialer.DialContext(ctx, network, address)
	},
}

// lookup resolves host with cfg, used when a proxy is told the address
// instead of the name.
func (d *CoreDialer) lookup(ctx context.Context, cfg *ResolveConfig, host string) ([]net.IP, error) {
	network, server := "ip", ""
	if cfg != nil {
		server = cfg.CustomDNSServer
		if cfg.Network != "" {
			network = cfg.Network
		}
	}
	return d.LookupIPServer(ctx, network, host, server)
}

// LookupIPServer resolves host on the DNS server dns ("host:port"), or with
// the system configuration when dns is empty.
func (d *CoreDialer) LookupIPServer(ctx context.Context, network, host, dns string) ([]net.IP, error) {
	return serverResolver.LookupIP(withDNSServer(ctx, dns), network, host)
}
