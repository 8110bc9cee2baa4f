package dialer

import (
	"github.com/frankli0324/go-microhttp/internal/dialer"
)

// Dialers are responsible for creating the stream one HTTP/1.0 exchange is
// written to and read from, for example a raw TCP connection, optionally
// tunneled through a proxy and wrapped in TLS.
//
// A Dialer MUST NOT hold connection state: every Dial returns a new stream
// which the client closes after the exchange. It SHOULD hold the connection
// related configs like [ProxyConfig] or a [TLSCapability].
type Dialer = dialer.Dialer

// CoreDialer is the default implementation of the [Dialer] interface. It would
// be used by a zero value [microhttp.Client].
type CoreDialer = dialer.CoreDialer

func NewCoreDialer() *CoreDialer { return dialer.NewCoreDialer() }

type ProxyConfig = dialer.ProxyConfig
type SocketConfig = dialer.SocketConfig

// we need a dedicated resolver for two scenarios:
//
//  1. Resolve remote address locally in proxied requests
//  2. to customize the DNS server used for resolving hostname
//
// the standard library only follows the system configuration
// (e.g. /etc/resolv.conf) for the DNS server, leaving the
// [net.Resolver.Dial] hook of a Go Resolver as the only way in.
type ResolveConfig = dialer.ResolveConfig

// TLSCapability performs the client handshake for https targets. [NoTLS]
// stands in for builds without TLS support.
type TLSCapability = dialer.TLSCapability
type StdTLS = dialer.StdTLS
type NoTLS = dialer.NoTLS
