package microhttp

import (
	"github.com/frankli0324/go-microhttp/internal/dialer"
)

type Dialer = dialer.Dialer
type CoreDialer = dialer.CoreDialer

type ProxyConfig = dialer.ProxyConfig
type ResolveConfig = dialer.ResolveConfig
type SocketConfig = dialer.SocketConfig

type TLSCapability = dialer.TLSCapability
type StdTLS = dialer.StdTLS
type NoTLS = dialer.NoTLS

// Resolve splits an http or https URL into the Target a request is sent to.
func Resolve(url string) (Target, error) { return dialer.Resolve(url) }
