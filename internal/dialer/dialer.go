package dialer

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/frankli0324/go-microhttp/internal/http"
	"github.com/frankli0324/go-microhttp/internal/logging"
)

// Dialers handle pretty much everything related to the actual connection,
// including setting a proxy for each request, setting resolvers, upgrading
// to TLS, etc.
type Dialer interface {
	// Dial returns the stream the request is written to and the response is
	// read from. the stream is used for exactly one exchange and then closed.
	Dial(ctx context.Context, r *http.PreparedRequest) (io.ReadWriteCloser, error)
	Unwrap() Dialer
}

// SocketConfig sizes the kernel socket buffers before connect, which is the
// only point at which the receive buffer still affects the TCP window scale.
// zero leaves the system default.
type SocketConfig struct {
	ReadBuffer  int
	WriteBuffer int
}

func (c *SocketConfig) Clone() *SocketConfig {
	if c == nil {
		return nil
	}
	cc := *c
	return &cc
}

type CoreDialer struct {
	ResolveConfig *ResolveConfig
	Socket        *SocketConfig
	Timeout       time.Duration // connect timeout, zero means none

	TLS TLSCapability // nil means StdTLS with a zero config
	// AllowPlaintextFallback continues an https request without a handshake
	// when TLS is not Available, logging a warning. without it such requests
	// fail with ErrTLSUnavailable.
	AllowPlaintextFallback bool

	GetProxy    func(ctx context.Context, r *http.Request) (string, error)
	ProxyConfig *ProxyConfig

	Logger *slog.Logger
}

func NewCoreDialer() *CoreDialer {
	return &CoreDialer{
		ResolveConfig: &ResolveConfig{},
		TLS:           StdTLS{},
		ProxyConfig:   &ProxyConfig{},
	}
}

func (d *CoreDialer) Clone() *CoreDialer {
	return &CoreDialer{
		ResolveConfig:          d.ResolveConfig.Clone(),
		Socket:                 d.Socket.Clone(),
		Timeout:                d.Timeout,
		TLS:                    d.TLS,
		AllowPlaintextFallback: d.AllowPlaintextFallback,
		GetProxy:               d.GetProxy,
		ProxyConfig:            d.ProxyConfig.Clone(),
		Logger:                 d.Logger,
	}
}

func (d *CoreDialer) Unwrap() Dialer {
	return nil
}

func (d *CoreDialer) logger() *slog.Logger {
	return logging.Or(d.Logger)
}
