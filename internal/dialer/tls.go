package dialer

import (
	"context"
	"crypto/tls"
	"net"

	"github.com/frankli0324/go-microhttp/internal/http"
)

// TLSCapability wraps an established connection in a client TLS session.
// runtimes without a TLS implementation report Available() == false.
type TLSCapability interface {
	Available() bool
	Client(ctx context.Context, conn net.Conn, serverName string) (net.Conn, error)
}

// StdTLS is the crypto/tls capability. ServerName is always overridden
// with the host being dialed.
type StdTLS struct {
	Config *tls.Config
}

func (StdTLS) Available() bool { return true }

func (s StdTLS) Client(ctx context.Context, conn net.Conn, serverName string) (net.Conn, error) {
	config := s.Config.Clone()
	if config == nil {
		config = &tls.Config{}
	}
	config.ServerName = serverName
	c := tls.Client(conn, config)
	if err := c.HandshakeContext(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// NoTLS stands in for a runtime built without TLS support.
type NoTLS struct{}

func (NoTLS) Available() bool { return false }

func (NoTLS) Client(context.Context, net.Conn, string) (net.Conn, error) {
	return nil, http.ErrTLSUnavailable
}
