package internal

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frankli0324/go-microhttp/internal/dialer"
	"github.com/frankli0324/go-microhttp/internal/http"
	"github.com/frankli0324/go-microhttp/internal/logging"
	"github.com/frankli0324/go-microhttp/internal/transport"
)

type Handler = func(ctx context.Context, req *http.PreparedRequest) (*http.Response, error)
type Middleware func(next Handler) Handler

// Client performs one HTTP/1.0 exchange per call over a fresh connection.
// it holds no connection state and is safe for concurrent use once
// configured.
type Client struct {
	Logger *slog.Logger

	middlewares []Middleware
	dialer      dialer.Dialer
}

// Use appends mw to the end of the chain. The last "Use"d mw executes first
func (c *Client) Use(mws ...Middleware) {
	c.middlewares = append(c.middlewares, mws...)
}

// UseDialer replaces the dialer with the result of f, which receives the
// current one (a default *dialer.CoreDialer if none was set).
func (c *Client) UseDialer(f func(dialer.Dialer) dialer.Dialer) {
	c.dialer = f(c.getDialer())
}

// UseCoreDialer is like UseDialer but always starts from a fresh
// *dialer.CoreDialer.
func (c *Client) UseCoreDialer(f func(*dialer.CoreDialer) dialer.Dialer) {
	c.dialer = f(c.defaultDialer())
}

func (c *Client) defaultDialer() *dialer.CoreDialer {
	cd := dialer.NewCoreDialer()
	cd.Logger = c.Logger
	return cd
}

func (c *Client) getDialer() dialer.Dialer {
	if c.dialer != nil {
		return c.dialer
	}
	return c.defaultDialer()
}

func (c *Client) log() *slog.Logger {
	return logging.Or(c.Logger)
}

// Do resolves and validates req, then runs the exchange through the
// middleware chain. the returned response never holds the connection.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	t, err := dialer.Resolve(req.URL)
	if err != nil {
		return nil, err
	}
	pr, err := req.Prepare(t)
	if err != nil {
		return nil, err
	}
	next := c.roundTrip
	for _, mw := range c.middlewares {
		next = mw(next)
	}
	return next(ctx, pr)
}

func (c *Client) roundTrip(ctx context.Context, pr *http.PreparedRequest) (*http.Response, error) {
	resp, err := c.exchange(ctx, pr)
	if err != nil && errors.Is(err, http.ErrTransport) {
		c.log().Warn("http: request failed",
			"method", pr.Method, "host", pr.Target.Host, "path", pr.RequestURI, "err", err)
	}
	return resp, err
}

func (c *Client) exchange(ctx context.Context, pr *http.PreparedRequest) (*http.Response, error) {
	trace := traceFrom(ctx)
	trace.getConn(pr.Target.Addr())
	conn, err := c.getDialer().Dial(ctx, pr)
	if err != nil {
		var he *http.Error
		if !errors.As(err, &he) {
			err = pr.Target.Fail(http.ErrTransport, "dial", err)
		}
		return nil, err
	}
	defer conn.Close()
	trace.gotConn(conn)

	if dl, ok := ctx.Deadline(); ok {
		if dc, ok := conn.(interface{ SetDeadline(time.Time) error }); ok {
			dc.SetDeadline(dl)
		}
	}

	t := transport.HTTP10{Logger: c.Logger}
	err = t.Write(conn, pr)
	trace.wroteRequest(err)
	if err != nil {
		return nil, err
	}
	resp, err := t.Read(trace.firstByte(conn), pr)
	if err != nil {
		return nil, err
	}
	if err := t.Materialize(resp, pr); err != nil {
		return nil, err
	}
	return resp, nil
}
