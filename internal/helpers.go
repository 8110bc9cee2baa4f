package internal

import (
	"context"

	"github.com/frankli0324/go-microhttp/internal/dialer"
	"github.com/frankli0324/go-microhttp/internal/http"
)

// SetTLS swaps the TLS capability of every *dialer.CoreDialer found by
// unwrapping the dialer chain.
func (c *Client) SetTLS(tc dialer.TLSCapability) (ok bool) {
	c.UseDialer(func(d dialer.Dialer) dialer.Dialer {
		for cd := d; cd != nil; cd = cd.Unwrap() {
			if core, isCore := cd.(*dialer.CoreDialer); isCore {
				core.TLS = tc
				ok = true
			}
		}
		return d
	})
	return
}

func (c *Client) Head(ctx context.Context, url string, h *http.Header) (*http.Response, error) {
	return c.Do(ctx, &http.Request{Method: "HEAD", URL: url, Header: h})
}

func (c *Client) Get(ctx context.Context, url string, h *http.Header) (*http.Response, error) {
	return c.Do(ctx, &http.Request{Method: "GET", URL: url, Header: h})
}

func (c *Client) Delete(ctx context.Context, url string, h *http.Header) (*http.Response, error) {
	return c.Do(ctx, &http.Request{Method: "DELETE", URL: url, Header: h})
}

func (c *Client) Post(ctx context.Context, url string, body http.Body, h *http.Header) (*http.Response, error) {
	return c.Do(ctx, &http.Request{Method: "POST", URL: url, Header: h, Body: body})
}

func (c *Client) Put(ctx context.Context, url string, body http.Body, h *http.Header) (*http.Response, error) {
	return c.Do(ctx, &http.Request{Method: "PUT", URL: url, Header: h, Body: body})
}

func (c *Client) Patch(ctx context.Context, url string, body http.Body, h *http.Header) (*http.Response, error) {
	return c.Do(ctx, &http.Request{Method: "PATCH", URL: url, Header: h, Body: body})
}
