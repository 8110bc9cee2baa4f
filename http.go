// Package microhttp is a small HTTP/1.0 client. Every request opens a fresh
// connection, writes the request, reads the whole response and closes the
// connection again. Bodies may be raw bytes, JSON values, or files streamed
// either verbatim or as a JSON array of text lines.
package microhttp

import (
	"context"

	"github.com/frankli0324/go-microhttp/internal"
	"github.com/frankli0324/go-microhttp/internal/http"
)

type Client = internal.Client
type Handler = internal.Handler
type Middleware = internal.Middleware

type Header = http.Header
type Request = http.Request
type PreparedRequest = http.PreparedRequest
type Response = http.Response
type Target = http.Target
type Error = http.Error

type Body = http.Body
type NoBody = http.NoBody
type RawBody = http.RawBody
type JSONBody = http.JSONBody

type StreamMode = http.StreamMode

const (
	StreamNone      = http.StreamNone
	StreamJSONLines = http.StreamJSONLines
)

type BodyPolicy = http.BodyPolicy

const (
	NotYetRead     = http.NotYetRead
	Buffered       = http.Buffered
	StreamedToFile = http.StreamedToFile
)

// SinkChunkSize is the largest single write into Request.OutFile.
const SinkChunkSize = http.SinkChunkSize

var (
	ErrUnsupportedProtocol   = http.ErrUnsupportedProtocol
	ErrInvalidPort           = http.ErrInvalidPort
	ErrInvalidHost           = http.ErrInvalidHost
	ErrInvalidHeader         = http.ErrInvalidHeader
	ErrInvalidPath           = http.ErrInvalidPath
	ErrBodyFile              = http.ErrBodyFile
	ErrConflictingBody       = http.ErrConflictingBody
	ErrUnsupportedEncoding   = http.ErrUnsupportedEncoding
	ErrRedirectsNotSupported = http.ErrRedirectsNotSupported
	ErrMalformedResponse     = http.ErrMalformedResponse
	ErrTransport             = http.ErrTransport
	ErrTLSUnavailable        = http.ErrTLSUnavailable
	ErrSink                  = http.ErrSink
	ErrDecode                = http.ErrDecode
)

// NewHeader builds a header from alternating key, value pairs.
func NewHeader(kv ...string) *Header { return http.NewHeader(kv...) }

// DefaultClient is used by the package level helpers.
var DefaultClient = &Client{}

func Do(ctx context.Context, req *Request) (*Response, error) {
	return DefaultClient.Do(ctx, req)
}

func Head(ctx context.Context, url string, h *Header) (*Response, error) {
	return DefaultClient.Head(ctx, url, h)
}

func Get(ctx context.Context, url string, h *Header) (*Response, error) {
	return DefaultClient.Get(ctx, url, h)
}

func Delete(ctx context.Context, url string, h *Header) (*Response, error) {
	return DefaultClient.Delete(ctx, url, h)
}

func Post(ctx context.Context, url string, body Body, h *Header) (*Response, error) {
	return DefaultClient.Post(ctx, url, body, h)
}

func Put(ctx context.Context, url string, body Body, h *Header) (*Response, error) {
	return DefaultClient.Put(ctx, url, body, h)
}

func Patch(ctx context.Context, url string, body Body, h *Header) (*Response, error) {
	return DefaultClient.Patch(ctx, url, body, h)
}
