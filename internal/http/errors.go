package http

import (
	"errors"
	"strings"
)

var (
	ErrUnsupportedProtocol   = errors.New("microhttp: unsupported protocol")
	ErrInvalidPort           = errors.New("microhttp: invalid port")
	ErrInvalidHost           = errors.New("microhttp: invalid host")
	ErrInvalidHeader         = errors.New("microhttp: invalid header field")
	ErrInvalidPath           = errors.New("microhttp: invalid request path")
	ErrBodyFile              = errors.New("microhttp: request body file error")
	ErrConflictingBody       = errors.New("microhttp: conflicting request body")
	ErrUnsupportedEncoding   = errors.New("microhttp: unsupported transfer encoding")
	ErrRedirectsNotSupported = errors.New("microhttp: redirects not supported")
	ErrMalformedResponse     = errors.New("microhttp: malformed response")
	ErrTransport             = errors.New("microhttp: transport error")
	ErrTLSUnavailable        = errors.New("microhttp: tls unavailable")
	ErrSink                  = errors.New("microhttp: response sink error")
	ErrDecode                = errors.New("microhttp: decode error")
)

// Error is returned by every operation of the client. Kind is one of the
// sentinel errors above, so both errors.Is(err, ErrTransport) and
// errors.Is(err, <underlying cause>) hold.
type Error struct {
	Kind error
	Op   string // resolve, prepare, dial, write, read, sink, decode
	Host string
	Path string
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Op != "" {
		b.WriteString(" during ")
		b.WriteString(e.Op)
	}
	if e.Host != "" || e.Path != "" {
		b.WriteString(" (")
		b.WriteString(e.Host)
		b.WriteString(e.Path)
		b.WriteByte(')')
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Fail builds an *Error of the given kind carrying the target's host and path.
func (t Target) Fail(kind error, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Host: t.Host, Path: t.RequestURI(), Err: err}
}
