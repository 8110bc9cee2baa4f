package http

import (
	"net"
	"strconv"
)

// Body is the request payload. Only the types declared in this package
// implement it, so a request carries exactly one kind of body.
type Body interface {
	isBody()
}

// NoBody sends no payload and no Content-Length.
type NoBody struct{}

// RawBody is sent verbatim with an exact Content-Length.
type RawBody []byte

// JSONBody is encoded with encoding/json and sent as application/json.
type JSONBody struct {
	V interface{}
}

func (NoBody) isBody()   {}
func (RawBody) isBody()  {}
func (JSONBody) isBody() {}

// StreamMode selects how Request.BodyFile is framed on the wire.
type StreamMode int

const (
	// StreamNone copies the file verbatim.
	StreamNone StreamMode = iota
	// StreamJSONLines wraps every line of the file as {"text": "<line>"}
	// inside a JSON array, without buffering the array.
	StreamJSONLines
)

type Request struct {
	Method string
	URL    string
	Header *Header
	Body   Body

	BodyFile     string // path of a file to send as the request body
	BodyFileMode StreamMode

	OutFile string // when set, the response body is streamed into this path
	Debug   bool   // echo the exchange to the client logger at debug level
}

// Target is the result of resolving a request URL.
type Target struct {
	Scheme string
	Host   string // host name without port, IDNA encoded
	Port   int
	Path   string // path without the leading slash, may be empty
}

func (t Target) Addr() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

// RequestURI is the origin-form written on the request line.
func (t Target) RequestURI() string {
	return "/" + t.Path
}

// HostHeader is the value sent in the Host header: the host name alone,
// bracketed when it is an IPv6 literal.
func (t Target) HostHeader() string {
	if ip := net.ParseIP(t.Host); ip != nil && ip.To4() == nil {
		return "[" + t.Host + "]"
	}
	return t.Host
}

func (t Target) TLS() bool {
	return t.Scheme == "https"
}
