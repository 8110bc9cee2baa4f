package dialer

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"golang.org/x/net/idna"

	"github.com/frankli0324/go-microhttp/internal/http"
)

var schemes = map[string]int{
	"http": 80, "https": 443,
}

// Resolve splits scheme://host[:port]/path into a Target. A missing path is
// the root, a missing port is the scheme default, and an explicit default
// port resolves to the same Target as no port at all.
func Resolve(rawURL string) (http.Target, error) {
	parts := strings.SplitN(rawURL, "/", 4)
	if len(parts) < 3 || !strings.HasSuffix(parts[0], ":") {
		return http.Target{}, &http.Error{
			Kind: http.ErrUnsupportedProtocol, Op: "resolve",
			Err: fmt.Errorf("malformed url %q", rawURL),
		}
	}
	proto, host, path := parts[0], parts[2], ""
	if len(parts) == 4 {
		path = parts[3]
	}
	if i := strings.IndexByte(path, '#'); i >= 0 {
		path = path[:i] // fragments never leave the client
	}
	fail := func(kind error, err error) (http.Target, error) {
		return http.Target{}, &http.Error{Kind: kind, Op: "resolve", Host: host, Path: "/" + path, Err: err}
	}

	// schemes compare case-insensitively (RFC 3986 3.1), Target.Scheme is lower case
	scheme := strings.ToLower(strings.TrimSuffix(proto, ":"))
	port, ok := schemes[scheme]
	if !ok {
		return fail(http.ErrUnsupportedProtocol, fmt.Errorf("scheme %q", scheme))
	}

	hostname, portStr, hasPort := splitHostPort(host)
	if hasPort {
		p, err := strconv.Atoi(portStr)
		if err != nil || p <= 0 || p > 65535 {
			return fail(http.ErrInvalidPort, fmt.Errorf("port %q", portStr))
		}
		port = p
	}
	hostname, err := normalizeHost(hostname)
	if err != nil {
		return fail(http.ErrInvalidHost, err)
	}
	return http.Target{Scheme: scheme, Host: hostname, Port: port, Path: path}, nil
}

func splitHostPort(host string) (hostname, port string, ok bool) {
	if strings.HasPrefix(host, "[") {
		if end := strings.IndexByte(host, ']'); end > 0 {
			rest := host[end+1:]
			if rest == "" {
				return host[1:end], "", false
			}
			if p, found := strings.CutPrefix(rest, ":"); found {
				return host[1:end], p, true
			}
			return host[1:end], rest, true
		}
	}
	return strings.Cut(host, ":")
}

func normalizeHost(h string) (string, error) {
	if h == "" {
		return "", errors.New("empty host")
	}
	if net.ParseIP(h) != nil {
		return h, nil
	}
	return idna.Lookup.ToASCII(h)
}
