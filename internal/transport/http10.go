package transport

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/frankli0324/go-microhttp/internal/http"
	"github.com/frankli0324/go-microhttp/internal/logging"
)

const (
	writeBufferSize = 512
	readBufferSize  = 512
)

type bodyCloser struct {
	io.Reader
	close func() error
}

func (b bodyCloser) Close() error { return b.close() }

// HTTP10 writes requests and reads responses of a single HTTP/1.0 exchange.
// Requests with Debug set are echoed line by line to Logger.
type HTTP10 struct {
	Logger *slog.Logger
}

func (t *HTTP10) log() *slog.Logger {
	return logging.Or(t.Logger)
}

func (t *HTTP10) Write(w io.Writer, r *http.PreparedRequest) error {
	var body io.ReadCloser
	if r.GetBody != nil {
		b, err := r.GetBody()
		if err != nil {
			return r.Target.Fail(http.ErrBodyFile, "write", err)
		}
		body = b
	}
	if body != nil {
		defer body.Close() // request body is ALWAYS closed
	}

	bw := bufio.NewWriterSize(w, writeBufferSize)
	if err := t.writeHeader(bw, r); err != nil {
		return r.Target.Fail(http.ErrTransport, "write", err)
	}
	if body != nil {
		n, err := io.Copy(bw, body)
		if err != nil {
			return r.Target.Fail(http.ErrTransport, "write", err)
		}
		if r.ContentLength >= 0 && n != r.ContentLength {
			return r.Target.Fail(http.ErrBodyFile, "write",
				fmt.Errorf("sent %d body bytes, announced %d", n, r.ContentLength))
		}
		if r.Debug {
			t.log().Debug("http: > body", "bytes", n)
		}
	}
	if err := bw.Flush(); err != nil {
		return r.Target.Fail(http.ErrTransport, "write", err)
	}
	return nil
}

// writeHeader writes the request line and header part of an http 1.0 request
// e.g.:
//
//	POST /api HTTP/1.0\r\n
//	Host: www.example.com\r\n
//	Content-Type: application/json\r\n
//	X-Xx-Yy: cccccc\r\n
//	Content-Length: 13\r\n
//	\r\n
func (t *HTTP10) writeHeader(w *bufio.Writer, r *http.PreparedRequest) error {
	if err := t.line(w, r, r.Method, " ", r.RequestURI, " HTTP/1.0"); err != nil {
		return err
	}
	field := func(k, v string) error { return t.line(w, r, k, ": ", v) }
	for _, h := range [...]*http.Header{r.Preamble, r.Header, r.Framing} {
		if err := h.Each(field); err != nil {
			return err
		}
	}
	return t.line(w, r)
}

func (t *HTTP10) line(w *bufio.Writer, r *http.PreparedRequest, parts ...string) error {
	if r.Debug {
		t.log().Debug("http: >", "line", strings.Join(parts, ""))
	}
	for _, p := range parts {
		w.WriteString(p)
	}
	_, err := w.WriteString("\r\n")
	return err
}

// Read parses the status line and the header of the response. the returned
// response owns rc and reads its body from whatever follows the header.
func (t *HTTP10) Read(rc io.ReadCloser, r *http.PreparedRequest) (*http.Response, error) {
	br := bufio.NewReaderSize(rc, readBufferSize)
	tp := textproto.NewReader(br)

	line, err := tp.ReadLine()
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, r.Target.Fail(http.ErrTransport, "read", err)
	}
	t.echo(r, line)
	proto, code, reason, err := parseStatusLine(line)
	if err != nil {
		return nil, r.Target.Fail(http.ErrMalformedResponse, "read", err)
	}

	resp := http.NewResponse(r.Target, bodyCloser{br, rc.Close})
	resp.Proto, resp.StatusCode, resp.Reason = proto, code, reason
	for {
		line, err := tp.ReadLine()
		if err == io.EOF {
			break // a header cut short by the end of the stream is complete
		}
		if err != nil {
			return nil, r.Target.Fail(http.ErrTransport, "read", err)
		}
		t.echo(r, line)
		if line == "" {
			break
		}
		if kind, err := scanField(resp, line); err != nil {
			return nil, r.Target.Fail(kind, "read", err)
		}
	}
	return resp, nil
}

func (t *HTTP10) echo(r *http.PreparedRequest, line string) {
	if r.Debug {
		t.log().Debug("http: <", "line", line)
	}
}

// cutSpace splits s at the first run of spaces or tabs.
func cutSpace(s string) (before, after string, found bool) {
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, "", false
	}
	return s[:i], strings.TrimLeft(s[i:], " \t"), true
}

func parseStatusLine(line string) (proto string, code int, reason string, err error) {
	proto, status, ok := cutSpace(strings.TrimLeft(line, " \t"))
	if !ok || !strings.HasPrefix(proto, "HTTP/") {
		return "", 0, "", fmt.Errorf("malformed status line %q", line)
	}
	statusCode, reason, _ := cutSpace(status)
	if len(statusCode) != 3 {
		return "", 0, "", errors.New("malformed HTTP status code " + statusCode)
	}
	code, err = strconv.Atoi(statusCode)
	if err != nil || code < 100 {
		return "", 0, "", errors.New("malformed HTTP status code " + statusCode)
	}
	return proto, code, strings.TrimRight(reason, " \t"), nil
}

// scanField records one header line and captures the fields of interest.
// the returned kind classifies a non-nil error.
func scanField(resp *http.Response, line string) (kind error, err error) {
	key, value, ok := strings.Cut(line, ":")
	if !ok {
		return nil, nil // not a field, ignored like any other unknown line
	}
	value = strings.TrimSpace(value)
	resp.Header.Add(key, value)

	switch {
	case strings.EqualFold(key, "Date"):
		resp.Date = &value
	case strings.EqualFold(key, "ETag"):
		v := quoted(value)
		resp.ETag = &v
	case strings.EqualFold(key, "Content-HMAC"):
		v := quoted(value)
		resp.ContentHMAC = &v
	case strings.EqualFold(key, "Transfer-Encoding"):
		if strings.Contains(strings.ToLower(value), "chunked") {
			return http.ErrUnsupportedEncoding, errors.New("chunked responses are not implemented")
		}
	case strings.EqualFold(key, "Location"):
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return http.ErrRedirectsNotSupported, fmt.Errorf("status %d to %s", resp.StatusCode, value)
		}
	}
	return nil, nil
}

// quoted returns what is between the first pair of double quotes, or the
// whole value when it is not quoted.
func quoted(v string) string {
	if _, rest, ok := strings.Cut(v, `"`); ok {
		inner, _, _ := strings.Cut(rest, `"`)
		return inner
	}
	return v
}
