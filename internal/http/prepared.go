package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/net/http/httpguts"

	"github.com/frankli0324/go-microhttp/internal/jsonlines"
)

// PreparedRequest is a validated request bound to a resolved target. The
// transport writes it as:
//
//	<Method> <RequestURI> HTTP/1.0
//	<Preamble fields>
//	<Header fields, in caller order>
//	<Framing fields>
//
// followed by a blank line and whatever GetBody yields.
type PreparedRequest struct {
	*Request

	Target     Target
	RequestURI string
	Preamble   *Header
	Header     *Header
	Framing    *Header

	ContentLength int64 // -1 if the request has no body
	GetBody       func() (io.ReadCloser, error)
}

type bodyCloser struct {
	io.Reader
	close func() error
}

func (b bodyCloser) Close() error { return b.close() }

func noBody() (io.ReadCloser, error) { return nil, nil }

func (r *Request) Prepare(t Target) (*PreparedRequest, error) {
	if !httpguts.ValidHeaderFieldName(r.Method) {
		return nil, t.Fail(ErrInvalidHeader, "prepare", fmt.Errorf("invalid method %q", r.Method))
	}
	if i := strings.IndexFunc(t.Path, invalidPathRune); i >= 0 {
		return nil, t.Fail(ErrInvalidPath, "prepare", fmt.Errorf("byte %q at offset %d of the path", t.Path[i], i+1))
	}
	err := r.Header.Each(func(k, v string) error {
		if !httpguts.ValidHeaderFieldName(k) || !httpguts.ValidHeaderFieldValue(v) {
			return fmt.Errorf("%q: %q", k, v)
		}
		if k == "Host" && !httpguts.ValidHostHeader(v) {
			return fmt.Errorf("invalid Host %q", v)
		}
		return nil
	})
	if err != nil {
		return nil, t.Fail(ErrInvalidHeader, "prepare", err)
	}

	headers := r.Header.Clone()
	if headers == nil {
		headers = &Header{}
	}
	pr := &PreparedRequest{
		Request: r, Target: t,
		RequestURI: t.RequestURI(),
		Preamble:   &Header{}, Header: headers, Framing: &Header{},
		ContentLength: -1,
		GetBody:       noBody,
	}
	// only an exact "Host" key suppresses the generated one
	if !headers.Has("Host") {
		pr.Preamble.Set("Host", t.HostHeader())
	}
	if err := pr.updateBody(); err != nil {
		return nil, err
	}
	return pr, nil
}

// controls and spaces would end the request line early
func invalidPathRune(c rune) bool {
	return c <= ' ' || c == 0x7f
}

// should only be called once at [Request.Prepare]
func (r *PreparedRequest) updateBody() error {
	switch b := r.Request.Body.(type) {
	case nil, NoBody:
		if r.BodyFile != "" {
			return r.updateFileBody()
		}
	case RawBody:
		if r.BodyFile != "" {
			return r.Target.Fail(ErrConflictingBody, "prepare", errors.New("raw body and body file both set"))
		}
		r.setBytes(b)
	case JSONBody:
		if r.BodyFile != "" {
			return r.Target.Fail(ErrConflictingBody, "prepare", errors.New("json body and body file both set"))
		}
		data, err := json.Marshal(b.V)
		if err != nil {
			return r.Target.Fail(ErrDecode, "encode", err)
		}
		r.Preamble.Set("Content-Type", "application/json")
		r.setBytes(data)
	}
	return nil
}

// an empty byte body is the same as no body at all
func (r *PreparedRequest) setBytes(b []byte) {
	if len(b) == 0 {
		return
	}
	r.ContentLength = int64(len(b))
	r.Framing.Set("Content-Length", strconv.Itoa(len(b)))
	r.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(b)), nil
	}
}

func (r *PreparedRequest) updateFileBody() error {
	f, err := os.Open(r.BodyFile)
	if err != nil {
		return r.Target.Fail(ErrBodyFile, "prepare", err)
	}
	defer f.Close()

	wrap := func(f io.Reader) io.Reader { return f }
	var n int64
	switch r.BodyFileMode {
	case StreamJSONLines:
		// the length is taken from a full pass over the file with the same
		// encoder the body is later streamed with
		if n, err = jsonlines.Length(f); err != nil {
			return r.Target.Fail(ErrBodyFile, "prepare", err)
		}
		r.Framing.Set("Content-Type", "application/json")
		wrap = func(f io.Reader) io.Reader { return jsonlines.NewReader(f) }
	default:
		st, err := f.Stat()
		if err != nil {
			return r.Target.Fail(ErrBodyFile, "prepare", err)
		}
		n = st.Size()
	}
	r.ContentLength = n
	r.Framing.Set("Content-Length", strconv.FormatInt(n, 10))

	path := r.BodyFile
	r.GetBody = func() (io.ReadCloser, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		return bodyCloser{wrap(f), f.Close}, nil
	}
	return nil
}
