package http

import (
	"encoding/json"
	"io"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// SinkChunkSize is the largest single write made into a response sink.
const SinkChunkSize = 256

type BodyPolicy int

const (
	NotYetRead BodyPolicy = iota
	Buffered
	StreamedToFile
)

func (p BodyPolicy) String() string {
	switch p {
	case Buffered:
		return "buffered"
	case StreamedToFile:
		return "streamed"
	default:
		return "unread"
	}
}

type Response struct {
	Target     Target
	Proto      string
	StatusCode int
	Reason     string
	Header     *Header // every header line received, in order

	// headers of interest, nil when the server did not send them
	Date        *string
	ETag        *string
	ContentHMAC *string

	Policy   BodyPolicy
	Encoding string // used by Text, defaults to utf-8
	Written  int64  // bytes written into the sink when Policy is StreamedToFile

	raw    io.ReadCloser
	cached []byte
}

// NewResponse returns a response owning raw until its body is consumed.
func NewResponse(t Target, raw io.ReadCloser) *Response {
	return &Response{Target: t, Header: &Header{}, Encoding: "utf-8", raw: raw}
}

func (r *Response) release() error {
	if r.raw == nil {
		return nil
	}
	err := r.raw.Close()
	r.raw = nil
	return err
}

// Content returns the response body. the first call reads whatever is left
// on the connection and closes it, later calls return the cached bytes.
// A response whose body went to a sink, or which was closed, has no content.
func (r *Response) Content() ([]byte, error) {
	if r.cached != nil || r.raw == nil {
		return r.cached, nil
	}
	b, err := io.ReadAll(r.raw)
	r.release()
	if err != nil {
		return nil, r.Target.Fail(ErrTransport, "read", err)
	}
	if b == nil {
		b = []byte{}
	}
	r.cached = b
	r.Policy = Buffered
	return b, nil
}

func (r *Response) Text() (string, error) {
	b, err := r.Content()
	if err != nil {
		return "", err
	}
	name := strings.ToLower(strings.TrimSpace(r.Encoding))
	if name == "" || name == "utf-8" || name == "utf8" {
		return string(b), nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return "", r.Target.Fail(ErrDecode, "decode", err)
	}
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", r.Target.Fail(ErrDecode, "decode", err)
	}
	return string(out), nil
}

func (r *Response) JSON(v interface{}) error {
	b, err := r.Content()
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return r.Target.Fail(ErrDecode, "decode", err)
	}
	return nil
}

// Drain copies the unread body into w, at most SinkChunkSize bytes per
// write, then releases the connection. Nothing is cached.
func (r *Response) Drain(w io.Writer) (int64, error) {
	if r.raw == nil {
		return 0, nil
	}
	var (
		n   int64
		err error
		buf = make([]byte, SinkChunkSize)
	)
	for {
		nr, rerr := r.raw.Read(buf)
		if nr > 0 {
			nw, werr := w.Write(buf[:nr])
			n += int64(nw)
			if werr == nil && nw != nr {
				werr = io.ErrShortWrite
			}
			if werr != nil {
				err = r.Target.Fail(ErrSink, "sink", werr)
				break
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			err = r.Target.Fail(ErrTransport, "read", rerr)
			break
		}
	}
	r.release()
	r.Policy = StreamedToFile
	r.Written = n
	return n, err
}

// Close releases the connection if it is still held and drops the cached body.
func (r *Response) Close() error {
	err := r.release()
	r.cached = nil
	return err
}
