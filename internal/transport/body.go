package transport

import (
	"os"

	"github.com/frankli0324/go-microhttp/internal/http"
)

// Materialize settles the response body while the exchange still owns the
// connection: it is streamed into r.OutFile when set, read into memory
// otherwise. either way the connection is released when this returns.
func (t *HTTP10) Materialize(resp *http.Response, r *http.PreparedRequest) error {
	if r.OutFile == "" {
		b, err := resp.Content()
		if err != nil {
			return err
		}
		if r.Debug {
			t.log().Debug("http: < body", "bytes", len(b), "body", string(b))
		}
		return nil
	}

	f, err := os.Create(r.OutFile)
	if err != nil {
		resp.Close()
		return r.Target.Fail(http.ErrSink, "sink", err)
	}
	n, err := resp.Drain(f)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = r.Target.Fail(http.ErrSink, "sink", cerr)
	}
	if r.Debug {
		t.log().Debug("http: < body", "bytes", n, "file", r.OutFile)
	}
	return err
}
