package transport

import (
	"io"

	"github.com/frankli0324/go-microhttp/internal/http"
)

type Transport interface {
	Write(w io.Writer, req *http.PreparedRequest) error
	Read(rc io.ReadCloser, req *http.PreparedRequest) (*http.Response, error)
	Materialize(resp *http.Response, req *http.PreparedRequest) error
}

var _ Transport = (*HTTP10)(nil)
