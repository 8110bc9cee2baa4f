package http

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var example = Target{Scheme: "http", Host: "www.example.com", Port: 80, Path: "api?x=1"}

func readBody(t *testing.T, pr *PreparedRequest) string {
	t.Helper()
	rc, err := pr.GetBody()
	if err != nil {
		t.Fatal(err)
	}
	if rc == nil {
		return ""
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestPrepareNoBody(t *testing.T) {
	pr, err := (&Request{Method: "GET"}).Prepare(example)
	if err != nil {
		t.Fatal(err)
	}
	if pr.RequestURI != "/api?x=1" || pr.ContentLength != -1 {
		t.Fatalf("RequestURI=%q ContentLength=%d", pr.RequestURI, pr.ContentLength)
	}
	if diff := cmp.Diff([]string{"Host", "www.example.com"}, fields(pr.Preamble)); diff != "" {
		t.Fatal(diff)
	}
	if pr.Framing.Len() != 0 || readBody(t, pr) != "" {
		t.Fatal("a request without body got framing")
	}
}

func TestPrepareIPv6Host(t *testing.T) {
	pr, err := (&Request{Method: "GET"}).Prepare(Target{Scheme: "http", Host: "::1", Port: 80})
	if err != nil {
		t.Fatal(err)
	}
	if got := pr.Preamble.Get("Host"); got != "[::1]" {
		t.Fatalf("Host=%q", got)
	}
}

func TestPrepareJSON(t *testing.T) {
	req := &Request{
		Method: "POST",
		Header: NewHeader("X-Trace", "1"),
		Body:   JSONBody{V: []string{"a", "b"}},
	}
	pr, err := req.Prepare(example)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"Host", "www.example.com", "Content-Type", "application/json"}, fields(pr.Preamble)); diff != "" {
		t.Fatal(diff)
	}
	if diff := cmp.Diff([]string{"Content-Length", "9"}, fields(pr.Framing)); diff != "" {
		t.Fatal(diff)
	}
	if got := readBody(t, pr); got != `["a","b"]` {
		t.Fatalf("body=%q", got)
	}
	// the body can be produced more than once
	if got := readBody(t, pr); got != `["a","b"]` {
		t.Fatalf("second body=%q", got)
	}
	if req.Header.Len() != 1 {
		t.Fatal("Prepare modified the caller's header")
	}
}

func TestPrepareJSONEncodeError(t *testing.T) {
	_, err := (&Request{Method: "POST", Body: JSONBody{V: make(chan int)}}).Prepare(example)
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("err=%v, want ErrDecode", err)
	}
}

func TestPrepareInvalid(t *testing.T) {
	for name, req := range map[string]*Request{
		"Method":     {Method: "GE T"},
		"HeaderName": {Method: "GET", Header: NewHeader("X Y", "1")},
		"Value":      {Method: "GET", Header: NewHeader("X", "a\r\nInjected: 1")},
		"Host":       {Method: "GET", Header: NewHeader("Host", "a b")},
	} {
		if _, err := req.Prepare(example); !errors.Is(err, ErrInvalidHeader) {
			t.Errorf("%s: err=%v, want ErrInvalidHeader", name, err)
		}
	}
}

func TestPrepareInvalidPath(t *testing.T) {
	for _, path := range []string{
		"a HTTP/1.0\r\nX-Injected: 1\r\nFoo: b",
		"a b",
		"a\tb",
		"a\nb",
		"\x00",
		"a\x7f",
	} {
		target := example
		target.Path = path
		_, err := (&Request{Method: "GET"}).Prepare(target)
		var he *Error
		if !errors.Is(err, ErrInvalidPath) || !errors.As(err, &he) || he.Op != "prepare" {
			t.Errorf("%q: err=%v, want ErrInvalidPath", path, err)
		}
	}
	target := example
	target.Path = "caf%C3%A9/b\u00fccher?q=%20"
	if _, err := (&Request{Method: "GET"}).Prepare(target); err != nil {
		t.Fatalf("printable path rejected: %v", err)
	}
}

func TestPrepareFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.txt")
	if err := os.WriteFile(path, []byte("a\nbb\nccc\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	pr, err := (&Request{Method: "POST", BodyFile: path, BodyFileMode: StreamJSONLines}).Prepare(example)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Content-Type", "application/json", "Content-Length", "46"}
	if diff := cmp.Diff(want, fields(pr.Framing)); diff != "" {
		t.Fatal(diff)
	}
	if got := readBody(t, pr); int64(len(got)) != pr.ContentLength {
		t.Fatalf("streamed %d bytes, announced %d", len(got), pr.ContentLength)
	}

	pr, err = (&Request{Method: "POST", BodyFile: path}).Prepare(example)
	if err != nil {
		t.Fatal(err)
	}
	if pr.Framing.Get("Content-Length") != "9" || readBody(t, pr) != "a\nbb\nccc\n" {
		t.Fatalf("raw file framed as %v", fields(pr.Framing))
	}

	_, err = (&Request{Method: "POST", BodyFile: filepath.Join(dir, "missing")}).Prepare(example)
	if !errors.Is(err, ErrBodyFile) || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err=%v, want ErrBodyFile", err)
	}
}
