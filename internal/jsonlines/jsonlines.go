// Package jsonlines frames a text file as a JSON array of {"text": "<line>"}
// records. The array is produced incrementally so a file of any size can be
// sent with a fixed amount of memory, and Length reports the exact number of
// bytes Reader will produce for the same input.
package jsonlines

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"strings"
)

type encoder struct {
	buf bytes.Buffer
	enc *json.Encoder
}

func newEncoder() *encoder {
	e := &encoder{}
	e.enc = json.NewEncoder(&e.buf)
	e.enc.SetEscapeHTML(false)
	return e
}

// record returns {"text": "<line>"} for a line with its trailing newline
// removed. the result is only valid until the next call.
func (e *encoder) record(line string) ([]byte, error) {
	e.buf.Reset()
	e.buf.WriteString(`{"text": `)
	if err := e.enc.Encode(strings.TrimSuffix(line, "\n")); err != nil {
		return nil, err
	}
	e.buf.Truncate(e.buf.Len() - 1) // Encode terminates every value with '\n'
	e.buf.WriteByte('}')
	return e.buf.Bytes(), nil
}

// Length is the size of the array Reader yields for the content of r.
func Length(r io.Reader) (int64, error) {
	br := bufio.NewReader(r)
	e := newEncoder()
	n, records := int64(2), int64(0) // brackets
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			rec, eerr := e.record(line)
			if eerr != nil {
				return 0, eerr
			}
			n += int64(len(rec))
			records++
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
	}
	if records > 1 {
		n += records - 1 // separators
	}
	return n, nil
}

// Reader yields the JSON array for the lines of an underlying reader.
type Reader struct {
	br  *bufio.Reader
	enc *encoder

	buf     []byte
	pending []byte
	records int

	started, eof, done bool
	err                error
}

func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReader(r), enc: newEncoder()}
}

func (r *Reader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for len(r.pending) == 0 {
		if r.done {
			return 0, io.EOF
		}
		if r.err != nil {
			return 0, r.err
		}
		r.err = r.fill()
	}
	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}

func (r *Reader) fill() error {
	r.buf = r.buf[:0]
	switch {
	case !r.started:
		r.started = true
		r.buf = append(r.buf, '[')
	case r.eof:
		r.done = true
		r.buf = append(r.buf, ']')
	default:
		line, err := r.br.ReadString('\n')
		if err == io.EOF {
			r.eof = true
		} else if err != nil {
			return err
		}
		if line != "" {
			rec, err := r.enc.record(line)
			if err != nil {
				return err
			}
			if r.records > 0 {
				r.buf = append(r.buf, ',')
			}
			r.buf = append(r.buf, rec...)
			r.records++
		}
	}
	r.pending = r.buf
	return nil
}
