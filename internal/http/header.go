package http

// Header is an ordered list of header fields. Keys are matched exactly,
// the way they will appear on the wire; no canonicalization is applied.
//
// A nil *Header is a valid empty header for every read method.
type Header struct {
	fields []field
}

type field struct {
	key, value string
}

// NewHeader builds a header from alternating key, value pairs.
// a trailing key without a value is ignored.
func NewHeader(kv ...string) *Header {
	h := &Header{fields: make([]field, 0, len(kv)/2)}
	for i := 0; i+1 < len(kv); i += 2 {
		h.Set(kv[i], kv[i+1])
	}
	return h
}

// Set replaces the value of key, keeping its original position, or appends
// the field if key is not present yet.
func (h *Header) Set(key, value string) {
	for i := range h.fields {
		if h.fields[i].key == key {
			h.fields[i].value = value
			return
		}
	}
	h.fields = append(h.fields, field{key, value})
}

// Add appends a field even if key is already present.
func (h *Header) Add(key, value string) {
	h.fields = append(h.fields, field{key, value})
}

func (h *Header) Get(key string) string {
	v, _ := h.Lookup(key)
	return v
}

func (h *Header) Lookup(key string) (string, bool) {
	if h == nil {
		return "", false
	}
	for _, f := range h.fields {
		if f.key == key {
			return f.value, true
		}
	}
	return "", false
}

func (h *Header) Has(key string) bool {
	_, ok := h.Lookup(key)
	return ok
}

func (h *Header) Del(key string) {
	if h == nil {
		return
	}
	kept := h.fields[:0]
	for _, f := range h.fields {
		if f.key != key {
			kept = append(kept, f)
		}
	}
	h.fields = kept
}

func (h *Header) Len() int {
	if h == nil {
		return 0
	}
	return len(h.fields)
}

// Each calls f for every field in insertion order and stops at the first error.
func (h *Header) Each(f func(key, value string) error) error {
	if h == nil {
		return nil
	}
	for _, kv := range h.fields {
		if err := f(kv.key, kv.value); err != nil {
			return err
		}
	}
	return nil
}

func (h *Header) Clone() *Header {
	if h == nil {
		return nil
	}
	return &Header{fields: append([]field(nil), h.fields...)}
}
