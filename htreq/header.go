package htreq

import (
	"fmt"
	"strings"
)

// Header is a case-insensitive, order-preserving multimap of header names
// to values. Forbids CR/LF in names and values (header injection guard).
//
// Shape mirrors net/http.Header's canonical-key convention, restructured
// as an explicit multimap type (rather than map[string][]string) so Set,
// Add, First, and Clone are first-class operations instead of package
// functions — the same restructuring badu-http applies to net/http's
// header handling in types_header.go.
type Header struct {
	m map[string][]string
}

// NewHeader returns an empty Header.
func NewHeader() Header {
	return Header{m: make(map[string][]string)}
}

func canonical(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func checkInjection(s string) error {
	if strings.ContainsAny(s, "\r\n") {
		return fmt.Errorf("htreq: header value contains CR or LF: %q", s)
	}
	return nil
}

// Set replaces all values for name with a single value.
func (h *Header) Set(name, value string) error {
	if err := checkInjection(name); err != nil {
		return err
	}
	if err := checkInjection(value); err != nil {
		return err
	}
	if h.m == nil {
		h.m = make(map[string][]string)
	}
	h.m[canonical(name)] = []string{value}
	return nil
}

// Add appends a value for name, preserving any existing values.
func (h *Header) Add(name, value string) error {
	if err := checkInjection(name); err != nil {
		return err
	}
	if err := checkInjection(value); err != nil {
		return err
	}
	if h.m == nil {
		h.m = make(map[string][]string)
	}
	k := canonical(name)
	h.m[k] = append(h.m[k], value)
	return nil
}

// Del removes all values for name.
func (h *Header) Del(name string) {
	if h.m == nil {
		return
	}
	delete(h.m, canonical(name))
}

// First returns the first value for name, and whether it was present.
func (h Header) First(name string) (string, bool) {
	if h.m == nil {
		return "", false
	}
	v, ok := h.m[canonical(name)]
	if !ok || len(v) == 0 {
		return "", false
	}
	return v[0], true
}

// Values returns all values for name, in insertion order.
func (h Header) Values(name string) []string {
	if h.m == nil {
		return nil
	}
	return append([]string(nil), h.m[canonical(name)]...)
}

// Has reports whether name has at least one value.
func (h Header) Has(name string) bool {
	_, ok := h.First(name)
	return ok
}

// Names returns the canonical names present, unordered.
func (h Header) Names() []string {
	out := make([]string, 0, len(h.m))
	for k := range h.m {
		out = append(out, k)
	}
	return out
}

// Range calls fn for every (name, value) pair, in unspecified name order
// and insertion order within a name.
func (h Header) Range(fn func(name, value string)) {
	for k, vs := range h.m {
		for _, v := range vs {
			fn(k, v)
		}
	}
}

// Len returns the number of distinct header names.
func (h Header) Len() int { return len(h.m) }

// Clone returns an independent deep copy.
func (h Header) Clone() Header {
	n := make(map[string][]string, len(h.m))
	for k, vs := range h.m {
		n[k] = append([]string(nil), vs...)
	}
	return Header{m: n}
}

// Equal reports whether two Headers carry identical name/value sets
// (used by tests to assert header immutability).
func (h Header) Equal(o Header) bool {
	if len(h.m) != len(o.m) {
		return false
	}
	for k, vs := range h.m {
		ovs, ok := o.m[k]
		if !ok || len(ovs) != len(vs) {
			return false
		}
		for i := range vs {
			if vs[i] != ovs[i] {
				return false
			}
		}
	}
	return true
}
