package hashkey

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"sort"
	"strings"
)

// Reserved keys mixed into the canonical form so that requests differing
// only in URL or method never collide with each other or with a genuine
// parameter of the same name.
const (
	urlKey    = "__url__"
	methodKey = "__method__"
)

// Pair is one (key, value) element of a canonicalized mapping.
type Pair struct {
	Key   string
	Value any
}

// Set marks a collection whose element order is not meaningful. Elements
// are canonicalized and sorted by their representation before hashing, so
// Set{1, 2} and Set{2, 1} produce identical keys.
type Set []any

// Canonical converts v into a canonical, order-normalized form:
//
//   - ordered sequences become order-preserving []any of canonical elements
//   - mappings become []Pair sorted by key
//   - Sets become []any sorted by element representation
//   - scalars pass through unchanged
//
// The result is deterministic across process runs for any input built from
// maps, slices, Sets, and scalars.
func Canonical(v any) any {
	switch t := v.(type) {
	case Set:
		elems := make([]any, len(t))
		for i, e := range t {
			elems[i] = Canonical(e)
		}
		sort.Slice(elems, func(i, j int) bool {
			return repr(elems[i]) < repr(elems[j])
		})
		return elems
	case []any:
		elems := make([]any, len(t))
		for i, e := range t {
			elems[i] = Canonical(e)
		}
		return elems
	case []string:
		elems := make([]any, len(t))
		for i, e := range t {
			elems[i] = e
		}
		return elems
	case map[string]any:
		pairs := make([]Pair, 0, len(t))
		for k, e := range t {
			pairs = append(pairs, Pair{Key: k, Value: Canonical(e)})
		}
		sort.Slice(pairs, func(i, j int) bool { return pairs[i].Key < pairs[j].Key })
		return pairs
	case map[string]string:
		pairs := make([]Pair, 0, len(t))
		for k, e := range t {
			pairs = append(pairs, Pair{Key: k, Value: e})
		}
		sort.Slice(pairs, func(i, j int) bool { return pairs[i].Key < pairs[j].Key })
		return pairs
	default:
		return v
	}
}

// RequestTuple reduces a (url, method, params) triple to its canonical
// tuple. The URL and method are folded into the parameter mapping under
// reserved keys before canonicalization, so a request with no parameters
// canonicalizes to (("__method__", m), ("__url__", u)).
func RequestTuple(url, method string, params map[string]any) []Pair {
	content := make(map[string]any, len(params)+2)
	for k, v := range params {
		content[k] = v
	}
	content[urlKey] = url
	content[methodKey] = method
	pairs, _ := Canonical(content).([]Pair)
	return pairs
}

// RequestKey returns the fixed-width cache key for a (url, method, params)
// triple: base64(SHA-256(repr(RequestTuple(...)))).
func RequestKey(url, method string, params map[string]any) string {
	sum := sha256.Sum256([]byte(repr(RequestTuple(url, method, params))))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// repr renders a canonical form as a deterministic string. Strings are
// quoted so that values cannot run into structural delimiters; everything
// else uses fmt's value formatting, which is stable for scalars.
func repr(v any) string {
	var b strings.Builder
	writeRepr(&b, v)
	return b.String()
}

func writeRepr(b *strings.Builder, v any) {
	switch t := v.(type) {
	case []Pair:
		b.WriteByte('(')
		for i, p := range t {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteByte('(')
			fmt.Fprintf(b, "%q", p.Key)
			b.WriteString(", ")
			writeRepr(b, p.Value)
			b.WriteByte(')')
		}
		b.WriteByte(')')
	case []any:
		b.WriteByte('(')
		for i, e := range t {
			if i > 0 {
				b.WriteString(", ")
			}
			writeRepr(b, e)
		}
		b.WriteByte(')')
	case string:
		fmt.Fprintf(b, "%q", t)
	default:
		fmt.Fprintf(b, "%v", t)
	}
}
