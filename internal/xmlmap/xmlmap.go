package xmlmap

import (
	"encoding/xml"
	"io"
	"strings"
)

// forceList names the tags that are always materialized as sequences.
// These are the elements the IATI schema allows 0, 1, or N times and that
// the ingestion pipeline iterates over.
var forceList = map[string]bool{
	"transaction":       true,
	"iati-activity":     true,
	"iati-organisation": true,
	"narrative":         true,
	"budget":            true,
	"result":            true,
	"total-budget":      true,
	"budget-line":       true,
	"codelist-item":     true,
	"document-link":     true,
}

// frame is one open element during tokenization.
type frame struct {
	name     string
	attrs    []xml.Attr
	children map[string]any
	text     strings.Builder
}

// ToMap parses raw XML into a nested map. Malformed XML or an empty
// payload yields an empty map; see the package documentation.
func ToMap(raw string) map[string]any {
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}
	}

	dec := xml.NewDecoder(strings.NewReader(raw))
	root := &frame{children: map[string]any{}}
	stack := []*frame{root}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return map[string]any{}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			f := &frame{
				name:     t.Name.Local,
				attrs:    append([]xml.Attr(nil), t.Attr...),
				children: map[string]any{},
			}
			stack = append(stack, f)
		case xml.EndElement:
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			attach(stack[len(stack)-1], f.name, finalize(f))
		case xml.CharData:
			stack[len(stack)-1].text.Write(t)
		}
		// Comments, directives, and processing instructions are dropped.
	}

	// A well-formed document leaves only the synthetic root on the stack.
	if len(stack) != 1 {
		return map[string]any{}
	}
	return root.children
}

// finalize converts a closed element into its mapped value. Text-only
// elements collapse to their trimmed string (or nil when empty); anything
// with attributes or children becomes a map.
func finalize(f *frame) any {
	text := strings.TrimSpace(f.text.String())
	if len(f.attrs) == 0 && len(f.children) == 0 {
		if text == "" {
			return nil
		}
		return text
	}

	m := make(map[string]any, len(f.attrs)+len(f.children)+1)
	for _, a := range f.attrs {
		m[attrKey(a)] = a.Value
	}
	for k, v := range f.children {
		m[k] = v
	}
	if text != "" {
		m["#text"] = text
	}
	return m
}

// attrKey builds the "@name" key for an attribute, preserving the
// namespace prefix for attributes like xml:lang.
func attrKey(a xml.Attr) string {
	if a.Name.Space != "" {
		return "@" + a.Name.Space + ":" + a.Name.Local
	}
	return "@" + a.Name.Local
}

// attach inserts a finalized child value into its parent, promoting to a
// sequence on repetition and always for force-listed tags.
func attach(parent *frame, name string, val any) {
	existing, ok := parent.children[name]
	switch {
	case !ok && forceList[name]:
		parent.children[name] = []any{val}
	case !ok:
		parent.children[name] = val
	default:
		if list, isList := existing.([]any); isList {
			parent.children[name] = append(list, val)
		} else {
			parent.children[name] = []any{existing, val}
		}
	}
}

// Match extracts the values reachable by descending doc along the dotted
// path, flattening sequences at every hop. For example
// Match("iati-activities.iati-activity", doc) returns every activity
// element regardless of how many <iati-activities> blocks the document
// has. A missing segment yields an empty result, never an error.
func Match(path string, doc any) []any {
	current := []any{doc}
	for key := range strings.SplitSeq(path, ".") {
		var next []any
		for _, v := range current {
			m, ok := v.(map[string]any)
			if !ok {
				continue
			}
			child, ok := m[key]
			if !ok || child == nil {
				continue
			}
			if list, isList := child.([]any); isList {
				next = append(next, list...)
			} else {
				next = append(next, child)
			}
		}
		current = next
		if len(current) == 0 {
			return nil
		}
	}
	return current
}
