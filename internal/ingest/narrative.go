package ingest

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"

	"github.com/nao1215/iatifetch/internal/model"
)

// narrativeFrame is one pending node of the narrative walk.
type narrativeFrame struct {
	// value is the node to visit, a map or a sequence.
	value any

	// path is the bracketed accessor chain to the node.
	path string

	// lang is the nearest ancestor's xml:lang, already normalized.
	lang string
}

// collectNarratives walks an activity element and hoists every narrative
// into a row, removing the narrative keys from the element as it goes.
// The walk is iterative with an explicit stack so arbitrarily deep
// publisher documents cannot overflow the goroutine stack.
//
// Language defaulting: a narrative's own @xml:lang wins, then the nearest
// ancestor's @xml:lang, then the document default, then defaultLang.
func collectNarratives(activityID string, element map[string]any, defaultLang string) []model.Narrative {
	docLang := normalizeLang(attrText(element["@xml:lang"]), defaultLang)

	var out []model.Narrative
	stack := []narrativeFrame{{value: element, path: "", lang: docLang}}

	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch node := frame.value.(type) {
		case map[string]any:
			lang := frame.lang
			if raw := attrText(node["@xml:lang"]); raw != "" {
				lang = normalizeLang(raw, defaultLang)
			}

			if seq, ok := node["narrative"].([]any); ok {
				for i, item := range seq {
					path := fmt.Sprintf("%s['narrative'][%d]", frame.path, i)
					out = append(out, narrativeRow(activityID, path, item, lang, defaultLang))
				}
				delete(node, "narrative")
			}

			// Sorted keys keep row order stable across runs.
			keys := make([]string, 0, len(node))
			for k := range node {
				if strings.HasPrefix(k, "@") || k == "#text" {
					continue
				}
				keys = append(keys, k)
			}
			sort.Sort(sort.Reverse(sort.StringSlice(keys)))
			for _, k := range keys {
				stack = append(stack, narrativeFrame{
					value: node[k],
					path:  fmt.Sprintf("%s['%s']", frame.path, k),
					lang:  lang,
				})
			}
		case []any:
			for i := len(node) - 1; i >= 0; i-- {
				stack = append(stack, narrativeFrame{
					value: node[i],
					path:  fmt.Sprintf("%s[%d]", frame.path, i),
					lang:  frame.lang,
				})
			}
		}
	}
	return out
}

// narrativeRow builds one Narrative from a narrative sequence item, which
// is either a bare string or a map with #text and optional @xml:lang.
func narrativeRow(activityID, path string, item any, inheritedLang, defaultLang string) model.Narrative {
	row := model.Narrative{
		ActivityID: activityID,
		Path:       path,
		Lang:       inheritedLang,
	}
	switch v := item.(type) {
	case string:
		row.Text = v
	case map[string]any:
		row.Text = attrText(v["#text"])
		if raw := attrText(v["@xml:lang"]); raw != "" {
			row.Lang = normalizeLang(raw, defaultLang)
		}
	}
	return row
}

// attrText returns v as a string when it is one, otherwise "".
func attrText(v any) string {
	s, _ := v.(string)
	return s
}

// normalizeLang canonicalizes a language tag, falling back when the tag is
// empty or unparseable. Publisher files carry tags in every case mix and
// occasionally outright garbage.
func normalizeLang(raw, fallback string) string {
	if raw == "" {
		return fallback
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return fallback
	}
	return tag.String()
}
