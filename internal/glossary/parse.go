package glossary

import (
	"encoding/json"

	"github.com/liaozensiang/ebook-translater/internal/postprocess"
)

// Term is one candidate pair lifted out of a model response.
type Term struct {
	Source string
	Target string
}

// Terms is an ordered candidate list; later entries win on merge.
type Terms []Term

var (
	sourceKeys = []string{"source", "jp", "gloss_term_jp"}
	targetKeys = []string{"target", "zh", "gloss_term_zh"}
	// Reserved list keys are never read as flat term entries.
	listKeys = []string{"terms", "glossary_terms"}
)

// shapeRule extracts candidates from one known response shape. ok reports
// whether the shape applied at all.
type shapeRule func(obj map[string]any, keys itemKeys) (terms Terms, ok bool)

type itemKeys struct {
	source []string
	target []string
}

var shapeRules = []shapeRule{
	listRule("terms"),
	listRule("glossary_terms"),
	flatRule,
}

// Parse normalizes a raw model response into candidate terms. srcLang and
// tgtLang are also accepted as item keys. The boolean is false when the
// response is not a JSON object or matches no known shape.
func Parse(raw, srcLang, tgtLang string) (Terms, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(postprocess.StripCodeFence(raw)), &obj); err != nil || obj == nil {
		return nil, false
	}

	keys := itemKeys{
		source: appendLang(sourceKeys, srcLang, "Japanese"),
		target: appendLang(targetKeys, tgtLang, "Chinese"),
	}
	for _, rule := range shapeRules {
		if terms, ok := rule(obj, keys); ok {
			return terms, true
		}
	}
	return nil, false
}

func appendLang(base []string, lang, fallback string) []string {
	out := append([]string(nil), base...)
	if lang != "" {
		out = append(out, lang)
	}
	return append(out, fallback)
}

func listRule(key string) shapeRule {
	return func(obj map[string]any, keys itemKeys) (Terms, bool) {
		list, ok := obj[key].([]any)
		if !ok {
			return nil, false
		}
		var terms Terms
		for _, entry := range list {
			item, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			src, tgt := firstString(item, keys.source), firstString(item, keys.target)
			if src != "" && tgt != "" {
				terms = append(terms, Term{Source: src, Target: tgt})
			}
		}
		return terms, true
	}
}

// flatRule reads {"term": "translation", ...}. JSON objects carry no order,
// so entries are not ordered relative to each other.
func flatRule(obj map[string]any, _ itemKeys) (Terms, bool) {
	var terms Terms
	for k, v := range obj {
		if isListKey(k) {
			continue
		}
		if s, ok := v.(string); ok {
			terms = append(terms, Term{Source: k, Target: s})
		}
	}
	return terms, true
}

func isListKey(k string) bool {
	for _, lk := range listKeys {
		if k == lk {
			return true
		}
	}
	return false
}

func firstString(item map[string]any, keys []string) string {
	for _, k := range keys {
		if s, ok := item[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
