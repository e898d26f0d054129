package glossary

import (
	"encoding/json"
	"fmt"
	"sort"
)

var (
	repairSourceKeys = []string{"gloss_term_jp", "jp", "source", "Japanese"}
	repairTargetKeys = []string{"gloss_term_zh", "zh", "target", "Chinese"}
)

// Repair normalizes a glossary document to flat form. It keeps top-level
// string values, flattens "terms" and "glossary_terms" lists of objects and
// returns the sorted names of the keys it had to skip. List entries win over
// flat entries for the same term.
func Repair(data []byte) (Glossary, []string, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("failed to parse glossary: %w", err)
	}

	flat := Glossary{}
	var skipped []string
	for k, v := range doc {
		if s, ok := v.(string); ok {
			flat[k] = s
			continue
		}
		if _, ok := v.([]any); ok && isListKey(k) {
			continue
		}
		skipped = append(skipped, k)
	}
	sort.Strings(skipped)

	for _, lk := range listKeys {
		list, _ := doc[lk].([]any)
		for _, entry := range list {
			item, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			src, tgt := firstString(item, repairSourceKeys), firstString(item, repairTargetKeys)
			if src != "" && tgt != "" {
				flat[src] = tgt
			}
		}
	}
	return flat, skipped, nil
}
