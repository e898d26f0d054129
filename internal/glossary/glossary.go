// Package glossary maintains the term -> translation table used to keep
// proper nouns consistent across a translation, and mines new entries from
// model output.
package glossary

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Glossary maps a source-language term to its fixed translation.
type Glossary map[string]string

// Load reads a flat JSON glossary. A missing file yields an empty glossary.
func Load(path string) (Glossary, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Glossary{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read glossary: %w", err)
	}

	g := Glossary{}
	if len(bytes.TrimSpace(data)) == 0 {
		return g, nil
	}
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to parse glossary %s (try \"glossary fix\"): %w", path, err)
	}
	return g, nil
}

// Save writes g as indented UTF-8 JSON without escaping non-ASCII text.
func (g Glossary) Save(path string) error {
	data, err := Marshal(g)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write glossary: %w", err)
	}
	return nil
}

// Marshal encodes v as indented JSON with HTML escaping disabled.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode json: %w", err)
	}
	return buf.Bytes(), nil
}

// Merge copies every entry of other into g, overwriting existing keys.
func (g Glossary) Merge(other Glossary) {
	for k, v := range other {
		g[k] = v
	}
}

// Matching returns the entries whose term occurs in text.
func (g Glossary) Matching(text string) Glossary {
	out := Glossary{}
	for k, v := range g {
		if k != "" && strings.Contains(text, k) {
			out[k] = v
		}
	}
	return out
}

// MatchingAny returns the entries whose term occurs in any of texts.
func (g Glossary) MatchingAny(texts []string) Glossary {
	return g.Matching(strings.Join(texts, ""))
}

func (g Glossary) Clone() Glossary {
	out := make(Glossary, len(g))
	for k, v := range g {
		out[k] = v
	}
	return out
}
