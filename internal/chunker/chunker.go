// Package chunker splits long chapter text into bounded excerpts for term
// scanning, preferring paragraph and sentence boundaries so that a proper
// noun is not cut in half.
package chunker

import (
	"strings"
	"unicode"
)

// Chunk splits text into pieces of at most maxChars runes. Boundaries are
// tried in order: blank line, line break, sentence end (including the CJK
// full stops 。！？), whitespace, and finally a hard cut.
// maxChars <= 0 returns the whole text as one chunk.
func Chunk(text string, maxChars int) []string {
	runes := []rune(text)
	if maxChars <= 0 || len(runes) <= maxChars {
		return []string{text}
	}

	var chunks []string
	for len(runes) > maxChars {
		split := findSplit(runes[:maxChars])
		if chunk := strings.TrimSpace(string(runes[:split])); chunk != "" {
			chunks = append(chunks, chunk)
		}
		runes = []rune(strings.TrimSpace(string(runes[split:])))
	}
	if rest := strings.TrimSpace(string(runes)); rest != "" {
		chunks = append(chunks, rest)
	}
	return chunks
}

// findSplit returns the rune index to cut candidate at.
func findSplit(candidate []rune) int {
	n := len(candidate)

	for i := n - 1; i > 0; i-- {
		if candidate[i] == '\n' && candidate[i-1] == '\n' {
			return i + 1
		}
	}
	for i := n - 1; i > 0; i-- {
		if candidate[i] == '\n' {
			return i + 1
		}
	}
	for i := n - 1; i > 0; i-- {
		switch candidate[i] {
		case '。', '！', '？', '」', '』':
			return i + 1
		case '.', '!', '?':
			if i+1 < n && unicode.IsSpace(candidate[i+1]) {
				return i + 1
			}
		}
	}
	for i := n - 1; i > 0; i-- {
		if unicode.IsSpace(candidate[i]) {
			return i
		}
	}
	return n
}
