// Package align pairs the chapters of a source book with the chapters of a
// translated reference book by position.
package align

import (
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/liaozensiang/ebook-translater/internal/epub"
)

const (
	// MinLines is the non-blank line count a chapter must exceed to be
	// considered substantial.
	MinLines = 50
	// MinRatio is the smallest accepted line-count ratio for a pair.
	MinRatio = 0.5
	// ExcerptRunes bounds the text carried in a pair.
	ExcerptRunes = 3000
)

type ChapterPair struct {
	SourceName  string
	RefName     string
	SourceText  string
	RefText     string
	SourceLines int
	RefLines    int
}

type chapter struct {
	name  string
	text  string
	lines int
}

type Aligner struct {
	logger *logrus.Logger
	// NameFilter restricts chapters to names containing it. Empty keeps all.
	NameFilter string
}

func New(logger *logrus.Logger) *Aligner {
	return &Aligner{logger: logger}
}

// Align pairs the k-th substantial chapter of src with the k-th of ref,
// dropping pairs whose line counts differ by more than a factor of two.
func (a *Aligner) Align(src, ref *epub.Book) []ChapterPair {
	return a.AlignParts(src.ContentParts(), ref.ContentParts())
}

func (a *Aligner) AlignParts(srcParts, refParts []epub.ContentPart) []ChapterPair {
	source := a.substantial(srcParts)
	reference := a.substantial(refParts)
	a.logger.Infof("Found %d substantial source chapters and %d substantial reference chapters", len(source), len(reference))

	n := len(source)
	if len(reference) < n {
		n = len(reference)
	}

	var pairs []ChapterPair
	for k := 0; k < n; k++ {
		s, r := source[k], reference[k]
		if ratio(s.lines, r.lines) < MinRatio {
			a.logger.WithFields(logrus.Fields{
				"source":       s.name,
				"reference":    r.name,
				"source_lines": s.lines,
				"ref_lines":    r.lines,
			}).Warn("Skipping alignment mismatch")
			continue
		}

		a.logger.Infof("Aligned: %s (%dL) <-> %s (%dL)", s.name, s.lines, r.name, r.lines)
		pairs = append(pairs, ChapterPair{
			SourceName:  s.name,
			RefName:     r.name,
			SourceText:  Truncate(s.text, ExcerptRunes),
			RefText:     Truncate(r.text, ExcerptRunes),
			SourceLines: s.lines,
			RefLines:    r.lines,
		})
	}
	return pairs
}

func (a *Aligner) substantial(parts []epub.ContentPart) []chapter {
	var out []chapter
	for _, p := range parts {
		if a.NameFilter != "" && !strings.Contains(p.Name, a.NameFilter) {
			continue
		}
		text := epub.PlainText(p.Raw)
		lines := epub.CountLines(text)
		if lines > MinLines {
			out = append(out, chapter{name: p.Name, text: text, lines: lines})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

func ratio(a, b int) float64 {
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	if hi == 0 {
		return 0
	}
	return float64(lo) / float64(hi)
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for idx := range s {
		if i == n {
			return s[:idx]
		}
		i++
	}
	return s
}
