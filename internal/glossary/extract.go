package glossary

import (
	"context"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/liaozensiang/ebook-translater/internal/align"
	"github.com/liaozensiang/ebook-translater/internal/chunker"
	"github.com/liaozensiang/ebook-translater/internal/epub"
)

const (
	// MinScanRunes is the shortest chapter text worth scanning.
	MinScanRunes = 200
	// ScanExcerptRunes bounds each scanned excerpt.
	ScanExcerptRunes = 5000
)

// TermSource is the part of the completion capability the extractor needs.
// Both methods return raw, untrusted response text.
type TermSource interface {
	ExtractGlossary(ctx context.Context, sourceText, refText, srcLang, tgtLang string) string
	ExtractNewTerms(ctx context.Context, text, srcLang, tgtLang string) string
}

type Extractor struct {
	source TermSource
	logger *logrus.Logger
	// AllChunks scans every excerpt of a chapter instead of only the first.
	AllChunks bool
}

func NewExtractor(source TermSource, logger *logrus.Logger) *Extractor {
	return &Extractor{source: source, logger: logger}
}

// FromPairs mines terms from aligned chapter pairs. A term found in several
// pairs keeps the translation from the last one.
func (e *Extractor) FromPairs(ctx context.Context, pairs []align.ChapterPair, srcLang, tgtLang string) Glossary {
	out := Glossary{}
	for i, p := range pairs {
		if ctx.Err() != nil {
			break
		}
		raw := e.source.ExtractGlossary(ctx, p.SourceText, p.RefText, srcLang, tgtLang)
		terms, ok := Parse(raw, srcLang, tgtLang)
		if !ok {
			e.logger.Debugf("Pair %d/%d (%s): unusable response", i+1, len(pairs), p.SourceName)
			continue
		}
		found := Filter(terms, p.SourceText)
		e.logger.Debugf("Pair %d/%d (%s): %d candidates, %d accepted", i+1, len(pairs), p.SourceName, len(terms), len(found))
		out.Merge(found)
	}
	return out
}

// Scan mines terms from a single book and returns only terms that are not
// already present in existing.
func (e *Extractor) Scan(ctx context.Context, parts []epub.ContentPart, existing Glossary, srcLang, tgtLang string) Glossary {
	e.logger.Infof("Scanning %d chapters for new terms (%s -> %s)", len(parts), srcLang, tgtLang)

	found := Glossary{}
	for _, p := range parts {
		if ctx.Err() != nil {
			break
		}
		text := epub.DocumentText(p.Raw)
		if utf8.RuneCountInString(text) < MinScanRunes {
			continue
		}

		for _, excerpt := range e.excerpts(text) {
			raw := e.source.ExtractNewTerms(ctx, excerpt, srcLang, tgtLang)
			terms, ok := Parse(raw, srcLang, tgtLang)
			if !ok {
				e.logger.Debugf("%s: unusable response: %.200s", p.Name, raw)
				continue
			}

			fresh := Terms{}
			for _, t := range terms {
				if _, known := existing[t.Source]; !known {
					fresh = append(fresh, t)
				}
			}
			valid := Filter(fresh, excerpt)
			if len(valid) > 0 {
				e.logger.Debugf("%s: found %d terms", p.Name, len(valid))
			}
			found.Merge(valid)
		}
	}
	return found
}

func (e *Extractor) excerpts(text string) []string {
	if !e.AllChunks {
		return []string{align.Truncate(text, ScanExcerptRunes)}
	}
	return chunker.Chunk(text, ScanExcerptRunes)
}
