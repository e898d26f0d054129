// Package workflow ties the book, the session store, the completion client
// and the translation memory into the prepare and translate steps of the
// review workflow.
package workflow

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/liaozensiang/ebook-translater/internal/detector"
	"github.com/liaozensiang/ebook-translater/internal/epub"
	"github.com/liaozensiang/ebook-translater/internal/glossary"
	"github.com/liaozensiang/ebook-translater/internal/segment"
	"github.com/liaozensiang/ebook-translater/internal/session"
	"github.com/liaozensiang/ebook-translater/internal/store"
)

// AutoLang asks Prepare to detect the source language from the book.
const AutoLang = "auto"

const (
	defaultBatchSize  = 10
	detectSampleBytes = 6000
)

// BatchTranslator is the completion capability used by automatic
// translation during prepare.
type BatchTranslator interface {
	TranslateBatch(ctx context.Context, texts []string, g glossary.Glossary, srcLang, tgtLang string) []string
	Model() string
}

// Memory is the translation memory. A nil Memory disables caching.
type Memory interface {
	Get(ctx context.Context, k store.Key) (string, bool, error)
	Save(ctx context.Context, k store.Key, finalText string) error
}

type PrepareOptions struct {
	Input    string
	SrcLang  string
	TgtLang  string
	Glossary glossary.Glossary
	// ChapterFilter keeps only chapters whose name contains it.
	ChapterFilter string
	AutoTranslate bool
	BatchSize     int
}

type Preparer struct {
	sessions   *session.Store
	translator BatchTranslator
	memory     Memory
	logger     *logrus.Logger
	// Detector resolves AutoLang. It is built on first use when nil.
	Detector *detector.Detector
}

// NewPreparer wires the prepare step. translator may be nil when automatic
// translation is never requested.
func NewPreparer(sessions *session.Store, translator BatchTranslator, memory Memory, logger *logrus.Logger) *Preparer {
	return &Preparer{sessions: sessions, translator: translator, memory: memory, logger: logger}
}

// Prepare segments the book at opts.Input and writes a fresh session,
// replacing any existing one in the work directory.
func (p *Preparer) Prepare(ctx context.Context, opts PrepareOptions) (*session.Session, error) {
	book, err := epub.Load(opts.Input, p.logger)
	if err != nil {
		return nil, err
	}
	defer book.Close()

	var segments []session.Segment
	for _, part := range book.ContentParts() {
		if opts.ChapterFilter != "" && !strings.Contains(part.Name, opts.ChapterFilter) {
			continue
		}
		texts := segment.Texts(part.Raw)
		for _, text := range texts {
			segments = append(segments, session.Segment{
				ID:         uuid.NewString(),
				Chapter:    part.Name,
				SourceText: text,
				Status:     session.StatusPending,
			})
		}
		p.logger.Debugf("Chapter %s: %d segments", part.Name, len(texts))
	}
	p.logger.Infof("Segmented %d chapters into %d segments", len(book.ContentParts()), len(segments))

	srcLang := opts.SrcLang
	if strings.EqualFold(srcLang, AutoLang) {
		srcLang = p.detectLanguage(segments)
	}

	g := opts.Glossary
	if g == nil {
		g = glossary.Glossary{}
	}

	if opts.AutoTranslate {
		if p.translator == nil {
			return nil, fmt.Errorf("auto-translate requested without a translator")
		}
		if err := p.autoTranslate(ctx, segments, g, srcLang, opts.TgtLang, opts.BatchSize); err != nil {
			return nil, err
		}
	}

	name := strings.TrimSuffix(filepath.Base(opts.Input), filepath.Ext(opts.Input))
	return p.sessions.Create(name, srcLang, opts.TgtLang, segments, g)
}

func (p *Preparer) detectLanguage(segments []session.Segment) string {
	var sb strings.Builder
	for _, seg := range segments {
		if sb.Len() >= detectSampleBytes {
			break
		}
		sb.WriteString(seg.SourceText)
		sb.WriteByte('\n')
	}

	if p.Detector == nil {
		p.Detector = detector.New()
	}
	lang, ok := p.Detector.DetectName(sb.String())
	if !ok {
		p.logger.Warn("Could not detect source language, assuming Japanese")
		return "Japanese"
	}
	p.logger.Infof("Detected source language: %s", lang)
	return lang
}

// autoTranslate fills TargetText in place. Statuses stay pending so every
// segment still goes through review.
func (p *Preparer) autoTranslate(ctx context.Context, segments []session.Segment, g glossary.Glossary, srcLang, tgtLang string, batchSize int) error {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	model := p.translator.Model()

	for start := 0; start < len(segments); start += batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+batchSize, len(segments))
		batch := segments[start:end]

		var pending []int
		for i := range batch {
			k := store.Key{Text: batch[i].SourceText, SourceLang: srcLang, TargetLang: tgtLang, Model: model}
			if text, ok := p.recall(ctx, k); ok {
				batch[i].TargetText = text
				continue
			}
			pending = append(pending, i)
		}
		if len(pending) == 0 {
			continue
		}

		texts := make([]string, len(pending))
		for j, i := range pending {
			texts[j] = batch[i].SourceText
		}
		out := p.translator.TranslateBatch(ctx, texts, g, srcLang, tgtLang)
		failed := 0
		for j, i := range pending {
			if j >= len(out) {
				break
			}
			// The batch fallback hands back the source text for entries it
			// could not translate; those stay untranslated.
			if out[j] == "" || out[j] == batch[i].SourceText {
				failed++
				continue
			}
			batch[i].TargetText = out[j]
			p.remember(ctx, store.Key{Text: batch[i].SourceText, SourceLang: srcLang, TargetLang: tgtLang, Model: model}, out[j])
		}
		if failed > 0 {
			p.logger.Warnf("%d of %d segments left untranslated in %d-%d", failed, len(pending), start+1, end)
		}
		p.logger.Infof("Translated segments %d-%d of %d (%d from memory)", start+1, end, len(segments), len(batch)-len(pending))
	}
	return nil
}

func (p *Preparer) recall(ctx context.Context, k store.Key) (string, bool) {
	if p.memory == nil {
		return "", false
	}
	text, ok, err := p.memory.Get(ctx, k)
	if err != nil {
		p.logger.Warnf("Translation memory lookup failed: %v", err)
		return "", false
	}
	return text, ok
}

func (p *Preparer) remember(ctx context.Context, k store.Key, text string) {
	if p.memory == nil {
		return
	}
	if err := p.memory.Save(ctx, k, text); err != nil {
		p.logger.Warnf("Translation memory save failed: %v", err)
	}
}
