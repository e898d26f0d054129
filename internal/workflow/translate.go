package workflow

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/liaozensiang/ebook-translater/internal/glossary"
	"github.com/liaozensiang/ebook-translater/internal/session"
	"github.com/liaozensiang/ebook-translater/internal/store"
)

// SingleTranslator translates one segment on demand.
type SingleTranslator interface {
	TranslateSingle(ctx context.Context, text string, g glossary.Glossary, srcLang, tgtLang string) (string, error)
	Model() string
}

type Translator struct {
	client SingleTranslator
	memory Memory
	logger *logrus.Logger
}

func NewTranslator(client SingleTranslator, memory Memory, logger *logrus.Logger) *Translator {
	return &Translator{client: client, memory: memory, logger: logger}
}

// TranslateSegment translates the segment with id using the session's
// languages and glossary, stores the result as its translation and returns
// it. The status is left unchanged.
func (t *Translator) TranslateSegment(ctx context.Context, sessions *session.Store, id string) (string, error) {
	s, err := sessions.Load()
	if err != nil {
		return "", err
	}
	i := s.Find(id)
	if i < 0 {
		return "", fmt.Errorf("%w: %s", session.ErrSegmentNotFound, id)
	}
	seg := s.Segments[i]

	k := store.Key{Text: seg.SourceText, SourceLang: s.SrcLang, TargetLang: s.TgtLang, Model: t.client.Model()}
	text, ok := t.recall(ctx, k)
	if !ok {
		text, err = t.client.TranslateSingle(ctx, seg.SourceText, s.Glossary, s.SrcLang, s.TgtLang)
		if err != nil {
			return "", err
		}
		t.remember(ctx, k, text)
	} else {
		t.logger.Debugf("Segment %s served from translation memory", id)
	}

	if _, err := sessions.UpdateTranslation(id, text); err != nil {
		return "", fmt.Errorf("failed to save translation: %w", err)
	}
	return text, nil
}

func (t *Translator) recall(ctx context.Context, k store.Key) (string, bool) {
	if t.memory == nil {
		return "", false
	}
	text, ok, err := t.memory.Get(ctx, k)
	if err != nil {
		t.logger.Warnf("Translation memory lookup failed: %v", err)
		return "", false
	}
	return text, ok
}

func (t *Translator) remember(ctx context.Context, k store.Key, text string) {
	if t.memory == nil {
		return
	}
	if err := t.memory.Save(ctx, k, text); err != nil {
		t.logger.Warnf("Translation memory save failed: %v", err)
	}
}
