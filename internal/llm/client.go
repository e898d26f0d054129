package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/liaozensiang/ebook-translater/internal/glossary"
	"github.com/liaozensiang/ebook-translater/internal/postprocess"
)

const (
	pairExcerptRunes = 1500
	scanExcerptRunes = 2500
)

var ErrEmptyTranslation = errors.New("empty translation")

// Client exposes the completion operations the pipeline needs. Glossary
// calls degrade to "{}" and batch translation degrades to per-text calls,
// so only TranslateSingle reports failure to its caller.
type Client struct {
	backend Backend
	limiter *rate.Limiter
	logger  *logrus.Logger
	model   string
	// BatchRetries is the number of extra batch attempts before falling
	// back to one call per text.
	BatchRetries int
}

// NewClient wraps backend. requestsPerSecond <= 0 disables rate limiting.
func NewClient(backend Backend, model string, requestsPerSecond float64, logger *logrus.Logger) *Client {
	limit := rate.Inf
	burst := 1
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
		burst = int(requestsPerSecond*2) + 1
	}
	return &Client{
		backend:      backend,
		limiter:      rate.NewLimiter(limit, burst),
		logger:       logger,
		model:        model,
		BatchRetries: 1,
	}
}

// Model names the model behind the client, for cache keys and logs.
func (c *Client) Model() string { return c.model }

func (c *Client) complete(ctx context.Context, req Request) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}
	return c.backend.Complete(ctx, req)
}

// ExtractGlossary asks for proper nouns shared by an aligned source and
// reference excerpt. Failures yield "{}".
func (c *Client) ExtractGlossary(ctx context.Context, sourceText, refText, srcLang, tgtLang string) string {
	resp, err := c.complete(ctx, Request{
		User:        pairPrompt(sourceText, refText, srcLang, tgtLang),
		Temperature: 0.1,
		MaxTokens:   2048,
		JSON:        true,
	})
	if err != nil {
		c.logger.Warnf("Glossary extraction failed: %v", err)
		return "{}"
	}
	return resp
}

// ExtractNewTerms asks for proper nouns in a single-language excerpt.
// Failures yield "{}".
func (c *Client) ExtractNewTerms(ctx context.Context, text, srcLang, tgtLang string) string {
	resp, err := c.complete(ctx, Request{
		User:        scanPrompt(text, srcLang, tgtLang),
		Temperature: 0.3,
		MaxTokens:   2048,
	})
	if err != nil {
		c.logger.Warnf("Term extraction failed: %v", err)
		return "{}"
	}
	return resp
}

// TranslateBatch translates texts in one call, retrying BatchRetries times.
// When no attempt returns exactly len(texts) strings it translates each
// text on its own; a text whose call fails is returned untranslated. The
// result always has len(texts) entries.
func (c *Client) TranslateBatch(ctx context.Context, texts []string, g glossary.Glossary, srcLang, tgtLang string) []string {
	if len(texts) == 0 {
		return []string{}
	}

	req := Request{
		System:      batchSystemPrompt(srcLang, tgtLang),
		User:        batchUserPrompt(texts, g.MatchingAny(texts)),
		Temperature: 0.3,
		MaxTokens:   4096,
		JSON:        true,
	}
	for attempt := 0; attempt <= c.BatchRetries; attempt++ {
		resp, err := c.complete(ctx, req)
		if err != nil {
			c.logger.Warnf("Batch attempt %d failed: %v", attempt+1, err)
			continue
		}
		out, ok := ParseBatch(resp)
		if ok && len(out) == len(texts) {
			return out
		}
		c.logger.Debugf("Batch attempt %d returned %d of %d translations", attempt+1, len(out), len(texts))
	}

	c.logger.Warnf("Batch translation failed or mismatched, falling back to one call per text (%d texts)", len(texts))
	out := make([]string, len(texts))
	for i, text := range texts {
		resp, err := c.complete(ctx, Request{
			System:      fmt.Sprintf("Translate to %s. Output ONLY the translation.", tgtLang),
			User:        text,
			Temperature: 0.3,
		})
		cleaned := postprocess.Clean(text, resp)
		if err != nil || cleaned == "" {
			out[i] = text
			continue
		}
		out[i] = cleaned
	}
	return out
}

// TranslateSingle translates one segment, passing only the glossary entries
// that occur in it.
func (c *Client) TranslateSingle(ctx context.Context, text string, g glossary.Glossary, srcLang, tgtLang string) (string, error) {
	resp, err := c.complete(ctx, Request{
		User:        singlePrompt(text, g.Matching(text), srcLang, tgtLang),
		Temperature: 0.3,
		MaxTokens:   2048,
	})
	if err != nil {
		return "", fmt.Errorf("failed to translate segment: %w", err)
	}
	out := postprocess.Clean(text, resp)
	if out == "" {
		return "", ErrEmptyTranslation
	}
	return out, nil
}

var batchKeys = []string{"translations", "data", "list"}

// ParseBatch reads a batch reply shaped either as a JSON list of strings or
// as an object holding one under "translations", "data" or "list".
func ParseBatch(raw string) ([]string, bool) {
	body := postprocess.StripCodeFence(raw)

	var list []string
	if err := json.Unmarshal([]byte(body), &list); err == nil {
		return list, true
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &obj); err != nil {
		return nil, false
	}
	for _, k := range batchKeys {
		field, ok := obj[k]
		if !ok {
			continue
		}
		if err := json.Unmarshal(field, &list); err == nil && list != nil {
			return list, true
		}
	}
	return nil, false
}

func glossaryBlock(g glossary.Glossary) string {
	if len(g) == 0 {
		return ""
	}
	data, err := json.Marshal(g)
	if err != nil {
		return ""
	}
	return "Glossary:\n" + strings.TrimSpace(string(data)) + "\n"
}
