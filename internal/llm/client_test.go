package llm

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/liaozensiang/ebook-translater/internal/glossary"
)

// scriptedBackend replays canned replies in order and records requests.
type scriptedBackend struct {
	mu       sync.Mutex
	replies  []reply
	requests []Request
}

type reply struct {
	text string
	err  error
}

func (b *scriptedBackend) Complete(_ context.Context, req Request) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, req)
	if len(b.replies) == 0 {
		return "", errors.New("no more replies")
	}
	r := b.replies[0]
	b.replies = b.replies[1:]
	return r.text, r.err
}

func newTestClient(b Backend) *Client {
	logger, _ := test.NewNullLogger()
	return NewClient(b, "test-model", 0, logger)
}

func TestParseBatch(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
		ok   bool
	}{
		{"list", `["a", "b"]`, []string{"a", "b"}, true},
		{"translations key", `{"translations": ["a"]}`, []string{"a"}, true},
		{"data key", `{"data": ["x", "y"]}`, []string{"x", "y"}, true},
		{"list key", `{"list": ["z"]}`, []string{"z"}, true},
		{"fenced", "```json\n{\"translations\": [\"a\"]}\n```", []string{"a"}, true},
		{"unknown key", `{"items": ["a"]}`, nil, false},
		{"not json", `hello`, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseBatch(tt.raw)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTranslateBatch_Success(t *testing.T) {
	b := &scriptedBackend{replies: []reply{{text: `{"translations": ["一", "二"]}`}}}
	c := newTestClient(b)

	got := c.TranslateBatch(context.Background(), []string{"one", "two"}, nil, "English", "Chinese")
	if len(got) != 2 || got[0] != "一" || got[1] != "二" {
		t.Fatalf("unexpected result %q", got)
	}
	if len(b.requests) != 1 {
		t.Errorf("expected 1 request, got %d", len(b.requests))
	}
	if !b.requests[0].JSON {
		t.Error("batch request should ask for JSON output")
	}
	if !strings.Contains(b.requests[0].User, "Translate these 2 lines:") {
		t.Errorf("user prompt missing line count: %q", b.requests[0].User)
	}
}

func TestTranslateBatch_MismatchFallsBack(t *testing.T) {
	b := &scriptedBackend{replies: []reply{
		{text: `{"translations": ["x", "y"]}`},
		{text: `{"translations": ["x", "y"]}`},
		{text: "A"},
		{err: errors.New("boom")},
		{text: "C"},
	}}
	c := newTestClient(b)

	texts := []string{"a", "b", "c"}
	got := c.TranslateBatch(context.Background(), texts, nil, "English", "Chinese")
	want := []string{"A", "b", "C"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("got %q, want %q", got, want)
	}
	if len(b.requests) != 5 {
		t.Errorf("expected 2 batch + 3 single requests, got %d", len(b.requests))
	}
}

func TestTranslateBatch_Empty(t *testing.T) {
	b := &scriptedBackend{}
	c := newTestClient(b)

	got := c.TranslateBatch(context.Background(), nil, nil, "English", "Chinese")
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
	if len(b.requests) != 0 {
		t.Error("no request expected for an empty batch")
	}
}

func TestTranslateBatch_GlossaryFiltered(t *testing.T) {
	b := &scriptedBackend{replies: []reply{{text: `["x"]`}}}
	c := newTestClient(b)
	g := glossary.Glossary{"Alice": "愛麗絲", "Bob": "鮑伯"}

	c.TranslateBatch(context.Background(), []string{"Alice waved"}, g, "English", "Chinese")
	user := b.requests[0].User
	if !strings.Contains(user, "Alice") || strings.Contains(user, "鮑伯") {
		t.Errorf("glossary not filtered to matching terms: %q", user)
	}
}

func TestTranslateSingle(t *testing.T) {
	b := &scriptedBackend{replies: []reply{{text: "<think>hmm</think>\nTranslation: 你好\n"}}}
	c := newTestClient(b)

	got, err := c.TranslateSingle(context.Background(), "Hello", nil, "English", "Chinese")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "你好" {
		t.Errorf("got %q, want %q", got, "你好")
	}
}

func TestTranslateSingle_Errors(t *testing.T) {
	c := newTestClient(&scriptedBackend{replies: []reply{{err: errors.New("down")}}})
	if _, err := c.TranslateSingle(context.Background(), "Hello", nil, "English", "Chinese"); err == nil {
		t.Error("expected backend error")
	}

	c = newTestClient(&scriptedBackend{replies: []reply{{text: "   "}}})
	_, err := c.TranslateSingle(context.Background(), "Hello", nil, "English", "Chinese")
	if !errors.Is(err, ErrEmptyTranslation) {
		t.Errorf("expected ErrEmptyTranslation, got %v", err)
	}
}

func TestExtractGlossary_FailureReturnsEmptyObject(t *testing.T) {
	c := newTestClient(&scriptedBackend{replies: []reply{{err: errors.New("down")}}})
	if got := c.ExtractGlossary(context.Background(), "src", "ref", "Japanese", "Chinese"); got != "{}" {
		t.Errorf("got %q, want {}", got)
	}

	c = newTestClient(&scriptedBackend{replies: []reply{{err: errors.New("down")}}})
	if got := c.ExtractNewTerms(context.Background(), "text", "Japanese", "Chinese"); got != "{}" {
		t.Errorf("got %q, want {}", got)
	}
}

func TestExtractGlossary_TruncatesExcerpts(t *testing.T) {
	b := &scriptedBackend{replies: []reply{{text: `{"terms": []}`}}}
	c := newTestClient(b)

	long := strings.Repeat("あ", 4000)
	c.ExtractGlossary(context.Background(), long, long, "Japanese", "Chinese")
	if n := strings.Count(b.requests[0].User, "あ"); n != 2*pairExcerptRunes {
		t.Errorf("expected %d excerpt runes, got %d", 2*pairExcerptRunes, n)
	}
	if b.requests[0].Temperature != 0.1 {
		t.Errorf("temperature = %v", b.requests[0].Temperature)
	}
}
