package glossary

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/liaozensiang/ebook-translater/internal/align"
	"github.com/liaozensiang/ebook-translater/internal/epub"
	"github.com/liaozensiang/ebook-translater/internal/epub/epubtest"
)

type stubSource struct {
	pairResponses []string
	scanResponse  func(text string) string
	pairCalls     int
	scanned       []string
}

func (s *stubSource) ExtractGlossary(_ context.Context, _, _, _, _ string) string {
	if s.pairCalls >= len(s.pairResponses) {
		return "{}"
	}
	r := s.pairResponses[s.pairCalls]
	s.pairCalls++
	return r
}

func (s *stubSource) ExtractNewTerms(_ context.Context, text, _, _ string) string {
	s.scanned = append(s.scanned, text)
	return s.scanResponse(text)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestFromPairs_AcceptsVerbatimTerm(t *testing.T) {
	src := &stubSource{pairResponses: []string{`{"terms":[{"source":"アリス","target":"愛丽丝"}]}`}}
	e := NewExtractor(src, quietLogger())

	g := e.FromPairs(context.Background(), []align.ChapterPair{
		{SourceName: "p-1", SourceText: "アリスは笑った。"},
	}, "Japanese", "Simplified Chinese")

	if len(g) != 1 || g["アリス"] != "愛丽丝" {
		t.Errorf("unexpected glossary %v", g)
	}
}

func TestFromPairs_DropsBlocklisted(t *testing.T) {
	src := &stubSource{pairResponses: []string{`{"terms":[{"source":"村","target":"Village"}]}`}}
	e := NewExtractor(src, quietLogger())

	g := e.FromPairs(context.Background(), []align.ChapterPair{
		{SourceName: "p-1", SourceText: "村に着いた。"},
	}, "Japanese", "English")

	if len(g) != 0 {
		t.Errorf("expected no terms, got %v", g)
	}
}

func TestFromPairs_LaterPairWinsAndFailuresSkipped(t *testing.T) {
	src := &stubSource{pairResponses: []string{
		`{"terms":[{"source":"アリス","target":"愛丽丝"}]}`,
		`not json at all`,
		`{"アリス":"爱丽丝","ボブ":"鲍勃"}`,
	}}
	e := NewExtractor(src, quietLogger())

	pairs := []align.ChapterPair{
		{SourceText: "アリス"},
		{SourceText: "アリスとボブ"},
		{SourceText: "アリスとボブ"},
	}
	g := e.FromPairs(context.Background(), pairs, "Japanese", "Simplified Chinese")

	if g["アリス"] != "爱丽丝" || g["ボブ"] != "鲍勃" || len(g) != 2 {
		t.Errorf("unexpected glossary %v", g)
	}
}

func TestFromPairs_RejectsHallucination(t *testing.T) {
	src := &stubSource{pairResponses: []string{`{"terms":[{"source":"ボブ","target":"鲍勃"}]}`}}
	e := NewExtractor(src, quietLogger())

	g := e.FromPairs(context.Background(), []align.ChapterPair{{SourceText: "アリスだけ"}}, "Japanese", "Simplified Chinese")
	if len(g) != 0 {
		t.Errorf("expected hallucinated term to be dropped, got %v", g)
	}
}

func scanParts(t *testing.T) []epub.ContentPart {
	t.Helper()
	long := strings.Repeat("<p>アリスとボブは王都アルカディアへ向かった。</p>\n", 20)
	return []epub.ContentPart{
		{Name: "p-1.xhtml", Raw: []byte(epubtest.XHTML("1", long))},
		{Name: "short.xhtml", Raw: []byte(epubtest.XHTML("2", "<p>アリス</p>"))},
	}
}

func TestScan_SkipsKnownAndShort(t *testing.T) {
	src := &stubSource{scanResponse: func(string) string {
		return "```json\n" + `{"terms":[{"source":"アリス","target":"Alice"},{"source":"アルカディア","target":"Arcadia"},{"source":"町","target":"Town"}]}` + "\n```"
	}}
	e := NewExtractor(src, quietLogger())

	found := e.Scan(context.Background(), scanParts(t), Glossary{"アリス": "愛麗絲"}, "Japanese", "English")

	if len(src.scanned) != 1 {
		t.Fatalf("expected short chapter to be skipped, scanned %d", len(src.scanned))
	}
	if len(found) != 1 || found["アルカディア"] != "Arcadia" {
		t.Errorf("unexpected new terms %v", found)
	}
}

func TestScan_ExcerptBounded(t *testing.T) {
	src := &stubSource{scanResponse: func(string) string { return "{}" }}
	e := NewExtractor(src, quietLogger())

	body := strings.Repeat("<p>"+strings.Repeat("あ", 100)+"</p>\n", 80)
	parts := []epub.ContentPart{{Name: "p", Raw: []byte(epubtest.XHTML("x", body))}}

	e.Scan(context.Background(), parts, Glossary{}, "Japanese", "English")
	if len(src.scanned) != 1 {
		t.Fatalf("expected one excerpt, got %d", len(src.scanned))
	}
	if n := len([]rune(src.scanned[0])); n != ScanExcerptRunes {
		t.Errorf("expected %d-rune excerpt, got %d", ScanExcerptRunes, n)
	}

	src.scanned = nil
	e.AllChunks = true
	e.Scan(context.Background(), parts, Glossary{}, "Japanese", "English")
	if len(src.scanned) < 2 {
		t.Errorf("expected several excerpts with AllChunks, got %d", len(src.scanned))
	}
}
