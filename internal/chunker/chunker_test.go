package chunker_test

import (
	"strings"
	"testing"

	"github.com/liaozensiang/ebook-translater/internal/chunker"
)

func TestChunk_ShortText(t *testing.T) {
	text := "アリスは森へ行った。"
	chunks := chunker.Chunk(text, 100)
	if len(chunks) != 1 || chunks[0] != text {
		t.Fatalf("expected single unchanged chunk, got %v", chunks)
	}
}

func TestChunk_Unlimited(t *testing.T) {
	text := strings.Repeat("word ", 500)
	if chunks := chunker.Chunk(text, 0); len(chunks) != 1 {
		t.Errorf("expected 1 chunk when maxChars=0, got %d", len(chunks))
	}
}

func TestChunk_ParagraphBoundary(t *testing.T) {
	text := "First paragraph text here.\n\nSecond paragraph text here."
	chunks := chunker.Chunk(text, 40)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %v", len(chunks), chunks)
	}
	if chunks[0] != "First paragraph text here." {
		t.Errorf("unexpected first chunk %q", chunks[0])
	}
}

func TestChunk_CJKSentenceBoundary(t *testing.T) {
	text := "アリスは森へ行った。ボブは町に残った。"
	chunks := chunker.Chunk(text, 12)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %v", len(chunks), chunks)
	}
	if chunks[0] != "アリスは森へ行った。" {
		t.Errorf("unexpected first chunk %q", chunks[0])
	}
}

func TestChunk_WordBoundary(t *testing.T) {
	text := "alpha beta gamma delta epsilon"
	chunks := chunker.Chunk(text, 12)
	for _, c := range chunks {
		if len([]rune(c)) > 12 {
			t.Errorf("chunk %q exceeds limit", c)
		}
		if strings.HasPrefix(c, " ") || strings.HasSuffix(c, " ") {
			t.Errorf("chunk %q not trimmed", c)
		}
	}
}

func TestChunk_HardCut(t *testing.T) {
	text := strings.Repeat("あ", 25)
	chunks := chunker.Chunk(text, 10)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if strings.Join(chunks, "") != text {
		t.Error("hard-cut chunks should reconstruct the text")
	}
}

func TestChunk_BoundedLength(t *testing.T) {
	text := strings.Repeat("これは長い文です。", 200)
	for _, c := range chunker.Chunk(text, 100) {
		if n := len([]rune(c)); n > 100 {
			t.Errorf("chunk has %d runes", n)
		}
	}
}
