package detector

import (
	"strings"
	"testing"

	lingua "github.com/pemistahl/lingua-go"
)

func TestDetector_DetectName(t *testing.T) {
	d := New()

	tests := []struct {
		name     string
		text     string
		wantLang string
		wantOK   bool
	}{
		{
			name:   "empty text",
			text:   "",
			wantOK: false,
		},
		{
			name:     "english text",
			text:     "Hello, this is a test in English.",
			wantLang: "English",
			wantOK:   true,
		},
		{
			name:     "japanese text",
			text:     "吾輩は猫である。名前はまだ無い。どこで生れたかとんと見当がつかぬ。",
			wantLang: "Japanese",
			wantOK:   true,
		},
		{
			name:     "korean text",
			text:     "안녕하세요, 이것은 한국어로 된 시험입니다.",
			wantLang: "Korean",
			wantOK:   true,
		},
		{
			name:     "german text",
			text:     "Hallo, das ist ein Test auf Deutsch.",
			wantLang: "German",
			wantOK:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lang, ok := d.DetectName(tt.text)
			if ok != tt.wantOK {
				t.Errorf("DetectName(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
				return
			}
			if tt.wantOK && lang != tt.wantLang {
				t.Errorf("DetectName(%q) = %v, want %v", tt.text, lang, tt.wantLang)
			}
		})
	}
}

func TestDetector_LongTextIsSampled(t *testing.T) {
	d := New()

	text := strings.Repeat("This sentence is written in plain English. ", 200)
	lang, ok := d.Detect(text)
	if !ok || lang != lingua.English {
		t.Errorf("expected English, got %v ok=%v", lang, ok)
	}
}

func TestDetector_CustomLanguages(t *testing.T) {
	d := New(lingua.English, lingua.French)

	lang, ok := d.Detect("Bonjour, ceci est un test en français.")
	if !ok || lang != lingua.French {
		t.Errorf("expected French, got %v ok=%v", lang, ok)
	}
}
