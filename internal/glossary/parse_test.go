package glossary

import "testing"

func TestParse_Shapes(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		wantOK bool
		want   map[string]string
	}{
		{
			name:   "terms list",
			raw:    `{"terms":[{"source":"アリス","target":"愛丽丝"}]}`,
			wantOK: true,
			want:   map[string]string{"アリス": "愛丽丝"},
		},
		{
			name:   "legacy item keys",
			raw:    `{"terms":[{"jp":"アリス","zh":"愛丽丝"},{"gloss_term_jp":"ボブ","gloss_term_zh":"鮑勃"}]}`,
			wantOK: true,
			want:   map[string]string{"アリス": "愛丽丝", "ボブ": "鮑勃"},
		},
		{
			name:   "language name keys",
			raw:    `{"terms":[{"Japanese":"アリス","Traditional Chinese":"愛麗絲"}]}`,
			wantOK: true,
			want:   map[string]string{"アリス": "愛麗絲"},
		},
		{
			name:   "glossary_terms list",
			raw:    `{"glossary_terms":[{"source":"王都","target":"王都"}]}`,
			wantOK: true,
			want:   map[string]string{"王都": "王都"},
		},
		{
			name:   "flat map ignores reserved and non-string values",
			raw:    `{"アリス":"愛丽丝","terms":"oops","count":3}`,
			wantOK: true,
			want:   map[string]string{"アリス": "愛丽丝"},
		},
		{
			name:   "terms list wins over flat entries",
			raw:    `{"terms":[],"アリス":"愛丽丝"}`,
			wantOK: true,
			want:   map[string]string{},
		},
		{
			name:   "fenced response",
			raw:    "```json\n{\"terms\":[{\"source\":\"アリス\",\"target\":\"愛丽丝\"}]}\n```",
			wantOK: true,
			want:   map[string]string{"アリス": "愛丽丝"},
		},
		{
			name:   "incomplete items dropped",
			raw:    `{"terms":[{"source":"アリス"},"junk",{"source":"","target":"x"}]}`,
			wantOK: true,
			want:   map[string]string{},
		},
		{name: "not json", raw: "I could not find any terms.", wantOK: false},
		{name: "array", raw: `["アリス"]`, wantOK: false},
		{name: "empty", raw: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			terms, ok := Parse(tt.raw, "Japanese", "Traditional Chinese")
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			got := map[string]string{}
			for _, term := range terms {
				got[term.Source] = term.Target
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("term %q = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestParse_PreservesListOrder(t *testing.T) {
	terms, ok := Parse(`{"terms":[{"source":"アリス","target":"A"},{"source":"アリス","target":"B"}]}`, "", "")
	if !ok || len(terms) != 2 {
		t.Fatalf("unexpected result %v %v", terms, ok)
	}
	g := Filter(terms, "アリス")
	if g["アリス"] != "B" {
		t.Errorf("expected later candidate to win, got %q", g["アリス"])
	}
}
