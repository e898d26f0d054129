package glossary

import (
	"strings"
	"unicode/utf8"
)

const (
	minTermRunes = 2
	maxTermRunes = 20
)

// Blocklist holds generic nouns and pronouns that models keep proposing as
// proper nouns.
var Blocklist = map[string]struct{}{
	"村": {}, "町": {}, "道": {}, "街": {}, "都市": {}, "王国": {}, "帝国": {}, "世界": {},
	"人間": {}, "彼": {}, "彼女": {}, "自分": {}, "今日": {}, "昨日": {}, "明日": {},
	"時間": {}, "場所": {}, "理由": {}, "意味": {}, "言葉": {}, "名前": {}, "ピラミッド": {}, "ミイラ": {},
}

// Valid reports whether a candidate may enter the glossary: both sides are
// non-empty, the term appears verbatim in excerpt, it is 2 to 20 characters
// long and it is not blocklisted.
func Valid(term, translation, excerpt string) bool {
	if term == "" || translation == "" {
		return false
	}
	if !strings.Contains(excerpt, term) {
		return false
	}
	n := utf8.RuneCountInString(term)
	if n < minTermRunes || n > maxTermRunes {
		return false
	}
	_, blocked := Blocklist[term]
	return !blocked
}

// Filter returns the valid candidates of terms as a glossary, later
// candidates overwriting earlier ones.
func Filter(terms Terms, excerpt string) Glossary {
	out := Glossary{}
	for _, t := range terms {
		if Valid(t.Source, t.Target, excerpt) {
			out[t.Source] = t.Target
		}
	}
	return out
}
