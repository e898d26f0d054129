// Package detector resolves the source language of a book when the user
// passes "auto".
package detector

import (
	lingua "github.com/pemistahl/lingua-go"
)

// DefaultLanguages are the candidates considered when New gets none.
var DefaultLanguages = []lingua.Language{
	lingua.Japanese,
	lingua.Chinese,
	lingua.Korean,
	lingua.English,
	lingua.French,
	lingua.German,
	lingua.Spanish,
	lingua.Russian,
}

// sampleRunes bounds the text handed to the detector.
const sampleRunes = 2000

type Detector struct {
	detector lingua.LanguageDetector
}

func New(languages ...lingua.Language) *Detector {
	if len(languages) < 2 {
		languages = DefaultLanguages
	}
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(languages...).
		Build()

	return &Detector{detector: detector}
}

func (d *Detector) Detect(text string) (lingua.Language, bool) {
	if text == "" {
		return lingua.Unknown, false
	}
	if r := []rune(text); len(r) > sampleRunes {
		text = string(r[:sampleRunes])
	}
	return d.detector.DetectLanguageOf(text)
}

// DetectName returns the English language name ("Japanese", "English")
// used in prompts.
func (d *Detector) DetectName(text string) (string, bool) {
	lang, ok := d.Detect(text)
	if !ok {
		return "", false
	}
	return lang.String(), true
}
