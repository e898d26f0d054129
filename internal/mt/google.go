// Package mt provides the machine-translation fallback offered in the
// review UI.
package mt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	translate "cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

var ErrEmptyText = errors.New("no text to translate")

// targetCodes maps the language names used in prompts to Google codes.
var targetCodes = map[string]string{
	"traditional chinese": "zh-TW",
	"simplified chinese":  "zh-CN",
	"english":             "en",
	"japanese":            "ja",
	"korean":              "ko",
}

// TargetCode returns the Google language code for a language name.
// Unknown names map to zh-TW.
func TargetCode(name string) string {
	if code, ok := targetCodes[strings.ToLower(strings.TrimSpace(name))]; ok {
		return code
	}
	return "zh-TW"
}

type Google struct {
	credentials string
}

// NewGoogle uses the service-account file at credentials, or application
// default credentials when it is empty.
func NewGoogle(credentials string) *Google {
	return &Google{credentials: credentials}
}

// Translate sends text to Google Cloud Translation with the source language
// auto-detected.
func (g *Google) Translate(ctx context.Context, text, tgtLang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}

	target, err := language.Parse(TargetCode(tgtLang))
	if err != nil {
		return "", fmt.Errorf("invalid target language: %w", err)
	}

	var opts []option.ClientOption
	if g.credentials != "" {
		opts = append(opts, option.WithCredentialsFile(g.credentials))
	}

	client, err := translate.NewClient(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	translations, err := client.Translate(ctx, []string{text}, target, &translate.Options{Format: translate.Text})
	if err != nil {
		return "", fmt.Errorf("translation failed: %w", err)
	}
	if len(translations) == 0 {
		return "", fmt.Errorf("no translation returned")
	}

	return translations[0].Text, nil
}
