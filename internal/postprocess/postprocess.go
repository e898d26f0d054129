// Package postprocess strips model artifacts from completion output before
// it is parsed as JSON or stored as a segment translation.
package postprocess

import (
	"regexp"
	"strings"
)

// Clean prepares a single-segment translation for storage. source is the
// segment text the model was asked to translate; it decides whether outer
// quotes belong to the text or were added by the model.
//  1. reasoning blocks are removed
//  2. a wrapping code fence is removed
//  3. a leading "Translation:" style echo is removed
//  4. outer quotes are removed unless source is itself quoted
func Clean(source, text string) string {
	text = removeThinkingBlocks(text)
	text = StripCodeFence(text)
	text = removeInstructionEchoes(text)
	if !isQuoted(strings.TrimSpace(source)) {
		text = removeQuoteWrapping(text)
	}
	return strings.TrimSpace(text)
}

var thinkingBlockRe = regexp.MustCompile(
	`(?is)<thinking>.*?</thinking>|<think>.*?</think>|<reasoning>.*?</reasoning>|<reflection>.*?</reflection>`,
)

// Opened tag with no closing tag: the model was cut off mid-thought.
var truncatedThinkingRe = regexp.MustCompile(
	`(?is)(?:<thinking>|<think>|<reasoning>|<reflection>).*$`,
)

func removeThinkingBlocks(text string) string {
	text = thinkingBlockRe.ReplaceAllString(text, "")
	text = truncatedThinkingRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// StripCodeFence removes a leading ``` or ```json line and a trailing ```
// line. Text that does not start with a fence is returned trimmed.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	lines := strings.Split(text, "\n")
	lines = lines[1:]
	if n := len(lines); n > 0 && strings.TrimSpace(lines[n-1]) == "```" {
		lines = lines[:n-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Anchored at the start and requiring a colon to avoid eating real content.
var echoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^here(?:'s| is)(?: the)? (?:translated |final )?(?:translation|text)\s*:`),
	regexp.MustCompile(`(?i)^(?:the )?(?:translation|translated text|output)\s*:`),
	regexp.MustCompile(`(?i)^(?:certainly|sure|of course)[,.]? here(?:'s| is)(?: the)? (?:translated )?(?:translation|text)\s*:`),
	regexp.MustCompile(`^(?:翻譯|翻译|譯文|译文|訳文)\s*[:：]`),
}

func removeInstructionEchoes(text string) string {
	for _, re := range echoPatterns {
		if loc := re.FindStringIndex(text); loc != nil {
			text = strings.TrimSpace(text[loc[1]:])
		}
	}
	return text
}

var quotePairs = [][2]rune{
	{'"', '"'},
	{'\'', '\''},
	{'“', '”'},
	{'‘', '’'},
	{'「', '」'},
	{'『', '』'},
}

func isQuoted(text string) bool {
	runes := []rune(text)
	n := len(runes)
	if n < 2 {
		return false
	}
	for _, q := range quotePairs {
		if runes[0] == q[0] && runes[n-1] == q[1] {
			return true
		}
	}
	return false
}

func removeQuoteWrapping(text string) string {
	if !isQuoted(text) {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[1 : len(runes)-1]))
}
