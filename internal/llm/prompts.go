package llm

import (
	"fmt"
	"strings"

	"github.com/liaozensiang/ebook-translater/internal/align"
	"github.com/liaozensiang/ebook-translater/internal/glossary"
)

func pairPrompt(sourceText, refText, srcLang, tgtLang string) string {
	return fmt.Sprintf(`Compare the following %[1]s text and its %[2]s translation.
Identify proper nouns (character names, place names, weapon names, terminology) that are key matching terms.

Rules:
1. Output a JSON object with a "terms" key.
2. "terms" must be a list of objects: {"source": "...", "target": "..."}
3. Exclude common words.

Source (%[1]s):
%[3]s...

Reference (%[2]s):
%[4]s...

Return JSON only.`, srcLang, tgtLang, align.Truncate(sourceText, pairExcerptRunes), align.Truncate(refText, pairExcerptRunes))
}

func scanPrompt(text, srcLang, tgtLang string) string {
	return fmt.Sprintf(`Analyze the %[1]s text below. Identify proper nouns (characters, places, unique items, spells) that are likely specific to this story.

Rules:
1. Identify proper nouns.
2. STRICTLY EXCLUDE common nouns (e.g. "Village", "Road", "School", "Time") unless part of a proper name.
3. Output a JSON object with a "terms" key.
4. Format: {"source": "Original Term (%[1]s)", "target": "Translated Term (%[2]s)"}

Example Output:
{"terms": [{"source": "Original Name", "target": "Translated Name"}]}

Text:
%[3]s

Return JSON only.`, srcLang, tgtLang, align.Truncate(text, scanExcerptRunes))
}

func batchSystemPrompt(srcLang, tgtLang string) string {
	return fmt.Sprintf(`You are a professional translator of %s into %s.
Rules:
1. Translate each line maintaining context and flow.
2. Output a JSON list of strings: ["translation1", "translation2"].
3. Preserve the exact number of lines (N inputs -> N outputs).
4. Use the glossary if provided.
Output format: {"translations": ["str1", "str2"]}`, srcLang, tgtLang)
}

func batchUserPrompt(texts []string, g glossary.Glossary) string {
	var sb strings.Builder
	sb.WriteString(glossaryBlock(g))
	fmt.Fprintf(&sb, "\nTranslate these %d lines:\n", len(texts))
	for _, t := range texts {
		sb.WriteString(t)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func singlePrompt(text string, g glossary.Glossary, srcLang, tgtLang string) string {
	return fmt.Sprintf(`You are a professional translator. Translate the following %s text to %s.
Output ONLY the translation. Do not include notes or explanations.

%s
Text:
%s`, srcLang, tgtLang, glossaryBlock(g), text)
}
