// Package segment finds the leaf-level paragraphs and headings of a chapter
// and rewrites their text without disturbing any other byte of the markup.
//
// The markup is tokenized rather than parsed into a tree: every token keeps
// its original bytes, so a document rendered without replacements is
// identical to its input, XML declaration and self-closing tags included.
package segment

import (
	"bytes"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// Elements that can become segments.
var leafTags = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// Elements whose presence inside a candidate disqualifies it as a leaf.
var blockTags = map[string]bool{
	"p": true, "div": true, "blockquote": true,
}

// HTML void elements are never pushed on the open-element stack even when
// they are not written self-closing.
var voidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true, "hr": true, "img": true,
	"input": true, "link": true, "meta": true, "param": true, "source": true, "track": true, "wbr": true,
}

type token struct {
	raw  []byte
	kind html.TokenType
	text string
}

// Leaf is one qualifying paragraph or heading.
type Leaf struct {
	start int
	// end is the index of the closing tag when closed is true, otherwise
	// the index of the first token after the element's content.
	end         int
	closed      bool
	text        string
	replacement *string
}

// Text returns the element's text content with surrounding whitespace
// trimmed.
func (l *Leaf) Text() string { return l.text }

// Replace schedules the element's entire content to be replaced by text.
func (l *Leaf) Replace(text string) { l.replacement = &text }

func (l *Leaf) Replaced() bool { return l.replacement != nil }

type Document struct {
	tokens []token
	leaves []*Leaf
}

type openElement struct {
	name     string
	start    int
	hasBlock bool
}

type span struct {
	name     string
	start    int
	end      int
	closed   bool
	hasBlock bool
}

// Parse tokenizes raw markup and indexes its leaves in document order.
func Parse(raw []byte) *Document {
	d := &Document{}
	z := html.NewTokenizer(bytes.NewReader(raw))

	var stack []openElement
	var spans []span
	closeTo := func(depth, end int, closed bool) {
		for len(stack) > depth {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			spans = append(spans, span{name: top.name, start: top.start, end: end, closed: closed && len(stack) == depth, hasBlock: top.hasBlock})
		}
	}

	for {
		tt := z.Next()
		// Raw must be copied before Text or TagName, which rewrite the
		// tokenizer buffer in place.
		rawTok := append([]byte(nil), z.Raw()...)
		if tt == html.ErrorToken {
			if len(rawTok) > 0 {
				d.tokens = append(d.tokens, token{raw: rawTok, kind: html.CommentToken})
			}
			break
		}

		idx := len(d.tokens)
		tok := token{raw: rawTok, kind: tt}

		switch tt {
		case html.TextToken:
			tok.text = string(z.Text())
		case html.StartTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if blockTags[tag] {
				for i := range stack {
					stack[i].hasBlock = true
				}
			}
			if !voidTags[tag] {
				stack = append(stack, openElement{name: tag, start: idx})
			}
		case html.SelfClosingTagToken:
			// <title/> and <script .../> are complete in XHTML; without this
			// the tokenizer reads the rest of the file as their content.
			z.NextIsNotRawText()
			name, _ := z.TagName()
			if blockTags[string(name)] {
				for i := range stack {
					stack[i].hasBlock = true
				}
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			for i := len(stack) - 1; i >= 0; i-- {
				if stack[i].name == tag {
					closeTo(i, idx, true)
					break
				}
			}
		}
		d.tokens = append(d.tokens, tok)
	}
	closeTo(0, len(d.tokens), false)

	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	for _, s := range spans {
		if !leafTags[s.name] || s.hasBlock {
			continue
		}
		text := strings.TrimSpace(d.textBetween(s.start+1, s.end))
		if text == "" {
			continue
		}
		d.leaves = append(d.leaves, &Leaf{start: s.start, end: s.end, closed: s.closed, text: text})
	}
	return d
}

func (d *Document) textBetween(from, to int) string {
	var sb strings.Builder
	for i := from; i < to && i < len(d.tokens); i++ {
		if d.tokens[i].kind == html.TextToken {
			sb.WriteString(d.tokens[i].text)
		}
	}
	return sb.String()
}

// Leaves returns the qualifying elements in document order.
func (d *Document) Leaves() []*Leaf {
	return d.leaves
}

// Modified reports whether any leaf has a pending replacement.
func (d *Document) Modified() bool {
	for _, l := range d.leaves {
		if l.replacement != nil {
			return true
		}
	}
	return false
}

// Render returns the markup with replacements applied. Tokens outside
// replaced elements are written back verbatim.
func (d *Document) Render() []byte {
	replaced := make(map[int]*Leaf)
	for _, l := range d.leaves {
		if l.replacement != nil {
			replaced[l.start] = l
		}
	}

	var buf bytes.Buffer
	for i := 0; i < len(d.tokens); {
		l, ok := replaced[i]
		if !ok {
			buf.Write(d.tokens[i].raw)
			i++
			continue
		}
		buf.Write(d.tokens[i].raw)
		buf.WriteString(escapeText(*l.replacement))
		if l.closed {
			buf.Write(d.tokens[l.end].raw)
			i = l.end + 1
		} else {
			i = l.end
		}
	}
	return buf.Bytes()
}

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escapeText(s string) string {
	return textEscaper.Replace(s)
}

// Texts returns the trimmed text of every leaf in raw, in document order.
func Texts(raw []byte) []string {
	leaves := Parse(raw).Leaves()
	out := make([]string, len(leaves))
	for i, l := range leaves {
		out[i] = l.text
	}
	return out
}
