package epub

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true, "hr": true, "img": true,
	"input": true, "link": true, "meta": true, "param": true, "source": true, "track": true, "wbr": true,
}

// expandSelfClosing rewrites XHTML self-closing tags of non-void elements
// as an explicit start and end tag pair. The HTML parser behind goquery
// ignores the trailing slash, so <title/> would otherwise swallow the rest
// of the document as title text.
func expandSelfClosing(raw []byte) []byte {
	z := html.NewTokenizer(bytes.NewReader(raw))
	var buf bytes.Buffer
	buf.Grow(len(raw))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			buf.Write(z.Raw())
			return buf.Bytes()
		}
		if tt != html.SelfClosingTagToken {
			buf.Write(z.Raw())
			continue
		}
		z.NextIsNotRawText()
		// TagName lowercases the buffer in place, so copy the raw bytes first.
		tok := append([]byte(nil), z.Raw()...)
		name, _ := z.TagName()
		if voidElements[string(name)] {
			buf.Write(tok)
			continue
		}
		buf.Write(tok[:len(tok)-2])
		buf.WriteString("></")
		buf.Write(name)
		buf.WriteByte('>')
	}
}

func parseDocument(raw []byte) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(bytes.NewReader(expandSelfClosing(raw)))
}

// PlainText returns the trimmed text of every p, div and heading element in
// document order, one per line. Nested containers contribute their text
// again, so callers should count lines rather than characters.
func PlainText(raw []byte) string {
	doc, err := parseDocument(raw)
	if err != nil {
		return ""
	}

	var lines []string
	doc.Find("p, div, h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			lines = append(lines, text)
		}
	})
	return strings.Join(lines, "\n")
}

// DocumentText returns the concatenated text content of the whole document.
func DocumentText(raw []byte) string {
	doc, err := parseDocument(raw)
	if err != nil {
		return ""
	}
	return doc.Text()
}

// CountLines returns the number of non-blank lines in text.
func CountLines(text string) int {
	n := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}
