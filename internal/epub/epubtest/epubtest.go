// Package epubtest builds small EPUB archives for tests.
package epubtest

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// Chapter is one content document placed under OEBPS/.
type Chapter struct {
	Href string
	Body string
}

// Fixed entry time so rebuilt fixtures are byte-identical.
var modTime = time.Date(2024, 1, 2, 3, 4, 6, 0, time.UTC)

// CoverBytes is the payload stored at OEBPS/images/cover.bin.
var CoverBytes = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x01, 0x02, 0x03}

// XHTML wraps body in a minimal XHTML document with an XML declaration.
func XHTML(title, body string) string {
	return `<?xml version="1.0" encoding="utf-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops">
<head><title>` + title + `</title><link rel="stylesheet" type="text/css" href="../style/book.css"/></head>
<body>
` + body + `
</body>
</html>
`
}

// Paragraphs renders n paragraphs of the form "<prefix> line i".
func Paragraphs(prefix string, n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "<p>%s line %d</p>\n", prefix, i)
	}
	return sb.String()
}

// Write creates dir/name as an EPUB containing chapters, a stylesheet and a
// binary cover, and returns its path.
func Write(t testing.TB, dir, name string, chapters []Chapter) string {
	t.Helper()

	p := filepath.Join(dir, name)
	f, err := os.Create(p)
	if err != nil {
		t.Fatalf("failed to create fixture: %v", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	add := func(entry string, method uint16, data []byte) {
		hdr := &zip.FileHeader{Name: entry, Method: method, Modified: modTime}
		fw, err := w.CreateHeader(hdr)
		if err != nil {
			t.Fatalf("failed to add %s: %v", entry, err)
		}
		if _, err := fw.Write(data); err != nil {
			t.Fatalf("failed to write %s: %v", entry, err)
		}
	}

	add("mimetype", zip.Store, []byte("application/epub+zip"))
	add("META-INF/container.xml", zip.Deflate, []byte(`<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`))

	var manifest strings.Builder
	for i, ch := range chapters {
		fmt.Fprintf(&manifest, "    <item id=\"c%d\" href=\"%s\" media-type=\"application/xhtml+xml\"/>\n", i, ch.Href)
	}
	add("OEBPS/content.opf", zip.Deflate, []byte(`<?xml version="1.0" encoding="utf-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="id">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>`+name+`</dc:title></metadata>
  <manifest>
`+manifest.String()+`    <item id="css" href="style/book.css" media-type="text/css"/>
    <item id="cover" href="images/cover.bin" media-type="image/png"/>
  </manifest>
</package>`))
	add("OEBPS/style/book.css", zip.Deflate, []byte("p { margin: 0; }\n"))
	add("OEBPS/images/cover.bin", zip.Store, CoverBytes)
	for _, ch := range chapters {
		add("OEBPS/"+ch.Href, zip.Deflate, []byte(ch.Body))
	}

	if err := w.Close(); err != nil {
		t.Fatalf("failed to finish fixture: %v", err)
	}
	return p
}
