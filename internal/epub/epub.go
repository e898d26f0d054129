// Package epub loads packaged EPUB documents and exposes their content
// documents as ordered, named chapters.
package epub

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/sirupsen/logrus"
)

const containerPath = "META-INF/container.xml"

// LoadError is returned when an archive cannot be opened or its package
// document cannot be located.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load epub %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ContentPart is one text-bearing document inside the book.
type ContentPart struct {
	// Name is the manifest href resolved against the package directory,
	// e.g. "xhtml/p-001.xhtml".
	Name string
	// Path is the full entry path inside the archive.
	Path string
	Raw  []byte
}

type Book struct {
	Path   string
	Title  string
	parts  []ContentPart
	reader *zip.ReadCloser
}

type container struct {
	Rootfiles []struct {
		FullPath  string `xml:"full-path,attr"`
		MediaType string `xml:"media-type,attr"`
	} `xml:"rootfiles>rootfile"`
}

type packageDoc struct {
	Metadata struct {
		Title []string `xml:"title"`
	} `xml:"metadata"`
	Manifest struct {
		Items []struct {
			ID        string `xml:"id,attr"`
			Href      string `xml:"href,attr"`
			MediaType string `xml:"media-type,attr"`
		} `xml:"item"`
	} `xml:"manifest"`
}

// Load opens the archive at p and reads every content document listed in
// the package manifest. Any structural failure is reported as *LoadError.
func Load(p string, logger *logrus.Logger) (*Book, error) {
	zr, err := zip.OpenReader(p)
	if err != nil {
		return nil, &LoadError{Path: p, Err: err}
	}

	b := &Book{Path: p, reader: zr}
	if err := b.readPackage(logger); err != nil {
		zr.Close()
		return nil, &LoadError{Path: p, Err: err}
	}

	logger.Debugf("Loaded %s: %d content parts", p, len(b.parts))
	return b, nil
}

func (b *Book) readPackage(logger *logrus.Logger) error {
	files := make(map[string]*zip.File, len(b.reader.File))
	for _, f := range b.reader.File {
		files[f.Name] = f
	}

	cf, ok := files[containerPath]
	if !ok {
		return fmt.Errorf("missing %s", containerPath)
	}
	data, err := readFile(cf)
	if err != nil {
		return fmt.Errorf("failed to read container: %w", err)
	}
	var c container
	if err := xml.Unmarshal(data, &c); err != nil {
		return fmt.Errorf("failed to parse container: %w", err)
	}
	if len(c.Rootfiles) == 0 || c.Rootfiles[0].FullPath == "" {
		return fmt.Errorf("container lists no package document")
	}

	opfPath := c.Rootfiles[0].FullPath
	of, ok := files[opfPath]
	if !ok {
		return fmt.Errorf("package document %s not found", opfPath)
	}
	data, err = readFile(of)
	if err != nil {
		return fmt.Errorf("failed to read package document: %w", err)
	}
	var pkg packageDoc
	if err := xml.Unmarshal(data, &pkg); err != nil {
		return fmt.Errorf("failed to parse package document: %w", err)
	}
	if len(pkg.Metadata.Title) > 0 {
		b.Title = strings.TrimSpace(pkg.Metadata.Title[0])
	}

	opfDir := path.Dir(opfPath)
	for _, item := range pkg.Manifest.Items {
		if !isDocument(item.MediaType) {
			continue
		}
		href := item.Href
		if unescaped, err := url.PathUnescape(href); err == nil {
			href = unescaped
		}
		full := href
		if opfDir != "." {
			full = path.Join(opfDir, href)
		}

		f, ok := files[full]
		if !ok {
			logger.Warnf("Manifest item %s (%s) not found in archive, skipping", item.ID, full)
			continue
		}
		raw, err := readFile(f)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", full, err)
		}
		b.parts = append(b.parts, ContentPart{Name: path.Clean(href), Path: full, Raw: raw})
	}
	return nil
}

// ContentParts returns the book's content documents in manifest order.
func (b *Book) ContentParts() []ContentPart {
	return b.parts
}

func (b *Book) Close() error {
	if b.reader == nil {
		return nil
	}
	return b.reader.Close()
}

func isDocument(mediaType string) bool {
	switch strings.ToLower(strings.TrimSpace(mediaType)) {
	case "application/xhtml+xml", "text/html":
		return true
	}
	return false
}

func readFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
