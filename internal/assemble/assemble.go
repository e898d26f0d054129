// Package assemble writes a translated copy of an EPUB from a review
// session. Entries without translated text are copied byte for byte,
// compressed data included.
package assemble

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/liaozensiang/ebook-translater/internal/segment"
	"github.com/liaozensiang/ebook-translater/internal/session"
)

// Report lists what happened to each archive entry.
type Report struct {
	Modified []string
	Copied   []string
	// Unchanged lists entries that matched a translated chapter but had
	// no leaf in sync with its segments.
	Unchanged []string
}

type Assembler struct {
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *Assembler {
	return &Assembler{logger: logger}
}

// Assemble reads inputPath and writes outputPath, substituting the
// translations recorded in sess.
func (a *Assembler) Assemble(inputPath string, sess *session.Session, outputPath string) (*Report, error) {
	zr, err := zip.OpenReader(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", inputPath, err)
	}
	defer zr.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", outputPath, err)
	}

	report, err := a.write(&zr.Reader, sess, out)
	if cerr := out.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("failed to close %s: %w", outputPath, cerr)
	}
	if err != nil {
		os.Remove(outputPath)
		return nil, err
	}
	return report, nil
}

func (a *Assembler) write(zr *zip.Reader, sess *session.Session, w io.Writer) (*Report, error) {
	names, chapters := sess.ByChapter()
	a.logger.Infof("Loaded translations for %d chapters", len(names))

	zw := zip.NewWriter(w)
	if zr.Comment != "" {
		if err := zw.SetComment(zr.Comment); err != nil {
			return nil, fmt.Errorf("failed to copy archive comment: %w", err)
		}
	}

	report := &Report{}
	for _, f := range zr.File {
		segs, chapter := a.match(f.Name, names, chapters)

		if segs != nil && !hasTranslation(segs) {
			a.logger.Debugf("Skipping %s (matched %s but no translations)", f.Name, chapter)
			segs = nil
		}

		if segs != nil {
			content, modified, err := a.translate(f, segs)
			if err != nil {
				return nil, err
			}
			if modified {
				if err := writeModified(zw, f, content); err != nil {
					return nil, err
				}
				report.Modified = append(report.Modified, f.Name)
				continue
			}
			a.logger.Warnf("File parsed but no text replaced: %s", f.Name)
			report.Unchanged = append(report.Unchanged, f.Name)
		}

		if err := zw.Copy(f); err != nil {
			return nil, fmt.Errorf("failed to copy %s: %w", f.Name, err)
		}
		report.Copied = append(report.Copied, f.Name)
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish archive: %w", err)
	}
	return report, nil
}

// match resolves an archive entry to a session chapter: exact name first,
// then the first chapter in session order that the entry name ends with.
func (a *Assembler) match(name string, names []string, chapters map[string][]session.Segment) ([]session.Segment, string) {
	if segs, ok := chapters[name]; ok {
		return segs, name
	}

	var found string
	var others []string
	for _, ch := range names {
		if ch == "" || !strings.HasSuffix(name, ch) {
			continue
		}
		if found == "" {
			found = ch
		} else {
			others = append(others, ch)
		}
	}
	if found == "" {
		return nil, ""
	}
	if len(others) > 0 {
		a.logger.WithFields(logrus.Fields{
			"entry":   name,
			"chosen":  found,
			"ignored": others,
		}).Warn("Ambiguous chapter suffix match")
	}
	return chapters[found], found
}

func hasTranslation(segs []session.Segment) bool {
	for _, s := range segs {
		if strings.TrimSpace(s.TargetText) != "" {
			return true
		}
	}
	return false
}

// translate walks the entry's leaves with a cursor over segs. A leaf whose
// text equals the current segment's source is replaced (when translated)
// and advances the cursor; any other leaf is left alone and the cursor
// stays put.
func (a *Assembler) translate(f *zip.File, segs []session.Segment) ([]byte, bool, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, false, fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	raw, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", f.Name, err)
	}

	doc := segment.Parse(raw)
	cursor := 0
	for _, leaf := range doc.Leaves() {
		if cursor >= len(segs) {
			break
		}
		seg := segs[cursor]
		if leaf.Text() != seg.SourceText {
			continue
		}
		if seg.TargetText != "" {
			leaf.Replace(seg.TargetText)
		}
		cursor++
	}
	if cursor < len(segs) {
		a.logger.Debugf("%s: %d of %d segments in sync", f.Name, cursor, len(segs))
	}

	if !doc.Modified() {
		return nil, false, nil
	}
	return doc.Render(), true, nil
}

// writeModified stores content under a copy of f's header. The method,
// timestamps, comment and extra fields are kept; sizes and checksum are
// recomputed by the writer.
func writeModified(zw *zip.Writer, f *zip.File, content []byte) error {
	hdr := f.FileHeader
	hdr.CRC32 = 0
	hdr.CompressedSize = 0
	hdr.CompressedSize64 = 0
	hdr.UncompressedSize = 0
	hdr.UncompressedSize64 = 0
	// Keep the DOS date/time fields as read; a non-zero Modified would
	// append a second extended-timestamp field to Extra.
	hdr.Modified = time.Time{}

	fw, err := zw.CreateHeader(&hdr)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", f.Name, err)
	}
	if _, err := fw.Write(content); err != nil {
		return fmt.Errorf("failed to write %s: %w", f.Name, err)
	}
	return nil
}
