// Package session persists a review session: the segments of one book, the
// glossary snapshot taken when it was prepared and the per-segment state.
//
// The whole session lives in a single session.json file. Every mutation
// loads the file, changes it and writes it back; there is no locking, so
// concurrent writers race and the last one wins.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/liaozensiang/ebook-translater/internal/glossary"
)

const FileName = "session.json"

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
)

var ErrSegmentNotFound = errors.New("segment not found")

type Segment struct {
	ID         string `json:"id"`
	Chapter    string `json:"chapter"`
	SourceText string `json:"source_text"`
	TargetText string `json:"target_text"`
	Status     Status `json:"status"`

	// GlossaryMatches is filled by Store.Segment and never persisted.
	GlossaryMatches glossary.Glossary `json:"glossary_matches,omitempty"`
}

// UnmarshalJSON also accepts the older "jp"/"zh" field names.
func (s *Segment) UnmarshalJSON(data []byte) error {
	type plain Segment
	var aux struct {
		plain
		JP string `json:"jp"`
		ZH string `json:"zh"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*s = Segment(aux.plain)
	if s.SourceText == "" {
		s.SourceText = aux.JP
	}
	if s.TargetText == "" {
		s.TargetText = aux.ZH
	}
	if s.Status == "" {
		s.Status = StatusPending
	}
	return nil
}

type Session struct {
	ProjectName string            `json:"project_name"`
	SrcLang     string            `json:"src_lang"`
	TgtLang     string            `json:"tgt_lang"`
	Glossary    glossary.Glossary `json:"glossary"`
	Segments    []Segment         `json:"segments"`
}

// Find returns the index of the segment with id, or -1.
func (s *Session) Find(id string) int {
	for i := range s.Segments {
		if s.Segments[i].ID == id {
			return i
		}
	}
	return -1
}

// ByChapter groups segments by chapter. names lists chapters in order of
// first appearance.
func (s *Session) ByChapter() (names []string, segments map[string][]Segment) {
	segments = make(map[string][]Segment)
	for _, seg := range s.Segments {
		if _, ok := segments[seg.Chapter]; !ok {
			names = append(names, seg.Chapter)
		}
		segments[seg.Chapter] = append(segments[seg.Chapter], seg)
	}
	return names, segments
}

// ExportContent returns the target text of every segment in order.
func (s *Session) ExportContent() []string {
	out := make([]string, len(s.Segments))
	for i, seg := range s.Segments {
		out[i] = seg.TargetText
	}
	return out
}

// Progress counts translated and approved segments.
func (s *Session) Progress() (translated, approved int) {
	for _, seg := range s.Segments {
		if seg.TargetText != "" {
			translated++
		}
		if seg.Status == StatusApproved {
			approved++
		}
	}
	return translated, approved
}

// Store reads and writes the session file of one work directory.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (st *Store) Dir() string { return st.dir }

func (st *Store) Path() string {
	return filepath.Join(st.dir, FileName)
}

// Load reads the session. A missing file yields an empty session.
func (st *Store) Load() (*Session, error) {
	data, err := os.ReadFile(st.Path())
	if errors.Is(err, os.ErrNotExist) {
		return &Session{Glossary: glossary.Glossary{}, Segments: []Segment{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse session %s: %w", st.Path(), err)
	}
	if s.Glossary == nil {
		s.Glossary = glossary.Glossary{}
	}
	if s.Segments == nil {
		s.Segments = []Segment{}
	}
	return &s, nil
}

// Save writes the full session record.
func (st *Store) Save(s *Session) error {
	if err := os.MkdirAll(st.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create work dir: %w", err)
	}
	clean := *s
	clean.Segments = make([]Segment, len(s.Segments))
	for i, seg := range s.Segments {
		seg.GlossaryMatches = nil
		clean.Segments[i] = seg
	}

	data, err := glossary.Marshal(&clean)
	if err != nil {
		return err
	}
	if err := os.WriteFile(st.Path(), data, 0o644); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// Create replaces any existing session with a new one.
func (st *Store) Create(projectName, srcLang, tgtLang string, segments []Segment, g glossary.Glossary) (*Session, error) {
	if g == nil {
		g = glossary.Glossary{}
	}
	if segments == nil {
		segments = []Segment{}
	}
	s := &Session{
		ProjectName: projectName,
		SrcLang:     srcLang,
		TgtLang:     tgtLang,
		Glossary:    g.Clone(),
		Segments:    segments,
	}
	if err := st.Save(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Segment returns a copy of the segment with id, with the glossary entries
// that occur in its source text attached.
func (st *Store) Segment(id string) (*Segment, error) {
	s, err := st.Load()
	if err != nil {
		return nil, err
	}
	i := s.Find(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrSegmentNotFound, id)
	}
	seg := s.Segments[i]
	seg.GlossaryMatches = s.Glossary.Matching(seg.SourceText)
	return &seg, nil
}

func (st *Store) mutate(id string, fn func(*Segment)) (*Segment, error) {
	s, err := st.Load()
	if err != nil {
		return nil, err
	}
	i := s.Find(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrSegmentNotFound, id)
	}
	fn(&s.Segments[i])
	if err := st.Save(s); err != nil {
		return nil, err
	}
	seg := s.Segments[i]
	return &seg, nil
}

// UpdateTranslation stores text as the segment's translation.
func (st *Store) UpdateTranslation(id, text string) (*Segment, error) {
	return st.mutate(id, func(seg *Segment) { seg.TargetText = text })
}

// Approve marks the segment approved.
func (st *Store) Approve(id string) (*Segment, error) {
	return st.mutate(id, func(seg *Segment) { seg.Status = StatusApproved })
}

// SetGlossary replaces the session's glossary snapshot.
func (st *Store) SetGlossary(g glossary.Glossary) error {
	s, err := st.Load()
	if err != nil {
		return err
	}
	if g == nil {
		g = glossary.Glossary{}
	}
	s.Glossary = g
	return st.Save(s)
}
