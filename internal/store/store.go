// Package store is the sqlite translation memory shared by automatic and
// on-demand segment translation.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"
)

var ErrEntryNotFound = errors.New("memory entry not found")

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS translation_memory (
		id TEXT PRIMARY KEY,
		source_text TEXT NOT NULL,
		source_lang TEXT NOT NULL,
		target_lang TEXT NOT NULL,
		model TEXT NOT NULL DEFAULT '',
		final_text TEXT NOT NULL,
		usage_count INTEGER DEFAULT 1,
		invalidated BOOLEAN DEFAULT FALSE,
		last_used TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(source_text, source_lang, target_lang, model)
	);

	CREATE INDEX IF NOT EXISTS idx_memory_lookup ON translation_memory(source_text, source_lang, target_lang, model);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Key identifies one memory row. Text is normalized before use.
type Key struct {
	Text       string
	SourceLang string
	TargetLang string
	Model      string
}

// Get returns the remembered translation for k and bumps its usage.
// Invalidated entries are misses.
func (s *Store) Get(ctx context.Context, k Key) (string, bool, error) {
	text := normalizeText(k.Text)

	var finalText string
	var invalidated bool
	err := s.db.QueryRowContext(ctx,
		`SELECT final_text, invalidated FROM translation_memory WHERE source_text = ? AND source_lang = ? AND target_lang = ? AND model = ?`,
		text, k.SourceLang, k.TargetLang, k.Model).Scan(&finalText, &invalidated)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if invalidated {
		return "", false, nil
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE translation_memory SET usage_count = usage_count + 1, last_used = ? WHERE source_text = ? AND source_lang = ? AND target_lang = ? AND model = ?`,
		time.Now(), text, k.SourceLang, k.TargetLang, k.Model)

	return finalText, true, err
}

// Save stores finalText for k, replacing any previous entry.
func (s *Store) Save(ctx context.Context, k Key, finalText string) error {
	now := time.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO translation_memory (id, source_text, source_lang, target_lang, model, final_text, usage_count, invalidated, last_used, created_at) VALUES (?, ?, ?, ?, ?, ?, 1, FALSE, ?, ?)`,
		uuid.NewString(), normalizeText(k.Text), k.SourceLang, k.TargetLang, k.Model, finalText, now, now)
	return err
}

// MemoryEntry is a row from the translation_memory table.
type MemoryEntry struct {
	ID          string
	SourceText  string
	SourceLang  string
	TargetLang  string
	Model       string
	FinalText   string
	UsageCount  int
	Invalidated bool
	LastUsed    time.Time
}

// Filter narrows List. Zero fields match everything.
type Filter struct {
	SourceLang string
	TargetLang string
	Model      string
	// Contains matches a substring of the source or the translation.
	Contains   string
	ActiveOnly bool
	Limit      uint64
}

// CacheStats summarises translation memory usage.
type CacheStats struct {
	TotalEntries   int
	ActiveEntries  int
	InvalidEntries int
	TotalUsage     int
}

// List returns entries matching f, most recently used first.
func (s *Store) List(ctx context.Context, f Filter) ([]MemoryEntry, error) {
	q := sq.Select("id", "source_text", "source_lang", "target_lang", "model", "final_text", "usage_count", "invalidated", "last_used").
		From("translation_memory").
		OrderBy("last_used DESC")

	if f.SourceLang != "" {
		q = q.Where(sq.Eq{"source_lang": f.SourceLang})
	}
	if f.TargetLang != "" {
		q = q.Where(sq.Eq{"target_lang": f.TargetLang})
	}
	if f.Model != "" {
		q = q.Where(sq.Eq{"model": f.Model})
	}
	if f.Contains != "" {
		pattern := "%" + f.Contains + "%"
		q = q.Where(sq.Or{sq.Like{"source_text": pattern}, sq.Like{"final_text": pattern}})
	}
	if f.ActiveOnly {
		q = q.Where(sq.Eq{"invalidated": false})
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []MemoryEntry
	for rows.Next() {
		var e MemoryEntry
		if err := rows.Scan(&e.ID, &e.SourceText, &e.SourceLang, &e.TargetLang, &e.Model, &e.FinalText, &e.UsageCount, &e.Invalidated, &e.LastUsed); err != nil {
			return nil, err
		}
		results = append(results, e)
	}

	return results, rows.Err()
}

// Stats returns summary statistics for the translation memory.
func (s *Store) Stats(ctx context.Context) (*CacheStats, error) {
	stats := &CacheStats{}

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN NOT invalidated THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN invalidated THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(usage_count), 0)
		FROM translation_memory`).Scan(
		&stats.TotalEntries,
		&stats.ActiveEntries,
		&stats.InvalidEntries,
		&stats.TotalUsage,
	)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// Invalidate keeps the row but stops Get from returning it.
func (s *Store) Invalidate(ctx context.Context, id string) error {
	return s.execByID(ctx, `UPDATE translation_memory SET invalidated = TRUE WHERE id = ?`, id)
}

// Delete permanently removes an entry by ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.execByID(ctx, `DELETE FROM translation_memory WHERE id = ?`, id)
}

func (s *Store) execByID(ctx context.Context, stmt, id string) error {
	res, err := s.db.ExecContext(ctx, stmt, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}
	return nil
}

// Clear removes all entries and reports how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM translation_memory`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) Close() error {
	return s.db.Close()
}

// normalizeText trims whitespace and applies Unicode NFC normalization
// for consistent cache key comparison.
func normalizeText(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}
