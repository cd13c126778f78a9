// Package store persists fetched transcripts in a local SQLite database so
// the CLI can re-export and search them without spending API credits.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	transcript "github.com/anatolykoptev/go-transcript"
)

// Entry is one row of the local history listing.
type Entry struct {
	VideoID   string `json:"video_id"`
	Language  string `json:"language"`
	Words     int    `json:"words"`
	Preview   string `json:"preview"`
	FetchedAt string `json:"fetched_at"`
}

// Store wraps the SQLite history database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the history database at path. An empty path
// defaults to ~/.go-transcript/history.db.
func Open(path string) (*Store, error) {
	if path == "" {
		dir := filepath.Join(os.Getenv("HOME"), ".go-transcript")
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("store: mkdir %s: %w", dir, err)
		}
		path = filepath.Join(dir, "history.db")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init schema: %w", err)
	}
	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS transcripts (
		video_id   TEXT PRIMARY KEY,
		language   TEXT,
		text       TEXT NOT NULL,
		segments   TEXT NOT NULL,
		fetched_at TEXT NOT NULL
	)`)
	return err
}

// Save upserts a transcript keyed by video id.
func (s *Store) Save(ctx context.Context, t *transcript.Transcript) error {
	if t == nil || t.VideoID == "" {
		return errors.New("store: transcript has no video id")
	}

	segments, err := json.Marshal(t.Segments)
	if err != nil {
		return fmt.Errorf("store: encode segments: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO transcripts (video_id, language, text, segments, fetched_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(video_id) DO UPDATE SET
		   language = excluded.language,
		   text = excluded.text,
		   segments = excluded.segments,
		   fetched_at = excluded.fetched_at`,
		t.VideoID, t.Language, t.Text, string(segments), now,
	)
	if err != nil {
		return fmt.Errorf("store: save %s: %w", t.VideoID, err)
	}
	return nil
}

// Get loads a stored transcript. The bool reports whether it was found.
func (s *Store) Get(ctx context.Context, videoID string) (*transcript.Transcript, bool, error) {
	var language, text, segments string
	err := s.db.QueryRowContext(ctx,
		`SELECT language, text, segments FROM transcripts WHERE video_id = ?`,
		videoID,
	).Scan(&language, &text, &segments)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: get %s: %w", videoID, err)
	}

	t := &transcript.Transcript{
		VideoID:  videoID,
		Language: language,
		Text:     text,
		Status:   "completed",
	}
	if err := json.Unmarshal([]byte(segments), &t.Segments); err != nil {
		return nil, false, fmt.Errorf("store: decode segments for %s: %w", videoID, err)
	}
	return t, true, nil
}

// List returns the most recently fetched transcripts.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT video_id, language, text, fetched_at
		 FROM transcripts ORDER BY fetched_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// Search returns stored transcripts whose text contains the query.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT video_id, language, text, fetched_at
		 FROM transcripts WHERE text LIKE ? ORDER BY fetched_at DESC LIMIT ?`,
		"%"+query+"%", limit,
	)
	if err != nil {
		return nil, fmt.Errorf("store: search: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// Delete removes a stored transcript. Missing rows are not an error.
func (s *Store) Delete(ctx context.Context, videoID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM transcripts WHERE video_id = ?`, videoID); err != nil {
		return fmt.Errorf("store: delete %s: %w", videoID, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var e Entry
		var text string
		if err := rows.Scan(&e.VideoID, &e.Language, &text, &e.FetchedAt); err != nil {
			return nil, fmt.Errorf("store: scan: %w", err)
		}
		e.Words = wordCount(text)
		e.Preview = preview(text, 80)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func wordCount(s string) int {
	n, inWord := 0, false
	for _, r := range s {
		switch {
		case r == ' ' || r == '\t' || r == '\n':
			inWord = false
		case !inWord:
			n++
			inWord = true
		}
	}
	return n
}

func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
