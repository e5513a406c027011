// Package store persists labeled sensor windows in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cwbudde/algo-periodnet/profile"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for window data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS windows (
			id INTEGER PRIMARY KEY,
			label TEXT NOT NULL,
			source TEXT NOT NULL,
			sample_rate REAL NOT NULL,
			seq_len INTEGER NOT NULL,
			channels INTEGER NOT NULL,
			samples BLOB NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_windows_label ON windows(label);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertWindows stores windows recorded at sampleRate from source in one
// transaction and returns the number of rows written.
func (s *Store) InsertWindows(ctx context.Context, source string, sampleRate float64, windows []profile.Window) (n int, err error) {
	for i, w := range windows {
		if verr := w.Validate(); verr != nil {
			return 0, fmt.Errorf("window %d: %w", i, verr)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO windows (label, source, sample_rate, seq_len, channels, samples, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, w := range windows {
		if _, err = stmt.ExecContext(ctx, w.Label, source, sampleRate, w.Len(), w.Channels(), encodeSamples(w.Samples), now); err != nil {
			return 0, err
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return len(windows), nil
}

// Filter restricts ListWindows. Zero values match everything.
type Filter struct {
	Labels []string
	Source string
	Limit  int
}

// Record is a stored window with its metadata.
type Record struct {
	ID         int64
	Source     string
	SampleRate float64
	Window     profile.Window
}

// ListWindows returns stored windows in insertion order.
func (s *Store) ListWindows(ctx context.Context, f Filter) ([]Record, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if len(f.Labels) > 0 {
		marks := strings.TrimSuffix(strings.Repeat("?,", len(f.Labels)), ",")
		clauses = append(clauses, "label IN ("+marks+")")
		for _, l := range f.Labels {
			args = append(args, l)
		}
	}
	if f.Source != "" {
		clauses = append(clauses, "source = ?")
		args = append(args, f.Source)
	}
	query := fmt.Sprintf(`SELECT id, label, source, sample_rate, seq_len, channels, samples
		FROM windows
		WHERE %s
		ORDER BY id ASC`, strings.Join(clauses, " AND "))
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var records []Record
	for rows.Next() {
		var (
			rec      Record
			seqLen   int
			channels int
			blob     []byte
		)
		if err := rows.Scan(&rec.ID, &rec.Window.Label, &rec.Source, &rec.SampleRate, &seqLen, &channels, &blob); err != nil {
			return nil, err
		}
		samples, err := decodeSamples(blob, seqLen, channels)
		if err != nil {
			return nil, fmt.Errorf("window %d: %w", rec.ID, err)
		}
		rec.Window.Samples = samples
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// LabelSummary counts the stored windows of one label.
type LabelSummary struct {
	Label    string
	Windows  int
	SeqLen   int
	Channels int
}

// Labels returns one summary per label, sorted by label. SeqLen and
// Channels report the largest shape stored for the label.
func (s *Store) Labels(ctx context.Context) ([]LabelSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT label, COUNT(*), MAX(seq_len), MAX(channels)
		 FROM windows
		 GROUP BY label
		 ORDER BY label ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []LabelSummary
	for rows.Next() {
		var ls LabelSummary
		if err := rows.Scan(&ls.Label, &ls.Windows, &ls.SeqLen, &ls.Channels); err != nil {
			return nil, err
		}
		result = append(result, ls)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteLabel removes every window with the given label.
func (s *Store) DeleteLabel(ctx context.Context, label string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM windows WHERE label = ?`, label)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
