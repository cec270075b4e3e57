// Package store persists research runs and their artifacts in a local
// SQLite database, so bundles can be scripted and packaged in later
// invocations without re-running research.
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

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/dkrasnov/docureel/internal/model"
)

// ErrRunNotFound signals a lookup for a run ID the store has never seen.
var ErrRunNotFound = errors.New("run not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id          TEXT PRIMARY KEY,
    topic       TEXT NOT NULL,
    created_at  TEXT NOT NULL,
    items_count INTEGER NOT NULL,
    bundle_json TEXT NOT NULL,
    script_json TEXT
);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);
`

// Store is the research-run database.
type Store struct {
	db *sql.DB
}

// Run is a listing row, without the heavyweight JSON payloads.
type Run struct {
	ID         string
	Topic      string
	CreatedAt  time.Time
	ItemsCount int
	HasScript  bool
}

// DefaultPath returns ~/.docureel/runs.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".docureel", "runs.db"), nil
}

// Open opens (creating if needed) the run database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Single-writer local database; WAL keeps readers unblocked.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveBundle persists a freshly researched bundle and returns the new
// run ID.
func (s *Store) SaveBundle(ctx context.Context, bundle *model.EvidenceBundle) (string, error) {
	payload, err := json.Marshal(bundle)
	if err != nil {
		return "", fmt.Errorf("encode bundle: %w", err)
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, topic, created_at, items_count, bundle_json) VALUES (?, ?, ?, ?, ?)`,
		id, bundle.Topic, time.Now().UTC().Format(time.RFC3339), len(bundle.Items), string(payload))
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// LoadBundle returns the evidence bundle for a run.
func (s *Store) LoadBundle(ctx context.Context, id string) (*model.EvidenceBundle, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT bundle_json FROM runs WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query run %s: %w", id, err)
	}

	var bundle model.EvidenceBundle
	if err := json.Unmarshal([]byte(payload), &bundle); err != nil {
		return nil, fmt.Errorf("decode bundle for run %s: %w", id, err)
	}
	return &bundle, nil
}

// SaveScript attaches a generated script to an existing run.
func (s *Store) SaveScript(ctx context.Context, id string, script *model.FullScript) error {
	payload, err := json.Marshal(script)
	if err != nil {
		return fmt.Errorf("encode script: %w", err)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE runs SET script_json = ? WHERE id = ?`, string(payload), id)
	if err != nil {
		return fmt.Errorf("update run %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update run %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

// LoadScript returns the script attached to a run, or ErrRunNotFound if
// the run does not exist or has no script yet.
func (s *Store) LoadScript(ctx context.Context, id string) (*model.FullScript, error) {
	var payload sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT script_json FROM runs WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query run %s: %w", id, err)
	}
	if !payload.Valid {
		return nil, fmt.Errorf("%w: run %s has no script", ErrRunNotFound, id)
	}

	var script model.FullScript
	if err := json.Unmarshal([]byte(payload.String), &script); err != nil {
		return nil, fmt.Errorf("decode script for run %s: %w", id, err)
	}
	return &script, nil
}

// List returns all runs, newest first.
func (s *Store) List(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, topic, created_at, items_count, script_json IS NOT NULL
		 FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var run Run
		var createdAt string
		if err := rows.Scan(&run.ID, &run.Topic, &createdAt, &run.ItemsCount, &run.HasScript); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at for run %s: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}
