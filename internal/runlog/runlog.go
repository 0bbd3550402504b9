// Package runlog persists solver run summaries to SQLite so past goals,
// plans and their executed outcomes can be compared across invocations.
package runlog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Record is one completed (or failed) solver run.
type Record struct {
	ID           string
	CreatedAt    time.Time
	Goal         string
	Seed         int64
	Reached      bool
	PlannedTicks int64
	ActualTicks  int64
	Deaths       int64
	Replans      int
	Unexpected   int
	Segments     int
	ProfileJSON  string
}

// Store manages run history in SQLite.
type Store struct {
	DBPath string
	db     *sql.DB
}

// Open opens or creates the run history database.
func Open(path string) (*Store, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve runlog path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure runlog dir: %w", err)
	}

	db, err := sql.Open("sqlite", absPath)
	if err != nil {
		return nil, fmt.Errorf("open runlog db: %w", err)
	}

	store := &Store{DBPath: absPath, db: db}
	if err := store.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) ensureSchema() error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	goal TEXT NOT NULL,
	seed INTEGER NOT NULL,
	reached INTEGER NOT NULL,
	planned_ticks INTEGER NOT NULL,
	actual_ticks INTEGER NOT NULL,
	deaths INTEGER NOT NULL,
	replans INTEGER NOT NULL,
	unexpected INTEGER NOT NULL,
	segments INTEGER NOT NULL,
	profile_json TEXT
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
CREATE INDEX IF NOT EXISTS idx_runs_goal ON runs(goal, created_at);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create runlog schema: %w", err)
	}
	return nil
}

// Append inserts a run record, assigning an id and timestamp when unset,
// and returns the stored record.
func (s *Store) Append(rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	reached := 0
	if rec.Reached {
		reached = 1
	}
	_, err := s.db.Exec(`
		INSERT INTO runs (id, created_at, goal, seed, reached, planned_ticks,
		                  actual_ticks, deaths, replans, unexpected, segments, profile_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.CreatedAt.UTC().Format(time.RFC3339Nano), rec.Goal, rec.Seed, reached,
		rec.PlannedTicks, rec.ActualTicks, rec.Deaths, rec.Replans, rec.Unexpected,
		rec.Segments, rec.ProfileJSON)
	if err != nil {
		return Record{}, fmt.Errorf("insert run: %w", err)
	}
	return rec, nil
}

// Get retrieves one run by id.
func (s *Store) Get(id string) (Record, error) {
	row := s.db.QueryRow(`
		SELECT id, created_at, goal, seed, reached, planned_ticks,
		       actual_ticks, deaths, replans, unexpected, segments, profile_json
		FROM runs
		WHERE id = ?
	`, id)
	rec, err := scanRun(row)
	if err == sql.ErrNoRows {
		return Record{}, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return Record{}, fmt.Errorf("get run: %w", err)
	}
	return rec, nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(limit int) ([]Record, error) {
	rows, err := s.db.Query(`
		SELECT id, created_at, goal, seed, reached, planned_ticks,
		       actual_ticks, deaths, replans, unexpected, segments, profile_json
		FROM runs
		ORDER BY created_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return recs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Record, error) {
	var rec Record
	var createdAt string
	var reached int
	var profileJSON sql.NullString
	err := row.Scan(&rec.ID, &createdAt, &rec.Goal, &rec.Seed, &reached,
		&rec.PlannedTicks, &rec.ActualTicks, &rec.Deaths, &rec.Replans,
		&rec.Unexpected, &rec.Segments, &profileJSON)
	if err != nil {
		return Record{}, err
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	rec.Reached = reached != 0
	if profileJSON.Valid {
		rec.ProfileJSON = profileJSON.String
	}
	return rec, nil
}
