// Package store persists grasp analysis results to a SQLite database,
// one row per run plus one row per candidate contact. It exists so
// batch sweeps over many scenes can be compared after the fact.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/seagrove/graspkit/pkg/field"
	"github.com/seagrove/graspkit/pkg/grasp"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	scene TEXT,
	grid_dim INTEGER,
	threshold DOUBLE,
	bad BOOLEAN,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS contacts (
	run_id TEXT,
	idx INTEGER,
	cell_x INTEGER,
	cell_y INTEGER,
	normal_x DOUBLE,
	normal_y DOUBLE,
	found BOOLEAN,
	PRIMARY KEY (run_id, idx),
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);
`

// Store wraps the results database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) a results database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Run is one persisted contact search.
type Run struct {
	ID        string
	Scene     string
	GridDim   int
	Threshold float64
	Bad       bool
	CreatedAt time.Time
}

// Contact is one persisted candidate contact.
type Contact struct {
	RunID  string
	Index  int
	Cell   field.Cell
	Normal field.Vec2
	Found  bool
}

// RecordRun stores a search result and returns the generated run id.
func (s *Store) RecordRun(sceneName string, gridDim int, threshold float64, res *grasp.Result) (string, error) {
	id := uuid.NewString()

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT INTO runs (run_id, scene, grid_dim, threshold, bad) VALUES (?, ?, ?, ?, ?)",
		id, sceneName, gridDim, threshold, res.Bad,
	)
	if err != nil {
		return "", fmt.Errorf("store: insert run: %w", err)
	}

	for i, c := range res.Contacts {
		n := res.Normals[i]
		_, err = tx.Exec(
			"INSERT INTO contacts (run_id, idx, cell_x, cell_y, normal_x, normal_y, found) VALUES (?, ?, ?, ?, ?, ?, ?)",
			id, i, c.X, c.Y, n.X, n.Y, !c.IsZero(),
		)
		if err != nil {
			return "", fmt.Errorf("store: insert contact %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("store: commit: %w", err)
	}
	return id, nil
}

// Runs returns all persisted runs, newest first.
func (s *Store) Runs() ([]Run, error) {
	rows, err := s.db.Query(
		"SELECT run_id, scene, grid_dim, threshold, bad, created_at FROM runs ORDER BY created_at DESC, run_id",
	)
	if err != nil {
		return nil, fmt.Errorf("store: query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Scene, &r.GridDim, &r.Threshold, &r.Bad, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Contacts returns the persisted contacts of a run in index order.
func (s *Store) Contacts(runID string) ([]Contact, error) {
	rows, err := s.db.Query(
		"SELECT run_id, idx, cell_x, cell_y, normal_x, normal_y, found FROM contacts WHERE run_id = ? ORDER BY idx",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("store: query contacts: %w", err)
	}
	defer rows.Close()

	var out []Contact
	for rows.Next() {
		var c Contact
		if err := rows.Scan(&c.RunID, &c.Index, &c.Cell.X, &c.Cell.Y, &c.Normal.X, &c.Normal.Y, &c.Found); err != nil {
			return nil, fmt.Errorf("store: scan contact: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
