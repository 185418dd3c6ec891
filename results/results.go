// package results persists evaluation outputs so a plotting front end can
// read them after a run. The store is a single SQLite file keyed by run
// ID: ROC curve points and safe-set percentages per fold for
// cross-validation runs, and (size, percentage) pairs for learning-curve
// sweeps.
package results

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS roc_points (
	run_id    TEXT NOT NULL,
	fold      INTEGER NOT NULL,
	seq       INTEGER NOT NULL,
	false_pos REAL NOT NULL,
	true_pos  REAL NOT NULL,
	PRIMARY KEY (run_id, fold, seq)
);
CREATE TABLE IF NOT EXISTS safesets (
	run_id  TEXT NOT NULL,
	fold    INTEGER NOT NULL,
	percent REAL NOT NULL,
	PRIMARY KEY (run_id, fold)
);
CREATE TABLE IF NOT EXISTS learning_points (
	run_id  TEXT NOT NULL,
	size    INTEGER NOT NULL,
	percent REAL NOT NULL,
	PRIMARY KEY (run_id, size)
);
`

// Store reads and writes run results in one SQLite database file.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the results database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("results: opening %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("results: initializing schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// insertRun records the run if it is not already present.
func insertRun(tx *sql.Tx, runID string) error {
	_, err := tx.Exec(
		`INSERT OR IGNORE INTO runs (id, created_at) VALUES (?, ?)`,
		runID, time.Now().Unix(),
	)
	return err
}

// SaveROC stores one fold's curve. The rate sequences must be
// index-aligned; any previously stored curve for the same run and fold is
// replaced.
func (s *Store) SaveROC(runID string, fold int, falsePos, truePos []float64) error {
	if len(falsePos) != len(truePos) {
		return fmt.Errorf("results: run %s fold %d: rate length mismatch", runID, fold)
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("results: begin: %w", err)
	}
	defer tx.Rollback()
	if err := insertRun(tx, runID); err != nil {
		return fmt.Errorf("results: recording run %s: %w", runID, err)
	}
	if _, err := tx.Exec(`DELETE FROM roc_points WHERE run_id = ? AND fold = ?`, runID, fold); err != nil {
		return fmt.Errorf("results: clearing curve: %w", err)
	}
	stmt, err := tx.Prepare(
		`INSERT INTO roc_points (run_id, fold, seq, false_pos, true_pos) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("results: prepare: %w", err)
	}
	defer stmt.Close()
	for i := range falsePos {
		if _, err := stmt.Exec(runID, fold, i, falsePos[i], truePos[i]); err != nil {
			return fmt.Errorf("results: inserting curve point: %w", err)
		}
	}
	return tx.Commit()
}

// saveRunRow records the run and one keyed row in a single transaction,
// so a stored row always has a matching run record.
func (s *Store) saveRunRow(runID, what, query string, args ...any) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("results: begin: %w", err)
	}
	defer tx.Rollback()
	if err := insertRun(tx, runID); err != nil {
		return fmt.Errorf("results: recording run %s: %w", runID, err)
	}
	if _, err := tx.Exec(query, args...); err != nil {
		return fmt.Errorf("results: saving %s: %w", what, err)
	}
	return tx.Commit()
}

// SaveSafeset stores one fold's safe-set percentage, replacing any
// previous value for the same run and fold.
func (s *Store) SaveSafeset(runID string, fold int, percent float64) error {
	return s.saveRunRow(runID, "safeset",
		`INSERT OR REPLACE INTO safesets (run_id, fold, percent) VALUES (?, ?, ?)`,
		runID, fold, percent,
	)
}

// SaveLearningPoint stores one learning-curve sample, replacing any
// previous value for the same run and size.
func (s *Store) SaveLearningPoint(runID string, size int, percent float64) error {
	return s.saveRunRow(runID, "learning point",
		`INSERT OR REPLACE INTO learning_points (run_id, size, percent) VALUES (?, ?, ?)`,
		runID, size, percent,
	)
}

// ROC loads one fold's curve in stored order.
func (s *Store) ROC(runID string, fold int) (falsePos, truePos []float64, err error) {
	rows, err := s.db.Query(
		`SELECT false_pos, true_pos FROM roc_points WHERE run_id = ? AND fold = ? ORDER BY seq`,
		runID, fold,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("results: loading curve: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var fp, tp float64
		if err := rows.Scan(&fp, &tp); err != nil {
			return nil, nil, fmt.Errorf("results: scanning curve point: %w", err)
		}
		falsePos = append(falsePos, fp)
		truePos = append(truePos, tp)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("results: loading curve: %w", err)
	}
	return falsePos, truePos, nil
}

// Safesets loads a run's safe-set percentages in fold order.
func (s *Store) Safesets(runID string) ([]float64, error) {
	rows, err := s.db.Query(
		`SELECT percent FROM safesets WHERE run_id = ? ORDER BY fold`, runID)
	if err != nil {
		return nil, fmt.Errorf("results: loading safesets: %w", err)
	}
	defer rows.Close()
	var out []float64
	for rows.Next() {
		var p float64
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("results: scanning safeset: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("results: loading safesets: %w", err)
	}
	return out, nil
}

// LearningCurve loads a run's (size, percentage) pairs in size order.
func (s *Store) LearningCurve(runID string) (sizes []int, percents []float64, err error) {
	rows, err := s.db.Query(
		`SELECT size, percent FROM learning_points WHERE run_id = ? ORDER BY size`, runID)
	if err != nil {
		return nil, nil, fmt.Errorf("results: loading learning curve: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var size int
		var p float64
		if err := rows.Scan(&size, &p); err != nil {
			return nil, nil, fmt.Errorf("results: scanning learning point: %w", err)
		}
		sizes = append(sizes, size)
		percents = append(percents, p)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("results: loading learning curve: %w", err)
	}
	return sizes, percents, nil
}

// Runs lists the stored run IDs, most recent first.
func (s *Store) Runs() ([]string, error) {
	rows, err := s.db.Query(`SELECT id FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("results: listing runs: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("results: scanning run: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("results: listing runs: %w", err)
	}
	return out, nil
}
