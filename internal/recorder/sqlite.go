package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"math"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"TopoSentinel/internal/model"
)

// SQLiteRecorder persists run results to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance (dashboards read
	// while a refresh run writes).
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id            TEXT PRIMARY KEY,
			created_at    INTEGER NOT NULL,
			start_date    TEXT,
			end_date      TEXT,
			tickers       TEXT,
			window_length INTEGER,
			max_dimension INTEGER,
			source        TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS windows (
			run_id     TEXT NOT NULL,
			idx        INTEGER NOT NULL,
			start_date TEXT,
			end_date   TEXT,
			row_count  INTEGER,
			PRIMARY KEY (run_id, idx)
		)`,

		`CREATE TABLE IF NOT EXISTS intervals (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id     TEXT NOT NULL,
			window_idx INTEGER NOT NULL,
			dimension  INTEGER NOT NULL,
			birth      REAL NOT NULL,
			death      REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_intervals_run ON intervals(run_id, window_idx)`,

		`CREATE TABLE IF NOT EXISTS distance_series (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id     TEXT NOT NULL,
			window_idx INTEGER NOT NULL,
			dimension  INTEGER NOT NULL,
			baseline   TEXT NOT NULL,
			value      REAL NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_distance_run ON distance_series(run_id, dimension, baseline)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(run *RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO runs
		(id, created_at, start_date, end_date, tickers, window_length, max_dimension, source)
		VALUES (?,?,?,?,?,?,?,?)`,
		run.ID, run.CreatedAt.Unix(),
		run.Start.Format("2006-01-02"), run.End.Format("2006-01-02"),
		strings.Join(run.Tickers, ","), run.WindowLength, run.MaxDimension, run.Source,
	)
	return err
}

func (r *SQLiteRecorder) RecordWindow(runID string, w *model.Window) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO windows (run_id, idx, start_date, end_date, row_count)
		VALUES (?,?,?,?,?)`,
		runID, w.Index, w.Start.Format("2006-01-02"), w.End.Format("2006-01-02"), w.Len(),
	)
	return err
}

func (r *SQLiteRecorder) RecordDiagram(runID string, d *model.Diagram) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO intervals (run_id, window_idx, dimension, birth, death)
		VALUES (?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, iv := range d.Intervals {
		var death interface{}
		if !math.IsInf(iv.Death, 1) {
			death = iv.Death
		}
		if _, err := stmt.Exec(runID, d.WindowIndex, iv.Dimension, iv.Birth, death); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) RecordDistance(runID string, rec *DistanceRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO distance_series (run_id, window_idx, dimension, baseline, value)
		VALUES (?,?,?,?,?)`,
		runID, rec.WindowIndex, rec.Dimension, rec.Baseline, rec.Value,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
