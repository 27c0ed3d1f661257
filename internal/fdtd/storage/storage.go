// Package storage persists detector output to SQLite so runs can be
// compared after the fact. Schema changes go through embedded migrations.
package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// DB wraps the run database.
type DB struct {
	*sql.DB
}

// Run is one recorded simulation run.
type Run struct {
	ID        string
	StartedAt time.Time
	Rows      int
	Cols      int
	Steps     int
}

// Open opens (creating if needed) the database at path and applies pending
// migrations.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db := &DB{sqlDB}
	if err := db.migrateUp(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// CreateRun records a new run and returns its identifier.
func (db *DB) CreateRun(rows, cols, steps int) (string, error) {
	id := uuid.NewString()
	_, err := db.Exec(
		`INSERT INTO runs (run_id, started_at, grid_rows, grid_cols, n_steps) VALUES (?, ?, ?, ?, ?)`,
		id, time.Now().UTC(), rows, cols, steps,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// Runs lists recorded runs, newest first.
func (db *DB) Runs() ([]Run, error) {
	rows, err := db.Query(`SELECT run_id, started_at, grid_rows, grid_cols, n_steps FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.Rows, &r.Cols, &r.Steps); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RecordPointSeries stores a point detector's full time series for a run.
func (db *DB) RecordPointSeries(runID, detector string, times, values []float64) error {
	if len(times) != len(values) {
		return fmt.Errorf("times and values differ in length (%d vs %d)", len(times), len(values))
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO point_samples (run_id, detector, step, time_s, value) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for i := range values {
		if _, err := stmt.Exec(runID, detector, i, times[i], values[i]); err != nil {
			return fmt.Errorf("insert sample %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// PointSeries reads back a recorded series in step order.
func (db *DB) PointSeries(runID, detector string) (times, values []float64, err error) {
	rows, err := db.Query(
		`SELECT time_s, value FROM point_samples WHERE run_id = ? AND detector = ? ORDER BY step`,
		runID, detector,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ts, v float64
		if err := rows.Scan(&ts, &v); err != nil {
			return nil, nil, fmt.Errorf("scan sample: %w", err)
		}
		times = append(times, ts)
		values = append(values, v)
	}
	return times, values, rows.Err()
}

// RecordAngularProfile stores a circular detector's aggregate profile.
func (db *DB) RecordAngularProfile(runID, detector string, angles, magnitudes []float64) error {
	if len(angles) != len(magnitudes) {
		return fmt.Errorf("angles and magnitudes differ in length (%d vs %d)", len(angles), len(magnitudes))
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO angular_profiles (run_id, detector, member, angle_rad, magnitude) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for i := range angles {
		if _, err := stmt.Exec(runID, detector, i, angles[i], magnitudes[i]); err != nil {
			return fmt.Errorf("insert profile member %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// AngularProfile reads back a recorded profile in member order.
func (db *DB) AngularProfile(runID, detector string) (angles, magnitudes []float64, err error) {
	rows, err := db.Query(
		`SELECT angle_rad, magnitude FROM angular_profiles WHERE run_id = ? AND detector = ? ORDER BY member`,
		runID, detector,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("query profile: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a, m float64
		if err := rows.Scan(&a, &m); err != nil {
			return nil, nil, fmt.Errorf("scan profile: %w", err)
		}
		angles = append(angles, a)
		magnitudes = append(magnitudes, m)
	}
	return angles, magnitudes, rows.Err()
}
