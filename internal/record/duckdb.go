// carbonlog - Personal Carbon Footprint Tracker
// Copyright 2026 M. Kerring (mkerring)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkerring/carbonlog

package record

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/mkerring/carbonlog/internal/config"
	"github.com/mkerring/carbonlog/internal/logging"
	"github.com/mkerring/carbonlog/internal/metrics"
)

// DB is the DuckDB-backed activity store. It implements Store.
type DB struct {
	conn *sql.DB
	cfg  *config.DatabaseConfig
}

var _ Store = (*DB)(nil)

// New opens (or creates) the activity database and initializes the schema.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	// Ensure the parent directory exists for file-backed databases.
	if cfg.Path != ":memory:" {
		dbDir := filepath.Dir(cfg.Path)
		if dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
			}
		}
	}

	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d", cfg.Path, threads)
	if cfg.MaxMemory != "" {
		connStr += "&max_memory=" + cfg.MaxMemory
	}

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{conn: conn, cfg: cfg}
	db.configurePool()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.conn.PingContext(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := db.createSchema(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logging.Debug().Str("path", cfg.Path).Int("threads", threads).Msg("Activity database opened")
	return db, nil
}

// configurePool applies connection pool settings tuned for an embedded
// single-writer database.
func (db *DB) configurePool() {
	db.conn.SetMaxOpenConns(runtime.NumCPU())
	db.conn.SetMaxIdleConns(2)
	db.conn.SetConnMaxLifetime(time.Hour)
	db.conn.SetConnMaxIdleTime(5 * time.Minute)
}

// createSchema creates the activities table and indexes.
func (db *DB) createSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS activities (
			id          VARCHAR PRIMARY KEY,
			category    VARCHAR NOT NULL,
			description VARCHAR NOT NULL DEFAULT '',
			co2_kg      DOUBLE  NOT NULL,
			occurred_at TIMESTAMP NOT NULL,
			logged_at   TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_logged_at ON activities(logged_at)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_category ON activities(category)`,
	}

	for _, stmt := range stmts {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}

const activityColumns = `id, category, description, co2_kg, occurred_at, logged_at`

// ListAll returns every activity ordered by logged_at ascending.
func (db *DB) ListAll(ctx context.Context) ([]Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities ORDER BY logged_at ASC, id ASC`

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query)
	metrics.RecordDBQuery("list_all", "activities", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Best effort cleanup

	return scanActivities(rows)
}

// ListSince returns activities logged strictly after t, ordered by
// logged_at ascending.
func (db *DB) ListSince(ctx context.Context, t time.Time) ([]Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE logged_at > ? ORDER BY logged_at ASC, id ASC`

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, t.UTC())
	metrics.RecordDBQuery("list_since", "activities", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities since %s: %w", t.Format(time.RFC3339), err)
	}
	defer rows.Close() //nolint:errcheck // Best effort cleanup

	return scanActivities(rows)
}

// ListIDs returns the identity set of all stored activities.
func (db *DB) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT id FROM activities`)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity ids: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Best effort cleanup

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan activity id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Exists reports whether an activity with the given id is stored.
func (db *DB) Exists(ctx context.Context, id string) (bool, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM activities WHERE id = ?`, id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check activity %s: %w", id, err)
	}
	return count > 0, nil
}

// Insert stores one activity. The id must be set by the caller; a
// duplicate id fails the primary key constraint and is returned as an
// error.
func (db *DB) Insert(ctx context.Context, a Activity) error {
	if a.ID == "" {
		return fmt.Errorf("activity id is required")
	}
	if a.LoggedAt.IsZero() {
		a.LoggedAt = time.Now().UTC()
	}
	if a.OccurredAt.IsZero() {
		a.OccurredAt = a.LoggedAt
	}

	start := time.Now()
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO activities (`+activityColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.Category, a.Description, a.CO2Kg, a.OccurredAt.UTC(), a.LoggedAt.UTC())
	metrics.RecordDBQuery("insert", "activities", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to insert activity %s: %w", a.ID, err)
	}
	return nil
}

// DeleteAll removes every activity in a single transaction.
func (db *DB) DeleteAll(ctx context.Context) error {
	start := time.Now()
	_, err := db.conn.ExecContext(ctx, `DELETE FROM activities`)
	metrics.RecordDBQuery("delete_all", "activities", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to delete activities: %w", err)
	}
	return nil
}

// Count returns the number of stored activities.
func (db *DB) Count(ctx context.Context) (int, error) {
	var count int
	start := time.Now()
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM activities`).Scan(&count)
	metrics.RecordDBQuery("count", "activities", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("failed to count activities: %w", err)
	}
	return count, nil
}

// ListPage returns one page of activities for the API, newest first by
// occurred_at. An empty category matches all categories.
func (db *DB) ListPage(ctx context.Context, limit, offset int, category string) ([]Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities`
	args := []interface{}{}

	if category != "" {
		query += ` WHERE category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY occurred_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, args...)
	metrics.RecordDBQuery("list_page", "activities", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity page: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Best effort cleanup

	return scanActivities(rows)
}

// Summarize aggregates stored activities for the dashboard.
func (db *DB) Summarize(ctx context.Context) (*Summary, error) {
	summary := &Summary{ByCategory: make(map[string]float64)}

	start := time.Now()
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(co2_kg), 0) FROM activities`).
		Scan(&summary.TotalCount, &summary.TotalCO2Kg)
	metrics.RecordDBQuery("summarize", "activities", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize activities: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT category, SUM(co2_kg) FROM activities GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize categories: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Best effort cleanup

	for rows.Next() {
		var category string
		var total float64
		if err := rows.Scan(&category, &total); err != nil {
			return nil, fmt.Errorf("failed to scan category summary: %w", err)
		}
		summary.ByCategory[category] = total
	}
	return summary, rows.Err()
}

// Ping checks that the database connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	if db.conn == nil {
		return fmt.Errorf("database connection is nil")
	}
	return db.conn.PingContext(ctx)
}

// Close checkpoints and closes the database. The checkpoint flushes the
// WAL so the next startup does not replay it.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := db.conn.ExecContext(ctx, "CHECKPOINT"); err != nil {
		logging.Warn().Err(err).Msg("Failed to checkpoint database before close")
	}

	return db.conn.Close()
}

// scanActivities reads all rows into a slice.
func scanActivities(rows *sql.Rows) ([]Activity, error) {
	var activities []Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.ID, &a.Category, &a.Description, &a.CO2Kg, &a.OccurredAt, &a.LoggedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

// closeQuietly closes a connection ignoring errors during error paths.
func closeQuietly(conn *sql.DB) {
	if conn != nil {
		conn.Close() //nolint:errcheck // Best effort cleanup
	}
}
