package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// schemaSQL is the SQLite network schema
//
//go:embed schema.sql
var schemaSQL string

// SQLite is a line store backed by a local SQLite network export
type SQLite struct {
	conn   *sql.DB
	logger *zap.Logger
}

// OpenSQLite opens a SQLite database with foreign keys enabled
func OpenSQLite(path string, logger *zap.Logger) (*SQLite, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One writer at a time; publishes run in a single transaction anyway.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(time.Hour)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("connected to SQLite network store", zap.String("path", path))
	return &SQLite{conn: conn, logger: logger}, nil
}

// Close closes the database connection
func (s *SQLite) Close() error {
	return s.conn.Close()
}

// Conn returns the underlying connection
func (s *SQLite) Conn() *sql.DB {
	return s.conn
}

// EnsureSchema creates the network tables if they don't exist
func (s *SQLite) EnsureSchema(ctx context.Context) error {
	if _, err := s.conn.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Lines returns all transit lines ordered by seq
func (s *SQLite) Lines(ctx context.Context) ([]LineRecord, error) {
	rows, err := s.conn.QueryContext(ctx, linesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query transit lines: %w", err)
	}
	defer rows.Close()

	var lines []LineRecord
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transit lines: %w", err)
	}
	return lines, nil
}

// Publish renames lines in two phases so that ids may be permuted between
// lines without tripping the unique constraint, then records the run
func (s *SQLite) Publish(ctx context.Context, run Run, updates []LineUpdate) error {
	if err := checkUnique(updates); err != nil {
		return err
	}
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	park, err := tx.PrepareContext(ctx, "UPDATE transit_lines SET line_id = ? WHERE seq = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare park statement: %w", err)
	}
	defer park.Close()

	for _, u := range updates {
		res, err := park.ExecContext(ctx, tempID(u.Seq), u.Seq)
		if err != nil {
			return fmt.Errorf("failed to park line %d: %w", u.Seq, err)
		}
		if n, err := res.RowsAffected(); err != nil || n != 1 {
			return fmt.Errorf("%w: seq %d", ErrUnknownLine, u.Seq)
		}
	}

	rename, err := tx.PrepareContext(ctx, "UPDATE transit_lines SET line_id = ?, description = ? WHERE seq = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare rename statement: %w", err)
	}
	defer rename.Close()

	for _, u := range updates {
		if _, err := rename.ExecContext(ctx, u.ID, u.Description, u.Seq); err != nil {
			return fmt.Errorf("failed to rename line %d to %q: %w", u.Seq, u.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO rename_runs (run_id, started_at_utc, lines_renamed) VALUES (?, ?, ?)",
		run.ID, run.StartedAt.UTC().Format(time.RFC3339), len(updates),
	)
	if err != nil {
		return fmt.Errorf("failed to record rename run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rename: %w", err)
	}
	s.logger.Info("published renamed lines", zap.String("run_id", run.ID), zap.Int("lines", len(updates)))
	return nil
}

// PublishModes applies mode and vehicle changes in one transaction
func (s *SQLite) PublishModes(ctx context.Context, changes []ModeChange) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "UPDATE transit_lines SET mode = ?, vehicle = ? WHERE seq = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare mode statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range changes {
		res, err := stmt.ExecContext(ctx, c.Mode, c.Vehicle, c.Seq)
		if err != nil {
			return fmt.Errorf("failed to change mode of line %q: %w", c.ID, err)
		}
		if n, err := res.RowsAffected(); err != nil || n != 1 {
			return fmt.Errorf("%w: seq %d", ErrUnknownLine, c.Seq)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit mode changes: %w", err)
	}
	s.logger.Info("published mode changes", zap.Int("lines", len(changes)))
	return nil
}

// Runs returns the recorded rename runs, oldest first
func (s *SQLite) Runs(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.conn.QueryContext(ctx,
		"SELECT run_id, started_at_utc, lines_renamed FROM rename_runs ORDER BY started_at_utc, run_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query rename runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var (
			r       RunSummary
			started string
		)
		if err := rows.Scan(&r.ID, &started, &r.Lines); err != nil {
			return nil, fmt.Errorf("failed to scan rename run: %w", err)
		}
		if r.StartedAt, err = time.Parse(time.RFC3339, started); err != nil {
			return nil, fmt.Errorf("invalid start time for run %s: %w", r.ID, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
