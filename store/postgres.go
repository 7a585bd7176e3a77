package store

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

//go:embed schema_postgres.sql
var postgresSchemaSQL string

// Postgres is a line store backed by a shared Postgres network database
type Postgres struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// OpenPostgres creates a connection pool and checks connectivity
func OpenPostgres(ctx context.Context, databaseURL string, logger *zap.Logger) (*Postgres, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("connected to Postgres network store")
	return &Postgres{pool: pool, logger: logger}, nil
}

// Close closes the connection pool
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// EnsureSchema creates the network tables if they don't exist
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, postgresSchemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Lines returns all transit lines ordered by seq
func (p *Postgres) Lines(ctx context.Context) ([]LineRecord, error) {
	rows, err := p.pool.Query(ctx, linesQuery)
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

// Publish renames lines in two phases inside one transaction and records
// the run
func (p *Postgres) Publish(ctx context.Context, run Run, updates []LineUpdate) error {
	if err := checkUnique(updates); err != nil {
		return err
	}
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, u := range updates {
		tag, err := tx.Exec(ctx, "UPDATE transit_lines SET line_id = $1 WHERE seq = $2", tempID(u.Seq), u.Seq)
		if err != nil {
			return fmt.Errorf("failed to park line %d: %w", u.Seq, err)
		}
		if tag.RowsAffected() != 1 {
			return fmt.Errorf("%w: seq %d", ErrUnknownLine, u.Seq)
		}
	}

	batch := &pgx.Batch{}
	for _, u := range updates {
		batch.Queue("UPDATE transit_lines SET line_id = $1, description = $2 WHERE seq = $3", u.ID, u.Description, u.Seq)
	}
	batch.Queue("INSERT INTO rename_runs (run_id, started_at_utc, lines_renamed) VALUES ($1, $2, $3)",
		run.ID, run.StartedAt.UTC(), len(updates))
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to rename lines: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit rename: %w", err)
	}
	p.logger.Info("published renamed lines", zap.String("run_id", run.ID), zap.Int("lines", len(updates)))
	return nil
}

// PublishModes applies mode and vehicle changes in one transaction
func (p *Postgres) PublishModes(ctx context.Context, changes []ModeChange) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, c := range changes {
		tag, err := tx.Exec(ctx, "UPDATE transit_lines SET mode = $1, vehicle = $2 WHERE seq = $3", c.Mode, c.Vehicle, c.Seq)
		if err != nil {
			return fmt.Errorf("failed to change mode of line %q: %w", c.ID, err)
		}
		if tag.RowsAffected() != 1 {
			return fmt.Errorf("%w: seq %d", ErrUnknownLine, c.Seq)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit mode changes: %w", err)
	}
	p.logger.Info("published mode changes", zap.Int("lines", len(changes)))
	return nil
}

// Runs returns the recorded rename runs, oldest first
func (p *Postgres) Runs(ctx context.Context) ([]RunSummary, error) {
	rows, err := p.pool.Query(ctx,
		"SELECT run_id::text, started_at_utc, lines_renamed FROM rename_runs ORDER BY started_at_utc, run_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query rename runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.Lines); err != nil {
			return nil, fmt.Errorf("failed to scan rename run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
