// Package store reads transit lines from a network store and writes renamed
// identifiers, descriptions and mode changes back in single batches.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/theoremus-urban-solutions/gtfs-line-ids/config"
)

var (
	// ErrUnknownLine means an update referenced a line that is not in the store
	ErrUnknownLine = errors.New("unknown transit line")
	// ErrDuplicateID means a publish would leave two lines with the same id
	ErrDuplicateID = errors.New("duplicate transit line id")
	// ErrUnsupportedDriver means the configured store driver is not known
	ErrUnsupportedDriver = errors.New("unsupported store driver")
	// ErrStoreNotFound means the configured SQLite file does not exist
	ErrStoreNotFound = errors.New("network store not found")
)

// LineRecord is one transit line with its endpoint coordinates joined in
type LineRecord struct {
	// Seq is the store's natural iteration order
	Seq        int64
	ID         string
	RouteName  string
	AgencyName string
	Mode       string
	Vehicle    int
	FirstNode  int64
	LastNode   int64
	Start      orb.Point
	End        orb.Point
	// HasCoords is false when either endpoint node has no coordinates
	HasCoords bool
	// StopSpacing is the line length divided by its boarding stops
	StopSpacing   float64
	BoardingStops int
	Description   string
}

// IsLoop reports whether the line starts and ends at the same node
func (l LineRecord) IsLoop() bool { return l.FirstNode == l.LastNode }

// LineUpdate replaces the id and description of a line
type LineUpdate struct {
	Seq         int64
	ID          string
	Description string
}

// ModeChange moves a line to another mode and vehicle
type ModeChange struct {
	Seq     int64
	ID      string
	Mode    string
	Vehicle int
}

// Run identifies one published rename pass
type Run struct {
	ID        string
	StartedAt time.Time
}

// RunSummary is a recorded rename run
type RunSummary struct {
	ID        string
	StartedAt time.Time
	Lines     int
}

// LineStore is the network line store
type LineStore interface {
	// Lines returns all lines in natural order
	Lines(ctx context.Context) ([]LineRecord, error)
	// Publish applies all updates and records the run, or nothing on error
	Publish(ctx context.Context, run Run, updates []LineUpdate) error
	// PublishModes applies all mode changes, or nothing on error
	PublishModes(ctx context.Context, changes []ModeChange) error
	Close() error
}

var (
	_ LineStore = (*SQLite)(nil)
	_ LineStore = (*Postgres)(nil)
	_ LineStore = (*Memory)(nil)
)

// Open connects to an existing store. A missing SQLite file is an error,
// the schema is never created here.
func Open(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (LineStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Driver {
	case "sqlite":
		if _, err := os.Stat(cfg.DSN); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrStoreNotFound, cfg.DSN, err)
		}
		return OpenSQLite(cfg.DSN, logger)
	case "postgres":
		return OpenPostgres(ctx, cfg.DSN, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}
}

// Init connects to the configured store, creating the SQLite file if needed,
// and creates any missing network tables
func Init(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (LineStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Driver {
	case "sqlite":
		s, err := OpenSQLite(cfg.DSN, logger)
		if err != nil {
			return nil, err
		}
		if err := s.EnsureSchema(ctx); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	case "postgres":
		p, err := OpenPostgres(ctx, cfg.DSN, logger)
		if err != nil {
			return nil, err
		}
		if err := p.EnsureSchema(ctx); err != nil {
			p.Close()
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}
}

// tempID is the placeholder id a line holds between the two rename phases
func tempID(seq int64) string {
	return fmt.Sprintf("~%d", seq)
}

type scanner interface {
	Scan(dest ...any) error
}

// linesQuery joins endpoint coordinates and segment totals onto each line.
// It is valid for both SQLite and Postgres.
const linesQuery = `
	SELECT
		l.seq, l.line_id, l.route_name, l.agency_name, l.mode, l.vehicle,
		l.first_node, l.last_node, l.description,
		a.x, a.y, b.x, b.y,
		COALESCE(s.total_length, 0), COALESCE(s.stops, 0)
	FROM transit_lines l
	LEFT JOIN nodes a ON a.node_id = l.first_node
	LEFT JOIN nodes b ON b.node_id = l.last_node
	LEFT JOIN (
		SELECT line_seq,
			SUM(length) AS total_length,
			SUM(CASE WHEN is_stop THEN 1 ELSE 0 END) AS stops
		FROM transit_segments
		GROUP BY line_seq
	) s ON s.line_seq = l.seq
	ORDER BY l.seq
`

func scanLine(row scanner) (LineRecord, error) {
	var (
		l              LineRecord
		ax, ay, bx, by *float64
		length         float64
		stops          int64
	)
	err := row.Scan(
		&l.Seq, &l.ID, &l.RouteName, &l.AgencyName, &l.Mode, &l.Vehicle,
		&l.FirstNode, &l.LastNode, &l.Description,
		&ax, &ay, &bx, &by,
		&length, &stops,
	)
	if err != nil {
		return LineRecord{}, fmt.Errorf("failed to scan transit line: %w", err)
	}
	if ax != nil && ay != nil && bx != nil && by != nil {
		l.Start = orb.Point{*ax, *ay}
		l.End = orb.Point{*bx, *by}
		l.HasCoords = true
	}
	l.BoardingStops = int(stops)
	if stops > 0 {
		l.StopSpacing = length / float64(stops)
	}
	return l, nil
}

// checkUnique rejects update batches that assign one id twice
func checkUnique(updates []LineUpdate) error {
	seen := make(map[string]int64, len(updates))
	for _, u := range updates {
		if prev, ok := seen[u.ID]; ok {
			return fmt.Errorf("%w: %q for lines %d and %d", ErrDuplicateID, u.ID, prev, u.Seq)
		}
		seen[u.ID] = u.Seq
	}
	return nil
}
