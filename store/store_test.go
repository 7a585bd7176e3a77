package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/gtfs-line-ids/config"
)

func openTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	ctx := context.Background()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "network.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.EnsureSchema(ctx))

	stmts := []string{
		`INSERT INTO nodes (node_id, x, y) VALUES (1, 0, 0), (2, 1000, 0), (3, 500, 500)`,
		`INSERT INTO transit_lines (seq, line_id, route_name, agency_name, mode, vehicle, first_node, last_node)
		 VALUES
			(10, 'gtfs_a', '12 - Stationtown - Lakeside', 'Local Co', 'd', 3, 1, 2),
			(20, 'gtfs_b', '12 - Lakeside - Stationtown', 'Local Co', 'd', 3, 2, 1),
			(30, 'gtfs_c', 'Loop', 'Local Co', 'b', 1, 3, 3),
			(40, 'gtfs_d', 'Nowhere', 'Local Co', 'd', 3, 1, 99)`,
		`INSERT INTO transit_segments (line_seq, seq, length, is_stop)
		 VALUES (10, 1, 400, 1), (10, 2, 600, 1), (10, 3, 0, 0), (20, 1, 1000, 0)`,
	}
	for _, q := range stmts {
		_, err := s.Conn().ExecContext(ctx, q)
		require.NoError(t, err)
	}
	return s
}

func TestSQLiteLines(t *testing.T) {
	s := openTestSQLite(t)
	lines, err := s.Lines(context.Background())
	require.NoError(t, err)
	require.Len(t, lines, 4)

	assert.Equal(t, []int64{10, 20, 30, 40}, []int64{lines[0].Seq, lines[1].Seq, lines[2].Seq, lines[3].Seq})

	a := lines[0]
	assert.Equal(t, "gtfs_a", a.ID)
	assert.Equal(t, "12 - Stationtown - Lakeside", a.RouteName)
	assert.Equal(t, "Local Co", a.AgencyName)
	assert.Equal(t, "d", a.Mode)
	assert.Equal(t, 3, a.Vehicle)
	assert.True(t, a.HasCoords)
	assert.Equal(t, orb.Point{0, 0}, a.Start)
	assert.Equal(t, orb.Point{1000, 0}, a.End)
	assert.Equal(t, 2, a.BoardingStops)
	assert.InDelta(t, 500, a.StopSpacing, 1e-9)

	assert.Equal(t, 0, lines[1].BoardingStops, "segments without boarding stops")
	assert.Zero(t, lines[1].StopSpacing)

	assert.True(t, lines[2].IsLoop())
	assert.False(t, lines[3].HasCoords, "last node has no coordinates")
}

func TestSQLitePublishSwapsIDs(t *testing.T) {
	ctx := context.Background()
	s := openTestSQLite(t)
	run := Run{ID: uuid.NewString(), StartedAt: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)}

	err := s.Publish(ctx, run, []LineUpdate{
		{Seq: 10, ID: "gtfs_b", Description: "Stationtown-Lakeside"},
		{Seq: 20, ID: "gtfs_a", Description: "Lakeside-Stationtown"},
	})
	require.NoError(t, err)

	lines, err := s.Lines(ctx)
	require.NoError(t, err)
	assert.Equal(t, "gtfs_b", lines[0].ID)
	assert.Equal(t, "Stationtown-Lakeside", lines[0].Description)
	assert.Equal(t, "gtfs_a", lines[1].ID)

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
	assert.True(t, run.StartedAt.Equal(runs[0].StartedAt))
	assert.Equal(t, 2, runs[0].Lines)
}

func TestSQLitePublishIsAtomic(t *testing.T) {
	ctx := context.Background()
	s := openTestSQLite(t)

	tests := []struct {
		name    string
		updates []LineUpdate
		want    error
	}{
		{
			name:    "unknown line",
			updates: []LineUpdate{{Seq: 10, ID: "L0121"}, {Seq: 99, ID: "L0122"}},
			want:    ErrUnknownLine,
		},
		{
			name:    "duplicate in batch",
			updates: []LineUpdate{{Seq: 10, ID: "L0121"}, {Seq: 20, ID: "L0121"}},
			want:    ErrDuplicateID,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Publish(ctx, Run{ID: uuid.NewString(), StartedAt: time.Now()}, tt.updates)
			require.ErrorIs(t, err, tt.want)

			lines, err := s.Lines(ctx)
			require.NoError(t, err)
			assert.Equal(t, "gtfs_a", lines[0].ID)
			runs, err := s.Runs(ctx)
			require.NoError(t, err)
			assert.Empty(t, runs)
		})
	}

	// clashes with a line outside the batch
	err := s.Publish(ctx, Run{ID: uuid.NewString(), StartedAt: time.Now()}, []LineUpdate{{Seq: 10, ID: "gtfs_c"}})
	require.Error(t, err)
	lines, err := s.Lines(ctx)
	require.NoError(t, err)
	assert.Equal(t, "gtfs_a", lines[0].ID)
}

func TestSQLitePublishModes(t *testing.T) {
	ctx := context.Background()
	s := openTestSQLite(t)

	require.NoError(t, s.PublishModes(ctx, []ModeChange{{Seq: 10, ID: "gtfs_a", Mode: "e", Vehicle: 5}}))
	err := s.PublishModes(ctx, []ModeChange{{Seq: 20, ID: "gtfs_b", Mode: "e", Vehicle: 5}, {Seq: 77, ID: "x", Mode: "e"}})
	require.ErrorIs(t, err, ErrUnknownLine)

	lines, err := s.Lines(ctx)
	require.NoError(t, err)
	assert.Equal(t, "e", lines[0].Mode)
	assert.Equal(t, 5, lines[0].Vehicle)
	assert.Equal(t, "d", lines[1].Mode, "failed batch is rolled back")
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemory([]LineRecord{
		{Seq: 2, ID: "b", Mode: "d"},
		{Seq: 1, ID: "a", Mode: "d"},
		{Seq: 3, ID: "c", Mode: "d"},
	})

	lines, err := m.Lines(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", lines[0].ID, "lines are kept in seq order")

	err = m.Publish(ctx, Run{ID: "r1"}, []LineUpdate{{Seq: 1, ID: "c"}})
	require.ErrorIs(t, err, ErrDuplicateID)

	err = m.Publish(ctx, Run{ID: "r1"}, []LineUpdate{{Seq: 1, ID: "b"}, {Seq: 2, ID: "a", Description: "x"}})
	require.NoError(t, err)
	lines, err = m.Lines(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, []string{lines[0].ID, lines[1].ID, lines[2].ID})
	assert.Equal(t, "x", lines[1].Description)

	require.ErrorIs(t, m.PublishModes(ctx, []ModeChange{{Seq: 9, Mode: "e"}}), ErrUnknownLine)
	require.NoError(t, m.PublishModes(ctx, []ModeChange{{Seq: 3, Mode: "e", Vehicle: 12}}))
	lines, err = m.Lines(ctx)
	require.NoError(t, err)
	assert.Equal(t, "e", lines[2].Mode)
	assert.Equal(t, 12, lines[2].Vehicle)

	runs, err := m.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 2, runs[0].Lines)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	_, err := Open(ctx, config.StoreConfig{Driver: "oracle", DSN: "x"}, nil)
	require.ErrorIs(t, err, ErrUnsupportedDriver)

	path := filepath.Join(t.TempDir(), "n.db")
	s, err := Init(ctx, config.StoreConfig{Driver: "sqlite", DSN: path}, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(ctx, config.StoreConfig{Driver: "sqlite", DSN: path}, nil)
	require.NoError(t, err)
	defer s.Close()
	lines, err := s.Lines(ctx)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestOpenMissingSQLiteFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "missing.db")

	_, err := Open(ctx, config.StoreConfig{Driver: "sqlite", DSN: path}, nil)
	require.ErrorIs(t, err, ErrStoreNotFound)
	require.ErrorIs(t, err, os.ErrNotExist)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "Open must not create the file")
}
