package modes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/gtfs-line-ids/config"
	"github.com/theoremus-urban-solutions/gtfs-line-ids/store"
)

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		Naming: config.NamingConfig{LongDistance: config.LongDistanceConfig{Marker: "OnniBus", Letter: "O"}},
		Modes: config.ModesConfig{
			SourceMode:          "d",
			TargetMode:          "e",
			StopDistance:        800,
			VehicleIDs:          map[string]int{"d": 3, "e": 5},
			LongDistanceAgency:  "OnniBus MEGA",
			LongDistanceVehicle: 12,
		},
	}
}

func testLines() []store.LineRecord {
	return []store.LineRecord{
		{Seq: 1, ID: "L0121", Mode: "d", Vehicle: 3, StopSpacing: 400, BoardingStops: 10},
		{Seq: 2, ID: "L0131", Mode: "d", Vehicle: 3, StopSpacing: 1200, BoardingStops: 4},
		{Seq: 3, ID: "L0141", Mode: "d", Vehicle: 3, StopSpacing: 800, BoardingStops: 4},
		{Seq: 4, ID: "OM121", Mode: "d", Vehicle: 3, AgencyName: "OnniBus MEGA", StopSpacing: 5000, BoardingStops: 3},
		{Seq: 5, ID: "O0201", Mode: "d", Vehicle: 3, AgencyName: "OnniBus", StopSpacing: 100, BoardingStops: 3},
		{Seq: 6, ID: "V1001", Mode: "d", Vehicle: 3},
		{Seq: 7, ID: "L0151", Mode: "e", Vehicle: 5, StopSpacing: 2000, BoardingStops: 2},
	}
}

func TestPlan(t *testing.T) {
	r, err := NewFromConfig(testConfig(), nil)
	require.NoError(t, err)

	changes := r.Plan(testLines())
	assert.Equal(t, []Change{
		{ModeChange: store.ModeChange{Seq: 2, ID: "L0131", Mode: "e", Vehicle: 5}, Reason: ReasonStopSpacing},
		{ModeChange: store.ModeChange{Seq: 4, ID: "OM121", Mode: "e", Vehicle: 12}, Reason: ReasonStopSpacing},
		{ModeChange: store.ModeChange{Seq: 5, ID: "O0201", Mode: "e", Vehicle: 5}, Reason: ReasonLongDistance},
	}, changes)
}

func TestNewFromConfigRequiresVehicle(t *testing.T) {
	cfg := testConfig()
	delete(cfg.Modes.VehicleIDs, "e")
	_, err := NewFromConfig(cfg, nil)
	require.ErrorIs(t, err, ErrNoVehicle)
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	r, err := NewFromConfig(testConfig(), nil)
	require.NoError(t, err)

	st := store.NewMemory(testLines())
	changes, err := r.Run(ctx, st, true)
	require.NoError(t, err)
	assert.Len(t, changes, 3)
	lines, err := st.Lines(ctx)
	require.NoError(t, err)
	assert.Equal(t, "d", lines[1].Mode, "dry run")

	_, err = r.Run(ctx, st, false)
	require.NoError(t, err)
	lines, err = st.Lines(ctx)
	require.NoError(t, err)
	modes := []string{}
	for _, l := range lines {
		modes = append(modes, l.Mode)
	}
	assert.Equal(t, []string{"d", "e", "d", "e", "e", "d", "e"}, modes)
	assert.Equal(t, 12, lines[3].Vehicle)

	changes, err = r.Run(ctx, st, false)
	require.NoError(t, err)
	assert.Empty(t, changes, "second pass finds nothing left to move")
}
