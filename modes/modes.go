// Package modes moves renamed lines with sparse stops, or run by the
// long-distance operator, from the local bus mode to the express mode.
package modes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/theoremus-urban-solutions/gtfs-line-ids/config"
	"github.com/theoremus-urban-solutions/gtfs-line-ids/store"
)

// ErrNoVehicle means no vehicle is configured for the target mode
var ErrNoVehicle = errors.New("no vehicle configured for target mode")

// Reason explains why a line changes mode
type Reason string

const (
	ReasonStopSpacing  Reason = "stop-spacing"
	ReasonLongDistance Reason = "long-distance"
)

// Options contains the reassignment rules
type Options struct {
	SourceMode    string
	TargetMode    string
	TargetVehicle int
	// StopDistance is the average stop spacing above which a line is moved
	StopDistance float64
	// LongDistanceLetter is the area letter of long-distance line ids
	LongDistanceLetter string
	// LongDistanceAgency lines get LongDistanceVehicle instead of TargetVehicle
	LongDistanceAgency  string
	LongDistanceVehicle int
}

// Change is a planned mode change with its reason
type Change struct {
	store.ModeChange
	Reason Reason
}

// Reassigner plans and publishes mode changes
type Reassigner struct {
	opts   Options
	logger *zap.Logger
}

// New creates a reassigner
func New(opts Options, logger *zap.Logger) *Reassigner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reassigner{opts: opts, logger: logger}
}

// NewFromConfig creates a reassigner from the modes and naming configuration
func NewFromConfig(cfg *config.AppConfig, logger *zap.Logger) (*Reassigner, error) {
	m := cfg.Modes
	vehicle, ok := m.VehicleIDs[m.TargetMode]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoVehicle, m.TargetMode)
	}
	return New(Options{
		SourceMode:          m.SourceMode,
		TargetMode:          m.TargetMode,
		TargetVehicle:       vehicle,
		StopDistance:        m.StopDistance,
		LongDistanceLetter:  cfg.Naming.LongDistance.Letter,
		LongDistanceAgency:  m.LongDistanceAgency,
		LongDistanceVehicle: m.LongDistanceVehicle,
	}, logger), nil
}

// Plan returns the mode changes for lines of the source mode, in store order.
// Lines without boarding stops have no spacing and only move as long-distance
// lines.
func (r *Reassigner) Plan(lines []store.LineRecord) []Change {
	var changes []Change
	for _, l := range lines {
		if l.Mode != r.opts.SourceMode {
			continue
		}
		longDistance := r.opts.LongDistanceLetter != "" && strings.HasPrefix(l.ID, r.opts.LongDistanceLetter)
		var reason Reason
		switch {
		case l.BoardingStops > 0 && l.StopSpacing > r.opts.StopDistance:
			reason = ReasonStopSpacing
		case longDistance:
			reason = ReasonLongDistance
		default:
			continue
		}
		vehicle := r.opts.TargetVehicle
		if longDistance && r.opts.LongDistanceAgency != "" && l.AgencyName == r.opts.LongDistanceAgency {
			vehicle = r.opts.LongDistanceVehicle
		}
		changes = append(changes, Change{
			ModeChange: store.ModeChange{Seq: l.Seq, ID: l.ID, Mode: r.opts.TargetMode, Vehicle: vehicle},
			Reason:     reason,
		})
		r.logger.Debug("line changes mode",
			zap.String("line", l.ID),
			zap.String("reason", string(reason)),
			zap.Float64("stop_spacing", l.StopSpacing),
			zap.Int("vehicle", vehicle),
		)
	}
	return changes
}

// Run plans mode changes over the store and publishes them unless dryRun
// is set
func (r *Reassigner) Run(ctx context.Context, st store.LineStore, dryRun bool) ([]Change, error) {
	lines, err := st.Lines(ctx)
	if err != nil {
		return nil, fmt.Errorf("read lines: %w", err)
	}
	changes := r.Plan(lines)
	r.logger.Info("mode changes planned",
		zap.Int("lines", len(lines)),
		zap.Int("changes", len(changes)),
		zap.Bool("dry_run", dryRun),
	)
	if dryRun || len(changes) == 0 {
		return changes, nil
	}
	out := make([]store.ModeChange, len(changes))
	for i, c := range changes {
		out[i] = c.ModeChange
	}
	if err := st.PublishModes(ctx, out); err != nil {
		return nil, fmt.Errorf("publish modes: %w", err)
	}
	return changes, nil
}
