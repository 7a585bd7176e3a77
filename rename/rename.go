// Package rename runs a renaming pass over the transit lines of a network
// store: every line of a renamed mode gets an area letter, a direction and a
// unique number, and the whole batch is published at once.
package rename

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/theoremus-urban-solutions/gtfs-line-ids/classify"
	"github.com/theoremus-urban-solutions/gtfs-line-ids/config"
	"github.com/theoremus-urban-solutions/gtfs-line-ids/registry"
	"github.com/theoremus-urban-solutions/gtfs-line-ids/routename"
	"github.com/theoremus-urban-solutions/gtfs-line-ids/store"
	"github.com/theoremus-urban-solutions/gtfs-line-ids/zones"
)

// Options contains the orchestration parameters
type Options struct {
	// Modes lists the line modes that are renamed
	Modes    []string
	Registry registry.Options
	// DescriptionMaxLength caps the written description, in characters
	DescriptionMaxLength int
}

// Assignment is the planned identity of one line
type Assignment struct {
	Seq         int64
	OldID       string
	NewID       string
	RouteName   string
	Letter      string
	Direction   classify.Direction
	Number      string
	Rule        registry.Rule
	Description string
}

// Plan is the result of a renaming pass before it is published
type Plan struct {
	RunID       string
	StartedAt   time.Time
	Assignments []Assignment
}

// Updates converts the plan into store updates
func (p *Plan) Updates() []store.LineUpdate {
	out := make([]store.LineUpdate, len(p.Assignments))
	for i, a := range p.Assignments {
		out[i] = store.LineUpdate{Seq: a.Seq, ID: a.NewID, Description: a.Description}
	}
	return out
}

// Renamer plans and publishes renaming passes
type Renamer struct {
	area      *classify.AreaClassifier
	direction classify.DirectionClassifier
	opts      Options
	modes     map[string]struct{}
	logger    *zap.Logger

	now   func() time.Time
	newID func() string
}

// New creates a renamer from its classifiers
func New(area *classify.AreaClassifier, direction classify.DirectionClassifier, opts Options, logger *zap.Logger) *Renamer {
	if logger == nil {
		logger = zap.NewNop()
	}
	modes := make(map[string]struct{}, len(opts.Modes))
	for _, m := range opts.Modes {
		modes[m] = struct{}{}
	}
	return &Renamer{
		area:      area,
		direction: direction,
		opts:      opts,
		modes:     modes,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// NewFromConfig creates a renamer from the naming and zone configuration
func NewFromConfig(ix *zones.Index, cfg *config.AppConfig, logger *zap.Logger) *Renamer {
	n := cfg.Naming
	area := classify.NewAreaClassifier(ix, classify.AreaConfig{
		ShortCodes:         cfg.Zones.ShortCodes,
		LongDistanceMarker: n.LongDistance.Marker,
		LongDistanceLetter: n.LongDistance.Letter,
		FallbackLetter:     n.FallbackLetter,
	})
	direction := classify.DirectionClassifier{Reference: n.Reference.Orb()}
	return New(area, direction, Options{
		Modes: n.RenameModes,
		Registry: registry.Options{
			CounterStart: n.Counter(),
			PadWidth:     n.PadWidth,
			Suffix:       n.DisambiguationSuffix,
		},
		DescriptionMaxLength: n.DescriptionMaxLength,
	}, logger)
}

// Renames reports whether lines of a mode are renamed
func (r *Renamer) Renames(mode string) bool {
	_, ok := r.modes[mode]
	return ok
}

// Plan resolves new identities for all lines of the renamed modes, in the
// order given. The first classification or parse error aborts the plan.
func (r *Renamer) Plan(lines []store.LineRecord) (*Plan, error) {
	plan := &Plan{RunID: r.newID(), StartedAt: r.now()}
	log := r.logger.With(zap.String("run_id", plan.RunID))
	reg := registry.New(r.opts.Registry)

	for _, l := range lines {
		if !r.Renames(l.Mode) {
			reg.Reserve(l.ID)
		}
	}

	rules := make(map[registry.Rule]int)
	for _, l := range lines {
		if !r.Renames(l.Mode) {
			continue
		}
		a, err := r.assign(reg, l)
		if err != nil {
			return nil, fmt.Errorf("line %q (%q): %w", l.ID, l.RouteName, err)
		}
		rules[a.Rule]++
		log.Debug("line renamed",
			zap.String("line", l.ID),
			zap.String("route_name", l.RouteName),
			zap.String("letter", a.Letter),
			zap.Stringer("direction", a.Direction),
			zap.String("number", a.Number),
			zap.Stringer("rule", a.Rule),
			zap.String("new_id", a.NewID),
		)
		plan.Assignments = append(plan.Assignments, a)
	}

	fields := []zap.Field{zap.Int("lines", len(lines)), zap.Int("renamed", len(plan.Assignments))}
	for rule := registry.RuleOppositeDirection; rule <= registry.RuleCounter; rule++ {
		if n := rules[rule]; n > 0 {
			fields = append(fields, zap.Int(rule.String(), n))
		}
	}
	log.Info("rename plan ready", fields...)
	return plan, nil
}

func (r *Renamer) assign(reg *registry.Registry, l store.LineRecord) (Assignment, error) {
	if !l.HasCoords {
		return Assignment{}, fmt.Errorf("nodes %d, %d: %w", l.FirstNode, l.LastNode, classify.ErrMissingCoordinates)
	}
	letter, err := r.area.Classify(l.Start, l.End, l.AgencyName)
	if err != nil {
		return Assignment{}, err
	}
	dir := r.direction.Classify(l.FirstNode, l.LastNode, l.Start, l.End)
	parsed := routename.Parse(l.RouteName)

	res, err := reg.Resolve(registry.Candidate{
		Letter:      letter,
		Direction:   dir,
		Token:       parsed.Number,
		Description: parsed.Description(),
		Reversed:    parsed.Reversed(),
	})
	if err != nil {
		return Assignment{}, err
	}
	return Assignment{
		Seq:         l.Seq,
		OldID:       l.ID,
		NewID:       res.ID,
		RouteName:   l.RouteName,
		Letter:      letter,
		Direction:   dir,
		Number:      res.Number,
		Rule:        res.Rule,
		Description: CompactDescription(parsed.Segments, r.opts.DescriptionMaxLength),
	}, nil
}

// Run plans a renaming pass over the store and publishes it unless dryRun
// is set. Nothing is written when planning fails.
func (r *Renamer) Run(ctx context.Context, st store.LineStore, dryRun bool) (*Plan, error) {
	lines, err := st.Lines(ctx)
	if err != nil {
		return nil, fmt.Errorf("read lines: %w", err)
	}
	plan, err := r.Plan(lines)
	if err != nil {
		return nil, err
	}
	if dryRun {
		r.logger.Info("dry run, nothing published", zap.String("run_id", plan.RunID))
		return plan, nil
	}
	run := store.Run{ID: plan.RunID, StartedAt: plan.StartedAt}
	if err := st.Publish(ctx, run, plan.Updates()); err != nil {
		return nil, fmt.Errorf("publish: %w", err)
	}
	return plan, nil
}

// CompactDescription joins route segments with a bare dash, skipping a
// leading empty segment, and truncates the result to max characters.
// A max of zero disables truncation.
func CompactDescription(segments []string, max int) string {
	if len(segments) > 0 && segments[0] == "" {
		segments = segments[1:]
	}
	desc := strings.Join(segments, "-")
	if max > 0 {
		if runes := []rune(desc); len(runes) > max {
			desc = string(runes[:max])
		}
	}
	return desc
}
