package gtfs

import (
	"errors"
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/theoremus-urban-solutions/gtfs-line-ids/config"
	"github.com/theoremus-urban-solutions/gtfs-line-ids/zones"
)

// ErrNoStopsInBounds means no feed stop falls inside the zones, usually a
// zone CRS that does not match gtfs.crs
var ErrNoStopsInBounds = errors.New("no stops inside the zoned area")

// FilterOptions selects what the import tool should bring in
type FilterOptions struct {
	// ExcludedAgencyID drops one agency, e.g. the one already in the network
	ExcludedAgencyID string
	RouteTypes       []int
	// Project maps WGS84 [lon, lat] stop coordinates into the zones'
	// coordinate system. Nil keeps [lon, lat].
	Project orb.Projection
}

// Result is the import selection written for the network import tool
type Result struct {
	AgencyIDs  []string `yaml:"agency_ids"`
	RouteTypes []int    `yaml:"route_types"`
	RouteIDs   []string `yaml:"route_ids"`
}

// Filter selects agencies and routes serving the zoned area
type Filter struct {
	zones  *zones.Index
	opts   FilterOptions
	logger *zap.Logger
}

// NewFilter creates a filter over a zone index
func NewFilter(ix *zones.Index, opts FilterOptions, logger *zap.Logger) *Filter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Project == nil {
		opts.Project = func(p orb.Point) orb.Point { return p }
	}
	return &Filter{zones: ix, opts: opts, logger: logger}
}

// NewFilterFromConfig creates a filter from the gtfs configuration,
// projecting stops into the configured zone CRS
func NewFilterFromConfig(ix *zones.Index, cfg config.GTFSConfig, logger *zap.Logger) (*Filter, error) {
	proj, err := zones.Projection(cfg.CRS)
	if err != nil {
		return nil, fmt.Errorf("gtfs.crs: %w", err)
	}
	return NewFilter(ix, FilterOptions{
		ExcludedAgencyID: cfg.ExcludedAgencyID,
		RouteTypes:       cfg.RouteTypes,
		Project:          proj,
	}, logger), nil
}

// InBoundsStops returns the ids of stops inside the zoned area
func (f *Filter) InBoundsStops(feed *Feed) map[string]struct{} {
	in := make(map[string]struct{})
	for _, s := range feed.Stops {
		if f.zones.InBounds(f.opts.Project(orb.Point{s.Lon, s.Lat})) {
			in[s.ID] = struct{}{}
		}
	}
	return in
}

// Apply keeps every agency but the excluded one, and the routes of those
// agencies with a configured route type that have at least one trip serving
// an in-bounds stop. Output order follows the feed.
func (f *Filter) Apply(feed *Feed) (*Result, error) {
	if len(feed.Agencies) == 0 {
		return nil, fmt.Errorf("%w: agency.txt has no rows", ErrMissingFile)
	}
	stops := f.InBoundsStops(feed)
	if len(stops) == 0 && len(feed.Stops) > 0 {
		return nil, fmt.Errorf("%w: 0 of %d stops", ErrNoStopsInBounds, len(feed.Stops))
	}

	res := &Result{AgencyIDs: []string{}, RouteTypes: append([]int{}, f.opts.RouteTypes...), RouteIDs: []string{}}
	agencies := make(map[string]struct{}, len(feed.Agencies))
	for _, a := range feed.Agencies {
		if a.ID == f.opts.ExcludedAgencyID {
			continue
		}
		agencies[a.ID] = struct{}{}
		res.AgencyIDs = append(res.AgencyIDs, a.ID)
	}
	// routes.txt may omit agency_id when the feed has a single agency
	defaultAgency := ""
	if len(feed.Agencies) == 1 {
		defaultAgency = feed.Agencies[0].ID
	}

	types := make(map[int]struct{}, len(f.opts.RouteTypes))
	for _, t := range f.opts.RouteTypes {
		types[t] = struct{}{}
	}

	tripRoute := make(map[string]string, len(feed.Trips))
	for _, t := range feed.Trips {
		tripRoute[t.ID] = t.RouteID
	}
	served := make(map[string]struct{})
	for _, st := range feed.StopTimes {
		if _, ok := stops[st.StopID]; !ok {
			continue
		}
		if route, ok := tripRoute[st.TripID]; ok {
			served[route] = struct{}{}
		}
	}

	for _, r := range feed.Routes {
		agency := r.AgencyID
		if agency == "" {
			agency = defaultAgency
		}
		if _, ok := agencies[agency]; !ok {
			continue
		}
		if _, ok := types[r.Type]; !ok {
			continue
		}
		if _, ok := served[r.ID]; !ok {
			continue
		}
		res.RouteIDs = append(res.RouteIDs, r.ID)
	}

	f.logger.Info("gtfs filter applied",
		zap.Int("stops", len(feed.Stops)),
		zap.Int("stops_in_bounds", len(stops)),
		zap.Int("agencies", len(res.AgencyIDs)),
		zap.Int("routes", len(feed.Routes)),
		zap.Int("routes_selected", len(res.RouteIDs)),
	)
	return res, nil
}

// WriteResult writes the selection as YAML
func WriteResult(name string, res *Result) error {
	data, err := yaml.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode filter result: %w", err)
	}
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return fmt.Errorf("write filter result: %w", err)
	}
	return nil
}
