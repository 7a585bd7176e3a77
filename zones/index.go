package zones

import (
	"errors"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// ErrNoZones is returned when a boundary collection yields no usable polygons
var ErrNoZones = errors.New("zones: no polygons in boundary collection")

// Zone is a named operating-area polygon
type Zone struct {
	Name       string
	Properties map[string]any
	Geometry   orb.MultiPolygon
	bound      orb.Bound
}

// NewZone repairs the geometry and precomputes its bounding box
func NewZone(name string, geom orb.MultiPolygon, props map[string]any) *Zone {
	repaired := repairMultiPolygon(geom)
	return &Zone{
		Name:       name,
		Properties: props,
		Geometry:   repaired,
		bound:      repaired.Bound(),
	}
}

// Contains reports whether p lies inside or on the boundary of the zone
func (z *Zone) Contains(p orb.Point) bool {
	if len(z.Geometry) == 0 || !z.bound.Contains(p) {
		return false
	}
	return planar.MultiPolygonContains(z.Geometry, p)
}

// Bound returns the zone's bounding box
func (z *Zone) Bound() orb.Bound { return z.bound }

// Index is an ordered, immutable set of zones
type Index struct {
	zones []*Zone
	bound orb.Bound
}

// New builds an index, dropping zones whose geometry did not survive repair
func New(zs []*Zone) (*Index, error) {
	ix := &Index{zones: make([]*Zone, 0, len(zs))}
	for _, z := range zs {
		if z == nil || len(z.Geometry) == 0 {
			continue
		}
		if len(ix.zones) == 0 {
			ix.bound = z.bound
		} else {
			ix.bound = ix.bound.Union(z.bound)
		}
		ix.zones = append(ix.zones, z)
	}
	if len(ix.zones) == 0 {
		return nil, ErrNoZones
	}
	return ix, nil
}

// Zones returns the zones in source enumeration order
func (ix *Index) Zones() []*Zone { return ix.zones }

// Len returns the number of zones
func (ix *Index) Len() int { return len(ix.zones) }

// Bound returns the bounding box of all zones
func (ix *Index) Bound() orb.Bound { return ix.bound }

// Locate returns the first zone, in enumeration order, that contains or
// touches p.
func (ix *Index) Locate(p orb.Point) (*Zone, bool) {
	if !ix.bound.Contains(p) {
		return nil, false
	}
	for _, z := range ix.zones {
		if z.Contains(p) {
			return z, true
		}
	}
	return nil, false
}

// InBounds reports whether p lies inside the union of all zones
func (ix *Index) InBounds(p orb.Point) bool {
	_, ok := ix.Locate(p)
	return ok
}
