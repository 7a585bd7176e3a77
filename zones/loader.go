package zones

import (
	"fmt"
	"os"
	"strconv"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
)

// Load reads a GeoJSON FeatureCollection from disk and builds an index.
// nameProperty names the feature property holding the area name.
func Load(path, nameProperty string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read boundary file: %w", err)
	}
	ix, err := Decode(data, nameProperty)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ix, nil
}

// Decode builds an index from GeoJSON bytes
func Decode(data []byte, nameProperty string) (*Index, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode boundary collection: %w", err)
	}
	zs := make([]*Zone, 0, len(fc.Features))
	for i, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		name, ok := propertyString(f.Properties, nameProperty)
		if !ok {
			return nil, fmt.Errorf("feature %d: missing %q property", i, nameProperty)
		}
		mp, err := toMultiPolygon(f.Geometry)
		if err != nil {
			return nil, fmt.Errorf("feature %d (%s): %w", i, name, err)
		}
		zs = append(zs, NewZone(name, mp, f.Properties))
	}
	return New(zs)
}

func propertyString(props map[string]any, key string) (string, bool) {
	v, ok := props[key]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		return fmt.Sprint(t), true
	}
}

func toMultiPolygon(g *geojson.Geometry) (orb.MultiPolygon, error) {
	switch g.Type {
	case geojson.GeometryPolygon:
		return orb.MultiPolygon{toPolygon(g.Polygon)}, nil
	case geojson.GeometryMultiPolygon:
		mp := make(orb.MultiPolygon, 0, len(g.MultiPolygon))
		for _, p := range g.MultiPolygon {
			mp = append(mp, toPolygon(p))
		}
		return mp, nil
	case geojson.GeometryCollection:
		var mp orb.MultiPolygon
		for _, sub := range g.Geometries {
			part, err := toMultiPolygon(sub)
			if err != nil {
				return nil, err
			}
			mp = append(mp, part...)
		}
		return mp, nil
	default:
		return nil, fmt.Errorf("unsupported geometry type %q", g.Type)
	}
}

func toPolygon(rings [][][]float64) orb.Polygon {
	p := make(orb.Polygon, 0, len(rings))
	for _, r := range rings {
		ring := make(orb.Ring, 0, len(r))
		for _, c := range r {
			if len(c) < 2 {
				continue
			}
			ring = append(ring, orb.Point{c[0], c[1]})
		}
		p = append(p, ring)
	}
	return p
}
