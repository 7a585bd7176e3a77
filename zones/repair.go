package zones

import (
	"math"

	"github.com/paulmach/orb"
)

func repairMultiPolygon(mp orb.MultiPolygon) orb.MultiPolygon {
	out := make(orb.MultiPolygon, 0, len(mp))
	for _, p := range mp {
		if rp := repairPolygon(p); rp != nil {
			out = append(out, rp)
		}
	}
	return out
}

// repairPolygon drops the polygon when its outer ring is unusable; broken
// holes are dropped on their own.
func repairPolygon(p orb.Polygon) orb.Polygon {
	if len(p) == 0 {
		return nil
	}
	outer := repairRing(p[0])
	if outer == nil {
		return nil
	}
	out := orb.Polygon{outer}
	for _, hole := range p[1:] {
		if r := repairRing(hole); r != nil {
			out = append(out, r)
		}
	}
	return out
}

func repairRing(r orb.Ring) orb.Ring {
	out := make(orb.Ring, 0, len(r)+1)
	for _, pt := range r {
		if !finite(pt) {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Equal(pt) {
			continue
		}
		out = append(out, pt)
	}
	if len(out) > 1 && !out[0].Equal(out[len(out)-1]) {
		out = append(out, out[0])
	}
	if len(out) < 4 {
		return nil
	}
	return out
}

func finite(p orb.Point) bool {
	return !math.IsNaN(p[0]) && !math.IsNaN(p[1]) && !math.IsInf(p[0], 0) && !math.IsInf(p[1], 0)
}
