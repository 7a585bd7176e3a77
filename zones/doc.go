/*
Package zones provides the operating-area index used to classify transit lines.

An index is built once from a GeoJSON FeatureCollection where each feature is
an administrative area polygon (Polygon, MultiPolygon or a GeometryCollection
of those). Rings are repaired on load: unclosed rings are closed, repeated and
non-finite vertices are dropped and rings that collapse below four vertices are
discarded. Containment uses even-odd ray casting, so self-intersecting rings
resolve to their enclosed lobes.

Zones keep the enumeration order of the source collection. That order is part
of the classification contract and must not be changed.

	ix, err := zones.Load("helmet_zones.geojson", "KUNTANIMI")
	if err != nil {
	    log.Fatal(err)
	}
	if z, ok := ix.Locate(orb.Point{25496699, 6673208}); ok {
	    fmt.Println(z.Name)
	}

The index is immutable after construction and safe for concurrent reads.
*/
package zones
