/*
Package gtfs loads the parts of a static GTFS feed needed to decide which
agencies, route types and routes the network import tool should bring in.

# Basic Usage

	feed, err := gtfs.LoadFile("gtfs.zip")
	if err != nil {
	    log.Fatal(err)
	}

	res, err := gtfs.NewFilter(zoneIndex, gtfs.FilterOptions{
	    ExcludedAgencyID: "HSL",
	    RouteTypes:       []int{3, 700, 701, 702, 704, 715},
	}, logger).Apply(feed)

	err = gtfs.WriteResult("gtfs_filter.yml", res)

# Coordinates

Stops are tested against the zone index with their coordinates as
[lon, lat]. When the zones are in a projected system, pass a Project
function in FilterOptions that maps WGS84 coordinates into it, e.g. one
from zones.Projection("EPSG:3879"). NewFilterFromConfig does this from
gtfs.crs. Apply fails with ErrNoStopsInBounds when the feed has stops but
none falls inside the zones.

# Files Read

agency.txt, routes.txt, trips.txt, stops.txt and stop_times.txt are
required. Other files in the archive are ignored.
*/
package gtfs
