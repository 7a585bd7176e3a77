package gtfs

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
)

// ErrMissingFile means a required GTFS file is not in the archive
var ErrMissingFile = errors.New("gtfs: required file missing")

var requiredFiles = []string{"agency.txt", "routes.txt", "trips.txt", "stops.txt", "stop_times.txt"}

// LoadFile opens a local GTFS zip file and loads the required tables
func LoadFile(name string) (*Feed, error) {
	zr, err := zip.OpenReader(name)
	if err != nil {
		return nil, fmt.Errorf("open gtfs %s: %w", name, err)
	}
	defer zr.Close()
	return load(&zr.Reader)
}

// LoadBytes loads the required tables from raw zip bytes
func LoadBytes(data []byte) (*Feed, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open gtfs archive: %w", err)
	}
	return load(zr)
}

func load(zr *zip.Reader) (*Feed, error) {
	feed := &Feed{}
	seen := map[string]bool{}
	for _, f := range zr.File {
		name := strings.ToLower(path.Base(f.Name))
		if !isRequired(name) || seen[name] {
			continue
		}
		if err := feed.consumeCSV(f, name); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		seen[name] = true
	}
	for _, name := range requiredFiles {
		if !seen[name] {
			return nil, fmt.Errorf("%w: %s", ErrMissingFile, name)
		}
	}
	return feed, nil
}

func isRequired(name string) bool {
	for _, r := range requiredFiles {
		if r == name {
			return true
		}
	}
	return false
}

func (feed *Feed) consumeCSV(f *zip.File, name string) error {
	r, err := f.Open()
	if err != nil {
		return err
	}
	defer r.Close()
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1
	csvr.ReuseRecord = true

	head, err := csvr.Read()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return err
	}
	header := make([]string, len(head))
	for i, h := range head {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	idx := func(col string) int {
		for i, h := range header {
			if strings.EqualFold(h, col) {
				return i
			}
		}
		return -1
	}
	var parse func(row []string) error
	switch name {
	case "agency.txt":
		agID, agName := idx("agency_id"), idx("agency_name")
		parse = func(row []string) error {
			feed.Agencies = append(feed.Agencies, Agency{ID: field(row, agID), Name: field(row, agName)})
			return nil
		}
	case "routes.txt":
		rID, rAg, rSN, rLN, rType := idx("route_id"), idx("agency_id"), idx("route_short_name"), idx("route_long_name"), idx("route_type")
		if rID < 0 || rType < 0 {
			return errors.New("route_id and route_type columns are required")
		}
		parse = func(row []string) error {
			typ, err := strconv.Atoi(field(row, rType))
			if err != nil {
				return fmt.Errorf("route %s: route_type: %w", field(row, rID), err)
			}
			feed.Routes = append(feed.Routes, Route{
				ID:        field(row, rID),
				AgencyID:  field(row, rAg),
				ShortName: field(row, rSN),
				LongName:  field(row, rLN),
				Type:      typ,
			})
			return nil
		}
	case "trips.txt":
		tID, rID := idx("trip_id"), idx("route_id")
		if tID < 0 || rID < 0 {
			return errors.New("trip_id and route_id columns are required")
		}
		parse = func(row []string) error {
			feed.Trips = append(feed.Trips, Trip{ID: field(row, tID), RouteID: field(row, rID)})
			return nil
		}
	case "stops.txt":
		sID, sN, sLat, sLon := idx("stop_id"), idx("stop_name"), idx("stop_lat"), idx("stop_lon")
		if sID < 0 || sLat < 0 || sLon < 0 {
			return errors.New("stop_id, stop_lat and stop_lon columns are required")
		}
		parse = func(row []string) error {
			// stations and entrances without coordinates can't be located
			lat, errLat := strconv.ParseFloat(field(row, sLat), 64)
			lon, errLon := strconv.ParseFloat(field(row, sLon), 64)
			if errLat != nil || errLon != nil {
				return nil
			}
			feed.Stops = append(feed.Stops, Stop{ID: field(row, sID), Name: field(row, sN), Lat: lat, Lon: lon})
			return nil
		}
	case "stop_times.txt":
		tID, sID := idx("trip_id"), idx("stop_id")
		if tID < 0 || sID < 0 {
			return errors.New("trip_id and stop_id columns are required")
		}
		parse = func(row []string) error {
			feed.StopTimes = append(feed.StopTimes, StopTime{TripID: field(row, tID), StopID: field(row, sID)})
			return nil
		}
	default:
		return nil
	}

	for {
		row, err := csvr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := parse(row); err != nil {
			return err
		}
	}
}

// field returns a trimmed copy of column i, or "" when absent
func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.Clone(strings.TrimSpace(row[i]))
}
