// Package classify derives the area letter and direction code of a transit
// line from its endpoint geometry.
package classify

import (
	"errors"
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/theoremus-urban-solutions/gtfs-line-ids/zones"
)

var (
	// ErrUnknownArea means a zone matched an endpoint but its name has no short code
	ErrUnknownArea = errors.New("area has no short code")
	// ErrMissingCoordinates means a line endpoint could not be joined to a node coordinate
	ErrMissingCoordinates = errors.New("line endpoint has no coordinates")
)

// AreaConfig contains the lookup data for area classification
type AreaConfig struct {
	// ShortCodes maps zone names to area letters
	ShortCodes map[string]string
	// LongDistanceMarker forces LongDistanceLetter for agencies whose name contains it
	LongDistanceMarker string
	LongDistanceLetter string
	// FallbackLetter is returned for lines that are not firmly inside one area
	FallbackLetter string
}

// AreaClassifier maps a line's endpoints to an operating-area letter
type AreaClassifier struct {
	zones *zones.Index
	cfg   AreaConfig
	valid map[string]struct{}
}

// NewAreaClassifier creates an area classifier over a zone index
func NewAreaClassifier(ix *zones.Index, cfg AreaConfig) *AreaClassifier {
	valid := make(map[string]struct{}, len(cfg.ShortCodes))
	for _, code := range cfg.ShortCodes {
		valid[code] = struct{}{}
	}
	return &AreaClassifier{zones: ix, cfg: cfg, valid: valid}
}

// Classify returns the area letter for a line.
//
// Zones are scanned in enumeration order and every endpoint a zone contains
// records that zone's code. Scanning stops once two codes are recorded. Only
// two equal codes yield an area letter; anything less is the fallback letter.
// A matched zone without a short code aborts with ErrUnknownArea.
func (c *AreaClassifier) Classify(start, end orb.Point, agency string) (string, error) {
	if c.cfg.LongDistanceMarker != "" && strings.Contains(agency, c.cfg.LongDistanceMarker) {
		return c.cfg.LongDistanceLetter, nil
	}
	endpoints := [2]orb.Point{start, end}
	matches := make([]string, 0, 2)
scan:
	for _, z := range c.zones.Zones() {
		for _, p := range endpoints {
			if !z.Contains(p) {
				continue
			}
			code, ok := c.cfg.ShortCodes[z.Name]
			if !ok {
				return "", fmt.Errorf("%w: %q", ErrUnknownArea, z.Name)
			}
			matches = append(matches, code)
			if len(matches) == 2 {
				break scan
			}
		}
	}
	if len(matches) == 2 && matches[0] == matches[1] {
		if _, ok := c.valid[matches[0]]; ok {
			return matches[0], nil
		}
	}
	return c.cfg.FallbackLetter, nil
}
