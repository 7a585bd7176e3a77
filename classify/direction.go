package classify

import (
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Direction is the trailing digit of a line identifier
type Direction int

const (
	Outbound Direction = 1
	Inbound  Direction = 2
	Loop     Direction = 3
)

func (d Direction) String() string { return strconv.Itoa(int(d)) }

// DirectionClassifier compares endpoint distances to a fixed reference point.
//
// This is a straight-line heuristic, not a path analysis: a line that leaves
// the reference area and curls back toward it can be misclassified.
type DirectionClassifier struct {
	Reference orb.Point
}

// Classify returns Loop when the line starts and ends at the same node,
// Inbound when the start is strictly farther from the reference than the end,
// and Outbound otherwise, ties included.
func (d DirectionClassifier) Classify(firstNode, lastNode int64, start, end orb.Point) Direction {
	if firstNode == lastNode {
		return Loop
	}
	if planar.Distance(d.Reference, start) > planar.Distance(d.Reference, end) {
		return Inbound
	}
	return Outbound
}
