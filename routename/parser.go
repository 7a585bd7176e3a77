// Package routename extracts route numbers and stop descriptions from the
// dash-separated route names found in imported GTFS lines, e.g.
// "12 - Stationtown - Lakeside" or "12 500 Stationtown - Lakeside".
package routename

import (
	"regexp"
	"strings"
	"unicode"
)

// Separator joins description segments
const Separator = " - "

var delimiter = regexp.MustCompile(`\s*-\s*`)

// Parsed is a route name split into its number token and stop segments
type Parsed struct {
	Number   string
	Segments []string
	// Rule names the parse rule that produced this result
	Rule string
}

// Description joins the segments in travel order
func (p Parsed) Description() string {
	return strings.Join(p.Segments, Separator)
}

// Reversed joins the segments head-to-tail, i.e. how the opposite direction
// of the same route is usually described
func (p Parsed) Reversed() string {
	rev := make([]string, len(p.Segments))
	for i, s := range p.Segments {
		rev[len(p.Segments)-1-i] = s
	}
	return strings.Join(rev, Separator)
}

type rule struct {
	name  string
	match func(segs []string) bool
	apply func(segs []string) Parsed
}

// rules are tried in order; the first match wins
var rules = []rule{
	{
		// "12 - 500 Stationtown - Lakeside": the origin carries a secondary code
		name: "numbered-coded-origin",
		match: func(segs []string) bool {
			return len(segs) > 1 && hasDigit(segs[0]) && len(strings.Fields(segs[1])) > 1
		},
		apply: func(segs []string) Parsed {
			words := strings.Fields(segs[1])
			head := segs[1]
			if hasDigit(words[0]) {
				head = strings.Join(words[1:], " ")
			}
			out := append([]string{head}, segs[2:]...)
			return Parsed{Number: segs[0], Segments: out}
		},
	},
	{
		name:  "numbered",
		match: func(segs []string) bool { return hasDigit(segs[0]) },
		apply: func(segs []string) Parsed {
			return Parsed{Number: segs[0], Segments: segs[1:]}
		},
	},
	{
		name:  "leading-delimiter",
		match: func(segs []string) bool { return segs[0] == "" },
		apply: func(segs []string) Parsed {
			return Parsed{Segments: segs[1:]}
		},
	},
}

// Parse splits a raw route name and applies the first matching rule.
// Names matching no rule are kept whole with an empty number.
func Parse(raw string) Parsed {
	segs := delimiter.Split(strings.TrimSpace(raw), -1)
	for _, r := range rules {
		if r.match(segs) {
			p := r.apply(segs)
			p.Rule = r.name
			return p
		}
	}
	return Parsed{Segments: segs, Rule: "plain"}
}

// FirstSegment returns the first segment of a joined description
func FirstSegment(desc string) string {
	if i := strings.Index(desc, Separator); i >= 0 {
		return desc[:i]
	}
	return desc
}

// LastSegment returns the last segment of a joined description
func LastSegment(desc string) string {
	if i := strings.LastIndex(desc, Separator); i >= 0 {
		return desc[i+len(Separator):]
	}
	return desc
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}
