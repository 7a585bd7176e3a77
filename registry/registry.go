// Package registry assigns unique line identifiers. It remembers every
// identity resolved during a run so the opposite direction of a route keeps
// its number, while a different route reusing a number is split off.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/theoremus-urban-solutions/gtfs-line-ids/classify"
	"github.com/theoremus-urban-solutions/gtfs-line-ids/routename"
)

// ErrMalformedNumber means a route number had to be incremented but its
// numeric core is not an integer
var ErrMalformedNumber = errors.New("route number core is not an integer")

// Rule identifies how a number was resolved
type Rule int

const (
	// RuleOppositeDirection reuses the number of an entry with the same description
	RuleOppositeDirection Rule = iota + 1
	// RuleReversedDescription reuses the number of an entry described head-to-tail
	RuleReversedDescription
	// RuleContinuation reuses the number of an entry ending where this line starts
	RuleContinuation
	// RuleNumberReuse splits off a different route that reuses a number
	RuleNumberReuse
	// RuleParsedNumber uses the parsed route number as is
	RuleParsedNumber
	// RuleCounter draws from the area's running counter
	RuleCounter
)

var ruleNames = map[Rule]string{
	RuleOppositeDirection:   "opposite-direction",
	RuleReversedDescription: "reversed-description",
	RuleContinuation:        "continuation",
	RuleNumberReuse:         "number-reuse",
	RuleParsedNumber:        "parsed-number",
	RuleCounter:             "counter",
}

func (r Rule) String() string {
	if name, ok := ruleNames[r]; ok {
		return name
	}
	return "rule(" + strconv.Itoa(int(r)) + ")"
}

// Options contains identifier synthesis parameters
type Options struct {
	// CounterStart is the counter value before the first draw
	CounterStart int
	// PadWidth is the combined width of area letter and number
	PadWidth int
	// Suffix is appended to short numbers reused by a different route
	Suffix string
}

// Candidate is everything known about a line before its number is resolved
type Candidate struct {
	Letter    string
	Direction classify.Direction
	// Token is the raw route number token, possibly empty
	Token       string
	Description string
	Reversed    string
}

// Resolution is the outcome of resolving one candidate
type Resolution struct {
	ID     string
	Number string
	Rule   Rule
	// Collisions counts identifiers skipped because they were already used
	Collisions int
}

// Entry is one resolved line identity
type Entry struct {
	Description string
	Number      string
	Letter      string
	Direction   classify.Direction
}

type numberKey struct {
	number string
	letter string
}

// Registry holds the identities resolved so far. It is not safe for
// concurrent use: resolution depends on the order lines are fed in.
type Registry struct {
	opts     Options
	used     map[string]struct{}
	counters map[string]int
	history  []Entry
	byDesc   map[string][]int
	byNumber map[numberKey][]int
}

// New creates an empty registry
func New(opts Options) *Registry {
	return &Registry{
		opts:     opts,
		used:     make(map[string]struct{}),
		counters: make(map[string]int),
		byDesc:   make(map[string][]int),
		byNumber: make(map[numberKey][]int),
	}
}

// Used reports whether an identifier was already emitted
func (r *Registry) Used(id string) bool {
	_, ok := r.used[id]
	return ok
}

// Reserve marks an identifier as taken without recording a history entry,
// e.g. the id of a line that is not being renamed
func (r *Registry) Reserve(id string) {
	r.used[id] = struct{}{}
}

// History returns the resolved identities in resolution order
func (r *Registry) History() []Entry {
	out := make([]Entry, len(r.history))
	copy(out, r.history)
	return out
}

// Resolve assigns the final identifier for a candidate and records it.
//
// History is consulted in insertion order and the first entry matching any
// rule decides. Per entry the rules are tried as: same description in the
// other direction, reversed description in the other direction, continuation
// of the entry's last stop with the same number, and finally the same number
// on a different route. Without a match the parsed number is used, or the
// area counter when nothing was parsed.
func (r *Registry) Resolve(c Candidate) (Resolution, error) {
	code := routename.CleanCode(c.Token)
	number, rule, err := r.match(c, code)
	if err != nil {
		return Resolution{}, err
	}
	if rule == 0 {
		if code != "" {
			number, rule = routename.SplitAffixes(code).String(), RuleParsedNumber
		} else {
			number, rule = strconv.Itoa(r.draw(c.Letter)), RuleCounter
		}
	}

	res := Resolution{Number: number, Rule: rule}
	res.ID = r.format(c.Letter, number, c.Direction)
	for r.Used(res.ID) {
		res.Number = strconv.Itoa(r.draw(c.Letter))
		res.ID = r.format(c.Letter, res.Number, c.Direction)
		res.Collisions++
	}
	r.record(Entry{Description: c.Description, Number: res.Number, Letter: c.Letter, Direction: c.Direction}, res.ID)
	return res, nil
}

func (r *Registry) match(c Candidate, code string) (string, Rule, error) {
	for _, i := range r.candidates(c, code) {
		e := r.history[i]
		switch {
		case e.Description == c.Description && e.Direction != c.Direction:
			return e.Number, RuleOppositeDirection, nil
		case e.Description == c.Reversed && e.Direction != c.Direction:
			return e.Number, RuleReversedDescription, nil
		case e.Direction != c.Direction && e.Number == code && e.Letter == c.Letter &&
			trimPeriod(routename.LastSegment(e.Description)) == trimPeriod(routename.FirstSegment(c.Description)):
			return e.Number, RuleContinuation, nil
		case e.Number == code && e.Letter == c.Letter:
			number, err := r.split(c.Token, code)
			return number, RuleNumberReuse, err
		}
	}
	return "", 0, nil
}

// candidates returns the history indexes that can match any rule, ascending.
// Continuation and number reuse both require an equal number and letter, so
// the number index covers them.
func (r *Registry) candidates(c Candidate, code string) []int {
	var idx []int
	idx = append(idx, r.byDesc[c.Description]...)
	if c.Reversed != c.Description {
		idx = append(idx, r.byDesc[c.Reversed]...)
	}
	if code != "" {
		idx = append(idx, r.byNumber[numberKey{code, c.Letter}]...)
	}
	sort.Ints(idx)
	out := make([]int, 0, len(idx))
	for _, v := range idx {
		if len(out) == 0 || out[len(out)-1] != v {
			out = append(out, v)
		}
	}
	return out
}

// split derives a new number for a route reusing an existing one: short
// numbers without a suffix get the disambiguation suffix, others are
// incremented.
func (r *Registry) split(token, code string) (string, error) {
	parts := routename.SplitAffixes(code)
	if parts.Suffix == "" && len(parts.Core)+len(parts.Prefix) < 4 {
		parts.Suffix = r.opts.Suffix
		return parts.String(), nil
	}
	n, err := strconv.Atoi(parts.Core)
	if err != nil {
		return "", fmt.Errorf("%w: token %q, core %q, prefix %q, suffix %q",
			ErrMalformedNumber, token, parts.Core, parts.Prefix, parts.Suffix)
	}
	parts.Core = strconv.Itoa(n + 1)
	return parts.String(), nil
}

func (r *Registry) draw(letter string) int {
	n, ok := r.counters[letter]
	if !ok {
		n = r.opts.CounterStart
	}
	n++
	r.counters[letter] = n
	return n
}

func (r *Registry) format(letter, number string, dir classify.Direction) string {
	width := r.opts.PadWidth - len(letter)
	if pad := width - len(number); pad > 0 {
		number = strings.Repeat("0", pad) + number
	}
	return letter + number + dir.String()
}

func (r *Registry) record(e Entry, id string) {
	i := len(r.history)
	r.history = append(r.history, e)
	r.byDesc[e.Description] = append(r.byDesc[e.Description], i)
	k := numberKey{e.Number, e.Letter}
	r.byNumber[k] = append(r.byNumber[k], i)
	r.used[id] = struct{}{}
}

func trimPeriod(s string) string {
	return strings.Trim(s, ".")
}
