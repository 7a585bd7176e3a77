package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/theoremus-urban-solutions/gtfs-line-ids/classify"
	"github.com/theoremus-urban-solutions/gtfs-line-ids/routename"
)

func newTestRegistry() *Registry {
	return New(Options{CounterStart: 99, PadWidth: 4, Suffix: "B"})
}

func candidate(letter string, dir classify.Direction, raw string) Candidate {
	p := routename.Parse(raw)
	return Candidate{
		Letter:      letter,
		Direction:   dir,
		Token:       p.Number,
		Description: p.Description(),
		Reversed:    p.Reversed(),
	}
}

type step struct {
	letter string
	dir    classify.Direction
	raw    string
	id     string
	rule   Rule
}

func runSteps(t *testing.T, r *Registry, steps []step) {
	t.Helper()
	for i, s := range steps {
		res, err := r.Resolve(candidate(s.letter, s.dir, s.raw))
		require.NoError(t, err, "step %d", i)
		assert.Equal(t, s.id, res.ID, "step %d (%s)", i, s.raw)
		if s.rule != 0 {
			assert.Equal(t, s.rule, res.Rule, "step %d (%s)", i, s.raw)
		}
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		steps []step
	}{
		{
			name: "reversed description pairs directions",
			steps: []step{
				{"L", classify.Inbound, "12 - Stationtown - Lakeside", "L0122", RuleParsedNumber},
				{"L", classify.Outbound, "12 - Lakeside - Stationtown", "L0121", RuleReversedDescription},
			},
		},
		{
			name: "same description opposite direction",
			steps: []step{
				{"L", classify.Outbound, "12 - Stationtown - Lakeside", "L0121", RuleParsedNumber},
				{"L", classify.Inbound, "Stationtown - Lakeside", "L0122", RuleOppositeDirection},
			},
		},
		{
			name: "continuation keeps number",
			steps: []step{
				{"L", classify.Outbound, "7 - Airport - Market.", "L0071", RuleParsedNumber},
				{"L", classify.Inbound, "7 - Market - Harbour", "L0072", RuleContinuation},
			},
		},
		{
			name: "continuation requires the same letter",
			steps: []step{
				{"L", classify.Outbound, "7 - Airport - Market", "L0071", RuleParsedNumber},
				{"P", classify.Inbound, "7 - Market - Harbour", "P0072", RuleParsedNumber},
			},
		},
		{
			name: "different route reusing a short number gets a suffix",
			steps: []step{
				{"L", classify.Outbound, "12 - Stationtown - Lakeside", "L0121", RuleParsedNumber},
				{"L", classify.Outbound, "12 - Hilltop - Harbour", "L12B1", RuleNumberReuse},
			},
		},
		{
			name: "different route reusing a long number is incremented",
			steps: []step{
				{"L", classify.Outbound, "1234 - Stationtown - Lakeside", "L12341", RuleParsedNumber},
				{"L", classify.Outbound, "1234 - Hilltop - Harbour", "L12351", RuleNumberReuse},
			},
		},
		{
			name: "different route reusing a suffixed number is incremented",
			steps: []step{
				{"L", classify.Outbound, "12B - Stationtown - Lakeside", "L12B1", RuleParsedNumber},
				{"L", classify.Outbound, "12B - Hilltop - Harbour", "L13B1", RuleNumberReuse},
			},
		},
		{
			name: "letter affixes are kept to one character",
			steps: []step{
				{"L", classify.Outbound, "TX12BK - Stationtown - Lakeside", "LT12B1", RuleParsedNumber},
			},
		},
		{
			name: "two letter area narrows padding",
			steps: []step{
				{"HY", classify.Outbound, "12 - Stationtown - Lakeside", "HY121", RuleParsedNumber},
				{"HY", classify.Outbound, "Harbour - Hilltop", "HY1001", RuleCounter},
			},
		},
		{
			name: "administrative prefix is dropped",
			steps: []step{
				{"V", classify.Outbound, "ELY 520 - Stationtown - Lakeside", "V5201", RuleParsedNumber},
			},
		},
		{
			name: "collision draws from the counter",
			steps: []step{
				{"L", classify.Outbound, "5 - Airport - Market", "L0051", RuleParsedNumber},
				{"L", classify.Inbound, "5 - Airport - Market", "L0052", RuleOppositeDirection},
				{"L", classify.Inbound, "5 - Market - Airport", "L1002", RuleReversedDescription},
			},
		},
		{
			name: "loop pairs with either direction",
			steps: []step{
				{"L", classify.Outbound, "5 - Airport - Market", "L0051", RuleParsedNumber},
				{"L", classify.Loop, "5 - Airport - Market", "L0053", RuleOppositeDirection},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runSteps(t, newTestRegistry(), tt.steps)
		})
	}
}

func TestResolveCounterMonotonic(t *testing.T) {
	r := newTestRegistry()
	descs := []string{"Airport - Market", "Harbour - Hilltop", "Lakeside - Stationtown", "Mill - Quarry"}

	var numbers []string
	for _, d := range descs {
		res, err := r.Resolve(candidate("V", classify.Outbound, d))
		require.NoError(t, err)
		assert.Equal(t, RuleCounter, res.Rule)
		numbers = append(numbers, res.Number)
	}
	assert.Equal(t, []string{"100", "101", "102", "103"}, numbers)

	res, err := r.Resolve(candidate("P", classify.Outbound, "Airport - Market"))
	require.NoError(t, err)
	assert.Equal(t, "P1001", res.ID, "counters are kept per letter")
}

func TestResolveUniqueness(t *testing.T) {
	r := newTestRegistry()
	names := []string{
		"1 - Airport - Market",
		"1 - Airport - Market",
		"1 - Market - Airport",
		"1 - Harbour - Hilltop",
		"1B - Harbour - Hilltop",
		"Airport - Market",
		"Airport - Market",
		"100 - Airport - Market",
		"100 - Mill - Quarry",
	}
	seen := make(map[string]string)
	for _, dir := range []classify.Direction{classify.Outbound, classify.Inbound} {
		for _, raw := range names {
			res, err := r.Resolve(candidate("L", dir, raw))
			require.NoError(t, err)
			prev, dup := seen[res.ID]
			assert.False(t, dup, "%s assigned to both %q and %q", res.ID, prev, raw)
			seen[res.ID] = raw
			assert.True(t, r.Used(res.ID))
		}
	}
	assert.Len(t, r.History(), 2*len(names))
}

func TestResolveMalformedNumber(t *testing.T) {
	r := newTestRegistry()
	_, err := r.Resolve(candidate("L", classify.Outbound, "1A2B - Airport - Market"))
	require.NoError(t, err)

	_, err = r.Resolve(candidate("L", classify.Outbound, "1A2B - Harbour - Hilltop"))
	require.ErrorIs(t, err, ErrMalformedNumber)
	assert.Contains(t, err.Error(), `"1A2B"`)
	assert.Len(t, r.History(), 1, "failed resolution is not recorded")
}

func TestReserve(t *testing.T) {
	r := newTestRegistry()
	r.Reserve("L0121")

	res, err := r.Resolve(candidate("L", classify.Outbound, "12 - Stationtown - Lakeside"))
	require.NoError(t, err)
	assert.Equal(t, "L1001", res.ID)
	assert.Equal(t, 1, res.Collisions)
	assert.Empty(t, r.History()[1:], "reserved ids are not history")
}

func TestRuleString(t *testing.T) {
	assert.Equal(t, "continuation", RuleContinuation.String())
	assert.Equal(t, "rule(0)", Rule(0).String())
}
