package routename

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		number   string
		desc     string
		reversed string
		rule     string
	}{
		{
			name:     "numbered route",
			raw:      "12 - Stationtown - Lakeside",
			number:   "12",
			desc:     "Stationtown - Lakeside",
			reversed: "Lakeside - Stationtown",
			rule:     "numbered",
		},
		{
			name:     "delimiter without spaces",
			raw:      "12B-Stationtown -Lakeside",
			number:   "12B",
			desc:     "Stationtown - Lakeside",
			reversed: "Lakeside - Stationtown",
			rule:     "numbered",
		},
		{
			name:     "secondary code before origin",
			raw:      "12 - 500 Stationtown - Lakeside",
			number:   "12",
			desc:     "Stationtown - Lakeside",
			reversed: "Lakeside - Stationtown",
			rule:     "numbered-coded-origin",
		},
		{
			name:     "secondary code before multi-word origin",
			raw:      "12 - 500 Old Stationtown - Lakeside",
			number:   "12",
			desc:     "Old Stationtown - Lakeside",
			reversed: "Lakeside - Old Stationtown",
			rule:     "numbered-coded-origin",
		},
		{
			name:     "multi-word origin without code is kept whole",
			raw:      "12 - Old Stationtown - Lakeside",
			number:   "12",
			desc:     "Old Stationtown - Lakeside",
			reversed: "Lakeside - Old Stationtown",
			rule:     "numbered-coded-origin",
		},
		{
			name:     "leading delimiter",
			raw:      "- Stationtown - Lakeside",
			number:   "",
			desc:     "Stationtown - Lakeside",
			reversed: "Lakeside - Stationtown",
			rule:     "leading-delimiter",
		},
		{
			name:     "no number",
			raw:      "Stationtown - Lakeside - Hilltop",
			number:   "",
			desc:     "Stationtown - Lakeside - Hilltop",
			reversed: "Hilltop - Lakeside - Stationtown",
			rule:     "plain",
		},
		{
			name:     "single segment name",
			raw:      "Airport Express",
			number:   "",
			desc:     "Airport Express",
			reversed: "Airport Express",
			rule:     "plain",
		},
		{
			name:     "single numbered segment",
			raw:      "ELY 520",
			number:   "ELY 520",
			desc:     "",
			reversed: "",
			rule:     "numbered",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Parse(tt.raw)
			assert.Equal(t, tt.number, p.Number)
			assert.Equal(t, tt.desc, p.Description())
			assert.Equal(t, tt.reversed, p.Reversed())
			assert.Equal(t, tt.rule, p.Rule)
		})
	}
}

func TestSegments(t *testing.T) {
	assert.Equal(t, "Stationtown", FirstSegment("Stationtown - Lakeside - Hilltop"))
	assert.Equal(t, "Hilltop", LastSegment("Stationtown - Lakeside - Hilltop"))
	assert.Equal(t, "Solo", FirstSegment("Solo"))
	assert.Equal(t, "Solo", LastSegment("Solo"))
}

func TestCleanCode(t *testing.T) {
	tests := map[string]string{
		"12":        "12",
		"12 B":      "12B",
		"ELY 520":   "520",
		"1/2":       "12",
		"T-12(x)":   "T12x",
		"Äänekoski": "nekoski",
		"":          "",
	}
	for in, want := range tests {
		assert.Equal(t, want, CleanCode(in), "CleanCode(%q)", in)
	}
}

func TestSplitAffixes(t *testing.T) {
	tests := []struct {
		code string
		want Code
		str  string
	}{
		{"12", Code{Core: "12"}, "12"},
		{"12B", Code{Core: "12", Suffix: "B"}, "12B"},
		{"T12", Code{Core: "12", Prefix: "T"}, "T12"},
		{"TX12BK", Code{Core: "12", Prefix: "TX", Suffix: "BK"}, "T12B"},
		{"1A2", Code{Core: "1A2"}, "1A2"},
		{"ABC", Code{Suffix: "ABC"}, "A"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got := SplitAffixes(tt.code)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.str, got.String())
		})
	}
}
