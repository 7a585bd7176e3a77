package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/theoremus-urban-solutions/gtfs-line-ids/classify"
	"github.com/theoremus-urban-solutions/gtfs-line-ids/modes"
	"github.com/theoremus-urban-solutions/gtfs-line-ids/registry"
	"github.com/theoremus-urban-solutions/gtfs-line-ids/rename"
	"github.com/theoremus-urban-solutions/gtfs-line-ids/store"
)

func TestRenderPlan(t *testing.T) {
	out := renderPlan(&rename.Plan{
		RunID: "run-1",
		Assignments: []rename.Assignment{
			{OldID: "gtfs1", NewID: "L0122", Letter: "L", Direction: classify.Inbound, Rule: registry.RuleParsedNumber, Description: "Stationtown-Lakeside"},
			{OldID: "gtfs2", NewID: "L0121", Letter: "L", Direction: classify.Outbound, Rule: registry.RuleReversedDescription, Description: "Lakeside-Stationtown"},
		},
	})
	assert.Contains(t, out, "rename plan run-1: 2 lines")
	for _, s := range []string{"gtfs1", "L0122", "L0121", "reversed-description", "Stationtown-Lakeside"} {
		assert.Contains(t, out, s)
	}
}

func TestRenderModeChanges(t *testing.T) {
	out := renderModeChanges([]modes.Change{
		{ModeChange: store.ModeChange{ID: "OM121", Mode: "e", Vehicle: 12}, Reason: modes.ReasonLongDistance},
	})
	assert.Contains(t, out, "mode changes: 1 lines")
	assert.Contains(t, out, "OM121")
	assert.Contains(t, out, "long-distance")
}
