package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/theoremus-urban-solutions/gtfs-line-ids/modes"
	"github.com/theoremus-urban-solutions/gtfs-line-ids/rename"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func renderPlan(plan *rename.Plan) string {
	t := newTable("OLD ID", "NEW ID", "AREA", "DIR", "RULE", "DESCRIPTION")
	for _, a := range plan.Assignments {
		t.Row(a.OldID, a.NewID, a.Letter, a.Direction.String(), a.Rule.String(), a.Description)
	}
	title := titleStyle.Render(fmt.Sprintf("rename plan %s: %d lines", plan.RunID, len(plan.Assignments)))
	return lipgloss.JoinVertical(lipgloss.Left, title, t.String())
}

func renderModeChanges(changes []modes.Change) string {
	t := newTable("LINE", "MODE", "VEHICLE", "REASON")
	for _, c := range changes {
		t.Row(c.ID, c.Mode, strconv.Itoa(c.Vehicle), string(c.Reason))
	}
	title := titleStyle.Render(fmt.Sprintf("mode changes: %d lines", len(changes)))
	return lipgloss.JoinVertical(lipgloss.Left, title, t.String())
}
