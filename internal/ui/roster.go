package ui

import (
	"strings"
	"time"

	"github.com/khidmat-portal/khidmat/internal/catalog"
)

const rosterEntity = "duty-roster"

// renderRoster projects the loaded duty roster rows onto a week grid.
func (m Model) renderRoster(width, height int) string {
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	grid := catalog.WeeklyGrid(m.view.Rows)

	dutyWidth := 18
	dayWidth := max((width-2-dutyWidth)/len(catalog.Week)-1, 5)

	header := []string{styles.Column.Render(fit("Duty", dutyWidth))}
	for _, day := range catalog.Week {
		header = append(header, styles.Column.Render(fit(day.String()[:3], dayWidth)))
	}
	lines := []string{strings.Join(header, " ")}

	if grid.Len() == 0 {
		lines = append(lines, styles.MutedText.Render("No roster assignments on this page."))
	}
	for _, duty := range grid.Duties {
		row := []string{styles.Text.Render(fit(duty, dutyWidth))}
		for _, day := range catalog.Week {
			row = append(row, m.rosterCell(grid, duty, day, dayWidth, styles))
		}
		lines = append(lines, strings.Join(row, " "))
	}

	lines = lines[:min(len(lines), max(height-3, 1))]
	lines = append(lines, "", m.renderListStatus(width-2, styles))
	return m.renderTitledBox("Duty roster · week", strings.Join(lines, "\n"), width, height, true)
}

func (m Model) rosterCell(grid catalog.RosterGrid, duty string, day time.Weekday, width int, styles Styles) string {
	names := grid.Cell(duty, day)
	if len(names) == 0 {
		return styles.FaintText.Render(fit("·", width))
	}
	return styles.AccentText.Render(fit(strings.Join(names, ", "), width))
}
