package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/lipgloss"

	"github.com/khidmat-portal/khidmat/internal/catalog"
	"github.com/khidmat-portal/khidmat/internal/listing"
	"github.com/khidmat-portal/khidmat/internal/portal"
)

const columnGap = 2

// layoutColumns fits preferred widths into width. Columns shrink widest
// first and never below four cells; leftover space goes to the last column.
func layoutColumns(cols []catalog.Column, width int) []int {
	widths := make([]int, len(cols))
	total := 0
	for i, c := range cols {
		w := c.Width
		if w <= 0 {
			w = max(len(c.Title), 10)
		}
		widths[i] = w
		total += w
	}
	if len(cols) == 0 {
		return widths
	}
	total += columnGap * (len(cols) - 1)

	for total > width {
		widest := 0
		for i := range widths {
			if widths[i] > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= 4 {
			break
		}
		widths[widest]--
		total--
	}
	if total < width {
		widths[len(widths)-1] += width - total
	}
	return widths
}

// cellText renders one field of a record for the table.
func cellText(rec portal.Record, field string) string {
	return singleLine(rec.String(field))
}

// renderList draws the active list inside a titled box.
func (m Model) renderList(width, height int) string {
	title := m.listTitle()
	content := m.renderListContent(width-2, height-2)
	return m.renderTitledBox(title, content, width, height, true)
}

func (m Model) listTitle() string {
	v := m.view
	title := v.Entity.Title
	if v.TotalCount > 0 {
		title = fmt.Sprintf("%s (%d)", title, v.TotalCount)
	}
	return title
}

func (m Model) renderListContent(width, height int) string {
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	v := m.view
	cols := v.Entity.Columns
	widths := layoutColumns(cols, width)

	var lines []string
	lines = append(lines, m.renderColumnHeader(cols, widths, styles))

	bodyHeight := max(height-3, 1) // header, status, paginator
	switch {
	case !v.HasData && v.Loading():
		lines = append(lines, styles.WarningText.Render(m.spinner.View()+" Loading "+strings.ToLower(v.Entity.Title)+"…"))
	case !v.HasData && v.Err != nil:
		lines = append(lines, styles.DangerText.Render(v.Message))
	case v.Empty():
		lines = append(lines, styles.MutedText.Render(m.emptyMessage()))
	default:
		lines = append(lines, m.renderRows(v.Rows, cols, widths, width, bodyHeight)...)
	}

	for len(lines) < height-2 {
		lines = append(lines, "")
	}
	lines = lines[:max(height-2, 1)]
	lines = append(lines, m.renderListStatus(width, styles), m.renderPaginator())
	return strings.Join(lines, "\n")
}

func (m Model) emptyMessage() string {
	v := m.view
	noun := strings.ToLower(v.Entity.Title)
	if v.Query.Search != "" || len(v.Query.Filters) > 0 {
		return fmt.Sprintf("No %s match the current search or filters.", noun)
	}
	return fmt.Sprintf("No %s yet.", noun)
}

func (m Model) renderColumnHeader(cols []catalog.Column, widths []int, styles Styles) string {
	q := m.view.Query
	parts := make([]string, len(cols))
	for i, c := range cols {
		label := c.Title
		if q.SortField == c.Field {
			if q.SortDirection == listing.Desc {
				label += " ▼"
			} else {
				label += " ▲"
			}
		}
		parts[i] = styles.Column.Render(fit(label, widths[i]))
	}
	return strings.Join(parts, strings.Repeat(" ", columnGap))
}

// renderRows draws up to height rows, scrolled so the cursor stays visible.
func (m Model) renderRows(rows []portal.Record, cols []catalog.Column, widths []int, width, height int) []string {
	start := 0
	if m.cursor >= height {
		start = m.cursor - height + 1
	}
	end := min(len(rows), start+height)

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		cells := make([]string, len(cols))
		for c, col := range cols {
			cells[c] = fit(cellText(rows[i], col.Field), widths[c])
		}
		text := strings.Join(cells, strings.Repeat(" ", columnGap))
		if i == m.cursor {
			lines = append(lines, m.theme.Styles().Selected.Width(width).Render(text))
		} else {
			lines = append(lines, lipgloss.NewStyle().
				Foreground(lipgloss.Color(m.theme.Text)).
				Background(lipgloss.Color(m.theme.FocusBg)).
				Width(width).
				Render(text))
		}
	}
	return lines
}

// renderListStatus summarizes paging, query and local refinement.
func (m Model) renderListStatus(width int, styles Styles) string {
	v := m.view
	bg := NewBgStyle(m.theme.FocusBg)

	var parts []string
	if v.TotalPages > 0 {
		parts = append(parts, bg.Render(fmt.Sprintf("Page %d of %d", v.Page, v.TotalPages), styles.Text))
	}
	parts = append(parts, bg.Render(fmt.Sprintf("%d per page", v.PageSize), styles.MutedText))
	if v.Query.Search != "" {
		parts = append(parts, bg.Render("search: "+v.Query.Search, styles.AccentText))
	}
	for _, k := range v.Query.FilterKeys() {
		label := k
		if f, ok := v.Entity.Filter(k); ok {
			label = f.Label
		}
		parts = append(parts, bg.Render(label+": "+v.Query.Filter(k), styles.InfoText))
	}
	if v.Degraded {
		note := fmt.Sprintf("filtered locally: %d of %d", v.TotalCount, v.ServerTotal)
		if v.Truncated {
			note += " (first rows only)"
		}
		parts = append(parts, bg.Render(note, styles.WarningText))
	}
	if v.Loading() && v.HasData {
		parts = append(parts, bg.Render(m.spinner.View()+" refreshing", styles.WarningText))
	}
	if v.Err != nil && v.HasData {
		parts = append(parts, bg.Render(v.Message, styles.DangerText))
	}
	return truncateStyled(bg.Join(parts, "  "), width)
}

// renderPaginator draws page dots, or n/m when there are too many pages.
func (m Model) renderPaginator() string {
	v := m.view
	if v.TotalPages <= 1 {
		return ""
	}
	p := m.paginator
	p.TotalPages = v.TotalPages
	p.Page = max(v.Page-1, 0)
	if v.TotalPages > 20 {
		p.Type = paginator.Arabic
	}
	return p.View()
}

// renderTitledBox draws content in a box with the title in the top border.
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	borderColorStr, bgColorStr := m.theme.Border, m.theme.SurfaceAlt
	if focused {
		borderColorStr, bgColorStr = m.theme.BorderFocus, m.theme.FocusBg
	}
	bg := NewBgStyle(bgColorStr)
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColorStr))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := max(width-2, 1)
	title = truncate(title, max(innerWidth-4, 1))
	titleLen := lipgloss.Width(title)
	leftPad := max((innerWidth-titleLen-2)/2, 0)
	rightPad := max(innerWidth-titleLen-2-leftPad, 0)

	top := bg.Render("┌", borderStyle) +
		bg.Render(strings.Repeat("─", leftPad), borderStyle) +
		bg.Render(" "+title+" ", titleStyle) +
		bg.Render(strings.Repeat("─", rightPad), borderStyle) +
		bg.Render("┐", borderStyle)
	bottom := bg.Render("└", borderStyle) +
		bg.Render(strings.Repeat("─", innerWidth), borderStyle) +
		bg.Render("┘", borderStyle)

	contentStyle := lipgloss.NewStyle().Width(innerWidth).MaxWidth(innerWidth).Background(lipgloss.Color(bgColorStr))
	contentLines := strings.Split(content, "\n")
	boxHeight := max(height-2, 0)

	lines := make([]string, 0, boxHeight)
	for i := range boxHeight {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		lines = append(lines, bg.Render("│", borderStyle)+contentStyle.Render(line)+bg.Render("│", borderStyle))
	}
	return top + "\n" + strings.Join(lines, "\n") + "\n" + bottom
}

// truncateStyled drops trailing styled text wider than width.
func truncateStyled(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}
