package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/khidmat-portal/khidmat/internal/catalog"
	"github.com/khidmat-portal/khidmat/internal/listing"
	"github.com/khidmat-portal/khidmat/internal/portal"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// renderTable draws rows under headers with a rounded border.
func renderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.String()
}

// recordRows flattens records into table cells following the entity's columns.
func recordRows(entity catalog.Entity, records []portal.Record) ([]string, [][]string) {
	headers := make([]string, len(entity.Columns))
	for i, c := range entity.Columns {
		headers[i] = c.Title
	}
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		row := make([]string, len(entity.Columns))
		for i, c := range entity.Columns {
			row[i] = strings.Join(strings.Fields(rec.String(c.Field)), " ")
		}
		rows = append(rows, row)
	}
	return headers, rows
}

// writeList prints a list view as a table followed by a paging summary.
func writeList(w io.Writer, v listing.View) error {
	if v.Empty() {
		_, err := fmt.Fprintf(w, "No %s found.\n", strings.ToLower(v.Entity.Title))
		return err
	}
	headers, rows := recordRows(v.Entity, v.Rows)
	if _, err := fmt.Fprintln(w, renderTable(headers, rows)); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, listSummary(v))
	return err
}

func listSummary(v listing.View) string {
	parts := []string{fmt.Sprintf("Page %d of %d", v.Page, max(v.TotalPages, 1))}
	if len(v.Rows) > 0 {
		parts = append(parts, fmt.Sprintf("rows %d-%d", v.Offset+1, v.Offset+len(v.Rows)))
	}
	if v.Degraded {
		parts = append(parts, fmt.Sprintf("%d matching of %d (filtered locally)", v.TotalCount, v.ServerTotal))
	} else {
		parts = append(parts, fmt.Sprintf("%d total", v.TotalCount))
	}
	if v.Truncated {
		parts = append(parts, "only the first rows were searched; narrow the query")
	}
	return strings.Join(parts, " · ")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
