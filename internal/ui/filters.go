package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/khidmat-portal/khidmat/internal/catalog"
)

// applyFiltersMsg replaces every filter value of the active list.
type applyFiltersMsg struct {
	values map[string]string
}

// filterRow is one filter in the modal. Rows with options cycle through
// them; rows without take free text.
type filterRow struct {
	filter catalog.Filter
	choice int // 0 is "Any", i is Options[i-1]
	input  textinput.Model
}

func (r filterRow) value() string {
	if len(r.filter.Options) == 0 {
		return strings.TrimSpace(r.input.Value())
	}
	if r.choice == 0 {
		return ""
	}
	return r.filter.Options[r.choice-1].Value
}

type filtersModal struct {
	rows  []filterRow
	focus int
}

func newFiltersModal(entity catalog.Entity, current map[string]string) *filtersModal {
	m := &filtersModal{}
	for _, f := range entity.Filters {
		row := filterRow{filter: f}
		value := current[f.Key]
		if len(f.Options) == 0 {
			row.input = textinput.New()
			row.input.Placeholder = "any"
			row.input.Prompt = ""
			row.input.CharLimit = 64
			row.input.SetValue(value)
		} else {
			for i, opt := range f.Options {
				if opt.Value == value {
					row.choice = i + 1
				}
			}
		}
		m.rows = append(m.rows, row)
	}
	m.focusRow(0)
	return m
}

func (m *filtersModal) focusRow(i int) {
	if len(m.rows) == 0 {
		return
	}
	m.focus = (i + len(m.rows)) % len(m.rows)
	for idx := range m.rows {
		if len(m.rows[idx].filter.Options) > 0 {
			continue
		}
		if idx == m.focus {
			m.rows[idx].input.Focus()
		} else {
			m.rows[idx].input.Blur()
		}
	}
}

func (m *filtersModal) values() map[string]string {
	out := make(map[string]string, len(m.rows))
	for _, r := range m.rows {
		out[r.filter.Key] = r.value()
	}
	return out
}

func (m *filtersModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	km, ok := msg.(tea.KeyMsg)
	if !ok || len(m.rows) == 0 {
		if ok && key.Matches(km, keys.Escape) {
			return m, nil, true
		}
		return m, nil, false
	}

	row := &m.rows[m.focus]
	switch km.String() {
	case "esc":
		return m, nil, true
	case "enter":
		values := m.values()
		return m, func() tea.Msg { return applyFiltersMsg{values: values} }, true
	case "tab", "down":
		m.focusRow(m.focus + 1)
		return m, nil, false
	case "shift+tab", "up":
		m.focusRow(m.focus - 1)
		return m, nil, false
	case "ctrl+u":
		row.choice = 0
		row.input.SetValue("")
		return m, nil, false
	}

	if len(row.filter.Options) > 0 {
		n := len(row.filter.Options) + 1
		switch km.String() {
		case "right", "l", " ":
			row.choice = (row.choice + 1) % n
		case "left", "h":
			row.choice = (row.choice - 1 + n) % n
		}
		return m, nil, false
	}

	var cmd tea.Cmd
	row.input, cmd = row.input.Update(msg)
	return m, cmd, false
}

func (m *filtersModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	if len(m.rows) == 0 {
		return placeModal(theme, "Filters", styles.MutedText.Render("This list has no filters."), modalWidth(width, 40), width, height)
	}

	var b strings.Builder
	for i, r := range m.rows {
		label := padRight(r.filter.Label, 14)
		if i == m.focus {
			b.WriteString(styles.AccentText.Bold(true).Render("▸ " + label))
		} else {
			b.WriteString(styles.MutedText.Render("  " + label))
		}
		switch {
		case len(r.filter.Options) == 0:
			b.WriteString(r.input.View())
		case r.choice == 0:
			b.WriteString(styles.FaintText.Render("‹ Any ›"))
		default:
			b.WriteString(styles.Text.Render("‹ " + r.filter.Options[r.choice-1].Label + " ›"))
		}
		if r.filter.Client {
			b.WriteString(styles.FaintText.Render("  (local)"))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("tab move · ←/→ choose · ctrl+u clear · enter apply · esc cancel"))
	return placeModal(theme, "Filters", b.String(), modalWidth(width, 64), width, height)
}
