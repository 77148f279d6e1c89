package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

type helpSection struct {
	title string
	items []key.Binding
}

func (m Model) helpSections() []helpSection {
	k := m.keys
	return []helpSection{
		{"Navigation", []key.Binding{k.Up, k.Top, k.NextPage, k.Entities, k.Escape}},
		{"List", []key.Binding{k.Search, k.Filters, k.ClearFilters, k.Sort, k.SortDir, k.Bigger, k.Detail, k.Refresh, k.Roster}},
		{"Records", []key.Binding{k.Create, k.Edit, k.Delete}},
		{"General", []key.Binding{k.Activity, k.CycleLevel, k.CycleTheme, k.Help, k.Quit}},
	}
}

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Warning)).Width(12)

	var b strings.Builder
	sections := m.helpSections()
	for i, section := range sections {
		b.WriteString(styles.AccentText.Bold(true).Render(section.title))
		b.WriteString("\n")
		for _, binding := range section.items {
			h := binding.Help()
			if h.Key == "" {
				continue
			}
			b.WriteString(keyStyle.Render(h.Key))
			b.WriteString(styles.Text.Render(h.Desc))
			b.WriteString("\n")
		}
		if i < len(sections)-1 {
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("Actions you lack permission for are hidden from the command bar."))

	return placeModal(m.theme, "Keyboard Shortcuts", b.String(), modalWidth(m.width, 48), m.width, m.height)
}
