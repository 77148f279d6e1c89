package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/khidmat-portal/khidmat/internal/access"
	"github.com/khidmat-portal/khidmat/internal/catalog"
)

// pickEntityMsg switches the active list.
type pickEntityMsg struct {
	entity catalog.Entity
}

// pickerModal lists every entity; ones the session may not view are dimmed
// but still selectable so the denial is explained rather than hidden.
type pickerModal struct {
	entities []catalog.Entity
	allowed  map[string]bool
	cursor   int
}

func newPickerModal(gate access.Gate, current string) *pickerModal {
	p := &pickerModal{entities: catalog.All(), allowed: make(map[string]bool)}
	for i, e := range p.entities {
		p.allowed[e.Name] = gate.Allowed(e.Name, access.ActionView)
		if e.Name == current {
			p.cursor = i
		}
	}
	return p
}

func (p *pickerModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil, false
	}
	switch {
	case key.Matches(km, keys.Escape):
		return p, nil, true
	case key.Matches(km, keys.Detail):
		chosen := p.entities[p.cursor]
		return p, func() tea.Msg { return pickEntityMsg{entity: chosen} }, true
	case key.Matches(km, keys.Down), km.String() == "tab":
		p.cursor = (p.cursor + 1) % len(p.entities)
	case key.Matches(km, keys.Up), km.String() == "shift+tab":
		p.cursor = (p.cursor - 1 + len(p.entities)) % len(p.entities)
	case key.Matches(km, keys.Top):
		p.cursor = 0
	case key.Matches(km, keys.Bottom):
		p.cursor = len(p.entities) - 1
	}
	return p, nil, false
}

func (p *pickerModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	var b strings.Builder
	for i, e := range p.entities {
		marker := "  "
		style := styles.Text
		if !p.allowed[e.Name] {
			style = styles.FaintText
		}
		if i == p.cursor {
			marker = styles.AccentText.Render("▸ ")
			style = style.Bold(true)
		}
		line := marker + style.Render(padRight(e.Title, 22))
		if !p.allowed[e.Name] {
			line += styles.FaintText.Render("no access")
		}
		b.WriteString(line)
		if i < len(p.entities)-1 {
			b.WriteString("\n")
		}
	}
	return placeModal(theme, "Open list", b.String(), modalWidth(width, 44), width, height)
}
