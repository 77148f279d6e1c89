package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// confirmDeleteMsg is sent when the user accepts a delete prompt.
type confirmDeleteMsg struct {
	entity string
	id     string
}

// confirmModal asks before a destructive action.
type confirmModal struct {
	entity string
	noun   string
	id     string
	label  string
}

func newConfirmModal(entity, noun, id, label string) *confirmModal {
	return &confirmModal{entity: entity, noun: noun, id: id, label: label}
}

func (c *confirmModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil, false
	}
	switch {
	case key.Matches(km, keys.Confirm):
		entity, id := c.entity, c.id
		return c, func() tea.Msg { return confirmDeleteMsg{entity: entity, id: id} }, true
	case key.Matches(km, keys.Cancel):
		return c, nil, true
	}
	return c, nil, false
}

func (c *confirmModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	target := fmt.Sprintf("%s #%s", c.noun, c.id)
	if c.label != "" {
		target = fmt.Sprintf("%s #%s (%s)", c.noun, c.id, c.label)
	}
	body := styles.Text.Render("Delete "+target+"?") + "\n" +
		styles.MutedText.Render("This cannot be undone.") + "\n\n" +
		styles.DangerText.Render("y") + styles.MutedText.Render(" delete   ") +
		styles.AccentText.Render("n") + styles.MutedText.Render(" keep")
	return placeModal(theme, "Confirm delete", body, modalWidth(width, 50), width, height)
}
