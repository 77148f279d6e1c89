package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Modal is the interface for modal dialogs. Update returns the updated
// modal, a command, and whether the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// placeModal centers a bordered box on the screen.
func placeModal(theme Theme, title, body string, width, screenW, screenH int) string {
	styles := theme.Styles()
	content := styles.Text.Bold(true).Render(title) + "\n\n" + body
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.Accent)).
		Padding(1, 2).
		Width(width).
		Render(content)
	return lipgloss.Place(
		screenW,
		screenH,
		lipgloss.Center,
		lipgloss.Center,
		box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}

// modalWidth keeps dialogs readable on both narrow and wide terminals.
func modalWidth(screen, preferred int) int {
	w := min(preferred, screen-6)
	return max(w, 20)
}
