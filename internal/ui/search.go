package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/khidmat-portal/khidmat/internal/listing"
)

// searchSettleMsg fires after the debounce delay for one keystroke
// generation. Only the newest generation applies.
type searchSettleMsg struct {
	gen uint64
}

func newSearchInput() textinput.Model {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "type to search"
	ti.CharLimit = 120
	return ti
}

func (m *Model) startSearch() tea.Cmd {
	m.searching = true
	m.search.SetValue(m.ctrl.Query().Search)
	m.search.CursorEnd()
	return m.search.Focus()
}

// handleSearchKey edits the search box. Each change schedules a settle tick;
// enter applies at once and esc clears the search.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.search.Blur()
		gen := m.settler.Touch(m.search.Value())
		return m.settleSearch(gen)
	case "esc":
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		gen := m.settler.Touch("")
		return m.settleSearch(gen)
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() == before {
		return m, cmd
	}
	gen := m.settler.Touch(m.search.Value())
	return m, tea.Batch(cmd, settleAfter(m.debounce, gen))
}

// settleSearch applies the value for gen when it is still the newest.
func (m Model) settleSearch(gen uint64) (tea.Model, tea.Cmd) {
	value, ok := m.settler.Settle(gen)
	if !ok {
		return m, nil
	}
	if !m.ctrl.SetSearch(value) {
		return m, nil
	}
	m.cursor = 0
	cmd := m.fetch()
	return m, cmd
}

func settleAfter(d time.Duration, gen uint64) tea.Cmd {
	if d <= 0 {
		d = listing.DefaultDebounce
	}
	return tea.Tick(d, func(time.Time) tea.Msg { return searchSettleMsg{gen: gen} })
}
