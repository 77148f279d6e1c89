package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Entities   key.Binding
	Activity   key.Binding
	Refresh    key.Binding
	Escape     key.Binding

	// Navigation
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	NextPage key.Binding
	PrevPage key.Binding

	// List
	Search       key.Binding
	Filters      key.Binding
	ClearFilters key.Binding
	Sort         key.Binding
	SortDir      key.Binding
	Bigger       key.Binding
	Smaller      key.Binding
	Detail       key.Binding
	Roster       key.Binding

	// Row and header actions
	Create key.Binding
	Edit   key.Binding
	Delete key.Binding

	// Activity
	CycleLevel key.Binding

	// Modals
	Confirm key.Binding
	Cancel  key.Binding
	Submit  key.Binding
	Next    key.Binding
	Prev    key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Entities: key.NewBinding(
			key.WithKeys("tab", "E"),
			key.WithHelp("tab", "Switch list"),
		),
		Activity: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "Activity log"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r", "ctrl+r"),
			key.WithHelp("r", "Reload"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Back to list"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("j/k", "Move down/up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g/G", "First/last row"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("l", "right", "pgdown", "]"),
			key.WithHelp("h/l", "Prev/next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("h", "left", "pgup", "["),
		),

		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Search"),
		),
		Filters: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Filters"),
		),
		ClearFilters: key.NewBinding(
			key.WithKeys("F"),
			key.WithHelp("F", "Clear filters"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Sort by next column"),
		),
		SortDir: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "Reverse sort"),
		),
		Bigger: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+/-", "Page size"),
		),
		Smaller: key.NewBinding(
			key.WithKeys("-"),
		),
		Detail: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Show record"),
		),
		Roster: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "Weekly roster grid"),
		),

		Create: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "New record"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "Edit record"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "Delete record"),
		),

		CycleLevel: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Cycle minimum level"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("enter", "y"),
			key.WithHelp("y/enter", "Confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc", "n"),
			key.WithHelp("n/esc", "Cancel"),
		),
		Submit: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "Save"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab", "down", "j"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up", "k"),
		),
	}
}
