package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/khidmat-portal/khidmat/internal/logtail"
)

const activityLines = 500

// activityLevels is the cycle for the minimum level filter.
var activityLevels = []zerolog.Level{
	zerolog.DebugLevel,
	zerolog.InfoLevel,
	zerolog.WarnLevel,
	zerolog.ErrorLevel,
}

type activityState struct {
	entries  []logtail.Entry
	minLevel zerolog.Level
	offset   int // lines scrolled up from the bottom
	err      error
}

type activityMsg struct {
	entries []logtail.Entry
	err     error
}

func loadActivityCmd(path string) tea.Cmd {
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		lines, err := logtail.Read(path, activityLines)
		return activityMsg{entries: logtail.ParseAll(lines), err: err}
	}
}

func (a *activityState) cycleLevel() {
	for i, l := range activityLevels {
		if l == a.minLevel {
			a.minLevel = activityLevels[(i+1)%len(activityLevels)]
			return
		}
	}
	a.minLevel = zerolog.InfoLevel
}

func (a *activityState) scroll(delta, visible int) {
	total := len(logtail.Filter(a.entries, a.minLevel, ""))
	a.offset = min(max(a.offset+delta, 0), max(total-visible, 0))
}

func (m Model) renderActivity(width, height int) string {
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	inner := max(height-2, 1)

	var lines []string
	switch {
	case m.logPath == "":
		lines = []string{styles.MutedText.Render("Logging goes to stderr; there is no activity file.")}
	case m.activity.err != nil:
		lines = []string{styles.DangerText.Render(fmt.Sprintf("Cannot read %s: %v", m.logPath, m.activity.err))}
	default:
		entries := logtail.Filter(m.activity.entries, m.activity.minLevel, "")
		end := max(len(entries)-m.activity.offset, 0)
		start := max(end-inner, 0)
		for _, e := range entries[start:end] {
			lines = append(lines, m.renderEntry(e, width-2, styles))
		}
		if len(lines) == 0 {
			lines = []string{styles.MutedText.Render("Nothing logged at this level yet.")}
		}
	}

	title := "Activity · " + truncateMiddle(m.logPath, max(width/2, 10))
	return m.renderTitledBox(title, strings.Join(lines, "\n"), width, height, true)
}

func (m Model) renderEntry(e logtail.Entry, width int, styles Styles) string {
	if e.Continuation {
		return styles.FaintText.Render(truncate("    "+e.Message, width))
	}
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(styles.FaintText.Render(e.Time.Format("15:04:05")))
		b.WriteString(" ")
	}
	b.WriteString(m.levelStyle(e.Level).Render(fit(levelTag(e.Level), 5)))
	b.WriteString(" ")
	b.WriteString(styles.Text.Render(e.Message))
	for _, f := range e.Fields {
		b.WriteString(" ")
		b.WriteString(styles.MutedText.Render(f.Key + "="))
		b.WriteString(styles.AccentText.Render(f.Value))
	}
	return truncateStyled(b.String(), width)
}

func levelTag(l zerolog.Level) string {
	if l == zerolog.NoLevel {
		return "-"
	}
	return strings.ToUpper(l.String())
}

func (m Model) levelStyle(l zerolog.Level) lipgloss.Style {
	color := m.theme.Muted
	switch l {
	case zerolog.InfoLevel:
		color = m.theme.Success
	case zerolog.WarnLevel:
		color = m.theme.Warning
	case zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel:
		color = m.theme.Danger
	case zerolog.DebugLevel, zerolog.TraceLevel:
		color = m.theme.Info
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Background(lipgloss.Color(m.theme.FocusBg)).Bold(true)
}
