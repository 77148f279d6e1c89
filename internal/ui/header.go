package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/khidmat-portal/khidmat/internal/access"
)

// renderHeader renders the session bar with the current toast.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	session := m.session.Snapshot()
	cs := session.Capabilities

	parts := []string{bg.Render("khidmat", styles.Logo)}

	switch {
	case session.Source == access.SourceNone && session.LastError != nil:
		parts = append(parts, bg.Render("● signed out", styles.DangerText))
	case session.Source == access.SourceNone:
		parts = append(parts, bg.Render("● connecting…", styles.WarningText))
	default:
		user := cs.User
		if user == "" {
			user = "unknown user"
		}
		parts = append(parts, bg.Render("● "+user, styles.SuccessText))
		role := cs.Role
		if cs.IsSuperAdmin {
			role = "super admin"
		}
		if role != "" {
			parts = append(parts, bg.Render(role, styles.MutedText))
		}
		if scope := scopeLabel(cs.Scope); scope != "" {
			parts = append(parts, bg.Render(scope, styles.InfoText))
		}
		if session.Source == access.SourceToken {
			parts = append(parts, bg.Render("offline claims", styles.WarningText))
		}
	}
	if session.IsStale() {
		parts = append(parts, bg.Render("session stale", styles.DangerText))
	}

	left := bg.Join(parts, "  ")
	right := m.renderToast()
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		right = ""
		gap = 1
	}
	return styles.Header.Width(m.width).Render(left + bg.Spaces(gap) + right)
}

// renderToast shows the newest unexpired notice.
func (m Model) renderToast() string {
	if m.notices == nil {
		return ""
	}
	n, ok := m.notices.Current()
	if !ok {
		return ""
	}
	styles := m.theme.Styles()
	limit := max(m.width/2, 20)
	return styles.NoticeStyle(n.Level).Render(truncate(n.Message, limit))
}

func scopeLabel(s access.ScopeFlags) string {
	var parts []string
	if s.RegionAdmin {
		parts = append(parts, "region "+s.RegionID)
	}
	if s.ZoneAdmin {
		parts = append(parts, "zone "+s.ZoneID)
	}
	if s.MehfilAdmin {
		parts = append(parts, "mehfil "+s.MehfilID)
	}
	return strings.TrimSpace(strings.Join(parts, ", "))
}

// renderCommandBar shows the search box while searching, otherwise the
// actions the current screen offers. Actions the gate denies are omitted.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	if m.searching {
		return styles.Footer.Width(m.width).Render(
			bg.Render("Search", styles.AccentText) + bg.Spaces(1) + m.search.View())
	}

	type cmd struct{ key, label string }
	var cmds []cmd
	switch m.screen {
	case screenActivity:
		cmds = []cmd{{"L", "level " + m.activity.minLevel.String()}, {"r", "reload"}, {"esc", "back"}}
	case screenRoster:
		cmds = []cmd{{"w", "table"}, {"h/l", "page"}, {"esc", "back"}}
	default:
		avail := m.view.Availability
		cmds = append(cmds, cmd{"tab", "lists"}, cmd{"/", "search"}, cmd{"f", "filter"}, cmd{"s", "sort"})
		if avail.CanCreate {
			cmds = append(cmds, cmd{"n", "new"})
		}
		if avail.CanEdit {
			cmds = append(cmds, cmd{"e", "edit"})
		}
		if avail.CanDelete {
			cmds = append(cmds, cmd{"d", "delete"})
		}
		if m.view.Entity.Name == rosterEntity {
			cmds = append(cmds, cmd{"w", "week"})
		}
		cmds = append(cmds, cmd{"A", "activity"})
	}
	cmds = append(cmds, cmd{"?", "help"}, cmd{"q", "quit"})

	parts := make([]string, 0, len(cmds))
	for _, c := range cmds {
		parts = append(parts, bg.Render(c.key, styles.WarningText)+bg.Spaces(1)+bg.Render(c.label, styles.MutedText))
	}
	return styles.Footer.Width(m.width).Render(truncateStyled(bg.Join(parts, "  "), max(m.width-2, 1)))
}
