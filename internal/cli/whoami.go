package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/khidmat-portal/khidmat/internal/access"
	"github.com/khidmat-portal/khidmat/internal/catalog"
)

func newWhoamiCmd(opts *rootOptions) *cobra.Command {
	var showPerms bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user and what they may do",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := openEnv(cmd, opts)
			if err != nil {
				return err
			}
			defer func() { _ = env.Close() }()
			if err := sessionError(env); err != nil {
				return err
			}

			snap := env.Session.Snapshot()
			cs := snap.Capabilities
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "User:        %s\n", valueOr(cs.User, "(unknown)"))
			fmt.Fprintf(w, "Role:        %s\n", valueOr(cs.Role, "(none)"))
			fmt.Fprintf(w, "Super admin: %s\n", yesNo(cs.IsSuperAdmin))
			fmt.Fprintf(w, "Scope:       %s\n", valueOr(describeScope(cs.Scope), "(none)"))
			fmt.Fprintf(w, "Source:      %s\n", sourceLabel(snap.Source))
			if snap.LastError != nil {
				fmt.Fprintf(w, "Warning:     last refresh failed: %v\n", snap.LastError)
			}
			if showPerms {
				fmt.Fprintf(w, "Permissions: %s\n", valueOr(strings.Join(cs.Permissions(), ", "), "(none)"))
			}
			fmt.Fprintln(w)

			headers := []string{"List", "View", "Create", "Edit", "Delete"}
			var rows [][]string
			for _, e := range catalog.All() {
				a := env.Gate.Availability(e.Name)
				rows = append(rows, []string{e.Name, mark(a.CanView), mark(a.CanCreate), mark(a.CanEdit), mark(a.CanDelete)})
			}
			_, err = fmt.Fprintln(w, renderTable(headers, rows))
			return err
		},
	}
	cmd.Flags().BoolVarP(&showPerms, "permissions", "p", false, "Also print every permission name")
	return cmd
}

func describeScope(s access.ScopeFlags) string {
	var parts []string
	if s.RegionAdmin {
		parts = append(parts, scoped("region admin", s.RegionID))
	}
	if s.ZoneAdmin {
		parts = append(parts, scoped("zone admin", s.ZoneID))
	}
	if s.MehfilAdmin {
		parts = append(parts, scoped("mehfil admin", s.MehfilID))
	}
	return strings.Join(parts, ", ")
}

func scoped(label, id string) string {
	if id == "" {
		return label
	}
	return fmt.Sprintf("%s (#%s)", label, id)
}

func sourceLabel(s access.Source) string {
	switch s {
	case access.SourceAPI:
		return "portal /auth/me"
	case access.SourceToken:
		return "token claims (portal unreachable)"
	default:
		return "none"
	}
}

func valueOr(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func mark(b bool) string {
	if b {
		return "yes"
	}
	return "-"
}
