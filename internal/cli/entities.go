package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/khidmat-portal/khidmat/internal/catalog"
)

func newEntitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "entities",
		Short: "List the portal collections khidmat knows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			headers := []string{"Name", "Title", "Path", "Permission", "Filters"}
			var rows [][]string
			for _, e := range catalog.All() {
				keys := make([]string, 0, len(e.Filters))
				for _, f := range e.Filters {
					keys = append(keys, f.Key)
				}
				rows = append(rows, []string{e.Name, e.Title, e.Path, "*_" + e.PermissionKey, strings.Join(keys, ", ")})
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows))
			return err
		},
	}
}
