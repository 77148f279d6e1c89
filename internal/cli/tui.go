package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/khidmat-portal/khidmat/internal/app"
	"github.com/khidmat-portal/khidmat/internal/catalog"
)

func newTUICmd(opts *rootOptions) *cobra.Command {
	var entity string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive interface (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if entity != "" {
				e, err := catalog.Lookup(entity)
				if err != nil {
					return err
				}
				entity = e.Name
			}
			return runTUI(cmd.Context(), opts, entity)
		},
	}
	cmd.Flags().StringVarP(&entity, "entity", "e", "", "List to open first (default: last used)")
	_ = cmd.RegisterFlagCompletionFunc("entity", completeEntities)
	return cmd
}

func runTUI(ctx context.Context, opts *rootOptions, entity string) error {
	appOpts := opts.appOptions(false)
	appOpts.Entity = entity
	return app.Run(ctx, appOpts)
}
