// Package cli provides khidmat's command line. Without a subcommand it
// starts the TUI; the other commands reuse the same list controller and
// permission gate for scripted use.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/khidmat-portal/khidmat/internal/app"
	"github.com/khidmat-portal/khidmat/internal/catalog"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=...".
var Version = "dev"

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	envFile    string
	prefsPath  string
	debug      bool
}

func (o *rootOptions) appOptions(logToStderr bool) app.Options {
	return app.Options{
		ConfigPath:  o.configPath,
		EnvFile:     o.envFile,
		PrefsPath:   o.prefsPath,
		Debug:       o.debug,
		LogToStderr: logToStderr,
	}
}

// NewRootCmd creates the khidmat command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "khidmat",
		Short: "Terminal client for the Khidmat admin portal",
		Long: `khidmat browses and manages Khidmat portal lists from the terminal.

Run without a command to open the interactive interface. The list, delete,
create, update and whoami commands talk to the same API with the same
permission checks, for use in scripts.

Configuration is read from ~/.config/khidmat/config.toml, then KHIDMAT_*
variables from ./.env and the environment.`,
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), opts, "")
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "Config file path (default ~/.config/khidmat/config.toml)")
	pf.StringVar(&opts.envFile, "env-file", "", "File of KHIDMAT_* variables (default ./.env)")
	pf.StringVar(&opts.prefsPath, "prefs", "", "Preferences file path (default ~/.config/khidmat/prefs.toml)")
	pf.BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	root.AddCommand(
		newTUICmd(opts),
		newListCmd(opts),
		newDeleteCmd(opts),
		newCreateCmd(opts),
		newUpdateCmd(opts),
		newWhoamiCmd(opts),
		newEntitiesCmd(),
	)
	return root
}

// Execute runs the command tree with args.
func Execute(ctx context.Context, args []string) error {
	root := NewRootCmd()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// openEnv connects to the portal for a one-shot command. Logs go to stderr.
func openEnv(cmd *cobra.Command, opts *rootOptions) (*app.Env, error) {
	return app.Open(cmd.Context(), opts.appOptions(true))
}

// sessionError reports why the session could not be resolved, so commands
// fail with the cause instead of a blanket permission denial.
func sessionError(env *app.Env) error {
	snap := env.Session.Snapshot()
	if snap.LastError != nil && snap.Capabilities.IsZero() {
		return snap.LastError
	}
	return nil
}

func completeEntities(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return catalog.Names(), cobra.ShellCompDirectiveNoFileComp
}
