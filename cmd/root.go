package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	verbose  bool
	siteRoot string

	rootCmd = &cobra.Command{
		Use:           "formguard",
		Short:         "Activate CAPTCHA integrations on a site",
		SilenceErrors: true,
		SilenceUsage:  true,
		Long: `formguard manages the third-party plugins and themes a site's CAPTCHA
protection integrates with.

Activating an integration activates its plugins, dependencies first,
installing missing ones from the site catalog when allowed.

Commands:
  activate     Activate an integration
  deactivate   Deactivate an integration
  status       Show which integrations are enabled
  tree         Show the dependency tree of a plugin
  plugin       Manage site plugins (list, install, outdated, update, search)
  pick         Toggle integrations interactively
  serve        Serve the admin AJAX endpoint
  config       Manage configuration

Shortcuts (aliases):
  search       = plugin search
  update       = plugin update`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogger()
		},
	}
)

// setupLogger installs the default slog logger; --verbose lowers the level to debug
func setupLogger() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// createAliasCommand creates a root-level alias that shares flags with a plugin subcommand
func createAliasCommand(pluginSubCmd *cobra.Command, aliases []string) *cobra.Command {
	aliasCmd := &cobra.Command{
		Use:     pluginSubCmd.Use,
		Short:   pluginSubCmd.Short + " (alias)",
		Long:    pluginSubCmd.Long,
		Args:    pluginSubCmd.Args,
		Aliases: aliases,
		RunE:    pluginSubCmd.RunE,
	}
	// Copy all flags from the original command
	pluginSubCmd.Flags().VisitAll(func(f *pflag.Flag) {
		aliasCmd.Flags().AddFlag(f)
	})
	return aliasCmd
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&siteRoot, "site", "", "site directory (overrides config site.root)")

	// Main commands
	rootCmd.AddCommand(activateCmd)
	rootCmd.AddCommand(deactivateCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(pluginCmd)
	rootCmd.AddCommand(pickCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
}

// RegisterPluginAliases registers root-level aliases for plugin subcommands
// Must be called after plugin subcommands are initialized
func RegisterPluginAliases() {
	rootCmd.AddCommand(createAliasCommand(pluginSearchCmd, nil))
	rootCmd.AddCommand(createAliasCommand(pluginUpdateCmd, []string{"upgrade"}))
}
