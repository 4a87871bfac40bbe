package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/egoavara/formguard/internal/activation"
	"github.com/egoavara/formguard/internal/autoupdate"
	"github.com/egoavara/formguard/internal/catalog"
	"github.com/egoavara/formguard/internal/host"
	"github.com/egoavara/formguard/internal/i18n"
	"github.com/egoavara/formguard/internal/search"
	"github.com/egoavara/formguard/internal/tui"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var pluginCmd = &cobra.Command{
	Use:   "plugin",
	Short: "Manage site plugins",
	Long: `Manage the plugins installed on the site.

Subcommands:
  list      List installed plugins
  install   Install a plugin from the site catalog
  outdated  List git-installed plugins behind their remote
  update    Pull updates into git-installed plugins
  search    Search integrations`,
}

var pluginListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed plugins",
	Args:  cobra.NoArgs,
	RunE:  runPluginList,
}

var pluginInstallCmd = &cobra.Command{
	Use:   "install <plugin>",
	Short: "Install a plugin from the site catalog",
	Long: `Install a plugin from the site's catalog.json.

<plugin> is a plugin directory name or identifier. Git sources are cloned,
directory sources are copied into the site's plugins directory.

Example:
  formguard plugin install woocommerce
  formguard plugin install woocommerce --activate`,
	Args: cobra.ExactArgs(1),
	RunE: runPluginInstall,
}

var pluginSearchCmd = &cobra.Command{
	Use:   "search <keyword>",
	Short: "Search integrations",
	Long: `Search integrations using fuzzy matching.

The search looks through integration names, settings keys, plugin
directories, categories and keywords.

Example:
  formguard search woo
  formguard search forms`,
	Args: cobra.ExactArgs(1),
	RunE: runPluginSearch,
}

var pluginOutdatedCmd = &cobra.Command{
	Use:   "outdated",
	Short: "List git-installed plugins behind their remote",
	Args:  cobra.NoArgs,
	RunE:  runPluginOutdated,
}

var pluginUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Pull updates into git-installed plugins",
	Long: `Fetch every plugin that was installed from a git source and
fast-forward the ones that are behind their remote.

Example:
  formguard plugin update
  formguard plugin update --yes`,
	Args: cobra.NoArgs,
	RunE: runPluginUpdate,
}

var (
	installActivate bool
	updateYes       bool
)

func init() {
	pluginInstallCmd.Flags().BoolVar(&installActivate, "activate", false, "activate the plugin and its dependencies after installing")

	pluginCmd.AddCommand(pluginListCmd)
	pluginUpdateCmd.Flags().BoolVarP(&updateYes, "yes", "y", false, "apply updates without prompting")

	pluginCmd.AddCommand(pluginInstallCmd)
	pluginCmd.AddCommand(pluginOutdatedCmd)
	pluginCmd.AddCommand(pluginUpdateCmd)
	pluginCmd.AddCommand(pluginSearchCmd)
}

func runPluginList(cmd *cobra.Command, args []string) error {
	site, _, err := openSite()
	if err != nil {
		return err
	}
	defer site.Close()

	installed, err := site.InstalledPlugins()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, i18n.T("InstalledPluginsHeader", nil))
	fmt.Fprintln(out, strings.Repeat("-", 40))

	if len(installed) == 0 {
		fmt.Fprintln(out, i18n.T("NoPluginsInstalled", nil))
		return nil
	}

	ids := make([]string, 0, len(installed))
	for id := range installed {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		h := installed[id]
		state := " "
		if site.IsActive(id) {
			state = color.GreenString("*")
		}
		version := h.Version
		if version == "" {
			version = "-"
		}
		fmt.Fprintf(out, "%s %s (v%s)\n", state, id, version)
		fmt.Fprintf(out, "    %s\n", h.Name)
		if len(h.RequiresPlugins) > 0 {
			fmt.Fprintf(out, "    Requires: %s\n", strings.Join(h.RequiresPlugins, ", "))
		}
	}
	return nil
}

func runPluginInstall(cmd *cobra.Command, args []string) error {
	site, registry, err := openSite()
	if err != nil {
		return err
	}
	defer site.Close()

	out := cmd.OutOrStdout()

	if installActivate {
		session := newSession(site, registry)
		trees, err := session.ActivatePlugins(cmd.Context(), args)
		for _, tree := range trees {
			printTree(out, tree, "")
		}
		if err != nil {
			return err
		}
		names := session.PluginNamesFromTrees(trees)
		fmt.Fprintln(out, color.GreenString("%s", strings.Join(names, ", ")))
		return nil
	}

	id, err := site.Install(cmd.Context(), args[0])
	if err != nil {
		if activation.CodeOf(err) == activation.CodeNotFound {
			return fmt.Errorf("%w (add a source to %s)", err, catalog.ManifestFile)
		}
		return err
	}

	h, err := site.Metadata(id)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, color.GreenString("%s", i18n.T("PluginInstalled", map[string]any{"Name": h.Name})))
	return nil
}

func checkPluginUpdates(cmd *cobra.Command) (*autoupdate.CheckResult, error) {
	site, _, err := openSite()
	if err != nil {
		return nil, err
	}
	defer site.Close()

	checker := autoupdate.NewChecker(nil, filepath.Join(site.Root(), host.PluginsDir))
	result, err := checker.Check(cmd.Context())
	if err != nil {
		return nil, err
	}
	for _, e := range result.Errors {
		slog.Warn("update check failed", "error", e)
	}
	return result, nil
}

func runPluginOutdated(cmd *cobra.Command, args []string) error {
	result, err := checkPluginUpdates(cmd)
	if err != nil {
		return err
	}
	autoupdate.ShowUpdateSummary(cmd.OutOrStdout(), result)
	return nil
}

func runPluginUpdate(cmd *cobra.Command, args []string) error {
	result, err := checkPluginUpdates(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	autoupdate.ShowUpdateSummary(out, result)
	if !result.HasAnyUpdate {
		return nil
	}
	if !updateYes {
		ok, err := confirmUpdate(cmd, result)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, i18n.T("Cancelled", nil))
			return nil
		}
	}

	updater := autoupdate.NewUpdater(nil, out, slog.Default())
	return updater.ApplyUpdates(cmd.Context(), result)
}

// confirmUpdate shows the TUI dialog on a terminal and falls back to a line prompt
func confirmUpdate(cmd *cobra.Command, result *autoupdate.CheckResult) (bool, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && isatty.IsTerminal(f.Fd()) && isatty.IsTerminal(os.Stdout.Fd()) {
		var details []string
		for _, p := range result.Pending() {
			details = append(details, fmt.Sprintf("%s %s -> %s", p.Name, p.CurrentVer, p.RemoteVer))
		}
		return tui.RunConfirm(i18n.T("UpdatePrompt", nil), details)
	}
	return autoupdate.PromptUpdate(cmd.InOrStdin(), cmd.OutOrStdout(), result), nil
}

func runPluginSearch(cmd *cobra.Command, args []string) error {
	keyword := args[0]

	registry, err := loadRegistry()
	if err != nil {
		return err
	}

	results := search.FuzzySearch(registry.All(), keyword)
	out := cmd.OutOrStdout()

	if len(results) == 0 {
		fmt.Fprintln(out, i18n.T("NoResults", map[string]any{"Keyword": keyword}))
		return nil
	}

	fmt.Fprintln(out, i18n.T("SearchResultsHeader", map[string]any{"Count": len(results)}))
	fmt.Fprintln(out)

	for _, r := range results {
		it := r.Integration
		fmt.Fprintf(out, "  %s (%s)\n", it.Name, it.Status)
		if it.Theme != "" {
			fmt.Fprintf(out, "    Theme: %s\n", it.Theme)
		}
		if len(it.Plugins) > 0 {
			fmt.Fprintf(out, "    Plugins: %s\n", strings.Join(it.Plugins, ", "))
		}
		if it.Category != "" {
			fmt.Fprintf(out, "    Category: %s\n", it.Category)
		}
		fmt.Fprintln(out)
	}

	return nil
}
