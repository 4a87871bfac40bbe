package cmd

import (
	"fmt"
	"strings"

	"github.com/egoavara/formguard/internal/i18n"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which integrations are enabled",
	Long: `Show every known integration and whether it is enabled on the site.

A plugin integration is enabled when any of its plugins is active; a theme
integration when its theme is the active theme or its parent.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	site, registry, err := openSite()
	if err != nil {
		return err
	}
	defer site.Close()

	stati := newSession(site, registry).Stati()
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, i18n.T("StatusHeader", nil))
	fmt.Fprintln(out, strings.Repeat("-", 40))

	for _, it := range registry.All() {
		state := color.New(color.FgHiBlack).Sprint("off")
		if stati[it.Status] {
			state = color.GreenString("on ")
		}
		fmt.Fprintf(out, "  %s  %-32s %s (%s)\n", state, it.Status, it.Name, it.Entity)
	}

	stylesheet, template := site.ActiveTheme()
	if stylesheet != "" {
		fmt.Fprintln(out)
		if template != stylesheet {
			fmt.Fprintf(out, "Theme: %s (child of %s)\n", stylesheet, template)
		} else {
			fmt.Fprintf(out, "Theme: %s\n", stylesheet)
		}
	}
	return nil
}
