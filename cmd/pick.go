package cmd

import (
	"fmt"

	"github.com/egoavara/formguard/internal/activation"
	"github.com/egoavara/formguard/internal/i18n"
	"github.com/egoavara/formguard/internal/tui"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Toggle integrations interactively",
	Long: `Open an interactive finder listing every integration.

Type to filter, Tab to toggle, Enter to review the changes. Confirmed
changes are applied one integration at a time.`,
	Args: cobra.NoArgs,
	RunE: runPick,
}

func runPick(cmd *cobra.Command, args []string) error {
	site, registry, err := openSite()
	if err != nil {
		return err
	}
	defer site.Close()

	result, err := tui.RunIntegrationFinder(registry.All(), newSession(site, registry).Stati())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if result.Cancelled {
		fmt.Fprintln(out, i18n.T("Cancelled", nil))
		return nil
	}

	var failed int
	apply := func(item tui.IntegrationItem, activate bool) {
		it := item.Integration
		resp, err := newSession(site, registry).Process(cmd.Context(), activation.Request{
			Activate: activate,
			Entity:   it.Entity,
			Status:   it.Status,
		})
		if err != nil {
			failed++
			fmt.Fprintln(out, color.RedString("✗ %s", resp.Message))
			return
		}
		fmt.Fprintln(out, color.GreenString("✓ %s", resp.Message))
	}

	for _, item := range result.ToDeactivate {
		apply(item, false)
	}
	for _, item := range result.ToActivate {
		apply(item, true)
	}

	if failed > 0 {
		return fmt.Errorf("%d integration(s) failed", failed)
	}
	return nil
}
