package cmd

import (
	"fmt"

	"github.com/egoavara/formguard/internal/activation"
	"github.com/egoavara/formguard/internal/modules"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	deactivateTheme string
)

var activateCmd = &cobra.Command{
	Use:   "activate <status>",
	Short: "Activate an integration",
	Long: `Activate an integration by its settings key.

Plugin integrations activate their installed plugins together with every
plugin they require. Theme integrations activate the theme's plugins and
then switch the site theme.

Example:
  formguard activate woocommerce_status
  formguard activate avada_status`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd, args[0], true)
	},
}

var deactivateCmd = &cobra.Command{
	Use:   "deactivate <status>",
	Short: "Deactivate an integration",
	Long: `Deactivate an integration by its settings key.

Deactivating a theme integration switches to --theme, or to the site's
default theme when --theme is not given.

Example:
  formguard deactivate woocommerce_status
  formguard deactivate divi_status --theme twentytwentyfive`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd, args[0], false)
	},
}

func init() {
	deactivateCmd.Flags().StringVar(&deactivateTheme, "theme", "", "theme to switch to when deactivating a theme integration")
}

func runProcess(cmd *cobra.Command, status string, activate bool) error {
	site, registry, err := openSite()
	if err != nil {
		return err
	}
	defer site.Close()

	it, ok := registry.Get(status)
	if !ok {
		return fmt.Errorf("unknown integration: %s", status)
	}

	req := activation.Request{
		Activate: activate,
		Entity:   it.Entity,
		Status:   status,
	}
	if !activate && it.Entity == modules.EntityTheme {
		req.NewTheme = deactivateTheme
	}

	resp, err := newSession(site, registry).Process(cmd.Context(), req)
	if verbose {
		for _, tree := range resp.Trees {
			printTree(cmd.OutOrStdout(), tree, "")
		}
	}
	if err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), color.RedString("%s", resp.Message))
		return fmt.Errorf("%s failed (%s)", status, activation.CodeOf(err))
	}

	fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("%s", resp.Message))
	return nil
}
