package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/egoavara/formguard/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage formguard configuration",
	Long: `Manage formguard configuration settings.

Example:
  formguard config show
  formguard config set site.root /srv/www/site`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value.

Available keys:
  locale                  - Language setting
                            Values: auto, en-US, ko-KR, etc.
  site.root               - Site directory (plugins/, themes/, options.db)
  site.defaultTheme       - Theme used when a theme integration is deactivated
  site.allowInstall       - Install missing plugins from catalog.json
                            Values: true, false
  server.listen           - Address "formguard serve" listens on
  server.tokens.<token>   - Capabilities granted to a bearer token
                            Values: comma separated list of activate_plugins,
                            install_plugins, switch_themes or "*"; empty revokes
  registry.overrides      - YAML file extending the builtin integrations

Example:
  formguard config set locale ko-KR
  formguard config set server.tokens.s3cret activate_plugins,switch_themes`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Configuration:")
	fmt.Fprintln(out, "----------------------------------------")
	for _, key := range config.Keys {
		value, err := cfg.Value(key)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  %s: %s\n", key, value)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "  Tokens: %d configured\n", len(cfg.Server.Tokens))
	tokens := make([]string, 0, len(cfg.Server.Tokens))
	for token := range cfg.Server.Tokens {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	for _, token := range tokens {
		fmt.Fprintf(out, "    %s: %s\n", maskToken(token), strings.Join(cfg.Server.Tokens[token], ", "))
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Locale:")
	if cfg.Locale == "auto" {
		fmt.Fprintln(out, "  auto: System locale is auto-detected")
	} else {
		fmt.Fprintf(out, "  %s: Using fixed locale\n", cfg.Locale)
	}

	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	cfg := config.Get()
	if err := cfg.Set(key, value); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return err
	}

	if key == "locale" {
		fmt.Fprintf(cmd.OutOrStdout(), "Locale set to '%s'. Restart formguard to apply.\n", value)
	}
	return nil
}

// maskToken hides all but the last four characters of a token
func maskToken(token string) string {
	if len(token) <= 4 {
		return strings.Repeat("*", len(token))
	}
	return strings.Repeat("*", len(token)-4) + token[len(token)-4:]
}
