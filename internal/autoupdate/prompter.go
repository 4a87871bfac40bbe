package autoupdate

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/egoavara/formguard/internal/i18n"
)

// ShowUpdateSummary displays a summary of available updates
func ShowUpdateSummary(w io.Writer, result *CheckResult) {
	if !result.HasAnyUpdate {
		fmt.Fprintln(w, i18n.T("UpdateNoUpdates", nil))
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, i18n.T("UpdateAvailable", map[string]any{"Count": result.TotalUpdates()}, result.TotalUpdates()))
	fmt.Fprintln(w)

	for _, p := range result.Pending() {
		remote := p.RemoteVer
		if remote == "" {
			remote = "?"
		}
		fmt.Fprintf(w, "  %s (%s) %s -> %s\n", p.Name, p.Dir, p.CurrentVer, remote)
	}

	fmt.Fprintln(w)
}

// PromptUpdate asks the user if they want to apply updates
func PromptUpdate(r io.Reader, w io.Writer, result *CheckResult) bool {
	if !result.HasAnyUpdate {
		return false
	}

	fmt.Fprint(w, i18n.T("UpdatePrompt", nil)+" [Y/n] ")

	reader := bufio.NewReader(r)
	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		return false
	}

	input = strings.TrimSpace(strings.ToLower(input))

	// Default to yes if empty or explicit yes
	return input == "" || input == "y" || input == "yes"
}
