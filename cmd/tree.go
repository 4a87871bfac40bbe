package cmd

import (
	"fmt"
	"io"

	"github.com/egoavara/formguard/internal/activation"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var treeCmd = &cobra.Command{
	Use:   "tree <plugin>",
	Short: "Show the dependency tree of a plugin",
	Long: `Show the activation tree of a plugin without activating anything.

<plugin> is a plugin identifier (dir/file.php) or a plugin directory name.
Dependencies are listed under the plugin that requires them and are
activated first.

Example:
  formguard tree woocommerce-wishlists`,
	Args: cobra.ExactArgs(1),
	RunE: runTree,
}

func runTree(cmd *cobra.Command, args []string) error {
	site, registry, err := openSite()
	if err != nil {
		return err
	}
	defer site.Close()

	tree, err := newSession(site, registry).Builder().Build(args[0])
	if err != nil {
		return err
	}

	printTree(cmd.OutOrStdout(), tree, "")
	return nil
}

// printTree writes a node and its dependencies, one per line.
// Failed nodes carry their error message.
func printTree(w io.Writer, n activation.Node, indent string) {
	mark := ""
	if n.Result != nil {
		mark = " " + color.RedString("✗ %s", n.Result.Message)
	}
	fmt.Fprintf(w, "%s%s%s\n", indent, n.Plugin, mark)
	for _, c := range n.Children {
		printTree(w, c, indent+"  ")
	}
}
