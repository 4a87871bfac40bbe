package autoupdate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/egoavara/formguard/internal/git"
	"github.com/egoavara/formguard/internal/plugin"
)

// Checker finds plugins whose git checkout is behind its remote
type Checker struct {
	gitClient git.Client
	plugins   *plugin.Directory
}

// NewChecker creates a new update checker for a site's plugin directory.
// A nil client uses the git command line.
func NewChecker(client git.Client, pluginsRoot string) *Checker {
	if client == nil {
		client = git.NewClient()
	}
	return &Checker{
		gitClient: client,
		plugins:   plugin.NewDirectory(pluginsRoot),
	}
}

// Check inspects every installed plugin directory that is its own git checkout.
// Plugins copied from a directory source are skipped.
func (c *Checker) Check(ctx context.Context) (*CheckResult, error) {
	installed, err := c.plugins.Scan()
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(installed))
	for id := range installed {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	// one checkout per directory, even when it holds several plugin files
	var dirs []string
	names := make(map[string]string)
	for _, id := range ids {
		dir := plugin.DirOf(id)
		if dir+".php" == id {
			continue // single-file plugin
		}
		if _, ok := names[dir]; ok {
			continue
		}
		names[dir] = installed[id].Name
		dirs = append(dirs, dir)
	}

	result := &CheckResult{
		Plugins: []UpdateInfo{},
		Errors:  []error{},
	}

	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := c.plugins.Path(dir)
		if !isCheckout(path) || !c.gitClient.IsGitRepository(path) {
			continue
		}

		info := UpdateInfo{
			Dir:  dir,
			Name: names[dir],
			Path: path,
		}

		currentCommit, err := c.gitClient.GetCurrentCommit(path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("%s: %w", dir, err))
			continue
		}
		info.CurrentVer = shortCommit(currentCommit)

		// Check for updates (this also fetches)
		hasUpdate, err := c.gitClient.HasUpdates(ctx, path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("%s: %w", dir, err))
			continue
		}

		if hasUpdate {
			// Get remote commit for display
			remoteCommit, err := c.gitClient.GetRemoteCommit(path, "")
			if err == nil {
				info.RemoteVer = shortCommit(remoteCommit)
			}
			info.HasUpdate = true
		}

		result.Plugins = append(result.Plugins, info)
	}

	result.HasAnyUpdate = result.TotalUpdates() > 0
	return result, nil
}

// isCheckout reports whether path holds its own .git entry rather than
// merely sitting inside an enclosing repository
func isCheckout(path string) bool {
	_, err := os.Stat(filepath.Join(path, ".git"))
	return err == nil
}

// shortCommit returns first 7 characters of a commit hash
func shortCommit(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}
