package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Client is the interface for git operations used by plugin installs
type Client interface {
	Clone(ctx context.Context, url, ref, destPath string) error
	Pull(ctx context.Context, repoPath string) error
	GetCurrentCommit(repoPath string) (string, error)
	GetRemoteCommit(repoPath, branch string) (string, error)
	HasUpdates(ctx context.Context, repoPath string) (bool, error)
	IsGitRepository(path string) bool
}

// DefaultClient is the default git client implementation
type DefaultClient struct {
	Timeout time.Duration
}

// NewClient creates a new git client
func NewClient() *DefaultClient {
	return &DefaultClient{
		Timeout: 5 * time.Minute,
	}
}

// Clone shallow-clones a git repository to the specified path.
// ref selects a branch or tag; empty clones the default branch.
func (c *DefaultClient) Clone(ctx context.Context, url, ref, destPath string) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	args := []string{"clone", "--depth", "1"}
	if ref != "" {
		args = append(args, "--branch", ref)
	}
	args = append(args, url, destPath)

	cmd := exec.CommandContext(ctx, "git", args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		errMsg := stderr.String()
		if isAuthError(errMsg) {
			return &AuthError{URL: url, Message: errMsg}
		}
		if ctx.Err() != nil {
			return fmt.Errorf("git clone aborted: %w", ctx.Err())
		}
		return fmt.Errorf("git clone failed: %s", strings.TrimSpace(errMsg))
	}

	return nil
}

// Pull fast-forwards a git repository to its upstream
func (c *DefaultClient) Pull(ctx context.Context, repoPath string) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "-C", repoPath, "pull", "--ff-only")

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		errMsg := stderr.String()
		if isAuthError(errMsg) {
			return &AuthError{URL: repoPath, Message: errMsg}
		}
		return fmt.Errorf("git pull failed: %s", strings.TrimSpace(errMsg))
	}

	return nil
}

// Fetch fetches changes from remote without merging
func (c *DefaultClient) Fetch(ctx context.Context, repoPath string) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "-C", repoPath, "fetch", "--quiet")

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		errMsg := stderr.String()
		if isAuthError(errMsg) {
			return &AuthError{URL: repoPath, Message: errMsg}
		}
		return fmt.Errorf("git fetch failed: %s", strings.TrimSpace(errMsg))
	}

	return nil
}

// GetRemoteCommit returns the latest commit SHA of a remote branch
func (c *DefaultClient) GetRemoteCommit(repoPath, branch string) (string, error) {
	if branch == "" {
		branch = "origin/HEAD"
	} else {
		branch = "origin/" + branch
	}

	cmd := exec.Command("git", "-C", repoPath, "rev-parse", branch)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		return "", fmt.Errorf("failed to get remote commit: %s", strings.TrimSpace(stderr.String()))
	}

	return strings.TrimSpace(stdout.String()), nil
}

// HasUpdates checks if the local repository is behind the remote
func (c *DefaultClient) HasUpdates(ctx context.Context, repoPath string) (bool, error) {
	// Fetch first to get latest remote state
	if err := c.Fetch(ctx, repoPath); err != nil {
		return false, err
	}

	branchCmd := exec.Command("git", "-C", repoPath, "rev-parse", "--abbrev-ref", "HEAD")
	var branchOut bytes.Buffer
	branchCmd.Stdout = &branchOut
	if err := branchCmd.Run(); err != nil {
		return false, fmt.Errorf("failed to get current branch: %w", err)
	}
	branch := strings.TrimSpace(branchOut.String())
	if branch == "HEAD" {
		// detached checkout of a tag
		branch = ""
	}

	localCommit, err := c.GetCurrentCommit(repoPath)
	if err != nil {
		return false, err
	}

	remoteCommit, err := c.GetRemoteCommit(repoPath, branch)
	if err != nil {
		return false, err
	}

	return localCommit != remoteCommit, nil
}

// GetCurrentCommit returns the current commit SHA
func (c *DefaultClient) GetCurrentCommit(repoPath string) (string, error) {
	cmd := exec.Command("git", "-C", repoPath, "rev-parse", "HEAD")

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	err := cmd.Run()
	if err != nil {
		return "", fmt.Errorf("failed to get current commit: %w", err)
	}

	return strings.TrimSpace(stdout.String()), nil
}

// IsGitRepository checks if the given path is a git repository
func (c *DefaultClient) IsGitRepository(path string) bool {
	cmd := exec.Command("git", "-C", path, "rev-parse", "--is-inside-work-tree")
	err := cmd.Run()
	return err == nil
}

func (c *DefaultClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.Timeout > 0 {
		return context.WithTimeout(ctx, c.Timeout)
	}
	return context.WithCancel(ctx)
}

// AuthError represents a git authentication error
type AuthError struct {
	URL     string
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed for '%s': %s", e.URL, e.Message)
}

// isAuthError checks if the error message indicates an authentication failure
func isAuthError(msg string) bool {
	authPatterns := []string{
		"Authentication failed",
		"Permission denied",
		"could not read Username",
		"fatal: repository",
		"not found",
		"403",
		"401",
	}

	for _, pattern := range authPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
