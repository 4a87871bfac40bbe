package autoupdate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/egoavara/formguard/internal/git"
	"github.com/egoavara/formguard/internal/i18n"
)

// Spinner characters
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner represents a terminal spinner
type Spinner struct {
	out     io.Writer
	message string
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
}

// NewSpinner creates a new spinner with a message
func NewSpinner(out io.Writer, message string) *Spinner {
	return &Spinner{
		out:     out,
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start starts the spinner animation
func (s *Spinner) Start() {
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()
		for i := 0; ; i++ {
			s.mu.Lock()
			fmt.Fprintf(s.out, "\r  %s %s ", spinnerFrames[i%len(spinnerFrames)], s.message)
			s.mu.Unlock()

			select {
			case <-s.stop:
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop stops the spinner and shows the result
func (s *Spinner) Stop(success bool) {
	close(s.stop)
	<-s.done
	s.mu.Lock()
	defer s.mu.Unlock()
	if success {
		fmt.Fprintf(s.out, "\r  ✓ %s\n", s.message)
	} else {
		fmt.Fprintf(s.out, "\r  ✗ %s\n", s.message)
	}
}

// Updater pulls the latest changes into plugin checkouts
type Updater struct {
	gitClient git.Client
	out       io.Writer
	logger    *slog.Logger
}

// NewUpdater creates a new updater writing progress to out.
// A nil client uses the git command line.
func NewUpdater(client git.Client, out io.Writer, logger *slog.Logger) *Updater {
	if client == nil {
		client = git.NewClient()
	}
	if out == nil {
		out = io.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Updater{
		gitClient: client,
		out:       out,
		logger:    logger,
	}
}

// ApplyUpdates pulls every plugin with a pending update.
// Every plugin is attempted; the failures are joined into the returned error.
func (u *Updater) ApplyUpdates(ctx context.Context, result *CheckResult) error {
	if !result.HasAnyUpdate {
		return nil
	}

	fmt.Fprintln(u.out, i18n.T("Updating", nil))
	fmt.Fprintln(u.out)

	var updateErrors []error

	for _, p := range result.Pending() {
		spinner := NewSpinner(u.out, p.Name)
		spinner.Start()

		err := u.updatePlugin(ctx, p)
		spinner.Stop(err == nil)

		if err != nil {
			updateErrors = append(updateErrors, err)
		}
	}

	fmt.Fprintln(u.out)

	if len(updateErrors) > 0 {
		fmt.Fprintln(u.out, i18n.T("UpdatePartialSuccess", nil))
	} else {
		fmt.Fprintln(u.out, i18n.T("UpdateComplete", nil))
	}

	return errors.Join(updateErrors...)
}

// updatePlugin pulls the latest changes for a plugin checkout
func (u *Updater) updatePlugin(ctx context.Context, info UpdateInfo) error {
	if err := u.gitClient.Pull(ctx, info.Path); err != nil {
		var authErr *git.AuthError
		if errors.As(err, &authErr) {
			u.logger.Warn("plugin update needs credentials", "plugin", info.Dir, "error", err)
		}
		return fmt.Errorf("failed to update %s: %w", info.Dir, err)
	}

	u.logger.Info("plugin updated", "plugin", info.Dir, "from", info.CurrentVer, "to", info.RemoteVer)
	return nil
}
