package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/egoavara/formguard/internal/activation"
	"github.com/egoavara/formguard/internal/ajax"
	"github.com/egoavara/formguard/internal/config"
	"github.com/egoavara/formguard/internal/i18n"
	"github.com/spf13/cobra"
)

var (
	serveListen string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the admin AJAX endpoint",
	Long: `Serve the integrations activation endpoint over HTTP.

Routes:
  POST /wp-admin/admin-ajax.php   action=` + ajax.Action + `
  GET  /api/integrations          integrations with their enabled state

Callers authenticate with "Authorization: Bearer <token>"; tokens and their
capabilities are configured with:
  formguard config set server.tokens.<token> activate_plugins,switch_themes`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveListen, "listen", "l", "", "listen address (overrides config server.listen)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	site, registry, err := openSite()
	if err != nil {
		return err
	}
	defer site.Close()

	tokens := make(map[string]activation.Capabilities, len(cfg.Server.Tokens))
	for token, caps := range cfg.Server.Tokens {
		tokens[token] = activation.NewCapabilities(caps...)
	}
	if len(tokens) == 0 {
		slog.Warn("no server tokens configured, every request will be rejected")
	}

	handler := ajax.NewHandler(ajax.Options{
		Host:         site,
		Registry:     registry,
		Tokens:       tokens,
		AllowInstall: cfg.Site.AllowInstall,
		Logger:       slog.Default(),
	})

	addr := cfg.Server.Listen
	if serveListen != "" {
		addr = serveListen
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	fmt.Fprintln(cmd.OutOrStdout(), i18n.T("ServerListening", map[string]any{"Address": addr}))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
