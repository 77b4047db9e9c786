package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/PrathameshJoshi123/doc-generator/pkg/auth/github"
	"github.com/PrathameshJoshi123/doc-generator/pkg/auth/oauth"
	"github.com/PrathameshJoshi123/doc-generator/pkg/auth/session"
	"github.com/PrathameshJoshi123/doc-generator/pkg/config"
	"github.com/PrathameshJoshi123/doc-generator/pkg/observability"
	"github.com/PrathameshJoshi123/doc-generator/pkg/proxy"
	"github.com/PrathameshJoshi123/doc-generator/pkg/server"
)

var (
	host string
	port int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the GitHub identity gateway",
	Long: `Start the gateway HTTP server.

The gateway needs a GitHub OAuth app: set GITHUB_CLIENT_ID,
GITHUB_CLIENT_SECRET and REDIRECT_URI (or the matching config file fields)
before starting.

Examples:
  # Environment-only configuration
  GITHUB_CLIENT_ID=... GITHUB_CLIENT_SECRET=... docgen-gateway serve

  # With a config file
  docgen-gateway serve -c /path/to/config.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&host, "host", "",
		"Host to bind to (overrides config)")
	serveCmd.Flags().IntVar(&port, "port", 0,
		"Port to bind to (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Apply CLI overrides
	if host != "" {
		cfg.Server.Host = host
	}

	if port != 0 {
		cfg.Server.Port = port
	}

	log.WithFields(logrus.Fields{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Starting docgen-gateway")

	// Start observability service
	obsSvc := observability.NewService(log, cfg.Observability)
	if err := obsSvc.Start(ctx); err != nil {
		return fmt.Errorf("starting observability: %w", err)
	}

	defer func() {
		if stopErr := obsSvc.Stop(); stopErr != nil {
			log.WithError(stopErr).Error("Failed to stop observability service")
		}
	}()

	// Wire the gateway: OAuth client, session store, flow and proxy handlers.
	store := session.NewMemoryStore(log)
	ghClient := github.NewClient(log, cfg.GitHub)

	oauthSrv := oauth.NewServer(log, ghClient, store, cfg.GitHub.RedirectURI, cfg.Server.FrontendURL)
	proxySrv := proxy.NewServer(log, store, proxy.NewClientFactory(""))

	svc := server.NewService(log, cfg.Server, oauthSrv, proxySrv)

	// Start the server (this blocks until context is cancelled)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("running server: %w", err)
	}

	log.Info("Shutting down...")

	return svc.Stop()
}
