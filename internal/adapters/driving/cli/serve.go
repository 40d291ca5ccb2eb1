package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/refrag/internal/adapters/driving/api"
	"github.com/custodia-labs/refrag/internal/logger"
)

var (
	serveAddr      string
	serveBasicAuth bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the answer API over HTTP",
	Long: `Starts an HTTP server exposing:

  POST /v1/answer     {"question": "...", "format": "json|markdown|html"}
  POST /v1/retrieve   {"query": "...", "k": 10}
  GET  /healthz       liveness
  GET  /readyz        storage and provider checks
  GET  /metrics       Prometheus metrics

The prompt file is watched and reloaded when it changes.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from settings)")
	serveCmd.Flags().BoolVar(&serveBasicAuth, "basic-auth", false, "require registered user credentials on /v1")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	r, err := loadRuntime(cmd.Context())
	if err != nil {
		return err
	}
	if r.Answer == nil {
		return errors.New("answer service not configured")
	}

	addr := serveAddr
	if addr == "" {
		settings, err := settingsService.Get()
		if err != nil {
			return err
		}
		addr = settings.Server.Addr
	}

	ports := &api.Ports{
		Answer:    r.Answer,
		Retrieval: r.Retrieval,
		Metrics:   r.Metrics,
		Ready:     make(map[string]api.ReadinessCheck, len(r.Ready)),
	}
	for name, check := range r.Ready {
		ports.Ready[name] = check
	}
	if serveBasicAuth {
		if r.Users == nil {
			return errors.New("user service not configured")
		}
		ports.Users = r.Users
	}

	server, err := api.NewServer(ports)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(contextOrBackground(cmd.Context()), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if r.Prompts != nil {
		if err := r.Prompts.Watch(ctx); err != nil {
			logger.Warn("Prompt hot reload disabled: %v", err)
		}
	}

	cmd.Printf("refrag API listening on %s\n", addr)
	return server.Run(ctx, addr)
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
