// Package cli provides the refrag command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/refrag/internal/core/domain"
	"github.com/custodia-labs/refrag/internal/core/ports/driving"
	"github.com/custodia-labs/refrag/internal/logger"
)

var (
	version = "dev"
	verbose bool

	settingsService driving.SettingsService
	wire            WireFunc
	rt              *Runtime
)

// PromptWatcher reloads prompt templates when their file changes.
type PromptWatcher interface {
	Watch(ctx context.Context) error
}

// Runtime holds the services commands run against.
// Any service may be nil when its dependencies are not configured.
type Runtime struct {
	Answer    driving.AnswerService
	Retrieval driving.RetrievalService
	Ingest    driving.IngestService
	Users     driving.UserService
	Prompts   PromptWatcher
	Metrics   http.Handler
	Ready     map[string]func(ctx context.Context) error
	Warnings  []string
	Close     func() error
}

// WireFunc builds a Runtime from the effective settings.
type WireFunc func(ctx context.Context, settings *domain.AppSettings) (*Runtime, error)

var rootCmd = &cobra.Command{
	Use:   "refrag",
	Short: "Answer questions from your documents, with the tables and figures they cite",
	Long: `refrag is a retrieval-augmented question answering tool.

It indexes pre-chunked documents, retrieves the passages relevant to a
question, resolves the tables and pictures those passages reference, and
asks a language model for an answer grounded in them.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verbose {
			logger.SetVerbose(true)
		}
	},
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		return closeRuntime()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// SetSettingsService sets the settings service used by all commands.
func SetSettingsService(s driving.SettingsService) {
	settingsService = s
}

// SetWiring sets how the runtime is built on first use.
func SetWiring(f WireFunc) {
	wire = f
}

// Execute runs the root command.
func Execute(v string) error {
	if v != "" {
		version = v
	}
	defer closeRuntime() //nolint:errcheck // best effort on error paths
	return rootCmd.Execute()
}

// loadRuntime wires the services on first use. Overrides adjust the settings
// for this invocation only and are not persisted.
func loadRuntime(ctx context.Context, overrides ...func(*domain.AppSettings)) (*Runtime, error) {
	if rt != nil {
		return rt, nil
	}
	if settingsService == nil {
		return nil, errors.New("settings service not configured")
	}
	if wire == nil {
		return nil, errors.New("services not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	for _, o := range overrides {
		o(settings)
	}

	r, err := wire(ctx, settings)
	if err != nil {
		return nil, err
	}
	for _, w := range r.Warnings {
		logger.Warn("%s", w)
	}
	rt = r
	return rt, nil
}

func closeRuntime() error {
	if rt == nil || rt.Close == nil {
		rt = nil
		return nil
	}
	err := rt.Close()
	rt = nil
	return err
}
