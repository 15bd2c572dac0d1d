package commands

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/crystal-voice/backend/internal/app"
	"github.com/zhouzirui/crystal-voice/backend/internal/config"
	"github.com/zhouzirui/crystal-voice/backend/internal/logging"
)

// Factory builds the services a command runs against.
type Factory func(ctx context.Context) (*app.App, error)

// DefaultFactory reads .env and the process environment. Logs go to stderr at
// LOG_LEVEL, defaulting to warn so command output stays readable.
func DefaultFactory(ctx context.Context) (*app.App, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	level := cfg.Log.Level
	if level == "info" {
		level = "warn"
	}
	logger, err := logging.New(level)
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return app.New(ctx, cfg, logger)
}

// NewRootCmd assembles the voicectl command tree.
func NewRootCmd(factory Factory) *cobra.Command {
	root := &cobra.Command{
		Use:   "voicectl",
		Short: "Operate the Crystal Group voice assistant",
		Long: `voicectl talks to the assistant from a terminal and manages the
conversation log.

Examples:
  voicectl ask "What is Crystal Group?"
  voicectl logs stats
  voicectl logs export --format csv`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newAskCmd(factory),
		newLogsCmd(factory),
		newSettingsCmd(factory),
		newSpeakCmd(factory),
	)
	return root
}

// withApp runs fn against a fresh App and releases it afterwards.
func withApp(cmd *cobra.Command, factory Factory, fn func(a *app.App) error) error {
	a, err := factory(cmd.Context())
	if err != nil {
		return err
	}
	runErr := fn(a)
	if err := a.Close(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}
