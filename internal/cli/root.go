package cli

import (
	"context"
	"fmt"

	"resumefit/internal/config"
	"resumefit/internal/errors"

	"github.com/spf13/cobra"
)

// Define custom private types for context keys.
type configKeyType struct{}
type loggerKeyType struct{}

var configKey = configKeyType{}
var loggerKey = loggerKeyType{}

var (
	configFile string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "resumefit",
	Short: "Score how well a resume fits a job description",
	Long: `resumefit scores a resume against a job description. The fit score
combines semantic similarity of the two texts, coverage of the skills the job
asks for and alignment of years of experience.

Run it once from the command line with 'evaluate', or start an HTTP service
with 'serve'.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadRuntime,
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// loadRuntime loads configuration and builds the logger, then attaches both
// to the command context for the subcommands.
func loadRuntime(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfigFile(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if logLevel != "" {
		cfg.App.LogLevel = logLevel
	}

	logger, err := errors.New(cfg.App.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Debug("Configuration loaded",
		"version", Version,
		"log_level", cfg.App.LogLevel,
		"embedding_provider", cfg.Embedding.Provider)

	ctx := context.WithValue(cmd.Context(), configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	cmd.SetContext(ctx)
	return nil
}

// getConfigFromContext is a helper function to get config from context
func getConfigFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg
	}
	panic("config not found in context") // Should not happen if properly initialized
}

// getLoggerFromContext is a helper function to get logger from context
func getLoggerFromContext(ctx context.Context) *errors.Logger {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger
	}
	panic("logger not found in context") // Should not happen if properly initialized
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: search /etc/resumefit, $HOME/.resumefit, .)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")

	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(skillsCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
}
