package cli

import (
	"context"
	"fmt"

	"resumefit/internal/common"
	"resumefit/internal/observability"
	"resumefit/internal/types"

	"github.com/spf13/cobra"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [resume-file] [job-description-file]",
	Short: "Score a resume against a job description",
	Long: `Score a resume against a job description and print the fit report.
The command takes two arguments: the path to the resume file and the path to
the job description file. Both files should be in plain text format.`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		evaluateConfig.MaxFileSize = cfg.App.MaxFileSize
		evaluateConfig.Stdout = cmd.OutOrStdout()
		if evaluateConfig.OutputFormat == "" {
			evaluateConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(evaluateConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runEvaluate,
}

var evaluateConfig common.CommandConfig

func init() {
	evaluateCmd.Flags().StringVarP(&evaluateConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	evaluateCmd.Flags().StringVar(&evaluateConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	_ = evaluateCmd.RegisterFlagCompletionFunc("format", completeFormats)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	// A one-shot run exits before any scrape, so only push exporters apply.
	obsCfg := cfg.Observability
	obsCfg.Prometheus.Enabled = false
	obs, err := observability.NewManager(obsCfg, Version, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		if err := obs.Shutdown(context.Background()); err != nil {
			logger.LogError(err, "Failed to shut down observability")
		}
	}()

	p, emb, err := buildPipeline(cmd.Context(), cfg, obs.Metrics(), logger)
	if err != nil {
		return err
	}
	defer closeQuietly(emb, logger)

	evaluate := func(ctx context.Context, contents []string) (types.FitResult, error) {
		logger.Info("Starting resume evaluation",
			"resume_chars", len(contents[0]),
			"job_chars", len(contents[1]),
			"output_format", evaluateConfig.OutputFormat)
		return p.Evaluate(ctx, contents[0], contents[1])
	}

	if err := common.RunFileCommand(cmd.Context(), logger, evaluateConfig, args, evaluate); err != nil {
		return fmt.Errorf("failed to evaluate resume: %w", err)
	}
	logger.Info("Resume evaluation completed successfully")
	return nil
}
