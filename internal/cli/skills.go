package cli

import (
	"context"
	"fmt"

	"resumefit/internal/common"
	"resumefit/internal/skills"
	"resumefit/internal/text"
	"resumefit/internal/types"

	"github.com/spf13/cobra"
)

var skillsCmd = &cobra.Command{
	Use:   "skills [file]",
	Short: "List the known skills mentioned in a document",
	Long: `List the skills from the vocabulary that a resume or job description
mentions. Useful for checking what the evaluator will match on before scoring.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		skillsConfig.MaxFileSize = cfg.App.MaxFileSize
		skillsConfig.Stdout = cmd.OutOrStdout()
		if skillsConfig.OutputFormat == "" {
			skillsConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(skillsConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runSkills,
}

var skillsConfig common.CommandConfig

func init() {
	skillsCmd.Flags().StringVarP(&skillsConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	skillsCmd.Flags().StringVar(&skillsConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	_ = skillsCmd.RegisterFlagCompletionFunc("format", completeFormats)
}

func runSkills(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	vocab, err := loadVocabulary(cfg, logger)
	if err != nil {
		return err
	}
	extractor := skills.NewExtractor(vocab)

	extract := func(_ context.Context, contents []string) (types.SkillReport, error) {
		doc, err := text.Normalize("document", contents[0])
		if err != nil {
			return types.SkillReport{}, err
		}
		return types.SkillReport{Source: args[0], Skills: extractor.Extract(doc)}, nil
	}

	if err := common.RunFileCommand(cmd.Context(), logger, skillsConfig, args, extract); err != nil {
		return fmt.Errorf("failed to extract skills: %w", err)
	}
	return nil
}
