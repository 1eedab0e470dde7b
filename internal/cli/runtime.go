package cli

import (
	"context"
	"fmt"

	"resumefit/internal/config"
	"resumefit/internal/embedding"
	"resumefit/internal/errors"
	"resumefit/internal/experience"
	"resumefit/internal/formatters"
	"resumefit/internal/observability"
	"resumefit/internal/pipeline"
	"resumefit/internal/scoring"
	"resumefit/internal/similarity"
	"resumefit/internal/skills"

	"github.com/spf13/cobra"
)

// loadVocabulary returns the configured vocabulary or the built-in one.
func loadVocabulary(cfg *config.Config, logger *errors.Logger) (*skills.Vocabulary, error) {
	if cfg.Skills.VocabularyFile == "" {
		return skills.DefaultVocabulary()
	}
	vocab, err := skills.LoadVocabulary(cfg.Skills.VocabularyFile)
	if err != nil {
		return nil, err
	}
	logger.Info("Loaded skill vocabulary", "file", cfg.Skills.VocabularyFile, "skills", vocab.Len())
	return vocab, nil
}

// buildPipeline applies Vault secrets, loads the embedding model once and
// assembles the evaluation pipeline around it. The caller owns the returned embedder and must close it.
func buildPipeline(ctx context.Context, cfg *config.Config, metrics *observability.Metrics, logger *errors.Logger) (*pipeline.Pipeline, embedding.Embedder, error) {
	if err := config.ApplyVaultSecrets(cfg, logger); err != nil {
		return nil, nil, err
	}

	vocab, err := loadVocabulary(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	emb, err := embedding.Load(ctx, cfg.Embedding, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load embedding model: %w", err)
	}
	emb = embedding.Instrument(emb, metrics)

	p := pipeline.New(
		skills.NewExtractor(vocab),
		similarity.NewEngine(emb),
		experience.NewAligner(),
		scoring.NewSynthesizer(),
		logger,
	).WithObserver(metrics)
	return p, emb, nil
}

// closeQuietly closes the embedder and logs a failure.
func closeQuietly(emb embedding.Embedder, logger *errors.Logger) {
	if err := emb.Close(); err != nil {
		logger.LogError(err, "Failed to close embedding model")
	}
}

// completeFormats offers the formats the registry can render.
func completeFormats(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return formatters.GlobalRegistry.GetSupportedFormats(), cobra.ShellCompDirectiveNoFileComp
}
