package embedding

import (
	"context"
	"fmt"
	"time"

	"resumefit/internal/config"
	"resumefit/internal/errors"
)

const warmupSentence = "Warm-up sentence for the embedding model."

// Load creates the embedder described by cfg and, unless disabled, probes it
// once so a broken model fails at startup instead of on the first request.
func Load(ctx context.Context, cfg config.EmbeddingConfig, logger *errors.Logger) (Embedder, error) {
	if logger == nil {
		logger = errors.NewNopLogger()
	}

	var (
		e   Embedder
		err error
	)
	switch cfg.Provider {
	case config.ProviderGemini:
		e, err = NewGeminiEmbedder(ctx, cfg, logger)
	case config.ProviderLocal, "":
		e = NewLocalEmbedder(cfg.Dimensions)
	default:
		err = errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("unknown embedding provider: %s", cfg.Provider), nil)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Serialize {
		e = NewSerialEmbedder(e, cfg.QueueSize)
	}

	if cfg.Warmup {
		if err := warmUp(ctx, e); err != nil {
			_ = e.Close()
			return nil, err
		}
	}

	info := e.Info()
	logger.Info("Embedding model loaded",
		"provider", info.Provider,
		"model", info.Model,
		"dimensions", info.Dimensions,
		"serialized", info.Serialized)
	return e, nil
}

func warmUp(ctx context.Context, e Embedder) error {
	start := time.Now()
	vectors, err := e.Embed(ctx, []string{warmupSentence})
	if err == nil && (len(vectors) != 1 || len(vectors[0]) == 0) {
		err = fmt.Errorf("warm-up returned %d vectors", len(vectors))
	}
	if err != nil {
		return errors.NewAIError(errors.ErrCodeEmbeddingUnavailable,
			"embedding model failed warm-up", err).
			WithContext("provider", e.Info().Provider).
			WithContext("elapsed", time.Since(start).String())
	}
	return nil
}
