package embedding

import (
	"context"
	"fmt"
	"time"

	"resumefit/internal/config"
	"resumefit/internal/errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/genai"
)

// DefaultGeminiModel is used when embedding.model is unset.
const DefaultGeminiModel = "gemini-embedding-001"

type embedContentFunc func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)

// GeminiEmbedder embeds sentences with the Gemini embedding API. Calls are
// batched, guarded by a circuit breaker and never retried.
type GeminiEmbedder struct {
	embed      embedContentFunc
	model      string
	taskType   string
	dimensions int
	batchSize  int
	timeout    time.Duration
	breaker    *CircuitBreaker
	logger     *errors.Logger
}

var _ Embedder = (*GeminiEmbedder)(nil)

// NewGeminiEmbedder creates a Gemini-backed embedder from cfg.
func NewGeminiEmbedder(ctx context.Context, cfg config.EmbeddingConfig, logger *errors.Logger) (*GeminiEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, errors.NewConfigError(errors.ErrCodeMissingAPIKey,
			"gemini embedding provider requires an API key", nil)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeEmbeddingUnavailable,
			"failed to create Gemini client", err)
	}

	return newGeminiEmbedder(client.Models.EmbedContent, cfg, logger), nil
}

func newGeminiEmbedder(embed embedContentFunc, cfg config.EmbeddingConfig, logger *errors.Logger) *GeminiEmbedder {
	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	if logger == nil {
		logger = errors.NewNopLogger()
	}

	return &GeminiEmbedder{
		embed:      embed,
		model:      model,
		taskType:   cfg.TaskType,
		dimensions: cfg.Dimensions,
		batchSize:  batchSize,
		timeout:    cfg.Timeout,
		breaker:    NewCircuitBreaker("embedding-gemini", cfg.CircuitBreaker, logger),
		logger:     logger,
	}
}

// Embed implements Embedder.
func (g *GeminiEmbedder) Embed(ctx context.Context, sentences []string) ([][]float32, error) {
	tracer := otel.Tracer("resumefit.embedding.gemini")
	ctx, span := tracer.Start(ctx, "gemini.embed")
	defer span.End()

	span.SetAttributes(
		attribute.String("embedding.provider", config.ProviderGemini),
		attribute.String("embedding.model", g.model),
		attribute.Int("embedding.sentences", len(sentences)),
	)

	vectors := make([][]float32, 0, len(sentences))
	for start := 0; start < len(sentences); start += g.batchSize {
		end := min(start+g.batchSize, len(sentences))

		batch, err := g.breaker.Execute(func() ([][]float32, error) {
			return g.embedBatch(ctx, sentences[start:end])
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "embedding failed")
			code := errors.ErrCodeEmbeddingFailed
			if IsOpenError(err) {
				code = errors.ErrCodeEmbeddingUnavailable
			}
			return nil, errors.NewAIError(code, "gemini embedding request failed", err).
				WithContext("model", g.model)
		}
		vectors = append(vectors, batch...)
	}

	return vectors, nil
}

func (g *GeminiEmbedder) embedBatch(ctx context.Context, sentences []string) ([][]float32, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	contents := make([]*genai.Content, len(sentences))
	for i, s := range sentences {
		contents[i] = genai.NewContentFromText(s, genai.RoleUser)
	}

	embedCfg := &genai.EmbedContentConfig{TaskType: g.taskType}
	if g.dimensions > 0 {
		dims := int32(g.dimensions)
		embedCfg.OutputDimensionality = &dims
	}

	resp, err := g.embed(ctx, g.model, contents, embedCfg)
	if err != nil {
		return nil, err
	}
	if resp == nil || len(resp.Embeddings) != len(sentences) {
		got := 0
		if resp != nil {
			got = len(resp.Embeddings)
		}
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(sentences), got)
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		if e == nil || len(e.Values) == 0 {
			return nil, fmt.Errorf("embedding %d is empty", i)
		}
		vectors[i] = e.Values
	}
	return vectors, nil
}

// Info implements Embedder.
func (g *GeminiEmbedder) Info() ModelInfo {
	return ModelInfo{
		Provider:   config.ProviderGemini,
		Model:      g.model,
		Dimensions: g.dimensions,
		Reentrant:  true,
	}
}

// Close implements Embedder. The genai client holds no resources to release.
func (g *GeminiEmbedder) Close() error { return nil }

// IsHealthy reports whether the breaker currently admits calls.
func (g *GeminiEmbedder) IsHealthy() bool { return g.breaker.IsHealthy() }

// BreakerStats returns the breaker's counters.
func (g *GeminiEmbedder) BreakerStats() map[string]any { return g.breaker.GetStats() }
