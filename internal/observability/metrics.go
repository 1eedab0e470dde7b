package observability

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"resumefit/internal/errors"
	"resumefit/internal/types"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
)

// Metrics holds the resumefit instruments. It satisfies both the embedding
// recorder and the pipeline observer.
type Metrics struct {
	Evaluations        metric.Int64Counter
	EvaluationErrors   metric.Int64Counter
	EvaluationDuration metric.Float64Histogram
	FitScore           metric.Float64Histogram

	EmbeddingRequests metric.Int64Counter
	EmbeddingDuration metric.Float64Histogram

	RateLimitHits metric.Int64Counter
}

var nopMetrics = mustNopMetrics()

func mustNopMetrics() *Metrics {
	m, err := NewMetrics(metricnoop.NewMeterProvider().Meter("resumefit"))
	if err != nil {
		panic(err)
	}
	return m
}

// NewMetrics creates every instrument on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.Evaluations, err = meter.Int64Counter(
		"resumefit_evaluations_total",
		metric.WithDescription("Total number of resume evaluations"),
	); err != nil {
		return nil, fmt.Errorf("failed to create evaluations metric: %w", err)
	}

	if m.EvaluationErrors, err = meter.Int64Counter(
		"resumefit_evaluation_errors_total",
		metric.WithDescription("Total number of failed evaluations by error type"),
	); err != nil {
		return nil, fmt.Errorf("failed to create evaluation errors metric: %w", err)
	}

	if m.EvaluationDuration, err = meter.Float64Histogram(
		"resumefit_evaluation_duration_seconds",
		metric.WithDescription("Time spent evaluating a resume against a job description"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create evaluation duration metric: %w", err)
	}

	if m.FitScore, err = meter.Float64Histogram(
		"resumefit_fit_score",
		metric.WithDescription("Distribution of fit scores"),
		metric.WithExplicitBucketBoundaries(10, 20, 30, 40, 50, 60, 70, 80, 90, 100),
	); err != nil {
		return nil, fmt.Errorf("failed to create fit score metric: %w", err)
	}

	if m.EmbeddingRequests, err = meter.Int64Counter(
		"resumefit_embedding_requests_total",
		metric.WithDescription("Total number of embedding calls"),
	); err != nil {
		return nil, fmt.Errorf("failed to create embedding requests metric: %w", err)
	}

	if m.EmbeddingDuration, err = meter.Float64Histogram(
		"resumefit_embedding_duration_seconds",
		metric.WithDescription("Time spent in embedding calls"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create embedding duration metric: %w", err)
	}

	if m.RateLimitHits, err = meter.Int64Counter(
		"resumefit_rate_limit_hits_total",
		metric.WithDescription("Total number of rate limited requests"),
	); err != nil {
		return nil, fmt.Errorf("failed to create rate limit hits metric: %w", err)
	}

	return m, nil
}

// RecordEvaluation records one pipeline run. result is nil when err is set.
func (m *Metrics) RecordEvaluation(ctx context.Context, duration time.Duration, result *types.FitResult, err error) {
	attrs := metric.WithAttributes(attribute.Bool("success", err == nil))
	m.Evaluations.Add(ctx, 1, attrs)
	m.EvaluationDuration.Record(ctx, duration.Seconds(), attrs)

	if err != nil {
		m.EvaluationErrors.Add(ctx, 1, metric.WithAttributes(errorAttrs(err)...))
		return
	}
	if result != nil {
		m.FitScore.Record(ctx, result.FitScore)
	}
}

// RecordEmbedding records one call to an embedder.
func (m *Metrics) RecordEmbedding(ctx context.Context, provider string, _ int, duration time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.Bool("success", err == nil),
	)
	m.EmbeddingRequests.Add(ctx, 1, attrs)
	m.EmbeddingDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordRateLimitHit records a request rejected by the rate limiter.
func (m *Metrics) RecordRateLimitHit(ctx context.Context, keyType string) {
	m.RateLimitHits.Add(ctx, 1, metric.WithAttributes(attribute.String("key_type", keyType)))
}

func errorAttrs(err error) []attribute.KeyValue {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return []attribute.KeyValue{
			attribute.String("error_type", string(appErr.Type)),
			attribute.String("error_code", appErr.Code),
		}
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return []attribute.KeyValue{
			attribute.String("error_type", "canceled"),
			attribute.String("error_code", "CONTEXT_DONE"),
		}
	}
	return []attribute.KeyValue{
		attribute.String("error_type", string(errors.ErrorTypeInternal)),
		attribute.String("error_code", errors.ErrCodeInternal),
	}
}
