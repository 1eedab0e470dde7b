// Package similarity scores how well resume sentences cover job description
// sentences in embedding space.
package similarity

import (
	"context"
	"fmt"
	"math"
	"slices"

	"resumefit/internal/embedding"
	"resumefit/internal/errors"
	"resumefit/internal/text"
	"resumefit/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Engine computes the average-max cosine similarity between two documents.
type Engine struct {
	embedder embedding.Embedder
}

// NewEngine returns an engine backed by e, which it does not own.
func NewEngine(e embedding.Embedder) *Engine {
	return &Engine{embedder: e}
}

// Score embeds the sentences of both documents in one call and, for every job
// description sentence, keeps its best match among the resume sentences.
// The result is the mean of those maxima, each clamped to [0,1].
func (e *Engine) Score(ctx context.Context, resume, jd text.Document) (types.SimilarityResult, error) {
	if resume.Empty() {
		return types.SimilarityResult{}, errors.NewInsufficientTextError("resume")
	}
	if jd.Empty() {
		return types.SimilarityResult{}, errors.NewInsufficientTextError("job_description")
	}

	ctx, span := otel.Tracer("resumefit.similarity").Start(ctx, "similarity.score")
	defer span.End()
	span.SetAttributes(
		attribute.Int("similarity.resume_sentences", len(resume.Sentences)),
		attribute.Int("similarity.jd_sentences", len(jd.Sentences)),
	)

	all := make([]string, 0, len(resume.Sentences)+len(jd.Sentences))
	all = append(all, resume.Sentences...)
	all = append(all, jd.Sentences...)

	vectors, err := e.embedder.Embed(ctx, all)
	if err != nil {
		span.RecordError(err)
		return types.SimilarityResult{}, err
	}
	if err := checkShape(vectors, len(all)); err != nil {
		span.RecordError(err)
		return types.SimilarityResult{}, err
	}

	score := AverageMax(vectors[:len(resume.Sentences)], vectors[len(resume.Sentences):])
	span.SetAttributes(attribute.Float64("similarity.score", score))
	return types.SimilarityResult{Score: score}, nil
}

func checkShape(vectors [][]float32, want int) error {
	if len(vectors) != want {
		return errors.NewInternalError(errors.ErrCodeEmbeddingFailed,
			fmt.Sprintf("embedder returned %d vectors for %d sentences", len(vectors), want), nil)
	}
	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dim || dim == 0 {
			return errors.NewInternalError(errors.ErrCodeEmbeddingFailed,
				fmt.Sprintf("vector %d has dimension %d, expected %d", i, len(v), dim), nil)
		}
	}
	return nil
}

// AverageMax returns the mean over targets of each target's best clamped
// cosine similarity against candidates. Maxima are summed in ascending order
// so the result does not depend on sentence order.
func AverageMax(candidates, targets [][]float32) float64 {
	if len(candidates) == 0 || len(targets) == 0 {
		return 0
	}

	maxima := make([]float64, len(targets))
	for i, t := range targets {
		best := 0.0
		for _, c := range candidates {
			best = max(best, CosineSimilarity(c, t))
		}
		maxima[i] = min(best, 1)
	}

	slices.Sort(maxima)
	var sum float64
	for _, m := range maxima {
		sum += m
	}
	return clamp01(sum / float64(len(maxima)))
}

// CosineSimilarity returns the cosine of the angle between a and b, or 0 when
// either is a zero vector or the lengths differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
