package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"resumefit/internal/embedding"
	"resumefit/internal/embedding/embeddingtest"
	"resumefit/internal/errors"
	"resumefit/internal/experience"
	"resumefit/internal/scoring"
	"resumefit/internal/similarity"
	"resumefit/internal/skills"
	"resumefit/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPipeline(t *testing.T, e embedding.Embedder) *Pipeline {
	t.Helper()
	vocab, err := skills.DefaultVocabulary()
	require.NoError(t, err)
	return New(
		skills.NewExtractor(vocab),
		similarity.NewEngine(e),
		experience.NewAligner(),
		scoring.NewSynthesizer(),
		errors.NewNopLogger(),
	)
}

func TestScenarioSkillsAndExperience(t *testing.T) {
	p := newPipeline(t, embedding.NewLocalEmbedder(0))

	result, err := p.Evaluate(context.Background(),
		"3 years of Python development. Experience with Docker and Kubernetes.",
		"Requires 5 years of Python experience. Must know Docker.")
	require.NoError(t, err)

	assert.Subset(t, result.MatchedSkills, []string{"python", "docker"})
	assert.Empty(t, result.MissingSkills)
	assert.InDelta(t, 0.6, result.ExperienceMatchScore, 1e-9)
	assert.Greater(t, result.FitScore, 0.0)
	assert.Less(t, result.FitScore, 100.0)
}

func TestScenarioOnlySemanticVaries(t *testing.T) {
	stub := &embeddingtest.Stub{
		Default: []float32{1, 0},
		Vectors: map[string][]float32{
			"friendly team player who communicates clearly.": {0.6, 0.8},
		},
	}
	p := newPipeline(t, stub)

	result, err := p.Evaluate(context.Background(),
		"Enjoys hiking and board games.",
		"Friendly team player who communicates clearly.")
	require.NoError(t, err)

	assert.Empty(t, result.MatchedSkills)
	assert.Empty(t, result.MissingSkills)
	assert.Equal(t, 1.0, result.ExperienceMatchScore)
	assert.Equal(t, 0.6, result.SemanticSimilarityScore)
	// Skill and experience contribute their full weight: 60*sim + 30 + 10.
	assert.InDelta(t, 60*result.SemanticSimilarityScore+40, result.FitScore, 0.01)
}

func TestScenarioEmptyJobDescription(t *testing.T) {
	stub := &embeddingtest.Stub{}
	p := newPipeline(t, stub)

	_, err := p.Evaluate(context.Background(), "Go developer.", "   \n\t ")
	require.Error(t, err)
	assert.True(t, errors.IsEmptyInput(err))
	assert.Zero(t, stub.Calls())
}

func TestScenarioPunctuationOnlyResume(t *testing.T) {
	stub := &embeddingtest.Stub{}
	p := newPipeline(t, stub)

	_, err := p.Evaluate(context.Background(), "... !!! ---", "We need Go.")
	require.Error(t, err)
	assert.True(t, errors.IsInsufficientText(err))
	assert.Zero(t, stub.Calls())
}

func TestResumeValidatedFirst(t *testing.T) {
	_, err := newPipeline(t, &embeddingtest.Stub{}).Evaluate(context.Background(), "", "")

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "resume", appErr.Context["field"])
}

func TestEvaluateIsIdempotent(t *testing.T) {
	p := newPipeline(t, embedding.NewLocalEmbedder(0))
	resume := "Senior Go engineer. 7 years building Kubernetes controllers. Terraform and AWS daily."
	jd := "Looking for a Go engineer with 5+ years. Kubernetes and GCP experience."

	first, err := p.Evaluate(context.Background(), resume, jd)
	require.NoError(t, err)
	second, err := p.Evaluate(context.Background(), resume, jd)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAddingMatchingSentenceNeverLowersSimilarity(t *testing.T) {
	p := newPipeline(t, embedding.NewLocalEmbedder(0))
	jd := "Design scalable data pipelines. Mentor junior engineers."
	resume := "Built web frontends in React."

	before, err := p.Evaluate(context.Background(), resume, jd)
	require.NoError(t, err)
	after, err := p.Evaluate(context.Background(), resume+" Mentor junior engineers.", jd)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, after.SemanticSimilarityScore, before.SemanticSimilarityScore)
}

func TestEmbeddingFailureAborts(t *testing.T) {
	p := newPipeline(t, &embeddingtest.Stub{Err: stderrors.New("out of memory")})

	result, err := p.Evaluate(context.Background(), "Go developer.", "We need Go.")
	require.Error(t, err)
	assert.False(t, errors.IsInputError(err))
	assert.Equal(t, types.FitResult{}, result)

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errors.ErrCodeInternal, appErr.Code)
}

func TestWrappedAppErrorKeepsItsCode(t *testing.T) {
	cause := errors.NewAIError(errors.ErrCodeEmbeddingUnavailable, "model queue closed", nil)
	p := newPipeline(t, &embeddingtest.Stub{Err: fmt.Errorf("serial embedder: %w", cause)})

	_, err := p.Evaluate(context.Background(), "Go developer.", "We need Go.")

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errors.ErrCodeEmbeddingUnavailable, appErr.Code)
	assert.Equal(t, errors.ErrorTypeAI, appErr.Type)
}

func TestCancelledContext(t *testing.T) {
	stub := &embeddingtest.Stub{Block: make(chan struct{})}
	p := newPipeline(t, stub)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.Evaluate(ctx, "Go developer.", "We need Go.")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type observer struct {
	calls  int
	result *types.FitResult
	err    error
}

func (o *observer) RecordEvaluation(_ context.Context, _ time.Duration, result *types.FitResult, err error) {
	o.calls++
	o.result, o.err = result, err
}

func TestObserver(t *testing.T) {
	obs := &observer{}
	p := newPipeline(t, embedding.NewLocalEmbedder(0)).WithObserver(obs)

	_, err := p.Evaluate(context.Background(), "Go developer.", "We need Go.")
	require.NoError(t, err)
	require.NotNil(t, obs.result)

	_, err = p.Evaluate(context.Background(), "Go developer.", "")
	require.Error(t, err)
	assert.Equal(t, 2, obs.calls)
	assert.Nil(t, obs.result)
	assert.True(t, errors.IsEmptyInput(obs.err))
}

func TestConcurrentEvaluations(t *testing.T) {
	p := newPipeline(t, embedding.NewSerialEmbedder(embedding.NewLocalEmbedder(0), 2))
	want, err := p.Evaluate(context.Background(), "Python and Go.", "Go required.")
	require.NoError(t, err)

	done := make(chan types.FitResult, 8)
	for range 8 {
		go func() {
			r, err := p.Evaluate(context.Background(), "Python and Go.", "Go required.")
			assert.NoError(t, err)
			done <- r
		}()
	}
	for range 8 {
		assert.Equal(t, want, <-done)
	}
}
