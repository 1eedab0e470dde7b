package similarity

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"resumefit/internal/embedding"
	"resumefit/internal/embedding/embeddingtest"
	"resumefit/internal/errors"
	"resumefit/internal/text"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(t *testing.T, raw string) text.Document {
	t.Helper()
	d, err := text.Normalize("test", raw)
	require.NoError(t, err)
	return d
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 2}, []float32{2, 4}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Zero(t, CosineSimilarity([]float32{0, 0}, []float32{1, 0}))
	assert.Zero(t, CosineSimilarity([]float32{1}, []float32{1, 0}))
}

func TestAverageMaxClampsNegatives(t *testing.T) {
	candidates := [][]float32{{1, 0}}
	targets := [][]float32{{1, 0}, {-1, 0}}

	// 1.0 for the first target, -1 clamped to 0 for the second.
	assert.InDelta(t, 0.5, AverageMax(candidates, targets), 1e-9)
}

func TestScore(t *testing.T) {
	stub := &embeddingtest.Stub{Vectors: map[string][]float32{
		"built python services.": {1, 0},
		"led a team of four.":    {0, 1},
		"python services.":       {1, 0},
		"team leadership.":       {0.6, 0.8},
	}}
	engine := NewEngine(stub)

	resume := doc(t, "Built Python services. Led a team of four.")
	jd := doc(t, "Python services. Team leadership.")

	result, err := engine.Score(context.Background(), resume, jd)
	require.NoError(t, err)

	// max(1, 0) = 1 and max(0.6, 0.8) = 0.8
	assert.InDelta(t, 0.9, result.Score, 1e-6)
	assert.Equal(t, 1, stub.Calls(), "both documents embedded in one call")
}

func TestScoreIsOrderInvariant(t *testing.T) {
	e := embedding.NewLocalEmbedder(64)
	engine := NewEngine(e)
	ctx := context.Background()

	resume := doc(t, "Go developer. Kubernetes operator author. Enjoys mentoring.")
	resumeShuffled := doc(t, "Enjoys mentoring. Go developer. Kubernetes operator author.")
	jd := doc(t, "We need Kubernetes skills. Go experience is a must. Mentoring is welcome.")
	jdShuffled := doc(t, "Mentoring is welcome. We need Kubernetes skills. Go experience is a must.")

	a, err := engine.Score(ctx, resume, jd)
	require.NoError(t, err)
	b, err := engine.Score(ctx, resumeShuffled, jdShuffled)
	require.NoError(t, err)

	assert.Equal(t, a.Score, b.Score)
	assert.GreaterOrEqual(t, a.Score, 0.0)
	assert.LessOrEqual(t, a.Score, 1.0)
}

func TestScoreIdenticalDocuments(t *testing.T) {
	engine := NewEngine(embedding.NewLocalEmbedder(0))
	d := doc(t, "Designed distributed systems. Wrote a lot of Go.")

	result, err := engine.Score(context.Background(), d, d)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, result.Score, 1e-6)
}

func TestScoreInsufficientText(t *testing.T) {
	stub := &embeddingtest.Stub{}
	engine := NewEngine(stub)

	_, err := engine.Score(context.Background(), doc(t, "!!! ..."), doc(t, "Python."))
	assert.True(t, errors.IsInsufficientText(err))

	_, err = engine.Score(context.Background(), doc(t, "Python."), doc(t, "---"))
	assert.True(t, errors.IsInsufficientText(err))

	assert.Zero(t, stub.Calls())
}

func TestScoreEmbeddingFailure(t *testing.T) {
	boom := stderrors.New("model crashed")
	engine := NewEngine(&embeddingtest.Stub{Err: boom})

	_, err := engine.Score(context.Background(), doc(t, "Python."), doc(t, "Python."))
	assert.ErrorIs(t, err, boom)
}

type shortEmbedder struct{ embeddingtest.Stub }

func (s *shortEmbedder) Embed(ctx context.Context, sentences []string) ([][]float32, error) {
	out, err := s.Stub.Embed(ctx, sentences)
	return out[:len(out)-1], err
}

func TestScoreShapeMismatch(t *testing.T) {
	engine := NewEngine(&shortEmbedder{})

	_, err := engine.Score(context.Background(), doc(t, "Python."), doc(t, "Go."))
	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errors.ErrorTypeInternal, appErr.Type)
}

func BenchmarkAverageMax(b *testing.B) {
	e := embedding.NewLocalEmbedder(0)
	sentences := func(n int, prefix string) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = fmt.Sprintf("%s sentence number %d about go and kubernetes", prefix, i)
		}
		return out
	}
	resume, _ := e.Embed(context.Background(), sentences(40, "resume"))
	jd, _ := e.Embed(context.Background(), sentences(20, "job"))

	for b.Loop() {
		AverageMax(resume, jd)
	}
}
