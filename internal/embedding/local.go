package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"resumefit/internal/config"
)

// DefaultLocalDimensions is the vector size of the local embedder.
const DefaultLocalDimensions = 384

const localModelName = "hashing-ngram-v1"

// LocalEmbedder is an offline embedder built on feature hashing of word
// unigrams, word bigrams and character trigrams. Vectors are L2-normalised,
// deterministic and safe to compute concurrently.
type LocalEmbedder struct {
	dimensions int
}

var _ Embedder = (*LocalEmbedder)(nil)

// NewLocalEmbedder returns a local embedder producing vectors of the given
// size, or DefaultLocalDimensions when dimensions is not positive.
func NewLocalEmbedder(dimensions int) *LocalEmbedder {
	if dimensions <= 0 {
		dimensions = DefaultLocalDimensions
	}
	return &LocalEmbedder{dimensions: dimensions}
}

// Embed implements Embedder.
func (l *LocalEmbedder) Embed(ctx context.Context, sentences []string) ([][]float32, error) {
	vectors := make([][]float32, len(sentences))
	for i, s := range sentences {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vectors[i] = l.vector(s)
	}
	return vectors, nil
}

func (l *LocalEmbedder) vector(sentence string) []float32 {
	v := make([]float64, l.dimensions)
	tokens := tokenize(sentence)

	for i, tok := range tokens {
		l.add(v, "w:"+tok, 1.0)
		if i > 0 {
			l.add(v, "b:"+tokens[i-1]+" "+tok, 0.5)
		}
		padded := "^" + tok + "$"
		runes := []rune(padded)
		for j := 0; j+3 <= len(runes); j++ {
			l.add(v, "c:"+string(runes[j:j+3]), 0.25)
		}
	}

	var norm float64
	for _, x := range v {
		norm += x * x
	}
	out := make([]float32, l.dimensions)
	if norm == 0 {
		return out
	}
	norm = math.Sqrt(norm)
	for i, x := range v {
		out[i] = float32(x / norm)
	}
	return out
}

// add hashes feature into a bucket with a hash-derived sign.
func (l *LocalEmbedder) add(v []float64, feature string, weight float64) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()
	idx := int(sum % uint64(l.dimensions))
	if sum>>63 == 1 {
		weight = -weight
	}
	v[idx] += weight
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})
}

// Info implements Embedder.
func (l *LocalEmbedder) Info() ModelInfo {
	return ModelInfo{
		Provider:   config.ProviderLocal,
		Model:      localModelName,
		Dimensions: l.dimensions,
		Reentrant:  true,
	}
}

// Close implements Embedder.
func (l *LocalEmbedder) Close() error { return nil }
