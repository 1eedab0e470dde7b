// Package embeddingtest provides a scriptable embedder for tests.
package embeddingtest

import (
	"context"
	"sync"
	"sync/atomic"

	"resumefit/internal/embedding"
)

// Stub returns Vectors[s] for each sentence s, falling back to Default and
// then to a unit vector on the first axis. It records every call.
type Stub struct {
	Vectors map[string][]float32
	Default []float32
	Err     error

	mu        sync.Mutex
	calls     int
	sentences [][]string
	active    atomic.Int32
	maxActive atomic.Int32
	// Block, when set, is received from before each call returns.
	Block chan struct{}
}

var _ embedding.Embedder = (*Stub)(nil)

// Embed implements embedding.Embedder.
func (s *Stub) Embed(ctx context.Context, sentences []string) ([][]float32, error) {
	n := s.active.Add(1)
	defer s.active.Add(-1)
	for {
		peak := s.maxActive.Load()
		if n <= peak || s.maxActive.CompareAndSwap(peak, n) {
			break
		}
	}

	s.mu.Lock()
	s.calls++
	s.sentences = append(s.sentences, append([]string(nil), sentences...))
	s.mu.Unlock()

	if s.Block != nil {
		select {
		case <-s.Block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.Err != nil {
		return nil, s.Err
	}

	out := make([][]float32, len(sentences))
	for i, sentence := range sentences {
		switch {
		case s.Vectors[sentence] != nil:
			out[i] = s.Vectors[sentence]
		case s.Default != nil:
			out[i] = s.Default
		default:
			out[i] = []float32{1, 0}
		}
	}
	return out, nil
}

// Calls returns the number of Embed calls so far.
func (s *Stub) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Sentences returns the sentences passed to each call.
func (s *Stub) Sentences() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]string(nil), s.sentences...)
}

// MaxConcurrent returns the highest number of overlapping Embed calls observed.
func (s *Stub) MaxConcurrent() int {
	return int(s.maxActive.Load())
}

// Info implements embedding.Embedder.
func (s *Stub) Info() embedding.ModelInfo {
	return embedding.ModelInfo{Provider: "stub", Model: "stub", Dimensions: 2, Reentrant: true}
}

// Close implements embedding.Embedder.
func (s *Stub) Close() error { return nil }
