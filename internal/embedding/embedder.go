// Package embedding provides the process-wide sentence embedding capability
// used by the similarity engine.
package embedding

import (
	"context"
	"time"
)

// Embedder maps sentences to dense vectors. Implementations must return one
// vector per input sentence, in input order, all of the same dimension.
type Embedder interface {
	Embed(ctx context.Context, sentences []string) ([][]float32, error)
	Info() ModelInfo
	Close() error
}

// ModelInfo describes a loaded embedding model
type ModelInfo struct {
	Provider   string `json:"provider"`
	Model      string `json:"model"`
	Dimensions int    `json:"dimensions,omitempty"`
	// Reentrant is true when Embed may be called from several goroutines at once.
	Reentrant  bool   `json:"reentrant"`
	Serialized bool   `json:"serialized"`
}

// Recorder receives one observation per Embed call.
type Recorder interface {
	RecordEmbedding(ctx context.Context, provider string, sentences int, duration time.Duration, err error)
}

type unwrapper interface {
	Unwrap() Embedder
}

type healthReporter interface {
	IsHealthy() bool
	BreakerStats() map[string]any
}

// Health walks e and the embedders it wraps, returning the first circuit
// breaker status found. Embedders without a breaker are always healthy.
func Health(e Embedder) (bool, map[string]any) {
	for e != nil {
		if hr, ok := e.(healthReporter); ok {
			return hr.IsHealthy(), hr.BreakerStats()
		}
		u, ok := e.(unwrapper)
		if !ok {
			break
		}
		e = u.Unwrap()
	}
	return true, map[string]any{"enabled": false}
}

// instrumented reports every call to a Recorder.
type instrumented struct {
	inner    Embedder
	recorder Recorder
}

// Instrument wraps e so each call is reported to rec. A nil rec returns e unchanged.
func Instrument(e Embedder, rec Recorder) Embedder {
	if rec == nil {
		return e
	}
	return &instrumented{inner: e, recorder: rec}
}

func (i *instrumented) Embed(ctx context.Context, sentences []string) ([][]float32, error) {
	start := time.Now()
	vectors, err := i.inner.Embed(ctx, sentences)
	i.recorder.RecordEmbedding(ctx, i.inner.Info().Provider, len(sentences), time.Since(start), err)
	return vectors, err
}

func (i *instrumented) Info() ModelInfo { return i.inner.Info() }

func (i *instrumented) Close() error { return i.inner.Close() }

func (i *instrumented) Unwrap() Embedder { return i.inner }
