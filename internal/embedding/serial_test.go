package embedding_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"resumefit/internal/embedding"
	"resumefit/internal/embedding/embeddingtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerialEmbedderNeverOverlapsCalls(t *testing.T) {
	stub := &embeddingtest.Stub{}
	s := embedding.NewSerialEmbedder(stub, 4)
	defer s.Close()

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			vectors, err := s.Embed(context.Background(), []string{"a", "b"})
			assert.NoError(t, err)
			assert.Len(t, vectors, 2)
		}()
	}
	wg.Wait()

	assert.Equal(t, 16, stub.Calls())
	assert.Equal(t, 1, stub.MaxConcurrent())
	assert.True(t, s.Info().Serialized)
}

func TestSerialEmbedderContextCancelled(t *testing.T) {
	stub := &embeddingtest.Stub{Block: make(chan struct{})}
	s := embedding.NewSerialEmbedder(stub, 1)
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := s.Embed(ctx, []string{"a"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	close(stub.Block)
}

func TestSerialEmbedderClosed(t *testing.T) {
	s := embedding.NewSerialEmbedder(&embeddingtest.Stub{}, 1)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "idempotent")

	_, err := s.Embed(context.Background(), []string{"a"})
	assert.ErrorContains(t, err, "embedder is closed")
}

func TestHealthUnwrapsSerial(t *testing.T) {
	s := embedding.NewSerialEmbedder(embedding.NewLocalEmbedder(8), 1)
	defer s.Close()

	healthy, _ := embedding.Health(s)
	assert.True(t, healthy)
}
