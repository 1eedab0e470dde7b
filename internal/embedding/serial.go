package embedding

import (
	"context"
	"sync"

	"resumefit/internal/errors"
)

type serialRequest struct {
	ctx       context.Context
	sentences []string
	reply     chan serialReply
}

type serialReply struct {
	vectors [][]float32
	err     error
}

// SerialEmbedder owns an embedder that must not be called concurrently. A
// single worker goroutine drains a bounded queue, so callers block when it is full.
type SerialEmbedder struct {
	inner    Embedder
	requests chan serialRequest
	done     chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

var _ Embedder = (*SerialEmbedder)(nil)

// NewSerialEmbedder starts the worker for inner.
func NewSerialEmbedder(inner Embedder, queueSize int) *SerialEmbedder {
	if queueSize <= 0 {
		queueSize = 1
	}
	s := &SerialEmbedder{
		inner:    inner,
		requests: make(chan serialRequest, queueSize),
		done:     make(chan struct{}),
	}
	s.wg.Add(1)
	go s.run()
	return s
}

func (s *SerialEmbedder) run() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case req := <-s.requests:
			if err := req.ctx.Err(); err != nil {
				req.reply <- serialReply{err: err}
				continue
			}
			vectors, err := s.inner.Embed(req.ctx, req.sentences)
			req.reply <- serialReply{vectors: vectors, err: err}
		}
	}
}

// Embed queues the request and waits for the worker's answer.
func (s *SerialEmbedder) Embed(ctx context.Context, sentences []string) ([][]float32, error) {
	req := serialRequest{ctx: ctx, sentences: sentences, reply: make(chan serialReply, 1)}

	select {
	case <-s.done:
		return nil, errClosed()
	case <-ctx.Done():
		return nil, ctx.Err()
	case s.requests <- req:
	}

	select {
	case r := <-req.reply:
		return r.vectors, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.done:
		return nil, errClosed()
	}
}

func errClosed() error {
	return errors.NewInternalError(errors.ErrCodeEmbeddingUnavailable, "embedder is closed", nil)
}

// Info implements Embedder.
func (s *SerialEmbedder) Info() ModelInfo {
	info := s.inner.Info()
	info.Serialized = true
	return info
}

// Close stops the worker and closes the wrapped embedder. It is idempotent.
func (s *SerialEmbedder) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		s.wg.Wait()
		err = s.inner.Close()
	})
	return err
}

// Unwrap returns the wrapped embedder.
func (s *SerialEmbedder) Unwrap() Embedder { return s.inner }
