package embedding

import (
	"context"
	stderrors "errors"
	"net/http"

	"resumefit/internal/config"
	"resumefit/internal/errors"

	"github.com/sony/gobreaker/v2"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// CircuitBreaker guards remote embedding calls. A nil *CircuitBreaker is a
// pass-through, which is what NewCircuitBreaker returns when disabled.
type CircuitBreaker struct {
	cb *gobreaker.CircuitBreaker[[][]float32]
}

// NewCircuitBreaker builds a breaker from cfg.
func NewCircuitBreaker(name string, cfg config.CircuitBreakerConfig, logger *errors.Logger) *CircuitBreaker {
	if !cfg.Enabled {
		return nil
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.MinRequests &&
				failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if logger == nil {
				return
			}
			logger.Warn("Circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
				"failure_threshold", cfg.FailureThreshold)
		},
		IsSuccessful: isBreakerSuccess,
	}

	return &CircuitBreaker{
		cb: gobreaker.NewCircuitBreaker[[][]float32](settings),
	}
}

// isBreakerSuccess counts cancellations and 4xx responses other than 429 as
// successes so they never trip the breaker.
func isBreakerSuccess(err error) bool {
	if err == nil || stderrors.Is(err, context.Canceled) {
		return true
	}
	var genaiErr genai.APIError
	if stderrors.As(err, &genaiErr) {
		return isClientError(genaiErr.Code)
	}
	var apiErr *googleapi.Error
	if stderrors.As(err, &apiErr) {
		return isClientError(apiErr.Code)
	}
	return false
}

func isClientError(code int) bool {
	return code >= 400 && code < 500 && code != http.StatusTooManyRequests
}

// Execute runs fn under breaker protection.
func (cb *CircuitBreaker) Execute(fn func() ([][]float32, error)) ([][]float32, error) {
	if cb == nil || cb.cb == nil {
		return fn()
	}
	return cb.cb.Execute(fn)
}

// GetStats returns circuit breaker statistics
func (cb *CircuitBreaker) GetStats() map[string]any {
	if cb == nil || cb.cb == nil {
		return map[string]any{
			"enabled": false,
		}
	}

	return map[string]any{
		"name":    cb.cb.Name(),
		"state":   cb.cb.State().String(),
		"counts":  cb.cb.Counts(),
		"enabled": true,
	}
}

// IsHealthy returns false only while the breaker is open.
func (cb *CircuitBreaker) IsHealthy() bool {
	if cb == nil || cb.cb == nil {
		return true
	}
	return cb.cb.State() != gobreaker.StateOpen
}

// IsOpenError reports whether err was produced by a breaker refusing work.
func IsOpenError(err error) bool {
	return stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests)
}
