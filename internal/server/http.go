package server

import (
	"context"
	"time"

	"resumefit/internal/config"
	"resumefit/internal/embedding"
	resumefitErrors "resumefit/internal/errors"
	"resumefit/internal/observability"
	"resumefit/internal/types"
)

// Evaluator scores a resume against a job description.
type Evaluator interface {
	Evaluate(ctx context.Context, resumeText, jdText string) (types.FitResult, error)
}

// ErrorResponse is the JSON body of every non-2xx response
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	TLSConfig   config.TLSConfig
	CertWatcher *CertWatcher

	// API keys for O(1) lookup
	APIKeys map[string]bool

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	MaxRequestSize int64

	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	Evaluator     Evaluator
	Embedder      embedding.Embedder
	Observability *observability.Manager

	Logger *resumefitErrors.Logger
}

// Dependencies are the runtime components a Server serves requests with.
type Dependencies struct {
	Evaluator     Evaluator
	Embedder      embedding.Embedder
	Observability *observability.Manager
}

// NewServer creates a Server from the server section of cfg.
func NewServer(cfg config.ServerConfig, version string, deps Dependencies, logger *resumefitErrors.Logger) *Server {
	if logger == nil {
		logger = resumefitErrors.NewNopLogger()
	}

	apiKeyMap := make(map[string]bool, len(cfg.APIKeys))
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	rateLimit := cfg.RateLimit
	var rateLimiter *RateLimiter
	if rateLimit.Enabled {
		rateLimiter = NewRateLimiter(rateLimit.RequestsPerMin, rateLimit.BurstCapacity, rateLimit.Window, logger)
	}

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        version,
		TLSConfig:      cfg.TLS,
		APIKeys:        apiKeyMap,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      &rateLimit,
		RateLimiter:    rateLimiter,
		Evaluator:      deps.Evaluator,
		Embedder:       deps.Embedder,
		Observability:  deps.Observability,
		Logger:         logger,
	}
}
