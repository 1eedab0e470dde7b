package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"resumefit/internal/embedding"
)

// healthHandler reports embedding model readiness and circuit breaker state.
// An open breaker turns the response into 503.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status":  "healthy",
		"service": "resumefit",
		"version": s.Version,
	}

	var healthy bool
	if s.Embedder != nil {
		info := s.Embedder.Info()
		breakerHealthy, breaker := embedding.Health(s.Embedder)
		response["embedding"] = map[string]any{
			"provider":        info.Provider,
			"model":           info.Model,
			"dimensions":      info.Dimensions,
			"serialized":      info.Serialized,
			"ml_model_loaded": true,
		}
		response["circuit_breaker"] = breaker
		healthy = breakerHealthy
	} else {
		response["embedding"] = map[string]any{"ml_model_loaded": false}
		healthy = false
	}

	if s.CertWatcher != nil {
		response["certificates"] = s.CertWatcher.Status()
	}

	status := http.StatusOK
	if !healthy {
		response["status"] = "degraded"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, response)
}

// statsHandler provides server limits and rate limiting statistics
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"service": "resumefit",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
			"auth_enabled":           len(s.APIKeys) > 0,
			"tls_mode":               s.TLSConfig.Mode,
		},
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{"enabled": false}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	writeJSON(w, http.StatusOK, response)
}

type requestTooLargeError struct {
	limit int64
}

func (e *requestTooLargeError) Error() string {
	return fmt.Sprintf("request body too large (limit is %d bytes)", e.limit)
}

// parseJSONRequest parses a JSON request body into v
func parseJSONRequest(r *http.Request, v any) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return fmt.Errorf("content-type must be application/json")
	}

	defer func() { _ = r.Body.Close() }()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return &requestTooLargeError{limit: maxBytesErr.Limit}
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	return nil
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, r *http.Request, statusCode int, title, message, code string) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:     title,
		Message:   message,
		Code:      code,
		RequestID: requestIDFrom(r.Context()),
	})
}
