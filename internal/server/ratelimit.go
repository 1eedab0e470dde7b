package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"resumefit/internal/errors"

	"golang.org/x/time/rate"
)

const defaultLimiterIdle = 10 * time.Minute

// RateLimiter keeps one token bucket per client key (IP or API key).
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	lastSeen map[string]time.Time
	rate     rate.Limit
	burst    int
	idle     time.Duration

	allowed  atomic.Int64
	rejected atomic.Int64

	done      chan struct{}
	closeOnce sync.Once
	logger    *errors.Logger
}

// NewRateLimiter allows requestsPerMin per key with bursts of burstCapacity.
// Buckets unused for idle are evicted; zero means ten minutes.
func NewRateLimiter(requestsPerMin, burstCapacity int, idle time.Duration, logger *errors.Logger) *RateLimiter {
	if idle <= 0 {
		idle = defaultLimiterIdle
	}
	if burstCapacity <= 0 {
		burstCapacity = 1
	}

	m := &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		lastSeen: make(map[string]time.Time),
		rate:     rate.Limit(float64(requestsPerMin) / 60.0),
		burst:    burstCapacity,
		idle:     idle,
		done:     make(chan struct{}),
		logger:   logger,
	}

	go m.cleanupRoutine()
	return m
}

func (m *RateLimiter) limiter(key string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.limiters[key]
	if !ok {
		l = rate.NewLimiter(m.rate, m.burst)
		m.limiters[key] = l
	}
	m.lastSeen[key] = time.Now()
	return l
}

// Allow reports whether a request for key may proceed. It never blocks.
func (m *RateLimiter) Allow(key string) bool {
	if m.limiter(key).Allow() {
		m.allowed.Add(1)
		return true
	}
	m.rejected.Add(1)
	return false
}

// GetStats returns current rate limiter statistics
func (m *RateLimiter) GetStats() map[string]any {
	m.mu.Lock()
	active := len(m.limiters)
	m.mu.Unlock()

	return map[string]any{
		"enabled":           true,
		"active_limiters":   active,
		"rate_per_minute":   float64(m.rate) * 60.0,
		"burst_capacity":    m.burst,
		"requests_allowed":  m.allowed.Load(),
		"requests_rejected": m.rejected.Load(),
	}
}

func (m *RateLimiter) cleanupRoutine() {
	ticker := time.NewTicker(m.idle)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanup(time.Now())
		case <-m.done:
			return
		}
	}
}

// cleanup evicts buckets idle for longer than m.idle as of now.
func (m *RateLimiter) cleanup(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, seen := range m.lastSeen {
		if now.Sub(seen) > m.idle {
			delete(m.limiters, key)
			delete(m.lastSeen, key)
		}
	}

	if m.logger != nil {
		m.logger.Debug("Rate limiter cleanup completed", "remaining_limiters", len(m.limiters))
	}
}

// Close stops the cleanup goroutine.
func (m *RateLimiter) Close() {
	m.closeOnce.Do(func() { close(m.done) })
}

// rateLimitMiddleware rejects requests over their per-key rate with 429.
func (s *Server) rateLimitMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	if s.RateLimiter == nil || s.RateLimit == nil || !s.RateLimit.Enabled {
		return func(next http.HandlerFunc) http.HandlerFunc { return next }
	}

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			key, keyType := rateLimitKey(r, s.RateLimit.ByAPIKey, s.RateLimit.ByIP)
			if key == "" {
				next(w, r)
				return
			}

			if !s.RateLimiter.Allow(key) {
				s.Observability.Metrics().RecordRateLimitHit(r.Context(), keyType)
				s.Logger.Info("Rate limit exceeded",
					"key_type", keyType,
					"endpoint", r.URL.Path,
					"client_ip", clientIP(r),
					"request_id", requestIDFrom(r.Context()))
				w.Header().Set("Retry-After", "60")
				writeErrorResponse(w, r, http.StatusTooManyRequests, "Rate limit exceeded", "Too many requests", "RATE_LIMITED")
				return
			}

			next(w, r)
		}
	}
}

// rateLimitKey returns the bucket key for r and whether it is an API key or
// an IP. API keys take precedence when both are enabled.
func rateLimitKey(r *http.Request, byAPIKey, byIP bool) (string, string) {
	if byAPIKey {
		if apiKey := extractAPIKey(r); apiKey != "" {
			return "api:" + apiKey, "api_key"
		}
	}
	if byIP {
		return "ip:" + clientIP(r), "ip"
	}
	return "", ""
}

// clientIP prefers X-Forwarded-For, then X-Real-IP, then RemoteAddr.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := firstIP(xff); ip != "" {
			return ip
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		if net.ParseIP(xri) != nil {
			return xri
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func firstIP(ips string) string {
	for ip := range strings.SplitSeq(ips, ",") {
		ip = strings.TrimSpace(ip)
		if net.ParseIP(ip) != nil {
			return ip
		}
	}
	return ""
}
