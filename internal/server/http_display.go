package server

import (
	"fmt"
	"net"
)

// displayServerInfo prints the listening address and the active protections.
func (s *Server) displayServerInfo(tlsEnabled bool) {
	scheme := "http"
	if tlsEnabled {
		scheme = "https"
	}
	fmt.Printf("resumefit %s listening on %s://%s\n", s.Version, scheme, net.JoinHostPort(s.Host, s.Port))

	s.displayEndpoints()
	s.displayTLSInfo()
	s.displayAuthInfo()
	s.displayRequestLimitInfo()
	s.displayRateLimitInfo()
}

func (s *Server) displayEndpoints() {
	fmt.Println("Available endpoints:")
	fmt.Println("  GET  /health    - Model and circuit breaker status")
	fmt.Println("  GET  /stats     - Server statistics")
	fmt.Println("  POST /evaluate  - Score a resume against a job description")
}

func (s *Server) displayTLSInfo() {
	switch s.TLSConfig.Mode {
	case "server":
		fmt.Println("TLS mode: Server-only (no client certificates required)")
	case "mutual":
		fmt.Printf("TLS mode: Mutual (client auth policy: %s)\n", clientAuthPolicyName(s.TLSConfig.ClientAuthPolicy))
	default:
		fmt.Println("TLS mode: Disabled (HTTP only)")
		return
	}
	if s.CertWatcher != nil {
		fmt.Println("TLS certificate reload: ENABLED (file watching)")
	}
}

func clientAuthPolicyName(policy string) string {
	if policy == "" {
		return "require"
	}
	return policy
}

func (s *Server) displayAuthInfo() {
	if len(s.APIKeys) > 0 {
		fmt.Printf("API authentication: ENABLED (%d keys configured)\n", len(s.APIKeys))
		fmt.Println("Include 'X-API-Key: <your-key>' header in requests to /evaluate")
	} else {
		fmt.Println("API authentication: DISABLED (no API keys configured)")
		fmt.Println("WARNING: API endpoints are publicly accessible!")
	}
}

func (s *Server) displayRequestLimitInfo() {
	if s.MaxRequestSize > 0 {
		fmt.Printf("Request size limit: %d bytes (%.1f MB)\n", s.MaxRequestSize, float64(s.MaxRequestSize)/(1024*1024))
	} else {
		fmt.Println("Request size limit: DISABLED")
		fmt.Println("WARNING: No request size limits configured!")
	}
}

func (s *Server) displayRateLimitInfo() {
	if s.RateLimit != nil && s.RateLimit.Enabled {
		fmt.Printf("Rate limiting: ENABLED (%d requests/min, burst: %d)\n",
			s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity)
		if s.RateLimit.ByAPIKey {
			fmt.Println("  - Per API key rate limiting enabled")
		}
		if s.RateLimit.ByIP {
			fmt.Println("  - Per IP address rate limiting enabled")
		}
	} else {
		fmt.Println("Rate limiting: DISABLED")
		fmt.Println("WARNING: No rate limiting configured!")
	}
}
