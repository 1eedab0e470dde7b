package config

import (
	"crypto/tls"
	"fmt"
	"slices"
)

var (
	tlsModes           = []string{"", "disabled", "server", "mutual"}
	clientAuthPolicies = []string{"", "require", "request", "verify"}
	tlsVersions        = []string{"", "1.2", "1.3"}
)

// ValidateTLSConfig checks the server TLS section. Certificate and key are
// only required when TLS is on; the CA only in mutual mode.
func (c *Config) ValidateTLSConfig() error {
	t := c.Server.TLS

	if !slices.Contains(tlsModes, t.Mode) {
		return fmt.Errorf("invalid TLS mode: %s (must be 'disabled', 'server', or 'mutual')", t.Mode)
	}
	if !slices.Contains(tlsVersions, t.MinVersion) {
		return fmt.Errorf("invalid TLS minVersion: %s (must be '1.2' or '1.3')", t.MinVersion)
	}
	if t.Mode == "" || t.Mode == "disabled" {
		return nil
	}

	if t.CertFile == "" || t.KeyFile == "" {
		return fmt.Errorf("TLS certificate and key files are required for %s mode", t.Mode)
	}
	if t.Mode == "mutual" {
		if t.CAFile == "" {
			return fmt.Errorf("CA certificate file is required for mutual TLS mode")
		}
		if !slices.Contains(clientAuthPolicies, t.ClientAuthPolicy) {
			return fmt.Errorf("invalid clientAuthPolicy: %s (must be 'require', 'request', or 'verify')", t.ClientAuthPolicy)
		}
	}
	if t.DebounceDelay < 0 {
		return fmt.Errorf("TLS debounceDelay must not be negative")
	}
	return validateCipherSuites(t)
}

// validateCipherSuites rejects unknown or insecure suite names. TLS 1.3
// suites are fixed by crypto/tls, so a 1.3 minimum with a list is an error.
func validateCipherSuites(t TLSConfig) error {
	if len(t.CipherSuites) == 0 {
		return nil
	}
	if t.MinVersion == "1.3" {
		return fmt.Errorf("cipherSuites cannot be configured when minVersion is 1.3")
	}

	known := make(map[string]bool)
	for _, suite := range tls.CipherSuites() {
		known[suite.Name] = true
	}
	for _, name := range t.CipherSuites {
		if !known[name] {
			return fmt.Errorf("unknown or insecure cipher suite: %s", name)
		}
	}
	return nil
}
