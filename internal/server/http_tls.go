package server

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"
)

// configureTLS sets httpServer.TLSConfig according to the TLS mode. In
// "disabled" mode it leaves the server on plain HTTP.
func (s *Server) configureTLS(httpServer *http.Server) error {
	switch s.TLSConfig.Mode {
	case "", "disabled":
		return nil
	case "server", "mutual":
	default:
		return fmt.Errorf("invalid TLS mode: %s (must be 'disabled', 'server', or 'mutual')", s.TLSConfig.Mode)
	}

	tlsConfig, err := s.buildTLSConfig()
	if err != nil {
		return fmt.Errorf("failed to set up TLS: %w", err)
	}
	httpServer.TLSConfig = tlsConfig
	return nil
}

// buildTLSConfig creates the TLS configuration. With watchFiles enabled the
// key pair and client CAs are served from a CertWatcher so rotations on
// disk take effect without a restart.
func (s *Server) buildTLSConfig() (*tls.Config, error) {
	mutual := s.TLSConfig.Mode == "mutual"

	caFile := ""
	if mutual {
		caFile = s.TLSConfig.CAFile
	}

	tlsConfig := &tls.Config{
		MinVersion:   tlsVersion(s.TLSConfig.MinVersion),
		CipherSuites: cipherSuites(s.TLSConfig.CipherSuites),
		ClientAuth:   tls.NoClientCert,
	}

	if s.TLSConfig.WatchFiles {
		cw, err := NewCertWatcher(s.TLSConfig.CertFile, s.TLSConfig.KeyFile, caFile, s.TLSConfig.DebounceDelay, s.Logger)
		if err != nil {
			return nil, err
		}
		if err := cw.Start(); err != nil {
			return nil, err
		}
		s.CertWatcher = cw
		tlsConfig.GetCertificate = cw.GetCertificate

		if mutual {
			tlsConfig.ClientAuth = clientAuthPolicy(s.TLSConfig.ClientAuthPolicy)
			tlsConfig.ClientCAs = cw.ClientCAs()
			base := tlsConfig.Clone()
			tlsConfig.GetConfigForClient = func(*tls.ClientHelloInfo) (*tls.Config, error) {
				cfg := base.Clone()
				cfg.ClientCAs = cw.ClientCAs()
				return cfg, nil
			}
		}
		return tlsConfig, nil
	}

	cert, err := tls.LoadX509KeyPair(s.TLSConfig.CertFile, s.TLSConfig.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load server cert/key from files: %w", err)
	}
	tlsConfig.Certificates = []tls.Certificate{cert}

	if mutual {
		pool, err := loadCAPool(caFile)
		if err != nil {
			return nil, err
		}
		tlsConfig.ClientCAs = pool
		tlsConfig.ClientAuth = clientAuthPolicy(s.TLSConfig.ClientAuthPolicy)
	}
	return tlsConfig, nil
}

func loadCAPool(caFile string) (*x509.CertPool, error) {
	if caFile == "" {
		return nil, fmt.Errorf("CA certificate is required for mutual TLS mode")
	}
	pem, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA file: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("failed to append CA cert")
	}
	return pool, nil
}

func tlsVersion(v string) uint16 {
	if v == "1.3" {
		return tls.VersionTLS13
	}
	return tls.VersionTLS12
}

func clientAuthPolicy(policy string) tls.ClientAuthType {
	switch policy {
	case "request":
		return tls.RequestClientCert
	case "verify":
		return tls.VerifyClientCertIfGiven
	default:
		return tls.RequireAndVerifyClientCert
	}
}

// cipherSuites maps names to IDs, skipping unknown or insecure names.
// An empty result leaves Go's defaults in place.
func cipherSuites(names []string) []uint16 {
	if len(names) == 0 {
		return nil
	}
	known := make(map[string]uint16)
	for _, cs := range tls.CipherSuites() {
		known[cs.Name] = cs.ID
	}

	ids := make([]uint16, 0, len(names))
	for _, name := range names {
		if id, ok := known[name]; ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	return ids
}
