package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTLSConfig(t *testing.T) {
	tests := []struct {
		name     string
		tls      TLSConfig
		errorMsg string
	}{
		{
			name: "disabled mode",
			tls:  TLSConfig{Mode: "disabled"},
		},
		{
			name: "server mode valid",
			tls:  TLSConfig{Mode: "server", CertFile: "/path/to/cert.pem", KeyFile: "/path/to/key.pem"},
		},
		{
			name:     "server mode missing key",
			tls:      TLSConfig{Mode: "server", CertFile: "/path/to/cert.pem"},
			errorMsg: "required for server mode",
		},
		{
			name: "mutual mode valid",
			tls: TLSConfig{
				Mode:     "mutual",
				CertFile: "/path/to/cert.pem",
				KeyFile:  "/path/to/key.pem",
				CAFile:   "/path/to/ca.pem",
			},
		},
		{
			name:     "mutual mode without CA",
			tls:      TLSConfig{Mode: "mutual", CertFile: "/path/to/cert.pem", KeyFile: "/path/to/key.pem"},
			errorMsg: "CA certificate file is required",
		},
		{
			name: "mutual mode bad policy",
			tls: TLSConfig{
				Mode:             "mutual",
				CertFile:         "/path/to/cert.pem",
				KeyFile:          "/path/to/key.pem",
				CAFile:           "/path/to/ca.pem",
				ClientAuthPolicy: "sometimes",
			},
			errorMsg: "invalid clientAuthPolicy: sometimes",
		},
		{
			name:     "invalid mode",
			tls:      TLSConfig{Mode: "invalid"},
			errorMsg: "invalid TLS mode: invalid",
		},
		{
			name: "empty mode means disabled",
			tls:  TLSConfig{},
		},
		{
			name: "cipher allow-list",
			tls: TLSConfig{
				Mode:         "server",
				CertFile:     "/path/to/cert.pem",
				KeyFile:      "/path/to/key.pem",
				CipherSuites: []string{"TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256"},
			},
		},
		{
			name: "insecure cipher",
			tls: TLSConfig{
				Mode:         "server",
				CertFile:     "/path/to/cert.pem",
				KeyFile:      "/path/to/key.pem",
				CipherSuites: []string{"TLS_RSA_WITH_RC4_128_SHA"},
			},
			errorMsg: "unknown or insecure cipher suite: TLS_RSA_WITH_RC4_128_SHA",
		},
		{
			name: "ciphers with TLS 1.3",
			tls: TLSConfig{
				Mode:         "server",
				CertFile:     "/path/to/cert.pem",
				KeyFile:      "/path/to/key.pem",
				MinVersion:   "1.3",
				CipherSuites: []string{"TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256"},
			},
			errorMsg: "minVersion is 1.3",
		},
		{
			name:     "negative debounce",
			tls:      TLSConfig{Mode: "server", CertFile: "c", KeyFile: "k", DebounceDelay: -1},
			errorMsg: "debounceDelay",
		},
		{
			name:     "invalid version",
			tls:      TLSConfig{Mode: "disabled", MinVersion: "1.1"},
			errorMsg: "invalid TLS minVersion: 1.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Server: ServerConfig{TLS: tt.tls}}
			err := cfg.ValidateTLSConfig()

			if tt.errorMsg != "" {
				assert.ErrorContains(t, err, tt.errorMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
