package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoadConfigFileDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	cfg, err := LoadConfigFile(writeConfig(t, "app:\n  logLevel: info\n"))
	require.NoError(t, err)

	assert.Equal(t, ProviderLocal, cfg.Embedding.Provider)
	assert.Equal(t, 100, cfg.Embedding.BatchSize)
	assert.Equal(t, 30*time.Second, cfg.Embedding.Timeout)
	assert.True(t, cfg.Embedding.Warmup)
	assert.True(t, cfg.Embedding.CircuitBreaker.Enabled)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, int64(2*1024*1024), cfg.Server.MaxRequestSize)
	assert.Equal(t, "json", cfg.App.DefaultFormat)
	assert.Equal(t, "disabled", cfg.Server.TLS.Mode)
	assert.NotEmpty(t, cfg.Observability.ServiceInstance)
}

func TestLoadConfigFileOverrides(t *testing.T) {
	path := writeConfig(t, `
embedding:
  provider: gemini
  model: gemini-embedding-001
  dimensions: 768
  serialize: true
skills:
  vocabularyFile: /etc/resumefit/skills.yaml
server:
  port: "9000"
`)
	t.Setenv("RESUMEFIT_EMBEDDING_APIKEY", "env-key")
	t.Setenv("RESUMEFIT_SERVER_APIKEYS", "one, two")

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, ProviderGemini, cfg.Embedding.Provider)
	assert.Equal(t, "gemini-embedding-001", cfg.Embedding.Model)
	assert.Equal(t, 768, cfg.Embedding.Dimensions)
	assert.Equal(t, "env-key", cfg.Embedding.APIKey)
	assert.True(t, cfg.Embedding.Serialize)
	assert.Equal(t, "/etc/resumefit/skills.yaml", cfg.Skills.VocabularyFile)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, []string{"one", "two"}, cfg.Server.APIKeys)
}

func TestLoadConfigFileGeminiKeyFallback(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "legacy-key")
	cfg, err := LoadConfigFile(writeConfig(t, "embedding:\n  provider: gemini\n"))
	require.NoError(t, err)
	assert.Equal(t, "legacy-key", cfg.Embedding.APIKey)
}

func TestLoadConfigFileErrors(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")

	_, err = LoadConfigFile(writeConfig(t, "embedding:\n  provider: gemini\n"))
	assert.ErrorContains(t, err, "gemini API key is required")
}

func TestEmbeddingConfigValidate(t *testing.T) {
	valid := EmbeddingConfig{
		Provider:  ProviderLocal,
		BatchSize: 10,
		CircuitBreaker: CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 0.5,
		},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name     string
		mutate   func(*EmbeddingConfig)
		errorMsg string
	}{
		{"unknown provider", func(e *EmbeddingConfig) { e.Provider = "openai" }, "unknown provider"},
		{"zero batch", func(e *EmbeddingConfig) { e.BatchSize = 0 }, "batch size must be positive"},
		{"negative dimensions", func(e *EmbeddingConfig) { e.Dimensions = -1 }, "dimensions"},
		{"serialize without queue", func(e *EmbeddingConfig) { e.Serialize = true }, "queue size"},
		{"threshold out of range", func(e *EmbeddingConfig) { e.CircuitBreaker.FailureThreshold = 1.5 }, "failure threshold"},
		{"gemini without timeout", func(e *EmbeddingConfig) {
			e.Provider = ProviderGemini
			e.APIKey = "k"
		}, "timeout must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.errorMsg)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			App: AppConfig{
				LogLevel:         "info",
				DefaultFormat:    "json",
				SupportedFormats: []string{"json", "text"},
			},
			Embedding: EmbeddingConfig{Provider: ProviderLocal, BatchSize: 1},
			Server:    ServerConfig{Port: "8080", TLS: TLSConfig{Mode: "disabled"}},
		}
	}
	require.NoError(t, base().Validate())

	cfg := base()
	cfg.App.LogLevel = "loud"
	assert.ErrorContains(t, cfg.Validate(), "invalid log level")

	cfg = base()
	cfg.App.DefaultFormat = "xml"
	assert.ErrorContains(t, cfg.Validate(), "invalid default format")

	cfg = base()
	cfg.Server.Port = ""
	assert.ErrorContains(t, cfg.Validate(), "server port is required")
}
