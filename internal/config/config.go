package config

import (
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
// Embedding API Key Precedence Order:
// 1. Vault (if configured) - Highest priority
// 2. Config File values
// 3. Environment Variables (RESUMEFIT_EMBEDDING_APIKEY, then GEMINI_API_KEY)
// 4. Default values - Lowest priority
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Embedding     EmbeddingConfig     `mapstructure:"embedding"`
	Skills        SkillsConfig        `mapstructure:"skills"`
	Server        ServerConfig        `mapstructure:"server"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// AppConfig holds general application configuration
type AppConfig struct {
	LogLevel         string   `mapstructure:"logLevel"`
	DefaultFormat    string   `mapstructure:"defaultFormat"`
	SupportedFormats []string `mapstructure:"supportedFormats"`
	MaxFileSize      int64    `mapstructure:"maxFileSize"`
}

// EmbeddingConfig configures the sentence embedding model shared by all evaluations
type EmbeddingConfig struct {
	Provider   string        `mapstructure:"provider"` // "gemini" or "local"
	Model      string        `mapstructure:"model"`
	APIKey     string        `mapstructure:"apiKey"`
	Timeout    time.Duration `mapstructure:"timeout"`    // Per remote call
	Dimensions int           `mapstructure:"dimensions"` // 0 keeps the model's native size
	BatchSize  int           `mapstructure:"batchSize"`  // Sentences per remote call
	TaskType   string        `mapstructure:"taskType"`

	// Serialize funnels every Embed call through a single worker goroutine.
	Serialize bool `mapstructure:"serialize"`
	QueueSize int  `mapstructure:"queueSize"`
	Warmup    bool `mapstructure:"warmup"`

	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuitBreaker"`
}

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`          // Whether circuit breaker is enabled
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // Max requests allowed when half-open
	Interval         time.Duration `mapstructure:"interval"`         // Interval to clear counts
	Timeout          time.Duration `mapstructure:"timeout"`          // Timeout for half-open to open
	MinRequests      uint32        `mapstructure:"minRequests"`      // Minimum requests before tripping
	FailureThreshold float64       `mapstructure:"failureThreshold"` // Failure ratio threshold (0.0-1.0)
}

// SkillsConfig selects the skill vocabulary
type SkillsConfig struct {
	VocabularyFile string `mapstructure:"vocabularyFile"` // Empty uses the built-in list
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           string        `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"readTimeout"`
	WriteTimeout   time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout    time.Duration `mapstructure:"idleTimeout"`
	MaxRequestSize int64         `mapstructure:"maxRequestSize"`

	TLS TLSConfig `mapstructure:"tls"`

	// API Authentication
	APIKeys []string `mapstructure:"apiKeys"`

	RateLimit RateLimitConfig `mapstructure:"rateLimit"`
}

// TLSConfig holds TLS/mTLS configuration
type TLSConfig struct {
	Mode     string `mapstructure:"mode"`     // "disabled", "server", "mutual"
	CertFile string `mapstructure:"certFile"` // Server certificate file (PEM)
	KeyFile  string `mapstructure:"keyFile"`  // Server private key file (PEM)
	CAFile   string `mapstructure:"caFile"`   // CA for client cert verification (mutual mode)

	MinVersion       string   `mapstructure:"minVersion"`       // "1.2" or "1.3"
	CipherSuites     []string `mapstructure:"cipherSuites"`     // Optional allow-list
	ClientAuthPolicy string   `mapstructure:"clientAuthPolicy"` // "require", "request", "verify"

	// WatchFiles reloads the key pair when the files change on disk.
	WatchFiles    bool          `mapstructure:"watchFiles"`
	DebounceDelay time.Duration `mapstructure:"debounceDelay"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	RequestsPerMin int           `mapstructure:"requestsPerMin"`
	BurstCapacity  int           `mapstructure:"burstCapacity"`
	ByIP           bool          `mapstructure:"byIP"`
	ByAPIKey       bool          `mapstructure:"byAPIKey"`
	Window         time.Duration `mapstructure:"window"`
}

// ObservabilityConfig holds observability configuration
type ObservabilityConfig struct {
	Enabled         bool             `mapstructure:"enabled"`
	ServiceName     string           `mapstructure:"serviceName"`
	ServiceVersion  string           `mapstructure:"serviceVersion"`
	ServiceInstance string           `mapstructure:"serviceInstance"`
	ConsoleOutput   bool             `mapstructure:"consoleOutput"`
	SampleRate      float64          `mapstructure:"sampleRate"`
	Tracing         TracingConfig    `mapstructure:"tracing"`
	Metrics         MetricsConfig    `mapstructure:"metrics"`
	Prometheus      PrometheusConfig `mapstructure:"prometheus"`
	OTLP            OTLPConfig       `mapstructure:"otlp"`
}

// TracingConfig holds tracing configuration
type TracingConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	SampleRate float64 `mapstructure:"sampleRate"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	CollectionInterval time.Duration `mapstructure:"collectionInterval"`
}

// PrometheusConfig holds Prometheus configuration
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Port     string `mapstructure:"port"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

// LoadConfig loads configuration from environment variables and the first
// config.yaml found on the search path.
func LoadConfig() (*Config, error) {
	return LoadConfigFile("")
}

// LoadConfigFile loads configuration like LoadConfig but reads the given file
// instead of searching for one. An empty path searches.
func LoadConfigFile(path string) (*Config, error) {
	log.Println("[CONFIG] Starting configuration loading process")

	v := viper.New()

	setDefaults(v)
	log.Println("[CONFIG] Applied default configuration values")

	v.SetEnvPrefix("RESUMEFIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	log.Println("[CONFIG] Configured environment variable handling with prefix 'RESUMEFIT'")

	if path != "" {
		v.SetConfigFile(path)
		log.Printf("[CONFIG] Using explicit config file: %s", path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/resumefit/")
		v.AddConfigPath("$HOME/.resumefit")
		v.AddConfigPath(".")
		log.Println("[CONFIG] Configured config file search paths: /etc/resumefit/, $HOME/.resumefit, .")
	}

	configFileUsed := ""
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Println("[CONFIG] No config file found, using defaults and environment variables")
	} else {
		configFileUsed = v.ConfigFileUsed()
		log.Printf("[CONFIG] Successfully loaded config file: %s", configFileUsed)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	log.Println("[CONFIG] Successfully unmarshaled configuration")

	config.applyFallbacks()
	log.Println("[CONFIG] Applied configuration fallbacks and environment variable overrides")

	config.logConfigurationSources(configFileUsed)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log.Println("[CONFIG] Configuration loading completed successfully")
	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.App.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.App.LogLevel)
	}

	if !slices.Contains(c.App.SupportedFormats, c.App.DefaultFormat) {
		return fmt.Errorf("invalid default format: %s", c.App.DefaultFormat)
	}

	// A key that Vault will supply is checked again after secrets are applied.
	if err := c.Embedding.validate(!c.geminiKeyFromVault()); err != nil {
		return fmt.Errorf("embedding configuration error: %w", err)
	}

	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if err := c.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("TLS configuration error: %w", err)
	}

	return nil
}

// geminiKeyFromVault reports whether Vault is configured to supply the Gemini key.
func (c *Config) geminiKeyFromVault() bool {
	return c.Vault.Enabled && c.Vault.Secrets.GeminiKey != ""
}

// Validate checks the embedding section on its own
func (e EmbeddingConfig) Validate() error {
	return e.validate(true)
}

func (e EmbeddingConfig) validateAPIKey() error {
	if e.Provider == ProviderGemini && e.APIKey == "" {
		return fmt.Errorf("gemini API key is required (set RESUMEFIT_EMBEDDING_APIKEY, GEMINI_API_KEY or vault.secrets.geminiKey)")
	}
	return nil
}

func (e EmbeddingConfig) validate(requireKey bool) error {
	switch e.Provider {
	case ProviderGemini:
		if requireKey {
			if err := e.validateAPIKey(); err != nil {
				return err
			}
		}
		if e.Timeout <= 0 {
			return fmt.Errorf("timeout must be positive")
		}
	case ProviderLocal:
	default:
		return fmt.Errorf("unknown provider: %q (must be %q or %q)", e.Provider, ProviderGemini, ProviderLocal)
	}

	if e.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive")
	}
	if e.Dimensions < 0 {
		return fmt.Errorf("dimensions must not be negative")
	}
	if e.Serialize && e.QueueSize <= 0 {
		return fmt.Errorf("queue size must be positive when serialize is enabled")
	}

	cb := e.CircuitBreaker
	if cb.Enabled && (cb.FailureThreshold <= 0 || cb.FailureThreshold > 1) {
		return fmt.Errorf("circuit breaker failure threshold must be in (0, 1]")
	}
	return nil
}

// Embedding providers
const (
	ProviderGemini = "gemini"
	ProviderLocal  = "local"
)

// Global configuration instance
var GlobalConfig *Config

// InitConfig initializes the global configuration
func InitConfig() error {
	config, err := LoadConfig()
	if err != nil {
		return err
	}
	GlobalConfig = config
	return nil
}
