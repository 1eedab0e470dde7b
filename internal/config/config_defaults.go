package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "json")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})
	v.SetDefault("app.maxFileSize", 1024*1024) // 1MB

	// Embedding
	v.SetDefault("embedding.provider", ProviderLocal)
	v.SetDefault("embedding.model", "")
	v.SetDefault("embedding.apiKey", "")
	v.SetDefault("embedding.timeout", 30*time.Second)
	v.SetDefault("embedding.dimensions", 0)
	v.SetDefault("embedding.batchSize", 100)
	v.SetDefault("embedding.taskType", "SEMANTIC_SIMILARITY")
	v.SetDefault("embedding.serialize", false)
	v.SetDefault("embedding.queueSize", 64)
	v.SetDefault("embedding.warmup", true)

	v.SetDefault("embedding.circuitBreaker.enabled", true)
	v.SetDefault("embedding.circuitBreaker.maxRequests", 3)
	v.SetDefault("embedding.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("embedding.circuitBreaker.timeout", 30*time.Second)
	v.SetDefault("embedding.circuitBreaker.minRequests", 3)
	v.SetDefault("embedding.circuitBreaker.failureThreshold", 0.6)

	// Skills
	v.SetDefault("skills.vocabularyFile", "")

	// Server
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 60*time.Second)
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.maxRequestSize", 2*1024*1024) // 2MB

	v.SetDefault("server.tls.mode", "disabled")
	v.SetDefault("server.tls.certFile", "")
	v.SetDefault("server.tls.keyFile", "")
	v.SetDefault("server.tls.caFile", "")
	v.SetDefault("server.tls.minVersion", "1.2")
	v.SetDefault("server.tls.cipherSuites", []string{})
	v.SetDefault("server.tls.clientAuthPolicy", "require")
	v.SetDefault("server.tls.watchFiles", true)
	v.SetDefault("server.tls.debounceDelay", time.Second)

	v.SetDefault("server.apiKeys", []string{})

	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.requestsPerMin", 60)
	v.SetDefault("server.rateLimit.burstCapacity", 10)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.byAPIKey", false)
	v.SetDefault("server.rateLimit.window", time.Minute)

	// Vault
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.secrets.apiKeys", "")
	v.SetDefault("vault.secrets.geminiKey", "")

	// Observability
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "resumefit")
	v.SetDefault("observability.serviceVersion", "")  // Falls back to the build version
	v.SetDefault("observability.serviceInstance", "") // Generated from hostname if empty
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)

	v.SetDefault("observability.tracing.enabled", true)
	v.SetDefault("observability.tracing.sampleRate", 1.0)

	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)

	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")

	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})
}
