package config

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// applyFallbacks applies environment variable fallbacks
func (c *Config) applyFallbacks() {
	c.applyEmbeddingKeyFallback()
	c.applyServerAPIKeyFallbacks()
	c.applyTLSDefaults()
	c.applyObservabilityDefaults()
}

// applyEmbeddingKeyFallback honours the conventional GEMINI_API_KEY variable
func (c *Config) applyEmbeddingKeyFallback() {
	if c.Embedding.APIKey == "" {
		c.Embedding.APIKey = os.Getenv("GEMINI_API_KEY")
	}
}

// applyServerAPIKeyFallbacks applies API key fallbacks from environment variables
func (c *Config) applyServerAPIKeyFallbacks() {
	if len(c.Server.APIKeys) == 0 {
		if apiKeysEnv := os.Getenv("RESUMEFIT_SERVER_APIKEYS"); apiKeysEnv != "" {
			c.Server.APIKeys = []string{apiKeysEnv}
		}
	}
	// viper delivers env lists with the padding intact
	c.Server.APIKeys = splitKeys(strings.Join(c.Server.APIKeys, ","))
}

func splitKeys(s string) []string {
	parts := strings.Split(s, ",")
	keys := make([]string, 0, len(parts))
	for _, part := range parts {
		if key := strings.TrimSpace(part); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

// applyTLSDefaults applies default TLS configuration values
func (c *Config) applyTLSDefaults() {
	if c.Server.TLS.Mode == "mutual" && c.Server.TLS.ClientAuthPolicy == "" {
		c.Server.TLS.ClientAuthPolicy = "require"
	}

	if c.Server.TLS.MinVersion == "" && c.Server.TLS.Mode != "disabled" {
		c.Server.TLS.MinVersion = "1.2"
	}
}

// applyObservabilityDefaults applies default observability configuration values
func (c *Config) applyObservabilityDefaults() {
	if c.Observability.ServiceInstance == "" {
		c.Observability.ServiceInstance = generateServiceInstanceID(c.Observability.ServiceName)
	}

	if c.App.LogLevel == "debug" && !c.Observability.ConsoleOutput {
		c.Observability.ConsoleOutput = true
	}
}

// generateServiceInstanceID generates a unique service instance ID
func generateServiceInstanceID(serviceName string) string {
	if hostname, err := os.Hostname(); err == nil {
		return fmt.Sprintf("%s-%s", serviceName, hostname)
	}
	return fmt.Sprintf("%s-1", serviceName)
}

// logConfigurationSources logs a summary of configuration sources being used
func (c *Config) logConfigurationSources(configFileUsed string) {
	log.Println("[CONFIG] === Configuration Sources Summary ===")

	if configFileUsed != "" {
		log.Printf("[CONFIG] Config file: %s", configFileUsed)
	} else {
		log.Println("[CONFIG] Config file: None (using defaults)")
	}

	envVars := []string{
		"RESUMEFIT_EMBEDDING_PROVIDER",
		"RESUMEFIT_EMBEDDING_MODEL",
		"RESUMEFIT_EMBEDDING_APIKEY",
		"RESUMEFIT_SKILLS_VOCABULARYFILE",
		"RESUMEFIT_SERVER_PORT",
		"RESUMEFIT_SERVER_HOST",
		"RESUMEFIT_SERVER_APIKEYS",
		"RESUMEFIT_APP_LOGLEVEL",
		"RESUMEFIT_VAULT_ENABLED",
		"GEMINI_API_KEY",
	}

	log.Println("[CONFIG] Environment variables:")
	hasEnvVars := false
	for _, envVar := range envVars {
		if value := os.Getenv(envVar); value != "" {
			if strings.Contains(strings.ToLower(envVar), "key") {
				log.Printf("[CONFIG]   %s=***MASKED***", envVar)
			} else {
				log.Printf("[CONFIG]   %s=%s", envVar, value)
			}
			hasEnvVars = true
		}
	}
	if !hasEnvVars {
		log.Println("[CONFIG]   None set")
	}

	log.Println("[CONFIG] === Key Configuration Values ===")
	log.Printf("[CONFIG] Embedding Provider: %s", c.Embedding.Provider)
	log.Printf("[CONFIG] Embedding Model: %s", c.Embedding.Model)
	if c.Embedding.APIKey != "" {
		log.Println("[CONFIG] Embedding API Key: ***CONFIGURED***")
	} else {
		log.Println("[CONFIG] Embedding API Key: ***NOT SET***")
	}
	log.Printf("[CONFIG] Embedding Serialized: %t", c.Embedding.Serialize)
	if c.Skills.VocabularyFile != "" {
		log.Printf("[CONFIG] Skill Vocabulary: %s", c.Skills.VocabularyFile)
	} else {
		log.Println("[CONFIG] Skill Vocabulary: built-in")
	}
	log.Printf("[CONFIG] Server Host: %s", c.Server.Host)
	log.Printf("[CONFIG] Server Port: %s", c.Server.Port)
	log.Printf("[CONFIG] Log Level: %s", c.App.LogLevel)
	log.Printf("[CONFIG] TLS Mode: %s", c.Server.TLS.Mode)
	log.Printf("[CONFIG] Vault Enabled: %t", c.Vault.Enabled)
	log.Printf("[CONFIG] Observability Enabled: %t", c.Observability.Enabled)

	log.Println("[CONFIG] =====================================")
}
