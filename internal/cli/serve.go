package cli

import (
	"context"
	"fmt"

	"resumefit/internal/config"
	"resumefit/internal/observability"
	"resumefit/internal/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP fit scoring service",
	Long: `Start an HTTP server that scores resumes against job descriptions.

Available endpoints:
- POST /evaluate: Score a resume against a job description
- GET /health: Model and circuit breaker status
- GET /stats: Server statistics and rate limiting info

TLS Configuration:
- Use --tls-mode to set TLS mode: disabled, server, mutual
- Use --cert-file and --key-file for TLS certificates
- Use --ca-file for mutual TLS client certificate verification`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from config)")
	serveCmd.Flags().String("tls-mode", "", "TLS mode: disabled, server, mutual (overrides config)")
	serveCmd.Flags().String("cert-file", "", "Server certificate file (PEM, overrides config)")
	serveCmd.Flags().String("key-file", "", "Server private key file (PEM, overrides config)")
	serveCmd.Flags().String("ca-file", "", "CA certificate file for client cert verification (PEM, overrides config)")
}

// applyServeFlags copies explicitly set flags over the loaded server config.
func applyServeFlags(cmd *cobra.Command, cfg *config.ServerConfig) {
	override := func(flag string, dst *string) {
		if cmd.Flags().Changed(flag) {
			*dst, _ = cmd.Flags().GetString(flag)
		}
	}
	override("port", &cfg.Port)
	override("host", &cfg.Host)
	override("tls-mode", &cfg.TLS.Mode)
	override("cert-file", &cfg.TLS.CertFile)
	override("key-file", &cfg.TLS.KeyFile)
	override("ca-file", &cfg.TLS.CAFile)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	applyServeFlags(cmd, &cfg.Server)
	if err := cfg.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("invalid TLS configuration: %w", err)
	}

	obs, err := observability.NewManager(cfg.Observability, Version, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		if err := obs.Shutdown(context.Background()); err != nil {
			logger.LogError(err, "Failed to shut down observability")
		}
	}()

	// The model is loaded once here and shared by every request. Vault
	// secrets, including server API keys, are applied while building it.
	p, emb, err := buildPipeline(cmd.Context(), cfg, obs.Metrics(), logger)
	if err != nil {
		return err
	}
	defer closeQuietly(emb, logger)

	srv := server.NewServer(cfg.Server, Version, server.Dependencies{
		Evaluator:     p,
		Embedder:      emb,
		Observability: obs,
	}, logger)
	return srv.Start(cmd.Context())
}
