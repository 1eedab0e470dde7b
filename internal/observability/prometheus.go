package observability

import (
	"fmt"
	"net/http"
	"time"

	"resumefit/internal/config"
	"resumefit/internal/errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// SetupPrometheusExporter creates a Prometheus reader backed by its own
// registry and a mux serving that registry on cfg.Endpoint.
func SetupPrometheusExporter(cfg config.PrometheusConfig) (sdkmetric.Reader, *http.ServeMux, error) {
	registry := prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.Endpoint, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return exporter, mux, nil
}

// StartPrometheusServer serves mux on port in the background.
func StartPrometheusServer(mux *http.ServeMux, port string, logger *errors.Logger) *http.Server {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("Starting Prometheus metrics server", "address", server.Addr)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warn("Prometheus server stopped", "error", err.Error())
		}
	}()
	return server
}
