package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"resumefit/internal/config"
	"resumefit/internal/errors"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Manager owns the OpenTelemetry providers and the resumefit metrics.
type Manager struct {
	config         Settings
	tracerProvider *trace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	metrics        *Metrics
	promServer     *http.Server
	shutdownFuncs  []func(context.Context) error
	logger         *errors.Logger
}

// NewManager sets up tracing and metrics. A disabled configuration yields a
// manager whose metrics are no-ops and whose middleware passes through.
func NewManager(cfg config.ObservabilityConfig, version string, logger *errors.Logger) (*Manager, error) {
	if logger == nil {
		logger = errors.NewNopLogger()
	}
	settings := Resolve(cfg, version)
	m := &Manager{config: settings, logger: logger}
	if !settings.Enabled {
		return m, nil
	}

	res, err := m.resource()
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	if settings.TracingEnabled {
		if err := m.initTracing(res); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	if err := m.initMetrics(res); err != nil {
		_ = m.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	logger.Info("Observability initialized",
		"service", settings.ServiceName,
		"tracing", settings.TracingEnabled,
		"console", settings.ConsoleOutput,
		"otlp", settings.OTLP.Enabled,
		"prometheus", settings.Prometheus.Enabled)
	return m, nil
}

func (m *Manager) resource() (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(m.config.ServiceName),
			semconv.ServiceVersion(m.config.ServiceVersion),
			attribute.String("service.instance.id", m.config.ServiceInstance),
		),
	)
}

func (m *Manager) initTracing(res *resource.Resource) error {
	var (
		exporter trace.SpanExporter
		err      error
	)

	switch {
	case m.config.ConsoleOutput:
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	case m.config.OTLP.Enabled:
		exporter, err = m.otlpTraceExporter()
	default:
		exporter = noOpSpanExporter{}
	}
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(m.config.SampleRate))),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	m.tracerProvider = tp
	m.shutdownFuncs = append(m.shutdownFuncs, tp.Shutdown)
	return nil
}

func (m *Manager) initMetrics(res *resource.Resource) error {
	readers, err := m.metricReaders()
	if err != nil {
		return err
	}

	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	for _, r := range readers {
		opts = append(opts, sdkmetric.WithReader(r))
	}

	mp := sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(mp)
	m.meterProvider = mp
	m.shutdownFuncs = append(m.shutdownFuncs, mp.Shutdown)

	metrics, err := NewMetrics(mp.Meter(m.config.ServiceName))
	if err != nil {
		return err
	}
	m.metrics = metrics
	return nil
}

func (m *Manager) metricReaders() ([]sdkmetric.Reader, error) {
	if !m.config.MetricsEnabled {
		return []sdkmetric.Reader{sdkmetric.NewManualReader()}, nil
	}

	var readers []sdkmetric.Reader

	if m.config.ConsoleOutput {
		exporter, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create console metric exporter: %w", err)
		}
		readers = append(readers, sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(m.config.CollectionInterval)))
	}

	if m.config.OTLP.Enabled {
		reader, err := m.otlpMetricsReader()
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP metrics reader: %w", err)
		}
		readers = append(readers, reader)
	}

	if m.config.Prometheus.Enabled {
		reader, mux, err := SetupPrometheusExporter(m.config.Prometheus)
		if err != nil {
			return nil, err
		}
		readers = append(readers, reader)
		m.promServer = StartPrometheusServer(mux, m.config.Prometheus.Port, m.logger)
		m.shutdownFuncs = append(m.shutdownFuncs, m.promServer.Shutdown)
	}

	if len(readers) == 0 {
		readers = append(readers, sdkmetric.NewManualReader())
	}
	return readers, nil
}

// Metrics returns the resumefit instruments. It never returns nil.
func (m *Manager) Metrics() *Metrics {
	if m == nil || m.metrics == nil {
		return nopMetrics
	}
	return m.metrics
}

// HTTPMiddleware returns otelhttp instrumentation, or a pass-through when
// observability is disabled.
func (m *Manager) HTTPMiddleware() func(http.Handler) http.Handler {
	if m == nil || !m.config.Enabled {
		return func(h http.Handler) http.Handler { return h }
	}

	opts := []otelhttp.Option{otelhttp.WithMeterProvider(m.meterProvider)}
	if m.tracerProvider != nil {
		opts = append(opts, otelhttp.WithTracerProvider(m.tracerProvider))
	}
	return otelhttp.NewMiddleware(m.config.ServiceName, opts...)
}

// Tracer returns a named tracer.
func (m *Manager) Tracer(name string) oteltrace.Tracer {
	if m == nil || m.tracerProvider == nil {
		return noop.NewTracerProvider().Tracer(name)
	}
	return m.tracerProvider.Tracer(name)
}

// Shutdown flushes and stops every exporter. All components are shut down
// even when one of them fails; the first error is returned.
func (m *Manager) Shutdown(ctx context.Context) error {
	if m == nil {
		return nil
	}
	var first error
	for i := len(m.shutdownFuncs) - 1; i >= 0; i-- {
		if err := m.shutdownFuncs[i](ctx); err != nil && first == nil {
			first = err
		}
	}
	m.shutdownFuncs = nil
	return first
}

type noOpSpanExporter struct{}

func (noOpSpanExporter) ExportSpans(context.Context, []trace.ReadOnlySpan) error { return nil }
func (noOpSpanExporter) Shutdown(context.Context) error { return nil }

func (m *Manager) otlpTraceExporter() (trace.SpanExporter, error) {
	cfg := m.config.OTLP
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpointURL(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(cfg.Headers))
	}

	exporter, err := otlptracehttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}
	return exporter, nil
}

func (m *Manager) otlpMetricsReader() (sdkmetric.Reader, error) {
	cfg := m.config.OTLP
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpointURL(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlpmetrichttp.WithHeaders(cfg.Headers))
	}

	exporter, err := otlpmetrichttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}
	return sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(m.config.CollectionInterval)), nil
}

const defaultCollectionInterval = 15 * time.Second
