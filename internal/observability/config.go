package observability

import (
	"time"

	"resumefit/internal/config"
)

// Settings is the resolved observability configuration.
type Settings struct {
	Enabled            bool
	ServiceName        string
	ServiceVersion     string
	ServiceInstance    string
	ConsoleOutput      bool
	TracingEnabled     bool
	SampleRate         float64
	MetricsEnabled     bool
	CollectionInterval time.Duration
	Prometheus         config.PrometheusConfig
	OTLP               config.OTLPConfig
}

// Resolve fills the gaps in cfg: the build version stands in for an empty
// service version, tracing.sampleRate overrides the top-level rate when set,
// and the sample rate is kept within [0,1].
func Resolve(cfg config.ObservabilityConfig, version string) Settings {
	s := Settings{
		Enabled:            cfg.Enabled,
		ServiceName:        cfg.ServiceName,
		ServiceVersion:     cfg.ServiceVersion,
		ServiceInstance:    cfg.ServiceInstance,
		ConsoleOutput:      cfg.ConsoleOutput,
		TracingEnabled:     cfg.Tracing.Enabled,
		SampleRate:         cfg.SampleRate,
		MetricsEnabled:     cfg.Metrics.Enabled,
		CollectionInterval: cfg.Metrics.CollectionInterval,
		Prometheus:         cfg.Prometheus,
		OTLP:               cfg.OTLP,
	}

	if s.ServiceName == "" {
		s.ServiceName = "resumefit"
	}
	if s.ServiceVersion == "" {
		s.ServiceVersion = version
	}
	if s.ServiceInstance == "" {
		s.ServiceInstance = s.ServiceName + "-1"
	}
	if cfg.Tracing.SampleRate > 0 {
		s.SampleRate = cfg.Tracing.SampleRate
	}
	s.SampleRate = min(max(s.SampleRate, 0), 1)
	if s.CollectionInterval <= 0 {
		s.CollectionInterval = defaultCollectionInterval
	}
	if s.Prometheus.Endpoint == "" {
		s.Prometheus.Endpoint = "/metrics"
	}
	if s.Prometheus.Port == "" {
		s.Prometheus.Port = "9090"
	}
	return s
}
