// Package telemetry wires the OpenTelemetry meter provider and the
// calculator's instruments.
package telemetry

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.32.0"

	"github.com/coachpo/materialcalc/internal/infra/config"
)

const (
	defaultServiceName    = "materialcalc"
	defaultServiceVersion = "1.0.0"
	defaultEndpoint       = "localhost:4318"
	defaultEnvironment    = "development"
	defaultExportInterval = 30 * time.Second
)

// estimateBuckets are in milliseconds; exact arithmetic on typical input
// finishes well under one.
var estimateBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 50}

var environment atomic.Value

// Config selects where and whether metrics are exported.
type Config struct {
	Enabled          bool
	EnableMetrics    bool
	OTLPEndpoint     string
	OTLPInsecure     bool
	MetricInterval   time.Duration
	ServiceName      string
	ServiceVersion   string
	ServiceNamespace string
	Environment      string
}

// DefaultConfig reads the standard OTEL_* variables. MATERIALCALC_ENV names
// the environment when OTEL_RESOURCE_ENVIRONMENT is unset.
func DefaultConfig() Config {
	env := envOr("OTEL_RESOURCE_ENVIRONMENT", "")
	if env == "" {
		env = envOr(config.EnvVar, defaultEnvironment)
	}
	return Config{
		Enabled:          os.Getenv("OTEL_ENABLED") != "false",
		EnableMetrics:    os.Getenv("OTEL_METRICS_ENABLED") != "false",
		OTLPEndpoint:     envOr("OTEL_EXPORTER_OTLP_ENDPOINT", defaultEndpoint),
		OTLPInsecure:     os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true",
		MetricInterval:   defaultExportInterval,
		ServiceName:      envOr("OTEL_SERVICE_NAME", defaultServiceName),
		ServiceVersion:   defaultServiceVersion,
		ServiceNamespace: os.Getenv("OTEL_SERVICE_NAMESPACE"),
		Environment:      env,
	}
}

// FromApp overlays the YAML telemetry section on DefaultConfig.
func FromApp(env config.Environment, app config.TelemetryConfig) Config {
	cfg := DefaultConfig()
	if app.OTLPEndpoint != "" {
		cfg.OTLPEndpoint = app.OTLPEndpoint
	}
	if app.ServiceName != "" {
		cfg.ServiceName = app.ServiceName
	}
	cfg.Environment = string(env)
	cfg.OTLPInsecure = app.OTLPInsecure
	cfg.EnableMetrics = app.EnableMetrics
	return cfg
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Provider owns the SDK meter provider. A Provider built with exporting
// switched off hands out meters from the global (no-op) provider.
type Provider struct {
	meterProvider *sdkmetric.MeterProvider
	config        Config
}

// NewProvider starts exporting per cfg and installs the result as the global
// meter provider.
func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	SetEnvironment(cfg.Environment)
	if !cfg.Enabled || !cfg.EnableMetrics {
		return &Provider{config: cfg}, nil
	}

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, err
	}
	mp, err := newMeterProvider(ctx, res, cfg)
	if err != nil {
		return nil, err
	}
	otel.SetMeterProvider(mp)
	return &Provider{meterProvider: mp, config: cfg}, nil
}

// Exporting reports whether metrics leave the process.
func (p *Provider) Exporting() bool {
	return p != nil && p.meterProvider != nil
}

// Shutdown flushes pending metrics.
func (p *Provider) Shutdown(ctx context.Context) error {
	if !p.Exporting() {
		return nil
	}
	if err := p.meterProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown meter provider: %w", err)
	}
	return nil
}

// Meter returns a named meter.
func (p *Provider) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	if !p.Exporting() {
		return otel.Meter(name, opts...)
	}
	return p.meterProvider.Meter(name, opts...)
}

func newResource(ctx context.Context, cfg Config) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceNameKey.String(cfg.ServiceName),
		semconv.ServiceVersionKey.String(cfg.ServiceVersion),
	}
	if cfg.ServiceNamespace != "" {
		attrs = append(attrs, semconv.ServiceNamespaceKey.String(cfg.ServiceNamespace))
	}
	if cfg.Environment != "" {
		attrs = append(attrs, AttrEnvironment.String(strings.ToLower(cfg.Environment)))
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(attrs...),
		resource.WithProcessRuntimeName(),
		resource.WithProcessRuntimeVersion(),
		resource.WithHost(),
	)
	if err != nil {
		return nil, fmt.Errorf("create telemetry resource: %w", err)
	}
	return res, nil
}

func newMeterProvider(ctx context.Context, res *resource.Resource, cfg Config) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(endpointHost(cfg.OTLPEndpoint))}
	if cfg.OTLPInsecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create metric exporter: %w", err)
	}

	interval := cfg.MetricInterval
	if interval <= 0 {
		interval = defaultExportInterval
	}
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
		sdkmetric.WithView(HistogramViews()...),
	), nil
}

// HistogramViews sets explicit millisecond buckets on the estimate duration
// histogram.
func HistogramViews() []sdkmetric.View {
	return []sdkmetric.View{
		sdkmetric.NewView(
			sdkmetric.Instrument{Name: MetricEstimateDuration, Kind: sdkmetric.InstrumentKindHistogram},
			sdkmetric.Stream{Aggregation: sdkmetric.AggregationExplicitBucketHistogram{Boundaries: estimateBuckets}},
		),
	}
}

// endpointHost reduces a collector URL to the host:port form the OTLP HTTP
// exporter expects.
func endpointHost(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	endpoint = strings.TrimPrefix(endpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")
	return strings.TrimSuffix(endpoint, "/")
}

// SetEnvironment records the environment label attached to every metric.
func SetEnvironment(env string) {
	environment.Store(strings.ToLower(strings.TrimSpace(env)))
}

// Environment returns the label recorded by SetEnvironment.
func Environment() string {
	if env, ok := environment.Load().(string); ok && env != "" {
		return env
	}
	return defaultEnvironment
}
