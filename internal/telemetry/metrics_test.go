package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/coachpo/materialcalc/internal/infra/config"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestCalculatorMetricsRecordEstimates(t *testing.T) {
	SetEnvironment("Staging")
	t.Cleanup(func() { SetEnvironment("") })

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader), sdkmetric.WithView(HistogramViews()...))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m := NewCalculatorMetrics(provider.Meter("test"))
	ctx := context.Background()
	m.RecordEstimate(ctx, "volume", TransportHTTP, "", 300*time.Microsecond)
	m.RecordEstimate(ctx, "volume", TransportHTTP, "", time.Millisecond)
	m.RecordEstimate(ctx, "coverage", TransportBatch, "invalid_coats", time.Millisecond)
	m.RecordRequest(ctx, "/estimate", 200)
	m.RecordRateLimited(ctx, "/estimate")

	metrics := collect(t, reader)

	sum, ok := metrics[MetricEstimatesTotal].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 2)
	for _, dp := range sum.DataPoints {
		calc, _ := dp.Attributes.Value(AttrCalculator)
		env, _ := dp.Attributes.Value(AttrEnvironment)
		require.Equal(t, "staging", env.AsString())
		switch calc.AsString() {
		case "volume":
			require.Equal(t, int64(2), dp.Value)
			require.False(t, dp.Attributes.HasValue(AttrErrorType))
		case "coverage":
			require.Equal(t, int64(1), dp.Value)
			errType, _ := dp.Attributes.Value(AttrErrorType)
			require.Equal(t, "invalid_coats", errType.AsString())
			result, _ := dp.Attributes.Value(AttrResult)
			require.Equal(t, ResultInvalid, result.AsString())
		default:
			t.Fatalf("unexpected calculator attribute %v", calc)
		}
	}

	hist, ok := metrics[MetricEstimateDuration].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Equal(t, []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 50}, hist.DataPoints[0].Bounds)

	requests, ok := metrics[MetricRequestsTotal].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Equal(t, int64(1), requests.DataPoints[0].Value)
	status, _ := requests.DataPoints[0].Attributes.Value(AttrStatus)
	require.Equal(t, "200", status.AsString())

	_, ok = metrics[MetricRateLimited]
	require.True(t, ok)
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *CalculatorMetrics
	m.RecordEstimate(context.Background(), "area", TransportCLI, "", time.Millisecond)
	m.RecordRequest(context.Background(), "/healthz", 200)
	m.RecordRateLimited(context.Background(), "/healthz")
}

func TestEstimateAttributes(t *testing.T) {
	attrs := EstimateAttributes("dev", "area", TransportCLI, ResultOK, "")
	set := attribute.NewSet(attrs...)
	require.Equal(t, 4, set.Len())
	require.True(t, set.HasValue(AttrTransport))
}

func TestEndpointHostAndEnvironment(t *testing.T) {
	require.Equal(t, "collector:4318", endpointHost("https://collector:4318/"))
	require.Equal(t, "collector:4318", endpointHost("collector:4318"))

	SetEnvironment("")
	require.Equal(t, "development", Environment())
}

func TestDisabledProviderFallsBackToGlobalMeter(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Enabled: false, Environment: "prod"})
	require.NoError(t, err)
	require.False(t, p.Exporting())
	require.NotNil(t, p.Meter("x"))
	require.NoError(t, p.Shutdown(context.Background()))
	require.Equal(t, "prod", Environment())
	SetEnvironment("")
}

func TestFromAppOverlaysYAML(t *testing.T) {
	cfg := FromApp(config.EnvStaging, config.TelemetryConfig{
		OTLPEndpoint:  "http://otel:4318",
		ServiceName:   "calc-test",
		EnableMetrics: true,
	})
	require.Equal(t, "http://otel:4318", cfg.OTLPEndpoint)
	require.Equal(t, "calc-test", cfg.ServiceName)
	require.Equal(t, "staging", cfg.Environment)
	require.True(t, cfg.EnableMetrics)
	require.False(t, cfg.OTLPInsecure)
}
