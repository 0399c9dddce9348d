package telemetry

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Instrument names.
const (
	MetricEstimatesTotal   = "materialcalc_estimates_total"
	MetricEstimateDuration = "materialcalc_estimate_duration"
	MetricRequestsTotal    = "materialcalc_http_requests_total"
	MetricRateLimited      = "materialcalc_http_rate_limited_total"
)

// CalculatorMetrics records estimate outcomes and latency.
type CalculatorMetrics struct {
	estimates   metric.Int64Counter
	duration    metric.Float64Histogram
	requests    metric.Int64Counter
	rateLimited metric.Int64Counter
}

// NewCalculatorMetrics registers instruments on meter, or on the global
// meter provider when meter is nil.
func NewCalculatorMetrics(meter metric.Meter) *CalculatorMetrics {
	if meter == nil {
		meter = otel.Meter("calculator")
	}
	m := new(CalculatorMetrics)
	if counter, err := meter.Int64Counter(MetricEstimatesTotal,
		metric.WithDescription("Estimates computed by calculator and result"),
		metric.WithUnit("{estimate}")); err == nil {
		m.estimates = counter
	}
	if hist, err := meter.Float64Histogram(MetricEstimateDuration,
		metric.WithDescription("Estimate computation duration"),
		metric.WithUnit("ms")); err == nil {
		m.duration = hist
	}
	if counter, err := meter.Int64Counter(MetricRequestsTotal,
		metric.WithDescription("HTTP requests by route and status"),
		metric.WithUnit("{request}")); err == nil {
		m.requests = counter
	}
	if counter, err := meter.Int64Counter(MetricRateLimited,
		metric.WithDescription("HTTP requests rejected by the rate limiter"),
		metric.WithUnit("{request}")); err == nil {
		m.rateLimited = counter
	}
	return m
}

// RecordEstimate counts one estimate. An empty errorType marks success.
func (m *CalculatorMetrics) RecordEstimate(ctx context.Context, calculator, transport, errorType string, elapsed time.Duration) {
	if m == nil {
		return
	}
	result := ResultOK
	if errorType != "" {
		result = ResultInvalid
	}
	if calculator == "" {
		calculator = "unknown"
	}
	attrs := metric.WithAttributes(EstimateAttributes(Environment(), calculator, transport, result, errorType)...)
	if m.estimates != nil {
		m.estimates.Add(ctx, 1, attrs)
	}
	if m.duration != nil {
		m.duration.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)
	}
}

// RecordRequest counts one HTTP request.
func (m *CalculatorMetrics) RecordRequest(ctx context.Context, route string, status int) {
	if m == nil || m.requests == nil {
		return
	}
	m.requests.Add(ctx, 1, metric.WithAttributes(RequestAttributes(Environment(), route, strconv.Itoa(status))...))
}

// RecordRateLimited counts one request rejected by the limiter.
func (m *CalculatorMetrics) RecordRateLimited(ctx context.Context, route string) {
	if m == nil || m.rateLimited == nil {
		return
	}
	m.rateLimited.Add(ctx, 1, metric.WithAttributes(AttrEnvironment.String(Environment()), AttrRoute.String(route)))
}
