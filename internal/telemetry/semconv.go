package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Semantic convention attribute keys for calculator telemetry.
const (
	AttrEnvironment = attribute.Key("environment")
	AttrCalculator  = attribute.Key("calculator")
	AttrTransport   = attribute.Key("transport")
	AttrResult      = attribute.Key("result")
	AttrErrorType   = attribute.Key("error.type")
	AttrRoute       = attribute.Key("http.route")
	AttrStatus      = attribute.Key("status")
)

// Result values
const (
	ResultOK      = "ok"
	ResultInvalid = "invalid"
)

// Transport values
const (
	TransportHTTP      = "http"
	TransportBatch     = "batch"
	TransportWebSocket = "websocket"
	TransportCLI       = "cli"
)

// EstimateAttributes returns attributes for estimate metrics. errorType is
// omitted for successful estimates.
func EstimateAttributes(environment, calculator, transport, result, errorType string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		AttrEnvironment.String(environment),
		AttrCalculator.String(calculator),
		AttrTransport.String(transport),
		AttrResult.String(result),
	}
	if errorType != "" {
		attrs = append(attrs, AttrErrorType.String(errorType))
	}
	return attrs
}

// RequestAttributes returns attributes for HTTP request metrics.
func RequestAttributes(environment, route, status string) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrEnvironment.String(environment),
		AttrRoute.String(route),
		AttrStatus.String(status),
	}
}
