package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "promptana"

// Metrics holds all Promptana metric instruments.
type Metrics struct {
	RunsStarted     metric.Int64Counter
	RunsFailed      metric.Int64Counter
	ImproveRequests metric.Int64Counter
	ImproveFallback metric.Int64Counter
	RunLatency      metric.Float64Histogram
	ImproveLatency  metric.Float64Histogram
	TokensUsed      metric.Int64Counter
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.RunsStarted, err = meter.Int64Counter("promptana.runs.started",
		metric.WithDescription("Number of prompt runs started"))
	if err != nil {
		return nil, err
	}

	m.RunsFailed, err = meter.Int64Counter("promptana.runs.failed",
		metric.WithDescription("Number of prompt runs that ended in error or timeout"))
	if err != nil {
		return nil, err
	}

	m.ImproveRequests, err = meter.Int64Counter("promptana.improve.requests",
		metric.WithDescription("Number of improvement suggestion requests"))
	if err != nil {
		return nil, err
	}

	m.ImproveFallback, err = meter.Int64Counter("promptana.improve.fallback",
		metric.WithDescription("Number of improve responses that failed structured parsing"))
	if err != nil {
		return nil, err
	}

	m.RunLatency, err = meter.Float64Histogram("promptana.run.latency_seconds",
		metric.WithDescription("Model call latency for runs in seconds"))
	if err != nil {
		return nil, err
	}

	m.ImproveLatency, err = meter.Float64Histogram("promptana.improve.latency_seconds",
		metric.WithDescription("Model call latency for improve requests in seconds"))
	if err != nil {
		return nil, err
	}

	m.TokensUsed, err = meter.Int64Counter("promptana.tokens.total",
		metric.WithDescription("Total tokens reported by the provider"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
