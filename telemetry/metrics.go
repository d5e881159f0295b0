package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	attrState        = attribute.Key("travel.state")
	attrProvider     = attribute.Key("travel.provider")
	attrFallback     = attribute.Key("travel.fallback")
	attrAttempt      = attribute.Key("travel.provider.attempt")
	attrErrorKind    = attribute.Key("travel.provider.error_kind")
	attrCorrection   = attribute.Key("travel.correction")
	attrAttemptError = attribute.Key("travel.provider.error")
)

type metrics struct {
	turns       metric.Int64Counter
	turnLatency metric.Float64Histogram
	attempts    metric.Int64Counter
	fallbacks   metric.Int64Counter
	corrections metric.Int64Counter
}

// TurnData captures the metadata recorded for each processed turn. Session
// identifiers stay on spans only; as metric labels they would be unbounded.
type TurnData struct {
	State    string
	Provider string
	Fallback bool
	Duration time.Duration
}

// AttemptData captures one provider call.
type AttemptData struct {
	Provider  string
	Attempt   int
	ErrorKind string // empty on success
	Error     error
}

func newMetrics(m meterProvider) (*metrics, error) {
	turns, err := m.Int64Counter("travel.turns.total", metric.WithDescription("Total number of processed consulting turns."))
	if err != nil {
		return nil, err
	}
	latency, err := m.Float64Histogram("travel.turn.latency.ms", metric.WithDescription("Turn end-to-end latency in milliseconds."), metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}
	attempts, err := m.Int64Counter("travel.provider.attempts.total", metric.WithDescription("Total number of provider calls."))
	if err != nil {
		return nil, err
	}
	fallbacks, err := m.Int64Counter("travel.fallbacks.total", metric.WithDescription("Turns answered by the mock generator."))
	if err != nil {
		return nil, err
	}
	corrections, err := m.Int64Counter("travel.corrections.total", metric.WithDescription("Recommendation costs corrected by currency or budget rules."))
	if err != nil {
		return nil, err
	}
	return &metrics{
		turns:       turns,
		turnLatency: latency,
		attempts:    attempts,
		fallbacks:   fallbacks,
		corrections: corrections,
	}, nil
}

func (m *metrics) recordTurn(ctx context.Context, data TurnData) {
	attrs := []attribute.KeyValue{
		attrState.String(data.State),
		attrProvider.String(data.Provider),
		attrFallback.Bool(data.Fallback),
	}
	m.turns.Add(ctx, 1, metric.WithAttributes(attrs...))
	if data.Duration > 0 {
		m.turnLatency.Record(ctx, float64(data.Duration.Milliseconds()), metric.WithAttributes(attrs...))
	}
	if data.Fallback {
		m.fallbacks.Add(ctx, 1, metric.WithAttributes(attrState.String(data.State)))
	}
}

func (m *metrics) recordAttempt(ctx context.Context, data AttemptData) {
	attrs := []attribute.KeyValue{
		attrProvider.String(data.Provider),
		attrAttempt.Int(data.Attempt),
		attrAttemptError.Bool(data.Error != nil),
	}
	if data.ErrorKind != "" {
		attrs = append(attrs, attrErrorKind.String(data.ErrorKind))
	}
	m.attempts.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *metrics) recordCorrection(ctx context.Context, kind string) {
	m.corrections.Add(ctx, 1, metric.WithAttributes(attrCorrection.String(kind)))
}

// meterProvider is the subset of metric.Meter we rely on.
type meterProvider interface {
	Int64Counter(name string, opts ...metric.Int64CounterOption) (metric.Int64Counter, error)
	Float64Histogram(name string, opts ...metric.Float64HistogramOption) (metric.Float64Histogram, error)
}
