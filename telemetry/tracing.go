// Package telemetry wires OpenTelemetry tracing and metrics for consulting
// turns and provider attempts. A nil *Manager is valid and records nothing.
package telemetry

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const instrumentationName = "github.com/namancryu/TravelPMS/telemetry"

// Config drives how telemetry is initialized.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Resource       *resource.Resource
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
	// SpanProcessors are attached when the manager builds its own tracer
	// provider, e.g. a batcher around an OTLP exporter.
	SpanProcessors []sdktrace.SpanProcessor
	Filter         FilterConfig
}

// Manager coordinates tracing, metrics and secret filtering.
type Manager struct {
	tracer trace.Tracer

	metrics        *metrics
	filter         *Filter
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// NewManager builds a fully wired telemetry manager.
func NewManager(cfg Config) (*Manager, error) {
	filter, err := NewFilter(cfg.Filter)
	if err != nil {
		return nil, err
	}
	tp := cfg.TracerProvider
	if tp == nil {
		res := cfg.Resource
		if res == nil {
			res, err = buildResource(cfg)
			if err != nil {
				return nil, err
			}
		}
		opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
		for _, sp := range cfg.SpanProcessors {
			opts = append(opts, sdktrace.WithSpanProcessor(sp))
		}
		tp = sdktrace.NewTracerProvider(opts...)
	}
	mp := cfg.MeterProvider
	if mp == nil {
		mp = sdkmetric.NewMeterProvider()
	}
	recorder, err := newMetrics(mp.Meter(instrumentationName))
	if err != nil {
		return nil, err
	}
	return &Manager{
		tracer:         tp.Tracer(instrumentationName),
		metrics:        recorder,
		filter:         filter,
		tracerProvider: tp,
		meterProvider:  mp,
	}, nil
}

// StartSpan proxies span creation through the configured tracer. A nil
// Manager hands out a no-op span so ending it never touches a parent span
// already stored in ctx.
func (m *Manager) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if m == nil || m.tracer == nil {
		return ctx, noop.Span{}
	}
	return m.tracer.Start(ctx, name, trace.WithAttributes(m.SanitizeAttributes(attrs...)...))
}

// RecordTurn publishes per-turn metrics.
func (m *Manager) RecordTurn(ctx context.Context, data TurnData) {
	if m == nil || m.metrics == nil {
		return
	}
	m.metrics.recordTurn(ctx, data)
}

// RecordProviderAttempt publishes one provider call outcome.
func (m *Manager) RecordProviderAttempt(ctx context.Context, data AttemptData) {
	if m == nil || m.metrics == nil {
		return
	}
	m.metrics.recordAttempt(ctx, data)
}

// RecordCorrection counts a silent cost correction of the given kind
// ("currency" or "budget").
func (m *Manager) RecordCorrection(ctx context.Context, kind string) {
	if m == nil || m.metrics == nil {
		return
	}
	m.metrics.recordCorrection(ctx, kind)
}

// SanitizeAttributes masks any sensitive fields before they reach OTEL.
func (m *Manager) SanitizeAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	if m == nil || m.filter == nil {
		return attrs
	}
	return m.filter.MaskAttributes(attrs...)
}

// MaskText removes sensitive content from value.
func (m *Manager) MaskText(value string) string {
	if m == nil || m.filter == nil {
		return value
	}
	return m.filter.MaskText(value)
}

// Shutdown flushes and stops the configured providers.
func (m *Manager) Shutdown(ctx context.Context) error {
	if m == nil {
		return nil
	}
	var result error
	if closer, ok := m.tracerProvider.(interface {
		Shutdown(context.Context) error
	}); ok {
		result = errors.Join(result, closer.Shutdown(ctx))
	}
	if closer, ok := m.meterProvider.(interface {
		Shutdown(context.Context) error
	}); ok {
		result = errors.Join(result, closer.Shutdown(ctx))
	}
	return result
}

// EndSpan finalizes span state while standardizing error recording.
func EndSpan(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "ok")
	}
	span.End()
}

// EndSpan finalizes span like the package-level EndSpan but masks secrets in
// the error text first. Provider errors may echo the key that was rejected.
func (m *Manager) EndSpan(span trace.Span, err error) {
	if err != nil && m != nil && m.filter != nil {
		err = errors.New(m.filter.MaskText(err.Error()))
	}
	EndSpan(span, err)
}

func buildResource(cfg Config) (*resource.Resource, error) {
	service := strings.TrimSpace(cfg.ServiceName)
	if service == "" {
		service = "travelpms"
	}
	attrs := []attribute.KeyValue{semconv.ServiceName(service)}
	if version := strings.TrimSpace(cfg.ServiceVersion); version != "" {
		attrs = append(attrs, semconv.ServiceVersion(version))
	}
	if env := strings.TrimSpace(cfg.Environment); env != "" {
		attrs = append(attrs, semconv.DeploymentEnvironment(env))
	}
	base := resource.Default()
	schema := base.SchemaURL()
	if schema == "" {
		schema = semconv.SchemaURL
	}
	return resource.Merge(base, resource.NewWithAttributes(schema, attrs...))
}
