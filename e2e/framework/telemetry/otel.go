package telemetry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/splunk/ui-e2e/e2e/framework/config"
	"github.com/splunk/ui-e2e/e2e/framework/logging"
)

const instrumentationName = "github.com/splunk/ui-e2e"

// Telemetry wraps the OTel tracer and meter with the run's instruments. A
// disabled Telemetry accepts every call and records nothing.
type Telemetry struct {
	enabled       bool
	tracer        trace.Tracer
	testCounter   metric.Int64Counter
	testDuration  metric.Float64Histogram
	stepCounter   metric.Int64Counter
	stepDuration  metric.Float64Histogram
	assertCounter metric.Int64Counter
}

// Disabled returns a Telemetry that records nothing.
func Disabled() *Telemetry {
	return &Telemetry{}
}

// Init configures OTLP gRPC exporters when telemetry is enabled. The
// returned shutdown flushes both providers.
func Init(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*Telemetry, func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	enabled := cfg.OTelEnabled || strings.TrimSpace(cfg.OTelEndpoint) != ""
	if !enabled {
		return Disabled(), noop, nil
	}
	if strings.TrimSpace(cfg.OTelEndpoint) == "" {
		return nil, nil, fmt.Errorf("otel endpoint required when telemetry is enabled")
	}

	headers := parseKeyValueList(cfg.OTelHeaders)
	metricExporter, err := newMetricExporter(ctx, cfg, headers)
	if err != nil {
		return nil, nil, fmt.Errorf("otel metric exporter: %w", err)
	}
	traceExporter, err := newTraceExporter(ctx, cfg, headers)
	if err != nil {
		return nil, nil, fmt.Errorf("otel trace exporter: %w", err)
	}

	res, err := resource.New(ctx, resource.WithFromEnv(), resource.WithAttributes(resourceAttributes(cfg)...))
	if err != nil {
		return nil, nil, err
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(traceExporter),
	)
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
	)
	otel.SetTracerProvider(tracerProvider)
	otel.SetMeterProvider(meterProvider)

	t, err := newTelemetry(tracerProvider.Tracer(instrumentationName), meterProvider.Meter(instrumentationName))
	if err != nil {
		return nil, nil, err
	}
	shutdown := func(ctx context.Context) error {
		return errors.Join(tracerProvider.Shutdown(ctx), meterProvider.Shutdown(ctx))
	}
	logger.Info("otel enabled", zap.String("endpoint", cfg.OTelEndpoint))
	return t, shutdown, nil
}

func newTelemetry(tracer trace.Tracer, meter metric.Meter) (*Telemetry, error) {
	t := &Telemetry{enabled: true, tracer: tracer}
	var err, e error
	t.testCounter, e = meter.Int64Counter("ui_e2e_tests_total")
	err = errors.Join(err, e)
	t.testDuration, e = meter.Float64Histogram("ui_e2e_test_duration_seconds", metric.WithUnit("s"))
	err = errors.Join(err, e)
	t.stepCounter, e = meter.Int64Counter("ui_e2e_steps_total")
	err = errors.Join(err, e)
	t.stepDuration, e = meter.Float64Histogram("ui_e2e_step_duration_seconds", metric.WithUnit("s"))
	err = errors.Join(err, e)
	t.assertCounter, e = meter.Int64Counter("ui_e2e_assertions_total")
	err = errors.Join(err, e)
	if err != nil {
		return nil, fmt.Errorf("otel instruments: %w", err)
	}
	return t, nil
}

// Enabled reports whether telemetry is active.
func (t *Telemetry) Enabled() bool {
	return t != nil && t.enabled
}

// StartSpan starts a span with string attributes. When disabled it returns
// the span already in ctx, which is a no-op span if there is none.
func (t *Telemetry) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, trace.Span) {
	if !t.Enabled() {
		return ctx, trace.SpanFromContext(ctx)
	}
	return t.tracer.Start(ctx, name, trace.WithAttributes(toAttributes(attrs)...))
}

// EndSpan sets the span status from err, adds attrs and ends it.
func (t *Telemetry) EndSpan(span trace.Span, status string, err error, attrs map[string]string) {
	if !t.Enabled() || span == nil {
		return
	}
	if len(attrs) > 0 {
		span.SetAttributes(toAttributes(attrs)...)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, status)
	}
	span.End()
}

// RecordTest records metrics for a test.
func (t *Telemetry) RecordTest(status string, duration time.Duration, attrs map[string]string) {
	if !t.Enabled() {
		return
	}
	kvs := metric.WithAttributes(withStatus(status, attrs)...)
	t.testCounter.Add(context.Background(), 1, kvs)
	t.testDuration.Record(context.Background(), duration.Seconds(), kvs)
}

// RecordStep records metrics for a step.
func (t *Telemetry) RecordStep(status string, duration time.Duration, attrs map[string]string) {
	if !t.Enabled() {
		return
	}
	kvs := metric.WithAttributes(withStatus(status, attrs)...)
	t.stepCounter.Add(context.Background(), 1, kvs)
	t.stepDuration.Record(context.Background(), duration.Seconds(), kvs)
}

// ObserveAssertion counts an assertion outcome.
func (t *Telemetry) ObserveAssertion(name string, passed bool) {
	if !t.Enabled() {
		return
	}
	t.assertCounter.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("assertion", name),
		attribute.Bool("passed", passed),
	))
}

func newMetricExporter(ctx context.Context, cfg *config.Config, headers map[string]string) (*otlpmetricgrpc.Exporter, error) {
	options := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTelEndpoint)}
	if cfg.OTelInsecure {
		options = append(options, otlpmetricgrpc.WithInsecure())
	}
	if len(headers) > 0 {
		options = append(options, otlpmetricgrpc.WithHeaders(headers))
	}
	return otlpmetricgrpc.New(ctx, options...)
}

func newTraceExporter(ctx context.Context, cfg *config.Config, headers map[string]string) (*otlptrace.Exporter, error) {
	options := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.OTelEndpoint)}
	if cfg.OTelInsecure {
		options = append(options, otlptracegrpc.WithInsecure())
	}
	if len(headers) > 0 {
		options = append(options, otlptracegrpc.WithHeaders(headers))
	}
	return otlptracegrpc.New(ctx, options...)
}

func resourceAttributes(cfg *config.Config) []attribute.KeyValue {
	service := strings.TrimSpace(cfg.OTelServiceName)
	if service == "" {
		service = "ui-e2e"
	}
	return []attribute.KeyValue{
		semconv.ServiceNameKey.String(service),
		semconv.DeploymentEnvironmentKey.String(string(cfg.Environment)),
		attribute.String("ui_e2e.run_id", cfg.RunID),
		attribute.String("ui_e2e.driver", cfg.DriverKind),
		attribute.String("ui_e2e.suite", cfg.TestSuite),
		attribute.Bool("ui_e2e.ci", cfg.CI),
	}
}

func parseKeyValueList(value string) map[string]string {
	out := make(map[string]string)
	for _, part := range strings.Split(value, ",") {
		key, val, ok := strings.Cut(strings.TrimSpace(part), "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		out[key] = strings.TrimSpace(val)
	}
	return out
}

func withStatus(status string, attrs map[string]string) []attribute.KeyValue {
	return append(toAttributes(attrs), attribute.String("status", status))
}

func toAttributes(attrs map[string]string) []attribute.KeyValue {
	if len(attrs) == 0 {
		return nil
	}
	kvs := make([]attribute.KeyValue, 0, len(attrs))
	for key, value := range attrs {
		kvs = append(kvs, attribute.String(key, value))
	}
	return kvs
}
