package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/splunk/ui-e2e/e2e/framework/config"
	"github.com/splunk/ui-e2e/e2e/framework/logging"
)

func TestInitDisabledByDefault(t *testing.T) {
	tel, shutdown, err := Init(context.Background(), config.Default(), logging.NewNop())
	require.NoError(t, err)
	assert.False(t, tel.Enabled())
	assert.NoError(t, shutdown(context.Background()))

	ctx, span := tel.StartSpan(context.Background(), "test", nil)
	assert.NotNil(t, span)
	assert.NotPanics(t, func() {
		tel.EndSpan(span, "passed", nil, nil)
		tel.RecordTest("passed", time.Second, nil)
		tel.ObserveAssertion("exists", true)
	})
	assert.Equal(t, context.Background(), ctx)
}

func TestInitRequiresEndpoint(t *testing.T) {
	cfg := config.Default()
	cfg.OTelEnabled = true
	_, _, err := Init(context.Background(), cfg, logging.NewNop())
	assert.EqualError(t, err, "otel endpoint required when telemetry is enabled")
}

func TestSpansAndInstruments(t *testing.T) {
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	tel, err := newTelemetry(tp.Tracer("test"), mp.Meter("test"))
	require.NoError(t, err)

	_, span := tel.StartSpan(context.Background(), "test testCheckout", map[string]string{"suite": "checkout"})
	tel.EndSpan(span, "failed", errors.New("exists failed"), map[string]string{"status": "failed"})
	tel.RecordTest("failed", 2*time.Second, map[string]string{"suite": "checkout"})
	tel.ObserveAssertion("exists", false)

	ended := spans.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "test testCheckout", ended[0].Name())
	assert.Equal(t, codes.Error, ended[0].Status().Code)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	names := map[string]bool{}
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			names[m.Name] = true
		}
	}
	assert.True(t, names["ui_e2e_tests_total"])
	assert.True(t, names["ui_e2e_test_duration_seconds"])
	assert.True(t, names["ui_e2e_assertions_total"])
}

func TestParseKeyValueList(t *testing.T) {
	assert.Equal(t, map[string]string{"authorization": "Bearer x", "team": "mobile"},
		parseKeyValueList("authorization=Bearer x, team = mobile,broken,=skip"))
}
