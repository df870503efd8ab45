package metrics

import (
	"bytes"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Collector captures metrics for UI test runs. It satisfies the waiter and
// assertion observer interfaces.
type Collector struct {
	registry     *prometheus.Registry
	testsTotal   *prometheus.CounterVec
	stepsTotal   *prometheus.CounterVec
	assertsTotal *prometheus.CounterVec
	waitsTotal   *prometheus.CounterVec
	testDuration *prometheus.HistogramVec
	stepDuration *prometheus.HistogramVec
	waitDuration *prometheus.HistogramVec
	testInfo     *prometheus.GaugeVec
}

// NewCollector initializes a new metrics registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	collector := &Collector{
		registry: registry,
		testsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "ui_e2e_tests_total", Help: "Total number of tests"},
			[]string{"status"},
		),
		stepsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "ui_e2e_steps_total", Help: "Total number of steps"},
			[]string{"status"},
		),
		assertsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "ui_e2e_assertions_total", Help: "Total number of assertions"},
			[]string{"assertion", "passed"},
		),
		waitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "ui_e2e_waits_total", Help: "Total number of condition waits"},
			[]string{"kind", "satisfied"},
		),
		testDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ui_e2e_test_duration_seconds",
				Help:    "Test duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"test", "status", "suite"},
		),
		stepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ui_e2e_step_duration_seconds",
				Help:    "Step duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"test", "action", "status"},
		),
		waitDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ui_e2e_wait_duration_seconds",
				Help:    "Condition wait duration in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"kind"},
		),
		testInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ui_e2e_test_info",
				Help: "UI test metadata for traceability",
			},
			[]string{"test", "status", "suite", "environment", "driver", "run_id"},
		),
	}

	registry.MustRegister(collector.testsTotal, collector.stepsTotal, collector.assertsTotal, collector.waitsTotal,
		collector.testDuration, collector.stepDuration, collector.waitDuration, collector.testInfo)
	return collector
}

// Registry exposes the underlying registry, for example to serve it.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveTest records a test outcome.
func (c *Collector) ObserveTest(status string, duration time.Duration) {
	c.testsTotal.WithLabelValues(status).Inc()
	c.testDuration.WithLabelValues("all", status, "all").Observe(duration.Seconds())
}

// ObserveTestDetail records per-test duration.
func (c *Collector) ObserveTestDetail(testName, status, suite string, duration time.Duration) {
	c.testDuration.WithLabelValues(testName, status, suite).Observe(duration.Seconds())
}

// ObserveStep records a step outcome.
func (c *Collector) ObserveStep(testName, action, status string, duration time.Duration) {
	c.stepsTotal.WithLabelValues(status).Inc()
	c.stepDuration.WithLabelValues(testName, action, status).Observe(duration.Seconds())
}

// ObserveAssertion counts an assertion outcome.
func (c *Collector) ObserveAssertion(name string, passed bool) {
	c.assertsTotal.WithLabelValues(name, strconv.FormatBool(passed)).Inc()
}

// ObserveWait counts a condition wait and its elapsed time.
func (c *Collector) ObserveWait(kind string, satisfied bool, elapsed time.Duration) {
	c.waitsTotal.WithLabelValues(kind, strconv.FormatBool(satisfied)).Inc()
	c.waitDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// ObserveTestInfo records metadata for a test.
func (c *Collector) ObserveTestInfo(info TestInfo) {
	c.testInfo.WithLabelValues(info.Test, info.Status, info.Suite, info.Environment, info.Driver, info.RunID).Set(1)
}

// TestInfo is a structured view of test metadata for metrics.
type TestInfo struct {
	Test        string
	Status      string
	Suite       string
	Environment string
	Driver      string
	RunID       string
}

// Write writes all metrics to a Prometheus text file.
func (c *Collector) Write(path string) error {
	metricFamilies, err := c.registry.Gather()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, family := range metricFamilies {
		if err := enc.Encode(family); err != nil {
			return err
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
