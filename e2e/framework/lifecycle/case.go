package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/splunk/ui-e2e/e2e/framework/artifacts"
	"github.com/splunk/ui-e2e/e2e/framework/assertions"
	"github.com/splunk/ui-e2e/e2e/framework/config"
	"github.com/splunk/ui-e2e/e2e/framework/driver"
	"github.com/splunk/ui-e2e/e2e/framework/logging"
	"github.com/splunk/ui-e2e/e2e/framework/metrics"
	"github.com/splunk/ui-e2e/e2e/framework/results"
	"github.com/splunk/ui-e2e/e2e/framework/screens"
	"github.com/splunk/ui-e2e/e2e/framework/steps"
	"github.com/splunk/ui-e2e/e2e/framework/waiter"
)

// T is the subset of *testing.T a Case needs. Ginkgo's GinkgoT and the
// runner's scenario recorder satisfy it as well.
type T interface {
	require.TestingT
	Helper()
	Name() string
	Cleanup(func())
	Failed() bool
}

// Case is the per-test state: a freshly launched app and the helpers bound
// to it. Teardown runs through t.Cleanup whatever the outcome.
type Case struct {
	Name     string
	Suite    *Suite
	Driver   driver.Driver
	Waiter   *waiter.Waiter
	Assert   *assertions.Asserter
	Session  *screens.Session
	World    *steps.World
	Evidence *artifacts.Evidence
	Logger   *logging.Logger

	t     T
	ctx   context.Context
	span  trace.Span
	start time.Time
	extra driver.LaunchConfig

	mu      sync.Mutex
	result  *results.TestResult
	skipped bool
}

// resultSink is implemented by T values that want the final result, and
// may decline it so it is not counted.
type resultSink interface {
	record(results.TestResult) bool
}

// failureT notes the first failure message on the result before passing it
// on to the real test.
type failureT struct {
	T
	c *Case
}

func (f failureT) Errorf(format string, args ...any) {
	f.c.noteError(fmt.Sprintf(format, args...))
	f.T.Errorf(format, args...)
}

// StartOptions names a test and adds launch arguments on top of the
// configured ones.
type StartOptions struct {
	Name   string
	Tags   []string
	Launch driver.LaunchConfig
}

// Begin starts a test: it resets the step counter, launches the app with
// the configured arguments and registers teardown. An empty name falls back
// to t.Name().
func (s *Suite) Begin(t T, name string, tags ...string) *Case {
	t.Helper()
	return s.Start(context.Background(), t, StartOptions{Name: name, Tags: tags})
}

// Start is Begin with a parent context and extra launch configuration.
func (s *Suite) Start(parent context.Context, t T, opts StartOptions) *Case {
	t.Helper()
	c := s.prepare(parent, t, opts)
	cfg, logger := s.Config, c.Logger

	d, err := s.ensureDriver()
	if err != nil {
		c.abort("create driver", err)
		return c
	}
	c.Driver = d
	c.Evidence = artifacts.NewEvidence(s.Artifacts, d, logger)
	c.Evidence.Attach(c.result)

	waitOpts := []waiter.Option{
		waiter.WithClock(s.clock),
		waiter.WithLogger(logger),
		waiter.WithPollInterval(cfg.PollInterval),
	}
	if s.Metrics != nil {
		waitOpts = append(waitOpts, waiter.WithObserver(s.Metrics))
	}
	c.Waiter = waiter.New(d, waitOpts...)

	assertOpts := []assertions.Option{
		assertions.WithObserver(c),
		assertions.WithLogger(logger),
		assertions.WithName(c.Name),
	}
	if cfg.ScreenshotOnFailure {
		assertOpts = append(assertOpts, assertions.WithEvidence(c.Evidence))
	}
	c.Assert = assertions.New(failureT{T: t, c: c}, d, c.Waiter, cfg, assertOpts...)
	c.Session = &screens.Session{
		Driver: d,
		Waiter: c.Waiter,
		Assert: c.Assert,
		Logger: logger,
		Config: cfg,
	}
	c.World = steps.NewWorld(c.Name, c.Session, s.Data, c.Evidence)
	c.World.Vars["run_id"] = cfg.RunID
	c.World.Vars["environment"] = string(cfg.Environment)

	if err := c.launch(); err != nil {
		c.abort("launch app", err)
		return c
	}
	logger.Info("test started", zap.Strings("tags", opts.Tags))
	return c
}

// Prepare registers a test without launching the app, for outcomes decided
// up front such as skips.
func (s *Suite) Prepare(t T, opts StartOptions) *Case {
	t.Helper()
	return s.prepare(context.Background(), t, opts)
}

func (s *Suite) prepare(parent context.Context, t T, opts StartOptions) *Case {
	name := opts.Name
	if name == "" {
		name = t.Name()
	}
	cfg := s.Config
	logger := s.Logger.With(zap.String("test", name))
	logger.ResetStepCounter()

	ctx, span := s.Telemetry.StartSpan(parent, "test "+name, map[string]string{
		"test":  name,
		"suite": cfg.TestSuite,
	})
	c := &Case{
		Name:   name,
		Suite:  s,
		Logger: logger,
		t:      t,
		ctx:    ctx,
		span:   span,
		start:  s.clock.Now(),
		extra:  opts.Launch,
		result: &results.TestResult{
			Name:      name,
			Suite:     cfg.TestSuite,
			Tags:      append([]string(nil), opts.Tags...),
			Status:    results.StatusPassed,
			Timestamp: s.clock.Now(),
			Metadata: map[string]string{
				"environment": string(cfg.Environment),
				"driver":      cfg.DriverKind,
				"run_id":      cfg.RunID,
			},
		},
	}
	t.Cleanup(c.teardown)
	return c
}

func (c *Case) launch() error {
	cfg := c.Suite.Config
	if cfg.ResetOnLaunch {
		if err := c.Driver.Terminate(c.ctx); err != nil && !errors.Is(err, driver.ErrNotLaunched) {
			c.Logger.Warning("terminate before launch", zap.Error(err))
		}
	}
	launch := driver.LaunchConfig{
		Arguments:   append(cfg.LaunchArguments(), c.extra.Arguments...),
		Environment: cfg.LaunchEnvironment(),
	}
	for key, value := range c.extra.Environment {
		launch.Environment[key] = value
	}
	return c.Logger.MeasureTime("launch app", func() error {
		return c.Driver.Launch(c.ctx, launch)
	})
}

func (c *Case) abort(what string, err error) {
	c.Logger.Error(what+" failed", zap.Error(err))
	c.noteError(fmt.Sprintf("%s: %v", what, err))
	c.t.Errorf("%s: %v", what, err)
	c.t.FailNow()
}

func (c *Case) noteError(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result.Error == "" {
		c.result.Error = message
	}
}

// Errorf fails the test and keeps the first message for the result.
func (c *Case) Errorf(format string, args ...any) {
	c.t.Helper()
	failureT{T: c.t, c: c}.Errorf(format, args...)
}

// Context carries the test span; steps should run under it.
func (c *Case) Context() context.Context {
	return c.ctx
}

// ObserveAssertion records an assertion outcome on the result and forwards
// it to metrics and telemetry.
func (c *Case) ObserveAssertion(name string, passed bool) {
	status := results.StatusPassed
	if !passed {
		status = results.StatusFailed
	}
	c.mu.Lock()
	c.result.Assertions = append(c.result.Assertions, results.AssertionResult{Name: name, Status: status})
	c.mu.Unlock()
	if c.Suite.Metrics != nil {
		c.Suite.Metrics.ObserveAssertion(name, passed)
	}
	c.Suite.Telemetry.ObserveAssertion(name, passed)
}

// RecordStep appends a step outcome to the result.
func (c *Case) RecordStep(step results.StepResult) {
	c.mu.Lock()
	c.result.Steps = append(c.result.Steps, step)
	c.mu.Unlock()
	if c.Suite.Metrics != nil {
		c.Suite.Metrics.ObserveStep(c.Name, step.Action, string(step.Status), step.Duration)
	}
	c.Suite.Telemetry.RecordStep(string(step.Status), step.Duration, map[string]string{
		"test":   c.Name,
		"action": step.Action,
	})
}

// SetAttempts records how many times the test was run.
func (c *Case) SetAttempts(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.result.Attempts = n
}

// SetDescription records a human readable description on the result.
func (c *Case) SetDescription(description string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.result.Description = description
}

// Skip marks the test skipped and stops it when t supports SkipNow.
func (c *Case) Skip(reason string) {
	c.t.Helper()
	c.mu.Lock()
	c.skipped = true
	c.result.Metadata["skip_reason"] = reason
	c.mu.Unlock()
	c.Logger.Info("test skipped", zap.String("reason", reason))
	if s, ok := c.t.(interface{ SkipNow() }); ok {
		s.SkipNow()
	}
}

// Skipped reports whether Skip was called.
func (c *Case) Skipped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.skipped
}

// Retry runs a flaky action under the configured retry policy and records
// it as a step.
func (c *Case) Retry(name string, action func(attempt int) error) error {
	cfg := c.Suite.Config
	clk := c.Suite.clock
	number := c.Logger.Step(name)
	start := clk.Now()
	attempts := 0
	err := c.Waiter.Retry(cfg.MaxRetries, cfg.RetryDelay, func(attempt int) (bool, error) {
		attempts = attempt
		if err := action(attempt); err != nil {
			return false, err
		}
		return true, nil
	})
	end := clk.Now()
	step := results.StepResult{
		Number:    number,
		Name:      name,
		Action:    "retry",
		Status:    results.StatusPassed,
		StartTime: start,
		EndTime:   end,
		Duration:  end.Sub(start),
		Metadata:  map[string]string{"attempts": fmt.Sprint(attempts)},
	}
	if err != nil {
		step.Status = results.StatusFailed
		step.Error = err.Error()
	}
	c.RecordStep(step)
	return err
}

// Result returns a copy of the result recorded so far.
func (c *Case) Result() results.TestResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return *c.result
}

func (c *Case) hasFailureScreenshot() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.result.Artifacts {
		if strings.HasPrefix(key, "screenshot:failure-") {
			return true
		}
	}
	return false
}

func (c *Case) teardown() {
	s := c.Suite
	cfg := s.Config
	if c.Assert != nil {
		c.Assert.Close()
	}

	status := results.StatusPassed
	switch {
	case c.Skipped():
		status = results.StatusSkipped
	case c.t.Failed():
		status = results.StatusFailed
	}

	if c.Evidence != nil {
		c.collectEvidence(cfg, status)
		c.Evidence.Attach(nil)
	}
	if c.Driver != nil {
		if err := c.Driver.Terminate(context.Background()); err != nil && !errors.Is(err, driver.ErrNotLaunched) {
			c.Logger.Warning("terminate app", zap.Error(err))
		}
	}

	end := s.clock.Now()
	duration := end.Sub(c.start)
	c.mu.Lock()
	c.result.Status = status
	c.result.EndTime = end
	c.result.Duration = duration
	result := *c.result
	c.mu.Unlock()

	c.Logger.Info("test finished",
		zap.String("status", string(status)),
		zap.Duration("duration", duration),
		zap.Int64("steps", c.Logger.CurrentStep()),
		zap.Int("assertions", len(result.Assertions)),
	)
	attrs := map[string]string{"test": c.Name, "suite": cfg.TestSuite}
	var spanErr error
	if status == results.StatusFailed && result.Error != "" {
		spanErr = errors.New(result.Error)
	}
	s.Telemetry.EndSpan(c.span, string(status), spanErr, attrs)

	if sink, ok := c.t.(resultSink); ok && !sink.record(result) {
		c.Logger.Info("attempt discarded", zap.String("status", string(status)))
		return
	}
	c.Logger.RecordOutcome(string(status))

	if s.Metrics != nil {
		s.Metrics.ObserveTest(string(status), duration)
		s.Metrics.ObserveTestDetail(c.Name, string(status), cfg.TestSuite, duration)
		s.Metrics.ObserveTestInfo(metrics.TestInfo{
			Test:        c.Name,
			Status:      string(status),
			Suite:       cfg.TestSuite,
			Environment: string(cfg.Environment),
			Driver:      cfg.DriverKind,
			RunID:       cfg.RunID,
		})
	}
	s.Telemetry.RecordTest(string(status), duration, attrs)
	s.Results.Add(result)
}

func (c *Case) collectEvidence(cfg *config.Config, status results.Status) {
	name := artifacts.SanitizeName(c.Name)
	switch status {
	case results.StatusFailed:
		if cfg.ScreenshotOnFailure && !c.hasFailureScreenshot() {
			c.Evidence.CaptureFailure("failure-" + name)
		} else if cfg.LogCollection != config.LogCollectionNever {
			if _, err := c.Evidence.CaptureHierarchy("failure-" + name); err != nil {
				c.Logger.Warning("failure hierarchy not captured", zap.Error(err))
			}
		}
	case results.StatusPassed:
		if cfg.ScreenshotOnSuccess {
			if _, err := c.Evidence.CaptureScreenshot("success-" + name); err != nil {
				c.Logger.Warning("success screenshot not captured", zap.Error(err))
			}
		}
		if cfg.LogCollection == config.LogCollectionAlways {
			if _, err := c.Evidence.CaptureHierarchy("final-" + name); err != nil {
				c.Logger.Warning("final hierarchy not captured", zap.Error(err))
			}
		}
	}
}
