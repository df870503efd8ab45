// Package assertions turns observed UI state into pass/fail verdicts. Each
// assertion waits up to a timeout, logs the outcome, captures a screenshot on
// failure and then fails the test through its TestingT.
package assertions

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/splunk/ui-e2e/e2e/framework/config"
	"github.com/splunk/ui-e2e/e2e/framework/driver"
	"github.com/splunk/ui-e2e/e2e/framework/logging"
	"github.com/splunk/ui-e2e/e2e/framework/waiter"
)

// Capturer stores failure evidence and returns where it was written.
type Capturer interface {
	CaptureScreenshot(name string) (string, error)
}

// Observer receives every assertion outcome.
type Observer interface {
	ObserveAssertion(name string, passed bool)
}

// MisuseError reports use of an asserter after its test scope ended. It is
// raised by panic so it cannot be mistaken for an application failure.
type MisuseError struct {
	Assertion string
	Test      string
}

func (e *MisuseError) Error() string {
	return fmt.Sprintf("framework misuse: %s called after test %q finished", e.Assertion, e.Test)
}

type tHelper interface {
	Helper()
}

// Asserter binds assertions to one test.
type Asserter struct {
	t        require.TestingT
	name     string
	driver   driver.Driver
	waiter   *waiter.Waiter
	cfg      *config.Config
	logger   *logging.Logger
	evidence Capturer
	observer Observer
	closed   atomic.Bool
	failures atomic.Int64
}

// Option configures an Asserter.
type Option func(*Asserter)

// WithEvidence sets where failure screenshots go.
func WithEvidence(c Capturer) Option {
	return func(a *Asserter) { a.evidence = c }
}

// WithObserver reports outcomes, typically to metrics.
func WithObserver(o Observer) Option {
	return func(a *Asserter) { a.observer = o }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(a *Asserter) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithName labels misuse errors with the owning test's name.
func WithName(name string) Option {
	return func(a *Asserter) { a.name = name }
}

// New creates an asserter for t.
func New(t require.TestingT, d driver.Driver, w *waiter.Waiter, cfg *config.Config, opts ...Option) *Asserter {
	a := &Asserter{
		t:      t,
		driver: d,
		waiter: w,
		cfg:    cfg,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Close ends the asserter's scope; later assertions panic with MisuseError.
func (a *Asserter) Close() {
	a.closed.Store(true)
}

// Failures returns how many assertions failed.
func (a *Asserter) Failures() int64 {
	return a.failures.Load()
}

// CallOption adjusts a single assertion.
type CallOption func(*call)

type call struct {
	timeout time.Duration
	message string
}

// Timeout overrides the configured timeout for one assertion.
func Timeout(d time.Duration) CallOption {
	return func(c *call) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// Message prefixes the failure message.
func Message(format string, args ...any) CallOption {
	return func(c *call) { c.message = fmt.Sprintf(format, args...) }
}

// probe observes one aspect of the UI and says whether it matches.
type probe struct {
	name     string
	expected string
	observe  func() (string, bool)
}

func (a *Asserter) helper() {
	if h, ok := a.t.(tHelper); ok {
		h.Helper()
	}
}

func (a *Asserter) check(loc driver.Locator, p probe, defaultTimeout time.Duration, opts []CallOption) bool {
	a.helper()
	if a.closed.Load() {
		panic(&MisuseError{Assertion: p.name, Test: a.name})
	}
	c := call{timeout: defaultTimeout}
	for _, opt := range opts {
		opt(&c)
	}

	clock := a.waiter.Clock()
	start := clock.Now()
	initial, ok := p.observe()
	final := initial
	if !ok {
		ok = a.waiter.WaitForCondition(c.timeout, 0, func() bool {
			var matched bool
			final, matched = p.observe()
			return matched
		})
	}
	if ok {
		a.logger.Info("verified", zap.String("assertion", p.name), zap.String("locator", loc.String()))
		a.observe(p.name, true)
		return true
	}

	elapsed := clock.Since(start)
	msg := fmt.Sprintf("%s failed for %s: expected %s, observed %s after %s (timeout %s); initially observed %s",
		p.name, loc, p.expected, final, elapsed.Round(time.Millisecond), c.timeout, initial)
	if c.message != "" {
		msg = c.message + ": " + msg
	}
	a.fail(p.name, loc, msg)
	return false
}

func (a *Asserter) fail(name string, loc driver.Locator, msg string) {
	a.helper()
	a.failures.Add(1)
	a.logger.Error("assertion failed", zap.String("assertion", name), zap.String("locator", loc.String()), zap.String("message", msg))
	if a.evidence != nil {
		shot := fmt.Sprintf("failure-%s-%s", name, sanitize(loc.String()))
		if path, err := a.evidence.CaptureScreenshot(shot); err != nil {
			a.logger.Warning("failure screenshot not captured", zap.Error(err))
		} else {
			a.logger.Info("failure screenshot captured", zap.String("path", path))
		}
	}
	a.observe(name, false)
	a.t.Errorf("%s", msg)
	a.t.FailNow()
}

func (a *Asserter) observe(name string, passed bool) {
	if a.observer != nil {
		a.observer.ObserveAssertion(name, passed)
	}
}

// Fail fails the test with msg through the same evidence pipeline.
func (a *Asserter) Fail(loc driver.Locator, format string, args ...any) {
	a.helper()
	if a.closed.Load() {
		panic(&MisuseError{Assertion: "fail", Test: a.name})
	}
	a.fail("fail", loc, fmt.Sprintf(format, args...))
}

func sanitize(value string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return '_'
		}
	}, value)
}

func presence(ok bool) string {
	if ok {
		return "present"
	}
	return "absent"
}
