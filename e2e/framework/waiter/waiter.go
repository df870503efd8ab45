// Package waiter turns "wait for a condition" into bounded polling loops.
//
// A timed-out wait returns false; it never fails the test. Assertions and
// steps decide whether a negative outcome is fatal.
package waiter

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"k8s.io/utils/clock"

	"github.com/splunk/ui-e2e/e2e/framework/driver"
	"github.com/splunk/ui-e2e/e2e/framework/logging"
)

// DefaultPollInterval is used when no interval is configured.
const DefaultPollInterval = 100 * time.Millisecond

// ErrInvalidWait reports a malformed wait: non-positive timeout, nil predicate
// or non-positive attempt count.
var ErrInvalidWait = fmt.Errorf("invalid wait")

// Observer receives the outcome of every wait.
type Observer interface {
	ObserveWait(kind string, satisfied bool, elapsed time.Duration)
}

// Waiter polls driver state on an injectable clock.
type Waiter struct {
	driver   driver.Driver
	clock    clock.Clock
	logger   *logging.Logger
	interval time.Duration
	observer Observer
}

// Option configures a Waiter.
type Option func(*Waiter)

// WithClock replaces the real clock, e.g. with a fake clock in tests.
func WithClock(c clock.Clock) Option {
	return func(w *Waiter) {
		if c != nil {
			w.clock = c
		}
	}
}

// WithLogger sets the logger used for retry warnings and timeout diagnostics.
func WithLogger(l *logging.Logger) Option {
	return func(w *Waiter) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithPollInterval sets the default poll interval.
func WithPollInterval(interval time.Duration) Option {
	return func(w *Waiter) {
		if interval > 0 {
			w.interval = interval
		}
	}
}

// WithObserver reports wait outcomes, typically to the metrics collector.
func WithObserver(o Observer) Option {
	return func(w *Waiter) {
		w.observer = o
	}
}

// New creates a Waiter for d. d may be nil for waits that do not touch the UI.
func New(d driver.Driver, opts ...Option) *Waiter {
	w := &Waiter{
		driver:   d,
		clock:    clock.RealClock{},
		logger:   logging.NewNop(),
		interval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Clock returns the clock the waiter sleeps on.
func (w *Waiter) Clock() clock.Clock {
	return w.clock
}

// PollInterval returns the default poll interval.
func (w *Waiter) PollInterval() time.Duration {
	return w.interval
}

// WaitForCondition polls predicate every interval until it returns true or
// timeout elapses. A true result returns immediately. After the deadline the
// predicate is evaluated exactly once more, so a condition that turns true at
// the boundary is still observed. An interval <= 0 uses the default.
// A malformed wait is a programmer error and panics.
func (w *Waiter) WaitForCondition(timeout, interval time.Duration, predicate func() bool) bool {
	ok, err := w.WaitForConditionE(timeout, interval, predicate)
	if err != nil {
		panic(err)
	}
	return ok
}

// WaitForConditionE is WaitForCondition returning malformed input as an error.
func (w *Waiter) WaitForConditionE(timeout, interval time.Duration, predicate func() bool) (bool, error) {
	return w.poll("condition", timeout, interval, predicate)
}

func (w *Waiter) poll(kind string, timeout, interval time.Duration, predicate func() bool) (bool, error) {
	if err := validate(timeout, predicate); err != nil {
		return false, err
	}
	if interval <= 0 {
		interval = w.interval
	}
	start := w.clock.Now()
	deadline := start.Add(timeout)
	for w.clock.Now().Before(deadline) {
		if predicate() {
			w.observe(kind, true, start)
			return true, nil
		}
		sleep := interval
		if remaining := deadline.Sub(w.clock.Now()); remaining < sleep {
			sleep = remaining
		}
		if sleep > 0 {
			w.clock.Sleep(sleep)
		}
	}
	ok := predicate()
	w.observe(kind, ok, start)
	if !ok {
		w.logger.Debug("wait timed out", zap.String("kind", kind), zap.Duration("timeout", timeout))
	}
	return ok, nil
}

// WaitForConditionContext is WaitForCondition that also stops when ctx is
// done, returning ctx's error.
func (w *Waiter) WaitForConditionContext(ctx context.Context, timeout, interval time.Duration, predicate func() bool) (bool, error) {
	if err := validate(timeout, predicate); err != nil {
		return false, err
	}
	if interval <= 0 {
		interval = w.interval
	}
	start := w.clock.Now()
	deadline := start.Add(timeout)
	for w.clock.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		if predicate() {
			w.observe("condition", true, start)
			return true, nil
		}
		sleep := interval
		if remaining := deadline.Sub(w.clock.Now()); remaining < sleep {
			sleep = remaining
		}
		if sleep <= 0 {
			continue
		}
		timer := w.clock.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false, ctx.Err()
		case <-timer.C():
		}
	}
	ok := predicate()
	w.observe("condition", ok, start)
	return ok, nil
}

// WaitForExistence delegates to the driver's native existence wait.
func (w *Waiter) WaitForExistence(loc driver.Locator, timeout time.Duration) bool {
	if timeout <= 0 {
		panic(fmt.Errorf("%w: timeout must be positive, got %s", ErrInvalidWait, timeout))
	}
	start := w.clock.Now()
	ok := w.driver.WaitForExistence(loc, timeout)
	w.observe("existence", ok, start)
	return ok
}

// WaitForDisappearance polls until loc no longer exists.
func (w *Waiter) WaitForDisappearance(loc driver.Locator, timeout time.Duration) bool {
	ok, err := w.poll("disappearance", timeout, 0, func() bool {
		return !w.driver.Find(loc).Exists()
	})
	if err != nil {
		panic(err)
	}
	return ok
}

// WaitForPredicate polls predicate against the element's current state.
func (w *Waiter) WaitForPredicate(loc driver.Locator, predicate Predicate, timeout time.Duration) bool {
	if predicate.Eval == nil {
		panic(fmt.Errorf("%w: predicate %q has no evaluator", ErrInvalidWait, predicate.Name))
	}
	ok, err := w.poll("predicate", timeout, 0, func() bool {
		return predicate.Eval(w.driver.Find(loc))
	})
	if err != nil {
		panic(err)
	}
	return ok
}

// WaitForCount polls the number of matches of query against match.
func (w *Waiter) WaitForCount(query driver.Locator, match CountMatch, timeout time.Duration) bool {
	ok, err := w.poll("count", timeout, 0, func() bool {
		return match.Matches(w.driver.Count(query))
	})
	if err != nil {
		panic(err)
	}
	return ok
}

// Sleep pauses on the waiter's clock. Prefer a condition wait; this exists
// for settle delays after gestures.
func (w *Waiter) Sleep(d time.Duration) {
	if d > 0 {
		w.clock.Sleep(d)
	}
}

func (w *Waiter) observe(kind string, ok bool, start time.Time) {
	if w.observer != nil {
		w.observer.ObserveWait(kind, ok, w.clock.Since(start))
	}
}

func validate(timeout time.Duration, predicate func() bool) error {
	if timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive, got %s", ErrInvalidWait, timeout)
	}
	if predicate == nil {
		return fmt.Errorf("%w: predicate is required", ErrInvalidWait)
	}
	return nil
}
