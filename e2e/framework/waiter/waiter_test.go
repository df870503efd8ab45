package waiter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"k8s.io/utils/clock"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/splunk/ui-e2e/e2e/framework/driver"
	"github.com/splunk/ui-e2e/e2e/framework/logging"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type elementState struct {
	exists   bool
	enabled  bool
	hittable bool
	selected bool
	label    string
	value    string
}

// stubDriver exposes one element whose state is a function of elapsed time.
type stubDriver struct {
	driver.Driver
	clock clock.PassiveClock
	start time.Time
	state func(elapsed time.Duration) elementState
	count func(elapsed time.Duration) int
}

func newStub(c clock.PassiveClock) *stubDriver {
	return &stubDriver{
		clock: c,
		start: c.Now(),
		state: func(time.Duration) elementState { return elementState{} },
		count: func(time.Duration) int { return 0 },
	}
}

func (s *stubDriver) current() elementState {
	return s.state(s.clock.Since(s.start))
}

func (s *stubDriver) Find(loc driver.Locator) driver.Element {
	return stubElement{stub: s, loc: loc}
}

func (s *stubDriver) Count(driver.Locator) int {
	return s.count(s.clock.Since(s.start))
}

func (s *stubDriver) WaitForExistence(_ driver.Locator, timeout time.Duration) bool {
	return s.current().exists && timeout > 0
}

type stubElement struct {
	driver.Element
	stub *stubDriver
	loc  driver.Locator
}

func (e stubElement) Exists() bool   { return e.stub.current().exists }
func (e stubElement) Enabled() bool  { return e.stub.current().enabled }
func (e stubElement) Hittable() bool { return e.stub.current().hittable }
func (e stubElement) Label() string  { return e.stub.current().label }
func (e stubElement) Value() string  { return e.stub.current().value }
func (e stubElement) Selected() bool { return e.stub.current().selected }

func newFakeWaiter(opts ...Option) (*Waiter, *testingclock.FakeClock) {
	fake := testingclock.NewFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	opts = append([]Option{WithClock(fake)}, opts...)
	return New(nil, opts...), fake
}

func TestWaitForConditionNeverTrueIsBounded(t *testing.T) {
	w, fake := newFakeWaiter()
	start := fake.Now()
	calls := 0

	ok := w.WaitForCondition(2*time.Second, 300*time.Millisecond, func() bool {
		calls++
		return false
	})

	elapsed := fake.Since(start)
	assert.False(t, ok)
	assert.GreaterOrEqual(t, elapsed, 2*time.Second)
	assert.LessOrEqual(t, elapsed, 2*time.Second+300*time.Millisecond)
	// polls at 0, .3, ... 1.8 plus the final evaluation at the deadline
	assert.Equal(t, 8, calls)
}

func TestWaitForConditionExitsEarly(t *testing.T) {
	w, fake := newFakeWaiter()
	start := fake.Now()

	ok := w.WaitForCondition(10*time.Second, 100*time.Millisecond, func() bool {
		return fake.Since(start) >= 450*time.Millisecond
	})

	assert.True(t, ok)
	assert.Equal(t, 500*time.Millisecond, fake.Since(start))
}

func TestWaitForConditionImmediateSuccessDoesNotSleep(t *testing.T) {
	w, fake := newFakeWaiter()
	start := fake.Now()

	assert.True(t, w.WaitForCondition(time.Second, 0, func() bool { return true }))
	assert.Zero(t, fake.Since(start))
}

func TestWaitForConditionFinalEvaluationAtDeadline(t *testing.T) {
	tests := []struct {
		name     string
		timeout  time.Duration
		interval time.Duration
		trueAt   time.Duration
	}{
		{name: "exactly at deadline", timeout: time.Second, interval: 300 * time.Millisecond, trueAt: time.Second},
		{name: "inside last interval", timeout: time.Second, interval: 300 * time.Millisecond, trueAt: 950 * time.Millisecond},
		{name: "interval longer than timeout", timeout: 200 * time.Millisecond, interval: time.Second, trueAt: 200 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, fake := newFakeWaiter()
			start := fake.Now()

			ok := w.WaitForCondition(tt.timeout, tt.interval, func() bool {
				return fake.Since(start) >= tt.trueAt
			})

			assert.True(t, ok)
			assert.Equal(t, tt.timeout, fake.Since(start))
		})
	}
}

func TestWaitForConditionRejectsMalformedInput(t *testing.T) {
	w, _ := newFakeWaiter()

	_, err := w.WaitForConditionE(0, time.Millisecond, func() bool { return true })
	assert.ErrorIs(t, err, ErrInvalidWait)

	_, err = w.WaitForConditionE(time.Second, time.Millisecond, nil)
	assert.ErrorIs(t, err, ErrInvalidWait)

	assert.Panics(t, func() { w.WaitForCondition(-time.Second, 0, func() bool { return true }) })
}

func TestWaitForDisappearance(t *testing.T) {
	fake := testingclock.NewFakeClock(time.Now())
	stub := newStub(fake)
	stub.state = func(elapsed time.Duration) elementState {
		return elementState{exists: elapsed < 700*time.Millisecond}
	}
	w := New(stub, WithClock(fake))

	assert.True(t, w.WaitForDisappearance(driver.ByID("spinner"), 2*time.Second))
	assert.Equal(t, 700*time.Millisecond, fake.Since(stub.start))

	stub.state = func(time.Duration) elementState { return elementState{exists: true} }
	assert.False(t, w.WaitForDisappearance(driver.ByID("spinner"), time.Second))
}

func TestWaitForPredicate(t *testing.T) {
	fake := testingclock.NewFakeClock(time.Now())
	stub := newStub(fake)
	stub.state = func(elapsed time.Duration) elementState {
		loaded := elapsed >= 300*time.Millisecond
		label := "Basket"
		if loaded {
			label = "Basket (2)"
		}
		return elementState{exists: true, enabled: loaded, hittable: loaded, label: label, value: label}
	}
	w := New(stub, WithClock(fake))
	loc := driver.ByID("catalog.basketButton")

	assert.True(t, w.WaitForPredicate(loc, Enabled, time.Second))
	assert.True(t, w.WaitForPredicate(loc, Hittable, time.Second))
	assert.True(t, w.WaitForPredicate(loc, LabelContains("(2)"), time.Second))
	assert.True(t, w.WaitForPredicate(loc, ValueEquals("Basket (2)"), time.Second))
	assert.False(t, w.WaitForPredicate(loc, LabelEquals("Basket (3)"), time.Second))
	assert.False(t, w.WaitForPredicate(loc, Selected, 200*time.Millisecond))
	assert.Panics(t, func() { w.WaitForPredicate(loc, Predicate{Name: "broken"}, time.Second) })
}

func TestWaitForSelected(t *testing.T) {
	fake := testingclock.NewFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	stub := newStub(fake)
	stub.state = func(elapsed time.Duration) elementState {
		return elementState{exists: true, selected: elapsed >= 300*time.Millisecond}
	}
	w := New(stub, WithClock(fake))
	tip := driver.ByID("checkout.tip.10")

	assert.False(t, w.WaitForPredicate(tip, Selected, 100*time.Millisecond))
	assert.True(t, w.WaitForPredicate(tip, Selected, time.Second))
}

func TestWaitForCount(t *testing.T) {
	fake := testingclock.NewFakeClock(time.Now())
	stub := newStub(fake)
	stub.count = func(elapsed time.Duration) int { return int(elapsed / (100 * time.Millisecond)) }
	w := New(stub, WithClock(fake))
	rows := driver.ByKind("drinkCell")

	assert.True(t, w.WaitForCount(rows, AtLeast(3), time.Second))
	assert.True(t, w.WaitForCount(rows, Exactly(6), time.Second))
	assert.False(t, w.WaitForCount(rows, Exactly(2), time.Second))
}

func TestWaitForExistenceDelegatesToDriver(t *testing.T) {
	fake := testingclock.NewFakeClock(time.Now())
	stub := newStub(fake)
	stub.state = func(time.Duration) elementState { return elementState{exists: true} }
	w := New(stub, WithClock(fake))

	assert.True(t, w.WaitForExistence(driver.ByID("catalog.title"), time.Second))
	assert.Panics(t, func() { w.WaitForExistence(driver.ByID("catalog.title"), 0) })
}

func TestCountMatch(t *testing.T) {
	assert.True(t, Exactly(2).Matches(2))
	assert.False(t, Exactly(2).Matches(3))
	assert.True(t, AtLeast(2).Matches(3))
	assert.False(t, AtLeast(2).Matches(1))
	assert.Equal(t, ">= 2", AtLeast(2).String())
	assert.Equal(t, "== 0", Exactly(0).String())
}

func TestWaitWithRetrySucceedsOnThirdAttempt(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	w, fake := newFakeWaiter(WithLogger(logging.New(zap.New(core), logging.LevelDebug)))
	start := fake.Now()
	attempts := 0

	ok := w.WaitWithRetry(3, time.Second, func(attempt int) (bool, error) {
		attempts++
		if attempt < 3 {
			return false, errors.New("login submission dropped")
		}
		return true, nil
	})

	assert.True(t, ok)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 2, logs.FilterLevelExact(zapcore.WarnLevel).Len())
	// linear backoff: 1s after the first attempt, 2s after the second
	assert.Equal(t, 3*time.Second, fake.Since(start))
}

func TestRetryExhausted(t *testing.T) {
	w, _ := newFakeWaiter()
	last := errors.New("still flaky")

	err := w.Retry(2, 10*time.Millisecond, func(int) (bool, error) { return false, last })
	assert.ErrorIs(t, err, last)
	assert.EqualError(t, err, "failed after 2 attempts: still flaky")

	err = w.Retry(2, 0, func(int) (bool, error) { return false, nil })
	assert.EqualError(t, err, "failed after 2 attempts")
}

func TestRetryRejectsMalformedInput(t *testing.T) {
	w, _ := newFakeWaiter()
	assert.ErrorIs(t, w.Retry(0, time.Second, func(int) (bool, error) { return true, nil }), ErrInvalidWait)
	assert.ErrorIs(t, w.Retry(1, time.Second, nil), ErrInvalidWait)
	assert.False(t, w.WaitWithRetry(0, time.Second, func(int) (bool, error) { return true, nil }))
}

type recordingObserver struct {
	kinds     []string
	satisfied []bool
}

func (r *recordingObserver) ObserveWait(kind string, ok bool, _ time.Duration) {
	r.kinds = append(r.kinds, kind)
	r.satisfied = append(r.satisfied, ok)
}

func TestObserverReceivesOutcomes(t *testing.T) {
	obs := &recordingObserver{}
	w, _ := newFakeWaiter(WithObserver(obs))

	w.WaitForCondition(time.Second, 0, func() bool { return true })
	w.WaitForCondition(time.Second, 0, func() bool { return false })

	assert.Equal(t, []string{"condition", "condition"}, obs.kinds)
	assert.Equal(t, []bool{true, false}, obs.satisfied)
}

func TestWaitForConditionContextCancel(t *testing.T) {
	w := New(nil, WithPollInterval(5*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	ok, err := w.WaitForConditionContext(ctx, 5*time.Second, 0, func() bool { return false })
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWaitForConditionContextSucceeds(t *testing.T) {
	w := New(nil)
	start := time.Now()
	ok, err := w.WaitForConditionContext(context.Background(), time.Second, 5*time.Millisecond, func() bool {
		return time.Since(start) > 15*time.Millisecond
	})
	require.NoError(t, err)
	assert.True(t, ok)
}
