package assertions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/splunk/ui-e2e/e2e/framework/config"
	"github.com/splunk/ui-e2e/e2e/framework/driver"
	"github.com/splunk/ui-e2e/e2e/framework/driver/sim"
	"github.com/splunk/ui-e2e/e2e/framework/logging"
	"github.com/splunk/ui-e2e/e2e/framework/waiter"
)

type stubCapturer struct {
	names []string
	err   error
}

func (s *stubCapturer) CaptureScreenshot(name string) (string, error) {
	s.names = append(s.names, name)
	if s.err != nil {
		return "", s.err
	}
	return "/artifacts/" + name + ".png", nil
}

type countingObserver struct {
	passed, failed int
}

func (c *countingObserver) ObserveAssertion(_ string, passed bool) {
	if passed {
		c.passed++
	} else {
		c.failed++
	}
}

type fixture struct {
	app   *sim.App
	fake  *testingclock.FakeClock
	rec   *Recorder
	a     *Asserter
	logs  *observer.ObservedLogs
	shots *stubCapturer
	obs   *countingObserver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fake := testingclock.NewFakeClock(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))
	app := sim.New(sim.Options{Clock: fake, LoadDelay: 300 * time.Millisecond})
	require.NoError(t, app.Launch(context.Background(), driver.LaunchConfig{Arguments: []string{"--disable-animations"}}))

	core, logs := observer.New(zapcore.DebugLevel)
	logger := logging.New(zap.New(core), logging.LevelDebug)
	w := waiter.New(app, waiter.WithClock(fake), waiter.WithLogger(logger))
	rec := &Recorder{}
	shots := &stubCapturer{}
	obs := &countingObserver{}
	a := New(rec, app, w, config.Default(),
		WithLogger(logger), WithEvidence(shots), WithObserver(obs), WithName("TestCheckout"))
	return &fixture{app: app, fake: fake, rec: rec, a: a, logs: logs, shots: shots, obs: obs}
}

func (f *fixture) run(fn func()) bool {
	return f.rec.Run(fn)
}

func TestExistsPassesImmediately(t *testing.T) {
	f := newFixture(t)
	start := f.fake.Now()

	failed := f.run(func() { f.a.Exists(driver.ByID("catalog.title")) })

	assert.False(t, failed)
	assert.Zero(t, f.fake.Since(start))
	assert.Equal(t, 1, f.logs.FilterMessage("verified").Len())
	assert.Equal(t, 1, f.obs.passed)
}

func TestExistsWaitsForAsyncContent(t *testing.T) {
	f := newFixture(t)
	start := f.fake.Now()

	failed := f.run(func() { f.a.Exists(driver.ByID("drink.Latte")) })

	assert.False(t, failed)
	assert.Equal(t, 300*time.Millisecond, f.fake.Since(start))
}

func TestExistsFailureMessageAndEvidence(t *testing.T) {
	f := newFixture(t)

	failed := f.run(func() { f.a.Exists(driver.ByID("catalog.promoBanner"), Timeout(500*time.Millisecond)) })

	require.True(t, failed)
	msg := f.rec.Message()
	assert.Contains(t, msg, "exists failed for id=catalog.promoBanner")
	assert.Contains(t, msg, "expected present")
	assert.Contains(t, msg, "observed absent")
	assert.Contains(t, msg, "timeout 500ms")
	assert.Contains(t, msg, "initially observed absent")
	assert.Equal(t, []string{"failure-exists-id_catalog.promoBanner"}, f.shots.names)
	assert.Equal(t, 1, f.logs.FilterMessage("assertion failed").Len())
	assert.Equal(t, int64(1), f.a.Failures())
	assert.Equal(t, 1, f.obs.failed)
}

func TestFailureStopsTheTest(t *testing.T) {
	f := newFixture(t)
	reached := false

	f.run(func() {
		f.a.NotExists(driver.ByID("catalog.title"), Timeout(time.Second))
		reached = true
	})

	assert.False(t, reached)
}

func TestScreenshotFailureDoesNotMaskAssertion(t *testing.T) {
	f := newFixture(t)
	f.shots.err = errors.New("disk full")

	failed := f.run(func() { f.a.HasLabel(driver.ByID("catalog.title"), "Tea Menu") })

	require.True(t, failed)
	assert.Contains(t, f.rec.Message(), `expected label "Tea Menu"`)
	assert.NotContains(t, f.rec.Message(), "disk full")
	warn := f.logs.FilterMessage("failure screenshot not captured").All()
	require.Len(t, warn, 1)
	assert.Equal(t, zapcore.WarnLevel, warn[0].Level)
}

func TestLabelMismatchReportsBothValues(t *testing.T) {
	f := newFixture(t)
	f.fake.Step(300 * time.Millisecond)
	require.NoError(t, f.app.Find(driver.ByID("drink.Latte")).Tap())

	f.run(func() { f.a.HasLabel(driver.ByID("detail.title"), "Mocha", Message("wrong drink opened")) })

	msg := f.rec.Message()
	assert.Contains(t, msg, "wrong drink opened: hasLabel failed for id=detail.title")
	assert.Contains(t, msg, `expected label "Mocha"`)
	assert.Contains(t, msg, `observed "Latte"`)
	assert.Contains(t, msg, "timeout 3s")
}

func TestTextAssertions(t *testing.T) {
	f := newFixture(t)
	f.fake.Step(300 * time.Millisecond)

	failed := f.run(func() {
		f.a.LabelContains(driver.ByID("catalog.basketButton"), "(0)")
		f.a.HasValue(driver.ByID("drink.Mocha"), "$4.75")
		f.a.IsNotEmpty(driver.ByID("drink.Mocha"))
	})
	assert.False(t, failed)

	require.NoError(t, f.app.Find(driver.ByID("catalog.basketButton")).Tap())
	failed = f.run(func() {
		f.a.IsEmpty(driver.ByID("login.emailField"))
		f.a.IsDisabled(driver.ByID("login.submitButton"))
	})
	assert.False(t, failed)
}

func TestFlagAssertions(t *testing.T) {
	f := newFixture(t)
	f.fake.Step(300 * time.Millisecond)
	require.NoError(t, f.app.Find(driver.ByID("catalog.basketButton")).Tap())
	require.NoError(t, f.app.Find(driver.ByID("login.emailField")).TypeText("test@coffee.app"))
	require.NoError(t, f.app.Find(driver.ByID("login.passwordField")).TypeText("Password123!"))

	failed := f.run(func() {
		f.a.IsEnabled(driver.ByID("login.submitButton"))
		f.a.IsSelected(driver.ByID("login.passwordField"))
		f.a.IsVisible(driver.ByID("login.cancelButton"))
	})
	assert.False(t, failed)

	failed = f.run(func() { f.a.IsDisabled(driver.ByID("login.submitButton"), Timeout(200*time.Millisecond)) })
	assert.True(t, failed)
	assert.Contains(t, f.rec.Message(), "expected disabled, observed enabled")
}

func TestIsVisibleDistinguishesHiddenFromAbsent(t *testing.T) {
	f := newFixture(t)
	f.fake.Step(300 * time.Millisecond)

	f.run(func() { f.a.IsVisible(driver.ByID("drink.Hot Chocolate"), Timeout(time.Second)) })

	assert.Contains(t, f.rec.Message(), "observed present but not hittable")
}

func TestCountAssertions(t *testing.T) {
	f := newFixture(t)
	cells := driver.ByKind(sim.KindDrinkCell)

	failed := f.run(func() {
		f.a.CountAtLeast(cells, 5)
		f.a.Count(cells, 12)
	})
	assert.False(t, failed)

	failed = f.run(func() { f.a.Count(cells, 3, Timeout(time.Second)) })
	assert.True(t, failed)
	assert.Contains(t, f.rec.Message(), "expected count 3, observed count 12")
}

func TestClosedAsserterPanicsWithMisuse(t *testing.T) {
	f := newFixture(t)
	f.a.Close()

	defer func() {
		v := recover()
		err, ok := v.(error)
		require.True(t, ok, "expected an error panic, got %v", v)
		var misuse *MisuseError
		require.ErrorAs(t, err, &misuse)
		assert.Equal(t, "exists", misuse.Assertion)
		assert.Contains(t, err.Error(), `after test "TestCheckout" finished`)
		assert.False(t, f.rec.Failed())
	}()
	f.a.Exists(driver.ByID("catalog.title"))
}

func TestRecorderPropagatesForeignPanics(t *testing.T) {
	rec := &Recorder{}
	assert.PanicsWithValue(t, "boom", func() {
		rec.Run(func() { panic("boom") })
	})
	assert.True(t, IsFailNow(failNow{}))
	assert.False(t, IsFailNow("boom"))
}
