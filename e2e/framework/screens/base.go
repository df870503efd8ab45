package screens

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/splunk/ui-e2e/e2e/framework/assertions"
	"github.com/splunk/ui-e2e/e2e/framework/driver"
)

// maxScrollSwipes bounds ScrollTo in each direction.
const maxScrollSwipes = 10

// Base implements Screen and the gestures every concrete screen shares.
type Base struct {
	s    *Session
	name string
	id   driver.Locator
}

func newBase(s *Session, name string, id driver.Locator) Base {
	return Base{s: s, name: name, id: id}
}

// Session returns the screen's session.
func (b Base) Session() *Session { return b.s }

// Identifier returns the screen identifier locator.
func (b Base) Identifier() driver.Locator { return b.id }

// Name returns the screen name used in logs and failures.
func (b Base) Name() string { return b.name }

func (b Base) exists(loc driver.Locator) bool {
	return b.s.Driver.Find(loc).Exists()
}

// tap fails the test when loc does not become hittable.
func (b Base) tap(loc driver.Locator, what string) {
	b.s.Logger.Info("tap", zap.String("screen", b.name), zap.String("element", what))
	b.s.Assert.IsVisible(loc, assertions.Message("%s: cannot tap %s", b.name, what))
	if err := b.s.Driver.Find(loc).Tap(); err != nil {
		b.s.Assert.Fail(loc, "%s: tap %s: %v", b.name, what, err)
	}
}

// tapIfPresent taps an optional element and reports whether it was there.
func (b Base) tapIfPresent(loc driver.Locator, what string) bool {
	if !b.exists(loc) {
		b.s.Logger.Debug("optional element absent", zap.String("screen", b.name), zap.String("element", what))
		return false
	}
	b.tap(loc, what)
	return true
}

func (b Base) typeText(loc driver.Locator, what, text string, secure bool) {
	shown := text
	if secure {
		shown = strings.Repeat("*", len(text))
	}
	b.s.Logger.Info("type", zap.String("screen", b.name), zap.String("element", what), zap.String("text", shown))
	b.s.Assert.IsVisible(loc, assertions.Message("%s: cannot type into %s", b.name, what))
	el := b.s.Driver.Find(loc)
	if err := el.ClearText(); err != nil {
		b.s.Assert.Fail(loc, "%s: clear %s: %v", b.name, what, err)
	}
	if err := el.TypeText(text); err != nil {
		b.s.Assert.Fail(loc, "%s: type into %s: %v", b.name, what, err)
	}
}

func (b Base) clearInputs(locs ...driver.Locator) {
	for _, loc := range locs {
		el := b.s.Driver.Find(loc)
		if !el.Exists() || el.Value() == "" {
			continue
		}
		if err := el.ClearText(); err != nil {
			b.s.Assert.Fail(loc, "%s: clear input: %v", b.name, err)
		}
	}
}

func (b Base) dismissKeyboard() {
	if !b.s.Driver.KeyboardVisible() {
		return
	}
	if err := b.s.Driver.DismissKeyboard(); err != nil {
		b.s.Assert.Fail(driver.ByKind("keyboard"), "%s: dismiss keyboard: %v", b.name, err)
	}
}

func (b Base) label(loc driver.Locator) string {
	el := b.s.Driver.Find(loc)
	if !el.Exists() {
		return ""
	}
	return el.Label()
}

func (b Base) enabled(loc driver.Locator) bool {
	el := b.s.Driver.Find(loc)
	return el.Exists() && el.Enabled()
}

// awaitEither waits for one of two screens and returns whichever appeared
// first, or nil after the timeout.
func awaitEither(s *Session, a, b Screen, timeout time.Duration) Screen {
	var landed Screen
	s.Waiter.WaitForCondition(s.timeout(timeout), 0, func() bool {
		switch {
		case s.Driver.Find(a.Identifier()).Exists():
			landed = a
		case s.Driver.Find(b.Identifier()).Exists():
			landed = b
		}
		return landed != nil
	})
	return landed
}

// Alerts supplies the default Alertable behaviour to screens that embed it.
type Alerts struct {
	sess *Session
}

// WaitForAlert reports whether a modal alert is shown within timeout.
func (a Alerts) WaitForAlert(timeout time.Duration) bool {
	return a.sess.Waiter.WaitForCondition(a.sess.timeout(timeout), 0, func() bool {
		return a.sess.Driver.Alert().Exists()
	})
}

// AcceptAlert taps label on the alert, "OK" when empty.
func (a Alerts) AcceptAlert(label string) {
	a.tapAlert(label, "OK")
}

// DismissAlert taps label on the alert, "Cancel" when empty.
func (a Alerts) DismissAlert(label string) {
	a.tapAlert(label, "Cancel")
}

// AlertTitle returns the shown alert's title, or "" without an alert.
func (a Alerts) AlertTitle() string {
	alert := a.sess.Driver.Alert()
	if !alert.Exists() {
		return ""
	}
	return alert.Title()
}

func (a Alerts) tapAlert(label, fallback string) {
	if label == "" {
		label = fallback
	}
	button := driver.ByLabel(label)
	if !a.WaitForAlert(0) {
		a.sess.Assert.Fail(button, "no alert appeared within %s", a.sess.Config.DefaultTimeout)
		return
	}
	alert := a.sess.Driver.Alert()
	a.sess.Logger.Info("alert", zap.String("title", alert.Title()), zap.String("button", label))
	if err := alert.Tap(label); err != nil {
		a.sess.Assert.Fail(button, "alert %q: tap %q: %v (buttons %v)", alert.Title(), label, err, alert.Buttons())
	}
}

// Scrolling supplies the default Scrollable behaviour.
type Scrolling struct {
	sess *Session
}

// ScrollDown reveals content further down.
func (sc Scrolling) ScrollDown() {
	sc.swipe(driver.SwipeUp)
}

// ScrollUp reveals content further up.
func (sc Scrolling) ScrollUp() {
	sc.swipe(driver.SwipeDown)
}

// ScrollTo scrolls down, then up, until target is hittable. The upward pass
// is twice as long as the downward one so it also covers content above the
// starting position.
func (sc Scrolling) ScrollTo(target driver.Locator) bool {
	el := sc.sess.Driver.Find(target)
	visible := func() bool { return el.Exists() && el.Hittable() }
	if visible() {
		return true
	}
	passes := []struct {
		step   func()
		swipes int
	}{
		{sc.ScrollDown, maxScrollSwipes},
		{sc.ScrollUp, 2 * maxScrollSwipes},
	}
	for _, pass := range passes {
		for i := 0; i < pass.swipes; i++ {
			pass.step()
			if visible() {
				return true
			}
		}
	}
	sc.sess.Logger.Debug("scroll target not reached", zap.String("target", target.String()))
	return false
}

func (sc Scrolling) swipe(dir driver.Direction) {
	if err := sc.sess.Driver.Swipe(dir); err != nil {
		sc.sess.Assert.Fail(driver.Locator{}, "swipe %s: %v", dir, err)
	}
}
