// Package screens holds one page object per application screen. Screens share
// behaviour through small capability interfaces and embeddable helpers rather
// than a type hierarchy: a screen opts into Scrollable, Alertable, InputScreen
// or Navigable by implementing (or embedding) exactly what it needs.
package screens

import (
	"time"

	"go.uber.org/zap"

	"github.com/splunk/ui-e2e/e2e/framework/assertions"
	"github.com/splunk/ui-e2e/e2e/framework/config"
	"github.com/splunk/ui-e2e/e2e/framework/driver"
	"github.com/splunk/ui-e2e/e2e/framework/logging"
	"github.com/splunk/ui-e2e/e2e/framework/waiter"
)

// Session is the per-test handle every screen operates through.
type Session struct {
	Driver driver.Driver
	Waiter *waiter.Waiter
	Assert *assertions.Asserter
	Logger *logging.Logger
	Config *config.Config
}

func (s *Session) timeout(d time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return s.Config.DefaultTimeout
}

// Screen is the base capability: a session handle plus the one locator whose
// presence means the screen is displayed.
type Screen interface {
	Session() *Session
	Identifier() driver.Locator
	Name() string
}

// Tappable is an element whose tap leads to Next.
type Tappable[Next Screen] interface {
	Tap() Next
}

// Scrollable screens scroll their content.
type Scrollable interface {
	ScrollUp()
	ScrollDown()
	ScrollTo(target driver.Locator) bool
}

// Validatable screens assert their own content and return themselves.
type Validatable[S Screen] interface {
	Validate() S
}

// Navigable screens have a back affordance leading to Prev.
type Navigable[Prev Screen] interface {
	NavigateBack() Prev
}

// InputScreen is a form.
type InputScreen[S Screen] interface {
	ClearAllInputs() S
	DismissKeyboard() S
}

// Alertable screens can raise a modal alert.
type Alertable interface {
	WaitForAlert(timeout time.Duration) bool
	AcceptAlert(label string)
	DismissAlert(label string)
}

// ValidateIsDisplayed waits up to timeout (zero means the configured default)
// for the screen identifier and fails the test naming the screen if it never
// appears. It has no side effects on the app, so repeated calls agree.
func ValidateIsDisplayed[S Screen](s S, timeout time.Duration) S {
	sess := s.Session()
	timeout = sess.timeout(timeout)
	if !sess.Waiter.WaitForExistence(s.Identifier(), timeout) {
		sess.Assert.Fail(s.Identifier(), "%s screen is not displayed: %s not found within %s", s.Name(), s.Identifier(), timeout)
		return s
	}
	sess.Logger.Info("screen displayed", zap.String("screen", s.Name()))
	return s
}

// IsDisplayed is the non-failing form of ValidateIsDisplayed.
func IsDisplayed(s Screen, timeout time.Duration) bool {
	sess := s.Session()
	return sess.Waiter.WaitForExistence(s.Identifier(), sess.timeout(timeout))
}

// Link is a tappable element that navigates to a known screen.
type Link[Next Screen] struct {
	from Base
	loc  driver.Locator
	what string
	next func(*Session) Next
}

func newLink[Next Screen](from Base, loc driver.Locator, what string, next func(*Session) Next) Link[Next] {
	return Link[Next]{from: from, loc: loc, what: what, next: next}
}

// Tap taps the element and waits for the destination screen.
func (l Link[Next]) Tap() Next {
	l.from.tap(l.loc, l.what)
	return ValidateIsDisplayed(l.next(l.from.s), 0)
}

// Locator returns the element's locator.
func (l Link[Next]) Locator() driver.Locator {
	return l.loc
}
