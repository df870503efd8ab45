package screens

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/splunk/ui-e2e/e2e/framework/data"
	"github.com/splunk/ui-e2e/e2e/framework/driver"
)

var loginIDs = struct {
	title, emailField, passwordField, submitButton, registerButton, cancelButton, errorLabel driver.Locator
}{
	title:          driver.ByID("login.title"),
	emailField:     driver.ByID("login.emailField"),
	passwordField:  driver.ByID("login.passwordField"),
	submitButton:   driver.ByID("login.submitButton"),
	registerButton: driver.ByID("login.registerButton"),
	cancelButton:   driver.ByID("login.cancelButton"),
	errorLabel:     driver.ByID("login.errorLabel"),
}

// Login is the sign-in form shown when an anonymous user opens the basket.
type Login struct {
	Base
}

var (
	_ Validatable[*Login] = (*Login)(nil)
	_ Navigable[*Catalog] = (*Login)(nil)
	_ InputScreen[*Login] = (*Login)(nil)
)

// NewLogin returns the login screen object without validating it.
func NewLogin(s *Session) *Login {
	return &Login{Base: newBase(s, "Login", loginIDs.title)}
}

func (l *Login) Validate() *Login {
	ValidateIsDisplayed(l, 0)
	l.s.Assert.IsVisible(loginIDs.emailField)
	l.s.Assert.IsVisible(loginIDs.passwordField)
	return l
}

func (l *Login) EnterEmail(email string) *Login {
	l.typeText(loginIDs.emailField, "email field", email, false)
	return l
}

func (l *Login) EnterPassword(password string) *Login {
	l.typeText(loginIDs.passwordField, "password field", password, true)
	return l
}

// Submit taps sign in once without waiting for an outcome.
func (l *Login) Submit() *Login {
	l.tap(loginIDs.submitButton, "sign in button")
	return l
}

// LoginAs signs in and waits for the basket. Submissions the app drops are
// resubmitted under the configured retry policy; a rejected login fails the
// test immediately.
func (l *Login) LoginAs(user data.User) *Basket {
	l.EnterEmail(user.Email).EnterPassword(user.Password).DismissKeyboard()
	basket := NewBasket(l.s)
	err := l.s.Waiter.Retry(l.s.Config.MaxRetries, l.s.Config.RetryDelay, func(attempt int) (bool, error) {
		l.s.Logger.Info("submitting login", zap.Int("attempt", attempt), zap.String("email", user.Email))
		l.Submit()
		landed := awaitEither(l.s, basket, l.errorScreen(), l.s.Config.ShortTimeout)
		switch landed {
		case nil:
			return false, fmt.Errorf("no response to sign in within %s", l.s.Config.ShortTimeout)
		case Screen(basket):
			return true, nil
		default:
			l.s.Assert.Fail(loginIDs.errorLabel, "login as %s rejected: %s", user.Email, l.ErrorMessage())
			return false, nil
		}
	})
	if err != nil {
		l.s.Assert.Fail(loginIDs.submitButton, "login as %s: %v", user.Email, err)
	}
	return ValidateIsDisplayed(basket, 0)
}

// LoginExpectingError submits credentials the app should reject.
func (l *Login) LoginExpectingError(user data.User) *Login {
	l.EnterEmail(user.Email).EnterPassword(user.Password).Submit()
	l.s.Assert.Exists(loginIDs.errorLabel)
	return l
}

// ValidateError asserts the error text.
func (l *Login) ValidateError(message string) *Login {
	l.s.Assert.HasLabel(loginIDs.errorLabel, message)
	return l
}

// ErrorMessage returns the shown error, or "".
func (l *Login) ErrorMessage() string {
	return l.label(loginIDs.errorLabel)
}

// IsSubmitEnabled reports whether sign in can be tapped.
func (l *Login) IsSubmitEnabled() bool {
	return l.enabled(loginIDs.submitButton)
}

// Register opens the registration form.
func (l *Login) Register() *Registration {
	return newLink(l.Base, loginIDs.registerButton, "create account button", NewRegistration).Tap()
}

// NavigateBack cancels sign in.
func (l *Login) NavigateBack() *Catalog {
	l.tap(loginIDs.cancelButton, "cancel button")
	return ValidateIsDisplayed(NewCatalog(l.s), 0)
}

func (l *Login) ClearAllInputs() *Login {
	l.clearInputs(loginIDs.emailField, loginIDs.passwordField)
	return l
}

func (l *Login) DismissKeyboard() *Login {
	l.dismissKeyboard()
	return l
}

// errorScreen lets awaitEither watch for the error label like a screen.
func (l *Login) errorScreen() Screen {
	return newBase(l.s, "Login error", loginIDs.errorLabel)
}
