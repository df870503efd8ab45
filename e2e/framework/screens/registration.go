package screens

import (
	"github.com/splunk/ui-e2e/e2e/framework/data"
	"github.com/splunk/ui-e2e/e2e/framework/driver"
)

var registerIDs = struct {
	title, nameField, emailField, passwordField, submitButton, backButton, errorLabel driver.Locator
}{
	title:         driver.ByID("register.title"),
	nameField:     driver.ByID("register.nameField"),
	emailField:    driver.ByID("register.emailField"),
	passwordField: driver.ByID("register.passwordField"),
	submitButton:  driver.ByID("register.submitButton"),
	backButton:    driver.ByID("register.backButton"),
	errorLabel:    driver.ByID("register.errorLabel"),
}

// Registration creates an account.
type Registration struct {
	Base
}

var (
	_ Validatable[*Registration] = (*Registration)(nil)
	_ Navigable[*Login]          = (*Registration)(nil)
	_ InputScreen[*Registration] = (*Registration)(nil)
)

// NewRegistration returns the registration screen object without validating it.
func NewRegistration(s *Session) *Registration {
	return &Registration{Base: newBase(s, "Registration", registerIDs.title)}
}

func (r *Registration) Validate() *Registration {
	ValidateIsDisplayed(r, 0)
	r.s.Assert.IsVisible(registerIDs.nameField)
	r.s.Assert.IsVisible(registerIDs.emailField)
	r.s.Assert.IsVisible(registerIDs.passwordField)
	return r
}

// Fill enters every field of user.
func (r *Registration) Fill(user data.User) *Registration {
	r.typeText(registerIDs.nameField, "name field", user.Name, false)
	r.typeText(registerIDs.emailField, "email field", user.Email, false)
	r.typeText(registerIDs.passwordField, "password field", user.Password, true)
	return r.DismissKeyboard()
}

// Register creates the account; the new user lands signed in on the catalog.
func (r *Registration) Register(user data.User) *Catalog {
	r.Fill(user)
	r.s.Assert.IsEnabled(registerIDs.submitButton)
	r.tap(registerIDs.submitButton, "register button")
	catalog := NewCatalog(r.s)
	if landed := awaitEither(r.s, catalog, newBase(r.s, "Registration error", registerIDs.errorLabel), 0); landed != Screen(catalog) {
		r.s.Assert.Fail(registerIDs.submitButton, "registration of %s did not complete: %q", user.Email, r.ErrorMessage())
	}
	return catalog
}

// RegisterExpectingError submits a registration the app should reject.
func (r *Registration) RegisterExpectingError(user data.User) *Registration {
	r.Fill(user)
	r.tap(registerIDs.submitButton, "register button")
	r.s.Assert.Exists(registerIDs.errorLabel)
	return r
}

// ValidateError asserts the error text.
func (r *Registration) ValidateError(message string) *Registration {
	r.s.Assert.HasLabel(registerIDs.errorLabel, message)
	return r
}

// ErrorMessage returns the shown error, or "".
func (r *Registration) ErrorMessage() string {
	return r.label(registerIDs.errorLabel)
}

// IsSubmitEnabled reports whether every field is filled.
func (r *Registration) IsSubmitEnabled() bool {
	return r.enabled(registerIDs.submitButton)
}

func (r *Registration) NavigateBack() *Login {
	r.tap(registerIDs.backButton, "back button")
	return ValidateIsDisplayed(NewLogin(r.s), 0)
}

func (r *Registration) ClearAllInputs() *Registration {
	r.clearInputs(registerIDs.nameField, registerIDs.emailField, registerIDs.passwordField)
	return r
}

func (r *Registration) DismissKeyboard() *Registration {
	r.dismissKeyboard()
	return r
}
