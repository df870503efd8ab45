package steps

import (
	"github.com/splunk/ui-e2e/e2e/framework/data"
	"github.com/splunk/ui-e2e/e2e/framework/driver"
	"github.com/splunk/ui-e2e/e2e/framework/screens"
)

// Preconditions composes Given clauses into one setup call. Clauses apply
// in a fixed order: session state, then basket contents, then checkout.
type Preconditions struct {
	w        *World
	loggedIn *data.User
	out      bool
	items    int
	checkout bool
}

// Precondition starts a builder for w.
func Precondition(w *World) *Preconditions {
	return &Preconditions{w: w, items: -1}
}

// LoggedIn requires a session for user.
func (p *Preconditions) LoggedIn(user data.User) *Preconditions {
	p.loggedIn, p.out = &user, false
	return p
}

// LoggedOut requires no session. The basket is only reachable signed in, so
// Apply rejects it together with a basket clause or checkout.
func (p *Preconditions) LoggedOut() *Preconditions {
	p.loggedIn, p.out = nil, true
	return p
}

// WithBasketItems requires exactly n items in the basket.
func (p *Preconditions) WithBasketItems(n int) *Preconditions {
	p.items = n
	return p
}

// OnCheckout ends on the checkout screen.
func (p *Preconditions) OnCheckout() *Preconditions {
	p.checkout = true
	return p
}

// Apply runs the clauses and returns the screen the last one left shown.
func (p *Preconditions) Apply() screens.Screen {
	given := p.w.Given()
	var current screens.Screen = p.w.toCatalog()
	if p.out && (p.items >= 0 || p.checkout) {
		p.w.Session.Assert.Fail(driver.Locator{}, "logged out precondition conflicts with basket items=%d checkout=%t", p.items, p.checkout)
		return current
	}
	switch {
	case p.loggedIn != nil:
		current = given.UserIsLoggedIn(*p.loggedIn)
	case p.out:
		current = given.UserIsLoggedOut()
	}
	if p.items >= 0 {
		current = given.UserHasItemsInBasket(p.items)
	}
	if p.checkout {
		current = given.UserIsOnCheckout()
	}
	return current
}
