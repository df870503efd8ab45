package sim

import (
	"fmt"
	"strings"

	"github.com/splunk/ui-e2e/e2e/framework/data"
	"github.com/splunk/ui-e2e/e2e/framework/driver"
)

const (
	loginFailedMessage  = "Invalid email or password"
	duplicateAccountMsg = "An account with this email already exists"
	weakPasswordMessage = "Password must be at least 8 characters"
	minPasswordLength   = 8
)

// tapLocked dispatches a tap on a resolved node. Taps on disabled controls
// are accepted and do nothing, like on a device.
func (a *App) tapLocked(n node) error {
	if !n.Hittable {
		return driver.ErrNotHittable
	}
	if !n.Enabled {
		return nil
	}
	switch n.Kind {
	case KindTextField, KindSecure:
		a.ui.focused = n.ID
		return nil
	case KindDrinkCell:
		for _, product := range a.opts.Products {
			if "drink."+product.Name == n.ID {
				a.ui.detail = product
				a.navigateLocked(ScreenDetail)
			}
		}
		return nil
	}
	if method, ok := strings.CutPrefix(n.ID, "checkout.payment."); ok {
		a.ui.payment = data.PaymentMethod(method)
		return nil
	}
	if raw, ok := strings.CutPrefix(n.ID, "checkout.tip."); ok {
		if tier, ok := data.ParseTipTier(raw); ok {
			a.ui.tip = tier
		}
		return nil
	}

	switch n.ID {
	case "catalog.basketButton":
		if a.store.session == nil {
			a.navigateLocked(ScreenLogin)
		} else {
			a.navigateLocked(ScreenBasket)
		}
	case "catalog.logoutButton":
		a.store.session = nil
	case "detail.addButton":
		a.store.basket = append(a.store.basket, a.ui.detail)
		a.navigateLocked(ScreenCatalog)
	case "detail.backButton", "login.cancelButton", "basket.backButton":
		a.navigateLocked(ScreenCatalog)
	case "login.submitButton":
		a.submitLoginLocked()
	case "login.registerButton":
		a.navigateLocked(ScreenRegister)
	case "register.submitButton":
		a.submitRegistrationLocked()
	case "register.backButton":
		a.navigateLocked(ScreenLogin)
	case "basket.clearButton":
		a.store.basket = nil
	case "basket.placeOrderButton":
		a.navigateLocked(ScreenCheckout)
	case "checkout.backButton":
		a.navigateLocked(ScreenBasket)
	case "checkout.confirmButton":
		order := a.currentOrderLocked()
		a.ui.alert = &alertState{
			title:   "Order Confirmed",
			message: fmt.Sprintf("Thank you! Your total is %s.", order.Total()),
			buttons: []string{"OK"},
		}
	}
	return nil
}

func (a *App) submitLoginLocked() {
	if a.dropped > 0 {
		a.dropped--
		return
	}
	a.ui.loginError = ""
	email := strings.ToLower(strings.TrimSpace(a.ui.fields["login.emailField"]))
	user, ok := a.store.users[email]
	if !ok || user.Password != a.ui.fields["login.passwordField"] {
		a.ui.loginError = loginFailedMessage
		return
	}
	a.store.session = &user
	a.ui.loginError = ""
	a.ui.fields = make(map[string]string)
	a.navigateLocked(ScreenBasket)
}

func (a *App) submitRegistrationLocked() {
	a.ui.formError = ""
	email := strings.ToLower(strings.TrimSpace(a.ui.fields["register.emailField"]))
	password := a.ui.fields["register.passwordField"]
	if _, exists := a.store.users[email]; exists {
		a.ui.formError = duplicateAccountMsg
		return
	}
	if len([]rune(password)) < minPasswordLength {
		a.ui.formError = weakPasswordMessage
		return
	}
	user := data.User{Name: a.ui.fields["register.nameField"], Email: email, Password: password}
	a.store.users[email] = user
	a.store.session = &user
	a.ui.fields = make(map[string]string)
	a.navigateLocked(ScreenCatalog)
}

func (a *App) typeLocked(n node, value string) error {
	if n.Kind != KindTextField && n.Kind != KindSecure {
		return fmt.Errorf("%s is not a text input", n.Kind)
	}
	if !n.Hittable {
		return driver.ErrNotHittable
	}
	a.ui.focused = n.ID
	a.ui.fields[n.ID] += value
	return nil
}

func (a *App) clearLocked(n node) error {
	if n.Kind != KindTextField && n.Kind != KindSecure {
		return fmt.Errorf("%s is not a text input", n.Kind)
	}
	a.ui.fields[n.ID] = ""
	return nil
}

// swipeElementLocked handles gestures on a specific element. Swiping the tip
// panel left reveals the tip buttons.
func (a *App) swipeElementLocked(n node, dir driver.Direction) error {
	if !n.Hittable {
		return driver.ErrNotHittable
	}
	switch {
	case n.ID == "checkout.tipsPanel" && dir == driver.SwipeLeft:
		a.ui.tipsVisible = true
	case n.ID == "checkout.tipsPanel" && dir == driver.SwipeRight:
		a.ui.tipsVisible = false
	case n.Kind == KindDrinkCell:
		a.scrollLocked(dir)
	}
	return nil
}

// scrollLocked moves the catalog window. Swiping up reveals later rows.
func (a *App) scrollLocked(dir driver.Direction) {
	if a.ui.screen != ScreenCatalog || a.ui.pending != nil {
		return
	}
	maxScroll := len(a.opts.Products) - a.opts.VisibleRows
	if maxScroll < 0 {
		maxScroll = 0
	}
	step := max(1, a.opts.VisibleRows/2)
	switch dir {
	case driver.SwipeUp:
		a.ui.scroll += step
	case driver.SwipeDown:
		a.ui.scroll -= step
	}
	if a.ui.scroll > maxScroll {
		a.ui.scroll = maxScroll
	}
	if a.ui.scroll < 0 {
		a.ui.scroll = 0
	}
}

func (a *App) tapAlertLocked(label string) error {
	if a.ui.alert == nil {
		return driver.ErrNoAlert
	}
	found := false
	for _, b := range a.ui.alert.buttons {
		if b == label {
			found = true
		}
	}
	if !found {
		return driver.ActionError(driver.ErrElementNotFound, "tap alert button", driver.ByLabel(label))
	}
	if a.ui.alert.title == "Order Confirmed" {
		a.store.orders = append(a.store.orders, a.currentOrderLocked())
		a.store.basket = nil
		a.navigateLocked(ScreenCatalog)
	}
	a.ui.alert = nil
	return nil
}
