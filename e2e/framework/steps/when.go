package steps

import (
	"github.com/splunk/ui-e2e/e2e/framework/data"
	"github.com/splunk/ui-e2e/e2e/framework/screens"
)

// When performs one user action and returns the resulting screen.
type When struct {
	w *World
}

// UserLogsIn signs in from the catalog through the basket button.
func (wh When) UserLogsIn(user data.User) *screens.Basket {
	wh.w.step("When", "the user logs in as %s", user.Email)
	return wh.w.toCatalog().OpenBasketExpectingLogin().LoginAs(user)
}

// UserLoginIsRejected submits credentials that should not sign in.
func (wh When) UserLoginIsRejected(user data.User) *screens.Login {
	wh.w.step("When", "the user tries to log in as %s", user.Email)
	return wh.w.toCatalog().OpenBasketExpectingLogin().LoginExpectingError(user)
}

// UserAddsDrink adds one drink from the catalog.
func (wh When) UserAddsDrink(name string) *screens.Catalog {
	wh.w.step("When", "the user adds %s", name)
	return wh.w.toCatalog().AddDrink(name)
}

// UserTapsBasket taps the basket button and returns wherever it leads.
func (wh When) UserTapsBasket() screens.Screen {
	wh.w.step("When", "the user taps the basket")
	return wh.w.toCatalog().TapBasket()
}

// UserOpensBasket reaches the basket, signing in first when needed.
func (wh When) UserOpensBasket() *screens.Basket {
	wh.w.step("When", "the user opens the basket")
	return wh.w.toBasket()
}

// UserClearsBasket empties the basket.
func (wh When) UserClearsBasket() *screens.Basket {
	wh.w.step("When", "the user clears the basket")
	return wh.w.toBasket().ClearBasket()
}

// UserProceedsToCheckout moves from the basket to checkout.
func (wh When) UserProceedsToCheckout() *screens.Checkout {
	wh.w.step("When", "the user proceeds to checkout")
	return wh.w.toBasket().ProceedToCheckout()
}

// UserCompletesCheckout pays, confirms and dismisses the confirmation.
func (wh When) UserCompletesCheckout(payment data.PaymentMethod, tip data.TipTier) *screens.Catalog {
	wh.w.step("When", "the user completes checkout with %s and a %s tip", payment, tip)
	checkout := screens.NewCheckout(wh.w.Session)
	if !wh.w.shown(checkout) {
		checkout = wh.w.toBasket().ProceedToCheckout()
	}
	return checkout.Complete(payment, tip)
}

// UserLogsOut signs out from the catalog.
func (wh When) UserLogsOut() *screens.Catalog {
	wh.w.step("When", "the user logs out")
	return wh.w.toCatalog().Logout()
}

// UserRegisters creates an account through the login screen. A signed-in
// user is logged out first.
func (wh When) UserRegisters(user data.User) *screens.Catalog {
	wh.w.step("When", "the user registers as %s", user.Email)
	return wh.w.toCatalog().Logout().OpenBasketExpectingLogin().Register().Register(user)
}
