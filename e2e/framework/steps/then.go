package steps

import (
	"go.uber.org/zap"

	"github.com/splunk/ui-e2e/e2e/framework/data"
	"github.com/splunk/ui-e2e/e2e/framework/driver"
	"github.com/splunk/ui-e2e/e2e/framework/screens"
)

// Then verifies outcomes. Steps never navigate; they assert on the screen
// that should already be shown. Chain Capture to attach a screenshot.
type Then struct {
	w *World
}

// BasketShouldContain asserts the basket shows exactly n rows.
func (th Then) BasketShouldContain(n int) Then {
	th.w.step("Then", "the basket should contain %d items", n)
	screens.ValidateIsDisplayed(screens.NewBasket(th.w.Session), 0).ValidateItemCount(n)
	return th
}

// PlaceOrderShouldBeEnabled asserts checkout can start.
func (th Then) PlaceOrderShouldBeEnabled() Then {
	th.w.step("Then", "place order should be enabled")
	screens.ValidateIsDisplayed(screens.NewBasket(th.w.Session), 0)
	th.w.Session.Assert.IsEnabled(driver.ByID("basket.placeOrderButton"))
	return th
}

// PlaceOrderShouldBeDisabled accepts a disabled or absent button.
func (th Then) PlaceOrderShouldBeDisabled() Then {
	th.w.step("Then", "place order should be disabled")
	basket := screens.ValidateIsDisplayed(screens.NewBasket(th.w.Session), 0)
	if basket.IsPlaceOrderEnabled() {
		th.w.Session.Assert.IsDisabled(driver.ByID("basket.placeOrderButton"))
	}
	return th
}

// LoginScreenShouldBeDisplayed asserts the sign-in form is shown.
func (th Then) LoginScreenShouldBeDisplayed() Then {
	th.w.step("Then", "the login screen should be displayed")
	screens.NewLogin(th.w.Session).Validate()
	return th
}

// CatalogShouldBeDisplayed asserts the populated catalog is shown.
func (th Then) CatalogShouldBeDisplayed() Then {
	th.w.step("Then", "the catalog should be displayed")
	screens.NewCatalog(th.w.Session).Validate()
	return th
}

// CheckoutShouldBeDisplayed asserts checkout is shown.
func (th Then) CheckoutShouldBeDisplayed() Then {
	th.w.step("Then", "checkout should be displayed")
	screens.NewCheckout(th.w.Session).Validate()
	return th
}

// OrderTotalShouldBe asserts the checkout total.
func (th Then) OrderTotalShouldBe(total data.Money) Then {
	th.w.step("Then", "the order total should be %s", total)
	screens.ValidateIsDisplayed(screens.NewCheckout(th.w.Session), 0)
	th.w.Session.Assert.HasLabel(driver.ByID("checkout.totalLabel"), total.String())
	return th
}

// OrderTotalsShouldMatch asserts subtotal, tip and total for order.
func (th Then) OrderTotalsShouldMatch(order data.Order) Then {
	th.w.step("Then", "checkout should show %s + %s = %s", order.Subtotal(), order.TipAmount(), order.Total())
	screens.ValidateIsDisplayed(screens.NewCheckout(th.w.Session), 0).ValidateTotals(order)
	return th
}

// BasketBadgeShouldBe asserts the catalog's basket count.
func (th Then) BasketBadgeShouldBe(n int) Then {
	th.w.step("Then", "the basket badge should show %d", n)
	screens.ValidateIsDisplayed(screens.NewCatalog(th.w.Session), 0)
	th.w.Session.Assert.HasValue(driver.ByID("catalog.basketButton"), itoa(n))
	return th
}

// LoginErrorShouldBe asserts the sign-in error text.
func (th Then) LoginErrorShouldBe(message string) Then {
	th.w.step("Then", "the login error should read %q", message)
	screens.ValidateIsDisplayed(screens.NewLogin(th.w.Session), 0).ValidateError(message)
	return th
}

// UserShouldBeLoggedIn asserts the log out affordance on the catalog.
func (th Then) UserShouldBeLoggedIn() Then {
	th.w.step("Then", "the user should be logged in")
	screens.ValidateIsDisplayed(screens.NewCatalog(th.w.Session), 0)
	th.w.Session.Assert.Exists(driver.ByID("catalog.logoutButton"))
	return th
}

// Capture attaches a named screenshot. Capture failures are logged only.
func (th Then) Capture(name string) Then {
	if th.w.Evidence == nil {
		return th
	}
	path, err := th.w.Evidence.CaptureScreenshot(name)
	if err != nil {
		th.w.Session.Logger.Warning("evidence screenshot not captured", zap.String("name", name), zap.Error(err))
		return th
	}
	th.w.Session.Logger.Info("evidence captured", zap.String("name", name), zap.String("path", path))
	return th
}
