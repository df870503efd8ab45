package screens

import (
	"fmt"

	"github.com/splunk/ui-e2e/e2e/framework/assertions"
	"github.com/splunk/ui-e2e/e2e/framework/data"
	"github.com/splunk/ui-e2e/e2e/framework/driver"
)

const orderConfirmedTitle = "Order Confirmed"

var checkoutIDs = struct {
	title, tipsPanel, subtotalLabel, tipLabel, totalLabel, confirmButton, backButton driver.Locator
}{
	title:         driver.ByID("checkout.title"),
	tipsPanel:     driver.ByID("checkout.tipsPanel"),
	subtotalLabel: driver.ByID("checkout.subtotalLabel"),
	tipLabel:      driver.ByID("checkout.tipLabel"),
	totalLabel:    driver.ByID("checkout.totalLabel"),
	confirmButton: driver.ByID("checkout.confirmButton"),
	backButton:    driver.ByID("checkout.backButton"),
}

func paymentButton(method data.PaymentMethod) driver.Locator {
	return driver.ByID("checkout.payment." + string(method))
}

func tipButton(tier data.TipTier) driver.Locator {
	return driver.ByID(fmt.Sprintf("checkout.tip.%d", tier.Percent()))
}

// Checkout picks payment and tip and confirms the order. Tip buttons stay
// hidden until the tip panel is swiped open.
type Checkout struct {
	Base
	Alerts
}

var (
	_ Validatable[*Checkout] = (*Checkout)(nil)
	_ Navigable[*Basket]     = (*Checkout)(nil)
	_ Alertable              = (*Checkout)(nil)
)

// NewCheckout returns the checkout screen object without validating it.
func NewCheckout(s *Session) *Checkout {
	return &Checkout{Base: newBase(s, "Checkout", checkoutIDs.title), Alerts: Alerts{sess: s}}
}

func (c *Checkout) Validate() *Checkout {
	ValidateIsDisplayed(c, 0)
	for _, method := range data.PaymentMethods {
		c.s.Assert.Exists(paymentButton(method))
	}
	c.s.Assert.Exists(checkoutIDs.totalLabel)
	return c
}

// SelectPayment taps the payment method and asserts it is selected.
func (c *Checkout) SelectPayment(method data.PaymentMethod) *Checkout {
	c.tap(paymentButton(method), "payment "+string(method))
	c.s.Assert.IsSelected(paymentButton(method))
	return c
}

// TipsRevealed reports whether the tip buttons can be tapped.
func (c *Checkout) TipsRevealed() bool {
	el := c.s.Driver.Find(tipButton(data.TipNone))
	return el.Exists() && el.Hittable()
}

// RevealTips swipes the tip panel open unless it already is.
func (c *Checkout) RevealTips() *Checkout {
	if c.TipsRevealed() {
		return c
	}
	c.s.Assert.IsVisible(checkoutIDs.tipsPanel)
	if err := c.s.Driver.Find(checkoutIDs.tipsPanel).Swipe(driver.SwipeLeft); err != nil {
		c.s.Assert.Fail(checkoutIDs.tipsPanel, "reveal tips: %v", err)
	}
	c.s.Assert.IsVisible(tipButton(data.TipNone), assertions.Timeout(c.s.Config.AnimationTimeout),
		assertions.Message("tip buttons after swiping the tip panel"))
	return c
}

// SelectTip reveals the tips when needed and selects tier.
func (c *Checkout) SelectTip(tier data.TipTier) *Checkout {
	c.RevealTips()
	c.tap(tipButton(tier), "tip "+tier.String())
	c.s.Assert.IsSelected(tipButton(tier))
	return c
}

// ValidateTotals asserts subtotal, tip and total for order.
func (c *Checkout) ValidateTotals(order data.Order) *Checkout {
	c.s.Assert.HasLabel(checkoutIDs.subtotalLabel, order.Subtotal().String())
	c.s.Assert.HasLabel(checkoutIDs.tipLabel, order.TipAmount().String())
	c.s.Assert.HasLabel(checkoutIDs.totalLabel, order.Total().String())
	return c
}

func (c *Checkout) Subtotal() string  { return c.label(checkoutIDs.subtotalLabel) }
func (c *Checkout) TipAmount() string { return c.label(checkoutIDs.tipLabel) }
func (c *Checkout) Total() string     { return c.label(checkoutIDs.totalLabel) }

// IsConfirmEnabled reports whether a payment method has been chosen.
func (c *Checkout) IsConfirmEnabled() bool {
	return c.enabled(checkoutIDs.confirmButton)
}

// Confirm taps confirm and waits for the order-confirmed alert.
func (c *Checkout) Confirm() *Checkout {
	c.s.Assert.IsEnabled(checkoutIDs.confirmButton, assertions.Message("confirm needs a payment method"))
	c.tap(checkoutIDs.confirmButton, "confirm button")
	if !c.WaitForAlert(0) {
		c.s.Assert.Fail(checkoutIDs.confirmButton, "%q alert did not appear within %s", orderConfirmedTitle, c.s.Config.DefaultTimeout)
	}
	if title := c.AlertTitle(); title != orderConfirmedTitle {
		c.s.Assert.Fail(checkoutIDs.confirmButton, "expected alert %q, observed %q", orderConfirmedTitle, title)
	}
	return c
}

// Complete pays with method and tier, confirms and dismisses the
// confirmation, landing on the catalog.
func (c *Checkout) Complete(method data.PaymentMethod, tier data.TipTier) *Catalog {
	c.SelectPayment(method).SelectTip(tier).Confirm()
	c.AcceptAlert("OK")
	return ValidateIsDisplayed(NewCatalog(c.s), 0)
}

func (c *Checkout) NavigateBack() *Basket {
	c.tap(checkoutIDs.backButton, "back button")
	return ValidateIsDisplayed(NewBasket(c.s), 0)
}
