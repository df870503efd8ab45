package screens

import (
	"github.com/splunk/ui-e2e/e2e/framework/assertions"
	"github.com/splunk/ui-e2e/e2e/framework/data"
	"github.com/splunk/ui-e2e/e2e/framework/driver"
)

var basketIDs = struct {
	title, rows, emptyLabel, clearButton, totalLabel, placeOrderButton, backButton driver.Locator
}{
	title:            driver.ByID("basket.title"),
	rows:             driver.ByKind("basketRow"),
	emptyLabel:       driver.ByID("basket.emptyLabel"),
	clearButton:      driver.ByID("basket.clearButton"),
	totalLabel:       driver.ByID("basket.totalLabel"),
	placeOrderButton: driver.ByID("basket.placeOrderButton"),
	backButton:       driver.ByID("basket.backButton"),
}

// Basket lists the drinks about to be ordered.
type Basket struct {
	Base
}

var (
	_ Validatable[*Basket] = (*Basket)(nil)
	_ Navigable[*Catalog]  = (*Basket)(nil)
)

// NewBasket returns the basket screen object without validating it.
func NewBasket(s *Session) *Basket {
	return &Basket{Base: newBase(s, "Basket", basketIDs.title)}
}

func (b *Basket) Validate() *Basket {
	ValidateIsDisplayed(b, 0)
	b.s.Assert.Exists(basketIDs.totalLabel)
	return b
}

// ItemCount returns the number of rows.
func (b *Basket) ItemCount() int {
	return b.s.Driver.Count(basketIDs.rows)
}

// IsEmpty reports whether the basket has no rows.
func (b *Basket) IsEmpty() bool {
	return b.ItemCount() == 0
}

// ItemNames lists the rows in order.
func (b *Basket) ItemNames() []string {
	rows := b.s.Driver.FindAll(basketIDs.rows)
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.Label())
	}
	return names
}

// IsPlaceOrderEnabled reports whether checkout can start.
func (b *Basket) IsPlaceOrderEnabled() bool {
	return b.enabled(basketIDs.placeOrderButton)
}

// Total returns the displayed subtotal text.
func (b *Basket) Total() string {
	return b.label(basketIDs.totalLabel)
}

// ClearBasket empties the basket. It does nothing when the basket is
// already empty and no clear button is offered.
func (b *Basket) ClearBasket() *Basket {
	if b.tapIfPresent(basketIDs.clearButton, "clear button") {
		b.s.Assert.Count(basketIDs.rows, 0, assertions.Message("basket rows after clearing"))
	}
	return b
}

// ValidateItemCount asserts exactly n rows and the matching place order state.
func (b *Basket) ValidateItemCount(n int) *Basket {
	b.s.Assert.Count(basketIDs.rows, n)
	if n > 0 {
		b.s.Assert.IsEnabled(basketIDs.placeOrderButton)
	} else {
		b.ValidateEmpty()
	}
	return b
}

// ValidateEmpty asserts the empty state with no way to place an order.
func (b *Basket) ValidateEmpty() *Basket {
	b.s.Assert.Count(basketIDs.rows, 0)
	b.s.Assert.Exists(basketIDs.emptyLabel)
	if b.exists(basketIDs.placeOrderButton) {
		b.s.Assert.IsDisabled(basketIDs.placeOrderButton)
	}
	return b
}

// ValidateContains asserts a row for every product, in order.
func (b *Basket) ValidateContains(products ...data.Product) *Basket {
	b.s.Assert.Count(basketIDs.rows, len(products))
	for i, p := range products {
		b.s.Assert.HasLabel(basketIDs.rows.At(i), p.Name)
	}
	return b
}

// ValidateTotal asserts the subtotal label.
func (b *Basket) ValidateTotal(total data.Money) *Basket {
	b.s.Assert.HasLabel(basketIDs.totalLabel, total.String())
	return b
}

// ProceedToCheckout requires at least one item.
func (b *Basket) ProceedToCheckout() *Checkout {
	b.s.Assert.IsEnabled(basketIDs.placeOrderButton, assertions.Message("place order needs at least one item"))
	b.tap(basketIDs.placeOrderButton, "place order button")
	return ValidateIsDisplayed(NewCheckout(b.s), 0)
}

func (b *Basket) NavigateBack() *Catalog {
	b.tap(basketIDs.backButton, "back button")
	return ValidateIsDisplayed(NewCatalog(b.s), 0)
}
