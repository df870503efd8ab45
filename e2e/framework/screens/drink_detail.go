package screens

import (
	"github.com/splunk/ui-e2e/e2e/framework/data"
	"github.com/splunk/ui-e2e/e2e/framework/driver"
)

var detailIDs = struct {
	title, price, category, addButton, backButton driver.Locator
}{
	title:      driver.ByID("detail.title"),
	price:      driver.ByID("detail.price"),
	category:   driver.ByID("detail.category"),
	addButton:  driver.ByID("detail.addButton"),
	backButton: driver.ByID("detail.backButton"),
}

// DrinkDetail shows one drink with its price and the add affordance.
type DrinkDetail struct {
	Base
}

var (
	_ Validatable[*DrinkDetail] = (*DrinkDetail)(nil)
	_ Navigable[*Catalog]       = (*DrinkDetail)(nil)
)

// NewDrinkDetail returns the detail screen object without validating it.
func NewDrinkDetail(s *Session) *DrinkDetail {
	return &DrinkDetail{Base: newBase(s, "DrinkDetail", detailIDs.title)}
}

func (d *DrinkDetail) Validate() *DrinkDetail {
	ValidateIsDisplayed(d, 0)
	d.s.Assert.IsNotEmpty(detailIDs.price)
	d.s.Assert.IsVisible(detailIDs.addButton)
	return d
}

// ValidateDrink asserts the screen shows name.
func (d *DrinkDetail) ValidateDrink(name string) *DrinkDetail {
	ValidateIsDisplayed(d, 0)
	d.s.Assert.HasLabel(detailIDs.title, name)
	return d
}

// ValidateProduct asserts name, price and category.
func (d *DrinkDetail) ValidateProduct(p data.Product) *DrinkDetail {
	d.ValidateDrink(p.Name)
	d.s.Assert.HasLabel(detailIDs.price, p.Price.String())
	if p.Category != "" {
		d.s.Assert.HasLabel(detailIDs.category, p.Category)
	}
	return d
}

// AddToBasket adds the drink and returns to the catalog.
func (d *DrinkDetail) AddToBasket() *Catalog {
	d.tap(detailIDs.addButton, "add to basket button")
	return ValidateIsDisplayed(NewCatalog(d.s), 0)
}

func (d *DrinkDetail) NavigateBack() *Catalog {
	d.tap(detailIDs.backButton, "back button")
	return ValidateIsDisplayed(NewCatalog(d.s), 0)
}

// DrinkName returns the displayed drink name.
func (d *DrinkDetail) DrinkName() string {
	return d.label(detailIDs.title)
}

// Price returns the displayed price, or false when it does not parse.
func (d *DrinkDetail) Price() (data.Money, bool) {
	m, err := data.ParseMoney(d.label(detailIDs.price))
	return m, err == nil
}
