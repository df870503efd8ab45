package screens

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/splunk/ui-e2e/e2e/framework/assertions"
	"github.com/splunk/ui-e2e/e2e/framework/driver"
	"github.com/splunk/ui-e2e/e2e/framework/waiter"
)

var catalogIDs = struct {
	title, basketButton, logoutButton, loading, cells driver.Locator
}{
	title:        driver.ByID("catalog.title"),
	basketButton: driver.ByID("catalog.basketButton"),
	logoutButton: driver.ByID("catalog.logoutButton"),
	loading:      driver.ByID("catalog.loadingIndicator"),
	cells:        driver.ByKind("drinkCell"),
}

func drinkCell(name string) driver.Locator {
	return driver.ByID("drink." + name)
}

// Catalog is the drink menu and the first screen after launch.
type Catalog struct {
	Base
	Alerts
	Scrolling
}

var (
	_ Validatable[*Catalog] = (*Catalog)(nil)
	_ Scrollable            = (*Catalog)(nil)
	_ Alertable             = (*Catalog)(nil)
)

// NewCatalog returns the catalog screen object without validating it.
func NewCatalog(s *Session) *Catalog {
	return &Catalog{
		Base:      newBase(s, "Catalog", catalogIDs.title),
		Alerts:    Alerts{sess: s},
		Scrolling: Scrolling{sess: s},
	}
}

// Validate asserts the catalog is shown and populated.
func (c *Catalog) Validate() *Catalog {
	ValidateIsDisplayed(c, 0)
	c.s.Assert.CountAtLeast(catalogIDs.cells, 1)
	c.s.Assert.IsVisible(catalogIDs.basketButton)
	return c
}

// WaitUntilLoaded waits for the loading indicator to go away.
func (c *Catalog) WaitUntilLoaded() *Catalog {
	c.s.Assert.NotExists(catalogIDs.loading, assertions.Timeout(c.s.Config.LongTimeout))
	c.s.Assert.CountAtLeast(catalogIDs.cells, 1)
	return c
}

// Drink returns the cell for name.
func (c *Catalog) Drink(name string) Link[*DrinkDetail] {
	return newLink(c.Base, drinkCell(name), "drink "+name, NewDrinkDetail)
}

// SelectDrink scrolls to the drink and opens its detail screen.
func (c *Catalog) SelectDrink(name string) *DrinkDetail {
	link := c.Drink(name)
	c.s.Assert.Exists(link.Locator(), assertions.Message("drink %q is not on the menu", name))
	if !c.ScrollTo(link.Locator()) {
		c.s.Logger.Warning("drink not scrolled into view", zap.String("drink", name))
	}
	return link.Tap().ValidateDrink(name)
}

// AddDrink opens the drink, adds it and returns to the catalog.
func (c *Catalog) AddDrink(name string) *Catalog {
	before := c.BasketCount()
	catalog := c.SelectDrink(name).AddToBasket()
	c.s.Assert.HasValue(catalogIDs.basketButton, strconv.Itoa(before+1),
		assertions.Message("basket count after adding %s", name))
	return catalog
}

// TapBasket taps the basket button and returns the screen that appears:
// Login when signed out, Basket when signed in.
func (c *Catalog) TapBasket() Screen {
	c.tap(catalogIDs.basketButton, "basket button")
	login, basket := NewLogin(c.s), NewBasket(c.s)
	landed := awaitEither(c.s, login, basket, 0)
	if landed == nil {
		c.s.Assert.Fail(catalogIDs.basketButton, "neither %s nor %s appeared within %s after tapping the basket button",
			login.Name(), basket.Name(), c.s.Config.DefaultTimeout)
	}
	return landed
}

// OpenBasket expects a signed-in session.
func (c *Catalog) OpenBasket() *Basket {
	landed := c.TapBasket()
	basket, ok := landed.(*Basket)
	if !ok {
		c.s.Assert.Fail(catalogIDs.basketButton, "expected %s after tapping the basket button, landed on %s", "Basket", landed.Name())
	}
	return basket
}

// OpenBasketExpectingLogin expects a signed-out session.
func (c *Catalog) OpenBasketExpectingLogin() *Login {
	landed := c.TapBasket()
	login, ok := landed.(*Login)
	if !ok {
		c.s.Assert.Fail(catalogIDs.basketButton, "expected %s after tapping the basket button, landed on %s", "Login", landed.Name())
	}
	return login
}

// Logout signs out when signed in and does nothing otherwise.
func (c *Catalog) Logout() *Catalog {
	if c.tapIfPresent(catalogIDs.logoutButton, "log out button") {
		c.s.Assert.NotExists(catalogIDs.logoutButton)
	}
	return c
}

// IsLoggedIn reports whether the log out affordance is shown.
func (c *Catalog) IsLoggedIn() bool {
	return c.exists(catalogIDs.logoutButton)
}

// BasketCount reads the badge on the basket button.
func (c *Catalog) BasketCount() int {
	el := c.s.Driver.Find(catalogIDs.basketButton)
	if !el.Exists() {
		return 0
	}
	n, err := strconv.Atoi(el.Value())
	if err != nil {
		return 0
	}
	return n
}

// DrinkCount returns the number of catalog cells, visible or not.
func (c *Catalog) DrinkCount() int {
	return c.s.Driver.Count(catalogIDs.cells)
}

// DrinkNames lists the catalog in display order.
func (c *Catalog) DrinkNames() []string {
	cells := c.s.Driver.FindAll(catalogIDs.cells)
	names := make([]string, 0, len(cells))
	for _, cell := range cells {
		names = append(names, cell.Label())
	}
	return names
}

// IsDrinkVisible reports whether the drink's cell is on screen.
func (c *Catalog) IsDrinkVisible(name string) bool {
	return c.s.Waiter.WaitForPredicate(drinkCell(name), waiter.Hittable, c.s.Config.AnimationTimeout)
}
