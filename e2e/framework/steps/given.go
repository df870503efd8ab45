package steps

import (
	"github.com/splunk/ui-e2e/e2e/framework/data"
	"github.com/splunk/ui-e2e/e2e/framework/screens"
)

// Given establishes preconditions. Each step inspects the current UI before
// acting, so it can be applied on top of an unknown state.
type Given struct {
	w *World
}

// AppIsLaunched waits for the catalog after launch.
func (g Given) AppIsLaunched() *screens.Catalog {
	g.w.step("Given", "the app is launched")
	return screens.NewCatalog(g.w.Session).WaitUntilLoaded().Validate()
}

// UserIsLoggedOut ends any session and leaves the catalog shown.
func (g Given) UserIsLoggedOut() *screens.Catalog {
	g.w.step("Given", "the user is logged out")
	return g.w.toCatalog().Logout()
}

// UserIsLoggedIn signs in as user unless a session already exists.
func (g Given) UserIsLoggedIn(user data.User) *screens.Catalog {
	g.w.step("Given", "the user %s is logged in", user.Email)
	catalog := g.w.toCatalog()
	if catalog.IsLoggedIn() {
		return catalog
	}
	return catalog.OpenBasketExpectingLogin().LoginAs(user).NavigateBack()
}

// UserHasItemsInBasket leaves the basket showing exactly n distinct drinks,
// taken from the front of the fixture catalog.
func (g Given) UserHasItemsInBasket(n int) *screens.Basket {
	g.w.step("Given", "the user has %d items in the basket", n)
	basket := g.w.toBasket().ClearBasket()
	if n == 0 {
		return basket.ValidateItemCount(0)
	}
	catalog := basket.NavigateBack()
	for _, product := range g.w.products(n) {
		catalog = catalog.AddDrink(product.Name)
	}
	return catalog.OpenBasket().ValidateItemCount(n)
}

// UserIsOnCheckout reaches checkout with at least one item in the basket.
func (g Given) UserIsOnCheckout() *screens.Checkout {
	g.w.step("Given", "the user is on checkout")
	if checkout := screens.NewCheckout(g.w.Session); g.w.shown(checkout) {
		return checkout.Validate()
	}
	basket := g.w.toBasket()
	if basket.IsEmpty() {
		basket = basket.NavigateBack().AddDrink(g.w.products(1)[0].Name).OpenBasket()
	}
	return basket.ProceedToCheckout().Validate()
}

// products returns the first n fixture products, cycling when the
// registry has fewer.
func (w *World) products(n int) []data.Product {
	list := w.Data.ProductList()
	if len(list) == 0 {
		list = data.Catalog()
	}
	out := make([]data.Product, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, list[i%len(list)])
	}
	return out
}
