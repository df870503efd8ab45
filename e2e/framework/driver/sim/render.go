package sim

import (
	"fmt"
	"strings"

	"github.com/splunk/ui-e2e/e2e/framework/data"
)

// Element kinds as reported in the hierarchy.
const (
	KindButton    = "button"
	KindText      = "staticText"
	KindTextField = "textField"
	KindSecure    = "secureTextField"
	KindDrinkCell = "drinkCell"
	KindBasketRow = "basketRow"
	KindPanel     = "panel"
	KindSpinner   = "activityIndicator"
	KindKeyboard  = "keyboard"
)

const passwordMask = "•"

type node struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	Label    string `json:"label,omitempty"`
	Value    string `json:"value,omitempty"`
	Enabled  bool   `json:"enabled"`
	Hittable bool   `json:"hittable"`
	Selected bool   `json:"selected,omitempty"`
}

func button(id, label string, enabled bool) node {
	return node{ID: id, Kind: KindButton, Label: label, Enabled: enabled, Hittable: true}
}

func text(id, label string) node {
	return node{ID: id, Kind: KindText, Label: label, Value: label, Enabled: true, Hittable: true}
}

// nodesLocked renders the visible tree. While a transition or an alert is in
// flight the screen stays visible but nothing on it can be hit.
func (a *App) nodesLocked() []node {
	if !a.ui.launched {
		return nil
	}
	a.settleLocked()
	var nodes []node
	switch a.ui.screen {
	case ScreenCatalog:
		nodes = a.catalogNodes()
	case ScreenDetail:
		nodes = a.detailNodes()
	case ScreenLogin:
		nodes = a.loginNodes()
	case ScreenRegister:
		nodes = a.registerNodes()
	case ScreenBasket:
		nodes = a.basketNodes()
	case ScreenCheckout:
		nodes = a.checkoutNodes()
	}
	if a.ui.pending != nil || a.ui.alert != nil {
		for i := range nodes {
			nodes[i].Hittable = false
		}
	}
	if a.ui.focused != "" {
		nodes = append(nodes, node{ID: "keyboard", Kind: KindKeyboard, Enabled: true, Hittable: true})
	}
	return nodes
}

func (a *App) catalogNodes() []node {
	count := len(a.store.basket)
	nodes := []node{
		text("catalog.title", "Coffee Menu"),
		{ID: "catalog.basketButton", Kind: KindButton, Label: fmt.Sprintf("Basket (%d)", count), Value: fmt.Sprint(count), Enabled: true, Hittable: true},
	}
	if a.store.session != nil {
		nodes = append(nodes, button("catalog.logoutButton", "Log Out", true))
	}
	if a.clock.Now().Before(a.ui.loadedAt) {
		return append(nodes, node{ID: "catalog.loadingIndicator", Kind: KindSpinner, Label: "Loading", Enabled: true})
	}
	for i, product := range a.opts.Products {
		visible := i >= a.ui.scroll && i < a.ui.scroll+a.opts.VisibleRows
		nodes = append(nodes, node{
			ID:       "drink." + product.Name,
			Kind:     KindDrinkCell,
			Label:    product.Name,
			Value:    product.Price.String(),
			Enabled:  true,
			Hittable: visible,
		})
	}
	return nodes
}

func (a *App) detailNodes() []node {
	p := a.ui.detail
	return []node{
		text("detail.title", p.Name),
		text("detail.price", p.Price.String()),
		text("detail.category", p.Category),
		button("detail.addButton", "Add to Basket", true),
		button("detail.backButton", "Back", true),
	}
}

func (a *App) field(id, label, kind string) node {
	value := a.ui.fields[id]
	if kind == KindSecure {
		value = strings.Repeat(passwordMask, len([]rune(value)))
	}
	return node{ID: id, Kind: kind, Label: label, Value: value, Enabled: true, Hittable: true, Selected: a.ui.focused == id}
}

func (a *App) loginNodes() []node {
	ready := a.ui.fields["login.emailField"] != "" && a.ui.fields["login.passwordField"] != ""
	nodes := []node{
		text("login.title", "Sign In"),
		a.field("login.emailField", "Email", KindTextField),
		a.field("login.passwordField", "Password", KindSecure),
		button("login.submitButton", "Sign In", ready),
		button("login.registerButton", "Create Account", true),
		button("login.cancelButton", "Cancel", true),
	}
	if a.ui.loginError != "" {
		nodes = append(nodes, text("login.errorLabel", a.ui.loginError))
	}
	return nodes
}

func (a *App) registerNodes() []node {
	ready := a.ui.fields["register.nameField"] != "" &&
		a.ui.fields["register.emailField"] != "" &&
		a.ui.fields["register.passwordField"] != ""
	nodes := []node{
		text("register.title", "Create Account"),
		a.field("register.nameField", "Name", KindTextField),
		a.field("register.emailField", "Email", KindTextField),
		a.field("register.passwordField", "Password", KindSecure),
		button("register.submitButton", "Register", ready),
		button("register.backButton", "Back", true),
	}
	if a.ui.formError != "" {
		nodes = append(nodes, text("register.errorLabel", a.ui.formError))
	}
	return nodes
}

func (a *App) basketNodes() []node {
	items := a.store.basket
	nodes := []node{text("basket.title", "Basket")}
	for i, item := range items {
		nodes = append(nodes, node{
			ID:       fmt.Sprintf("basket.row.%d", i),
			Kind:     KindBasketRow,
			Label:    item.Name,
			Value:    item.Price.String(),
			Enabled:  true,
			Hittable: true,
		})
	}
	if len(items) == 0 {
		nodes = append(nodes, text("basket.emptyLabel", "Your basket is empty"))
	} else {
		nodes = append(nodes, button("basket.clearButton", "Clear", true))
	}
	subtotal := data.NewOrder("", data.TipNone, items...).Subtotal()
	nodes = append(nodes,
		text("basket.totalLabel", subtotal.String()),
		button("basket.placeOrderButton", "Place Order", len(items) > 0),
		button("basket.backButton", "Back", true),
	)
	return nodes
}

func (a *App) checkoutNodes() []node {
	order := a.currentOrderLocked()
	nodes := []node{text("checkout.title", "Checkout")}
	for _, method := range data.PaymentMethods {
		n := button("checkout.payment."+string(method), paymentLabel(method), true)
		n.Selected = a.ui.payment == method
		nodes = append(nodes, n)
	}
	nodes = append(nodes, node{ID: "checkout.tipsPanel", Kind: KindPanel, Label: "Tip", Enabled: true, Hittable: true})
	for _, tier := range data.TipTiers {
		n := button(fmt.Sprintf("checkout.tip.%d", tier.Percent()), tier.String(), true)
		n.Hittable = a.ui.tipsVisible
		n.Selected = a.ui.tip == tier
		nodes = append(nodes, n)
	}
	nodes = append(nodes,
		text("checkout.subtotalLabel", order.Subtotal().String()),
		text("checkout.tipLabel", order.TipAmount().String()),
		text("checkout.totalLabel", order.Total().String()),
		button("checkout.confirmButton", "Confirm Order", a.ui.payment != ""),
		button("checkout.backButton", "Back", true),
	)
	return nodes
}

func (a *App) currentOrderLocked() data.Order {
	return data.NewOrder(a.ui.payment, a.ui.tip, a.store.basket...)
}

func paymentLabel(method data.PaymentMethod) string {
	switch method {
	case data.PaymentCreditCard:
		return "Credit Card"
	case data.PaymentApplePay:
		return "Apple Pay"
	default:
		return "Cash"
	}
}
