package steps

import (
	"context"
	"fmt"
	"strings"

	"github.com/splunk/ui-e2e/e2e/framework/data"
	"github.com/splunk/ui-e2e/e2e/framework/screens"
	"github.com/splunk/ui-e2e/e2e/framework/spec"
)

// RegisterThenHandlers registers verification steps.
func RegisterThenHandlers(reg *Registry) {
	reg.Register("then.basket_count", handleBasketCount)
	reg.Register("then.place_order", handlePlaceOrder)
	reg.Register("then.screen", handleScreen)
	reg.Register("then.order_total", handleOrderTotal)
	reg.Register("then.basket_badge", handleBasketBadge)
	reg.Register("then.login_error", handleLoginError)
	reg.Register("then.logged_in", handleThenLoggedIn)
	reg.Register("then.screenshot", handleScreenshot)
}

func handleBasketCount(ctx context.Context, w *World, step spec.StepSpec) (map[string]string, error) {
	_ = ctx
	count := w.intParam(step, "count", -1)
	if count < 0 {
		return nil, fmt.Errorf("basket count is required")
	}
	captured(w, step, w.Then().BasketShouldContain(count))
	return map[string]string{"count": itoa(count)}, nil
}

func handlePlaceOrder(ctx context.Context, w *World, step spec.StepSpec) (map[string]string, error) {
	_ = ctx
	if getBool(step.With, "enabled", true) {
		captured(w, step, w.Then().PlaceOrderShouldBeEnabled())
		return map[string]string{"place_order": "enabled"}, nil
	}
	captured(w, step, w.Then().PlaceOrderShouldBeDisabled())
	return map[string]string{"place_order": "disabled"}, nil
}

func handleScreen(ctx context.Context, w *World, step spec.StepSpec) (map[string]string, error) {
	_ = ctx
	name := strings.ToLower(w.param(step, "name", ""))
	then := w.Then()
	switch name {
	case "catalog":
		then = then.CatalogShouldBeDisplayed()
	case "login":
		then = then.LoginScreenShouldBeDisplayed()
	case "checkout":
		then = then.CheckoutShouldBeDisplayed()
	case "basket":
		w.step("Then", "the basket should be displayed")
		screens.NewBasket(w.Session).Validate()
	case "detail", "drink":
		w.step("Then", "the drink detail should be displayed")
		screens.NewDrinkDetail(w.Session).Validate()
	case "registration", "register":
		w.step("Then", "the registration form should be displayed")
		screens.NewRegistration(w.Session).Validate()
	default:
		return nil, fmt.Errorf("unknown screen %q", name)
	}
	captured(w, step, then)
	return map[string]string{"screen": name}, nil
}

func handleOrderTotal(ctx context.Context, w *World, step spec.StepSpec) (map[string]string, error) {
	_ = ctx
	if name := w.param(step, "order", ""); name != "" {
		order, err := w.Data.Order(name)
		if err != nil {
			return nil, err
		}
		captured(w, step, w.Then().OrderTotalsShouldMatch(order))
		return map[string]string{"total": order.Total().String()}, nil
	}
	raw := w.param(step, "total", "")
	if raw == "" {
		return nil, fmt.Errorf("total or order is required")
	}
	total, err := data.ParseMoney(raw)
	if err != nil {
		return nil, err
	}
	captured(w, step, w.Then().OrderTotalShouldBe(total))
	return map[string]string{"total": total.String()}, nil
}

func handleBasketBadge(ctx context.Context, w *World, step spec.StepSpec) (map[string]string, error) {
	_ = ctx
	count := w.intParam(step, "count", -1)
	if count < 0 {
		return nil, fmt.Errorf("badge count is required")
	}
	captured(w, step, w.Then().BasketBadgeShouldBe(count))
	return map[string]string{"count": itoa(count)}, nil
}

func handleLoginError(ctx context.Context, w *World, step spec.StepSpec) (map[string]string, error) {
	_ = ctx
	message := w.param(step, "message", "")
	if message == "" {
		return nil, fmt.Errorf("message is required")
	}
	captured(w, step, w.Then().LoginErrorShouldBe(message))
	return map[string]string{"message": message}, nil
}

func handleThenLoggedIn(ctx context.Context, w *World, step spec.StepSpec) (map[string]string, error) {
	_ = ctx
	captured(w, step, w.Then().UserShouldBeLoggedIn())
	return nil, nil
}

func handleScreenshot(ctx context.Context, w *World, step spec.StepSpec) (map[string]string, error) {
	_ = ctx
	name := w.param(step, "name", "")
	if name == "" {
		name = w.TestName + "-" + itoa(int(w.Session.Logger.CurrentStep()))
	}
	w.Then().Capture(name)
	return map[string]string{"screenshot": name}, nil
}

// captured honors an optional "screenshot" key on any then step.
func captured(w *World, step spec.StepSpec, then Then) {
	if name := w.param(step, "screenshot", ""); name != "" {
		then.Capture(name)
	}
}
