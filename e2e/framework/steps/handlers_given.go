package steps

import (
	"context"
	"fmt"

	"github.com/splunk/ui-e2e/e2e/framework/spec"
)

// RegisterGivenHandlers registers precondition steps.
func RegisterGivenHandlers(reg *Registry) {
	reg.Register("given.app_launched", handleAppLaunched)
	reg.Register("given.logged_out", handleLoggedOut)
	reg.Register("given.logged_in", handleLoggedIn)
	reg.Register("given.basket_items", handleBasketItems)
	reg.Register("given.on_checkout", handleOnCheckout)
	reg.Register("given.preconditions", handlePreconditions)
}

func handleAppLaunched(ctx context.Context, w *World, step spec.StepSpec) (map[string]string, error) {
	_ = ctx
	_ = step
	catalog := w.Given().AppIsLaunched()
	return map[string]string{"screen": catalog.Name(), "drinks": itoa(catalog.DrinkCount())}, nil
}

func handleLoggedOut(ctx context.Context, w *World, step spec.StepSpec) (map[string]string, error) {
	_ = ctx
	_ = step
	return screenMeta(w.Given().UserIsLoggedOut()), nil
}

func handleLoggedIn(ctx context.Context, w *World, step spec.StepSpec) (map[string]string, error) {
	_ = ctx
	user, err := w.user(w.param(step, "user", ""))
	if err != nil {
		return nil, err
	}
	meta := screenMeta(w.Given().UserIsLoggedIn(user))
	meta["email"] = user.Email
	return meta, nil
}

func handleBasketItems(ctx context.Context, w *World, step spec.StepSpec) (map[string]string, error) {
	_ = ctx
	count := w.intParam(step, "count", -1)
	if count < 0 {
		return nil, fmt.Errorf("basket item count is required")
	}
	basket := w.Given().UserHasItemsInBasket(count)
	meta := screenMeta(basket)
	meta["count"] = itoa(basket.ItemCount())
	return meta, nil
}

func handleOnCheckout(ctx context.Context, w *World, step spec.StepSpec) (map[string]string, error) {
	_ = ctx
	_ = step
	return screenMeta(w.Given().UserIsOnCheckout()), nil
}

func handlePreconditions(ctx context.Context, w *World, step spec.StepSpec) (map[string]string, error) {
	_ = ctx
	builder := Precondition(w)
	if name := w.param(step, "user", ""); name != "" {
		user, err := w.user(name)
		if err != nil {
			return nil, err
		}
		builder.LoggedIn(user)
	} else if getBool(step.With, "logged_out", false) {
		builder.LoggedOut()
	}
	if count := getInt(step.With, "basket_items", -1); count >= 0 {
		builder.WithBasketItems(count)
	}
	if getBool(step.With, "checkout", false) {
		builder.OnCheckout()
	}
	return screenMeta(builder.Apply()), nil
}
