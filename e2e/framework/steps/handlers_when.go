package steps

import (
	"context"
	"fmt"
	"strings"

	"github.com/splunk/ui-e2e/e2e/framework/data"
	"github.com/splunk/ui-e2e/e2e/framework/spec"
)

// RegisterWhenHandlers registers user action steps.
func RegisterWhenHandlers(reg *Registry) {
	reg.Register("when.login", handleLogin)
	reg.Register("when.login_rejected", handleLoginRejected)
	reg.Register("when.add_drink", handleAddDrink)
	reg.Register("when.add_drinks", handleAddDrinks)
	reg.Register("when.open_basket", handleOpenBasket)
	reg.Register("when.tap_basket", handleTapBasket)
	reg.Register("when.clear_basket", handleClearBasket)
	reg.Register("when.proceed_to_checkout", handleProceedToCheckout)
	reg.Register("when.complete_checkout", handleCompleteCheckout)
	reg.Register("when.logout", handleLogout)
	reg.Register("when.register", handleRegister)
}

func handleLogin(ctx context.Context, w *World, step spec.StepSpec) (map[string]string, error) {
	_ = ctx
	user, err := w.user(w.param(step, "user", ""))
	if err != nil {
		return nil, err
	}
	meta := screenMeta(w.When().UserLogsIn(user))
	meta["email"] = user.Email
	return meta, nil
}

func handleLoginRejected(ctx context.Context, w *World, step spec.StepSpec) (map[string]string, error) {
	_ = ctx
	user, err := w.user(w.param(step, "user", "invalid"))
	if err != nil {
		return nil, err
	}
	login := w.When().UserLoginIsRejected(user)
	return map[string]string{"screen": login.Name(), "error": login.ErrorMessage()}, nil
}

func handleAddDrink(ctx context.Context, w *World, step spec.StepSpec) (map[string]string, error) {
	_ = ctx
	name := w.param(step, "drink", "")
	if name == "" {
		return nil, fmt.Errorf("drink is required")
	}
	product, err := w.product(name)
	if err != nil {
		return nil, err
	}
	catalog := w.When().UserAddsDrink(product.Name)
	return map[string]string{"drink": product.Name, "basket": itoa(catalog.BasketCount())}, nil
}

func handleAddDrinks(ctx context.Context, w *World, step spec.StepSpec) (map[string]string, error) {
	var names []string
	if raw := w.param(step, "drinks", ""); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
	} else {
		count := w.intParam(step, "count", 0)
		if count < 1 {
			return nil, fmt.Errorf("drinks or count is required")
		}
		for _, product := range w.products(count) {
			names = append(names, product.Name)
		}
	}
	var basket int
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		product, err := w.product(name)
		if err != nil {
			return nil, err
		}
		basket = w.When().UserAddsDrink(product.Name).BasketCount()
	}
	return map[string]string{"added": itoa(len(names)), "basket": itoa(basket)}, nil
}

func handleOpenBasket(ctx context.Context, w *World, step spec.StepSpec) (map[string]string, error) {
	_ = ctx
	_ = step
	basket := w.When().UserOpensBasket()
	meta := screenMeta(basket)
	meta["count"] = itoa(basket.ItemCount())
	return meta, nil
}

func handleTapBasket(ctx context.Context, w *World, step spec.StepSpec) (map[string]string, error) {
	_ = ctx
	_ = step
	return screenMeta(w.When().UserTapsBasket()), nil
}

func handleClearBasket(ctx context.Context, w *World, step spec.StepSpec) (map[string]string, error) {
	_ = ctx
	_ = step
	return screenMeta(w.When().UserClearsBasket()), nil
}

func handleProceedToCheckout(ctx context.Context, w *World, step spec.StepSpec) (map[string]string, error) {
	_ = ctx
	_ = step
	checkout := w.When().UserProceedsToCheckout()
	meta := screenMeta(checkout)
	meta["subtotal"] = checkout.Subtotal()
	return meta, nil
}

func handleCompleteCheckout(ctx context.Context, w *World, step spec.StepSpec) (map[string]string, error) {
	_ = ctx
	payment, tip := data.PaymentCreditCard, data.TipNone
	if name := w.param(step, "order", ""); name != "" {
		order, err := w.Data.Order(name)
		if err != nil {
			return nil, err
		}
		payment, tip = order.Payment, order.Tip
	}
	if raw := w.param(step, "payment", ""); raw != "" {
		parsed, ok := data.ParsePaymentMethod(raw)
		if !ok {
			return nil, fmt.Errorf("unknown payment method %q", raw)
		}
		payment = parsed
	}
	if raw := w.param(step, "tip", ""); raw != "" {
		parsed, ok := data.ParseTipTier(raw)
		if !ok {
			return nil, fmt.Errorf("unsupported tip %q", raw)
		}
		tip = parsed
	}
	meta := screenMeta(w.When().UserCompletesCheckout(payment, tip))
	meta["payment"] = string(payment)
	meta["tip"] = tip.String()
	return meta, nil
}

func handleLogout(ctx context.Context, w *World, step spec.StepSpec) (map[string]string, error) {
	_ = ctx
	_ = step
	return screenMeta(w.When().UserLogsOut()), nil
}

func handleRegister(ctx context.Context, w *World, step spec.StepSpec) (map[string]string, error) {
	_ = ctx
	name := w.param(step, "user", "random")
	var user data.User
	if name == "random" {
		generated, err := data.RandomUser(w.Rand)
		if err != nil {
			return nil, err
		}
		user = generated
		w.rememberUser(w.param(step, "save_as", "registered"), user)
	} else {
		resolved, err := w.user(name)
		if err != nil {
			return nil, err
		}
		user = resolved
	}
	meta := screenMeta(w.When().UserRegisters(user))
	meta["email"] = user.Email
	return meta, nil
}
