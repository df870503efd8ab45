package screens_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/splunk/ui-e2e/e2e/framework/assertions"
	"github.com/splunk/ui-e2e/e2e/framework/config"
	"github.com/splunk/ui-e2e/e2e/framework/data"
	"github.com/splunk/ui-e2e/e2e/framework/driver"
	"github.com/splunk/ui-e2e/e2e/framework/driver/sim"
	"github.com/splunk/ui-e2e/e2e/framework/logging"
	"github.com/splunk/ui-e2e/e2e/framework/screens"
	"github.com/splunk/ui-e2e/e2e/framework/waiter"
)

type harness struct {
	app  *sim.App
	fake *testingclock.FakeClock
	rec  *assertions.Recorder
	sess *screens.Session
	logs *observer.ObservedLogs
}

func newHarness(t *testing.T, opts sim.Options) *harness {
	t.Helper()
	fake := testingclock.NewFakeClock(time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC))
	opts.Clock = fake
	if opts.LoadDelay == 0 {
		opts.LoadDelay = 400 * time.Millisecond
	}
	app := sim.New(opts)
	cfg := config.Default()
	require.NoError(t, app.Launch(context.Background(), driver.LaunchConfig{Arguments: []string{"--uitesting"}}))

	core, logs := observer.New(zapcore.DebugLevel)
	logger := logging.New(zap.New(core), logging.LevelDebug).WithClock(fake)
	w := waiter.New(app, waiter.WithClock(fake), waiter.WithLogger(logger), waiter.WithPollInterval(cfg.PollInterval))
	rec := &assertions.Recorder{}
	a := assertions.New(rec, app, w, cfg, assertions.WithLogger(logger), assertions.WithName(t.Name()))
	t.Cleanup(a.Close)
	return &harness{
		app:  app,
		fake: fake,
		rec:  rec,
		sess: &screens.Session{Driver: app, Waiter: w, Assert: a, Logger: logger, Config: cfg},
		logs: logs,
	}
}

// run fails t with the recorded assertion message when fn fails.
func (h *harness) run(t *testing.T, fn func()) {
	t.Helper()
	require.False(t, h.rec.Run(fn), h.rec.Message())
}

func (h *harness) catalog(t *testing.T) *screens.Catalog {
	t.Helper()
	var c *screens.Catalog
	h.run(t, func() { c = screens.NewCatalog(h.sess).Validate() })
	return c
}

func TestValidateIsDisplayedIsIdempotent(t *testing.T) {
	h := newHarness(t, sim.Options{})
	c := h.catalog(t)
	before := h.app.Snapshot()

	h.run(t, func() {
		first := screens.ValidateIsDisplayed(c, 0)
		second := screens.ValidateIsDisplayed(first, 0)
		assert.Same(t, c, second)
	})

	after := h.app.Snapshot()
	assert.Equal(t, before.Screen, after.Screen)
	assert.Equal(t, before.Launches, after.Launches)
	assert.False(t, after.Transitioning)
	assert.True(t, screens.IsDisplayed(c, 0))
}

func TestValidateIsDisplayedNamesTheScreen(t *testing.T) {
	h := newHarness(t, sim.Options{})

	failed := h.rec.Run(func() { screens.ValidateIsDisplayed(screens.NewCheckout(h.sess), time.Second) })

	require.True(t, failed)
	assert.Contains(t, h.rec.Message(), "Checkout screen is not displayed: id=checkout.title not found within 1s")
	assert.False(t, screens.IsDisplayed(screens.NewBasket(h.sess), time.Second))
}

func TestBasketWhileSignedOutRoutesToLogin(t *testing.T) {
	h := newHarness(t, sim.Options{})
	c := h.catalog(t)

	h.run(t, func() {
		landed := c.Logout().TapBasket()
		login, ok := landed.(*screens.Login)
		require.True(t, ok, "landed on %s", landed.Name())
		login.Validate()
	})
	assert.Equal(t, sim.ScreenLogin, h.app.Snapshot().Screen)
}

func TestLogoutThenBasketRoutesToLogin(t *testing.T) {
	h := newHarness(t, sim.Options{})
	c := h.catalog(t)

	h.run(t, func() {
		c.OpenBasketExpectingLogin().LoginAs(data.DefaultUser()).NavigateBack()
		require.True(t, c.IsLoggedIn())
		c.Logout()
		assert.False(t, c.IsLoggedIn())
		c.OpenBasketExpectingLogin()
	})
	assert.False(t, h.app.Snapshot().Authenticated)
}

func TestLoginResubmitsDroppedSubmission(t *testing.T) {
	h := newHarness(t, sim.Options{DroppedLogins: 1})
	c := h.catalog(t)

	var basket *screens.Basket
	h.run(t, func() {
		basket = c.OpenBasketExpectingLogin().LoginAs(data.DefaultUser())
	})

	require.NotNil(t, basket)
	assert.True(t, h.app.Snapshot().Authenticated)
	assert.Equal(t, 1, h.logs.FilterMessage("attempt failed").Len())
	assert.Equal(t, 2, h.logs.FilterMessage("submitting login").Len())
}

func TestLoginRejectedFailsWithoutRetrying(t *testing.T) {
	h := newHarness(t, sim.Options{})
	c := h.catalog(t)

	failed := h.rec.Run(func() { c.OpenBasketExpectingLogin().LoginAs(data.InvalidUser()) })

	require.True(t, failed)
	assert.Contains(t, h.rec.Message(), "login as nobody@coffee.app rejected: Invalid email or password")
	assert.Equal(t, 1, h.logs.FilterMessage("submitting login").Len())
}

func TestLoginErrorAndInputs(t *testing.T) {
	h := newHarness(t, sim.Options{})
	c := h.catalog(t)

	h.run(t, func() {
		login := c.OpenBasketExpectingLogin().Validate()
		assert.False(t, login.IsSubmitEnabled())
		login.LoginExpectingError(data.InvalidUser()).ValidateError("Invalid email or password")
		login.EnterEmail("someone@coffee.app")
		assert.True(t, h.app.KeyboardVisible())
		login.DismissKeyboard().ClearAllInputs()
		assert.False(t, h.app.KeyboardVisible())
		assert.False(t, login.IsSubmitEnabled())
		login.NavigateBack().Validate()
	})
}

func TestBasketReportsExactlyNItems(t *testing.T) {
	drinks := []string{"Latte", "Espresso", "Mocha"}
	for n := 0; n <= len(drinks); n++ {
		t.Run(fmt.Sprintf("items=%d", n), func(t *testing.T) {
			h := newHarness(t, sim.Options{})
			c := h.catalog(t)

			h.run(t, func() {
				basket := c.OpenBasketExpectingLogin().LoginAs(data.DefaultUser()).ClearBasket()
				catalog := basket.NavigateBack()
				for _, name := range drinks[:n] {
					catalog = catalog.AddDrink(name)
				}
				basket = catalog.OpenBasket().ValidateItemCount(n)
				assert.Equal(t, n, basket.ItemCount())
				assert.Equal(t, n > 0, basket.IsPlaceOrderEnabled())
				assert.Equal(t, drinks[:n], basket.ItemNames())
			})
		})
	}
}

func TestClearBasketIsNoOpWhenEmpty(t *testing.T) {
	h := newHarness(t, sim.Options{})
	c := h.catalog(t)

	h.run(t, func() {
		basket := c.OpenBasketExpectingLogin().LoginAs(data.DefaultUser())
		require.True(t, basket.IsEmpty())
		basket.ClearBasket().ValidateEmpty()
	})
	assert.Equal(t, 1, h.logs.FilterMessage("optional element absent").Len())
}

func TestCheckoutEmptiesBasket(t *testing.T) {
	h := newHarness(t, sim.Options{})
	c := h.catalog(t)
	latte, ok := data.ProductByName("Latte")
	require.True(t, ok)
	order := data.NewOrder(data.PaymentCreditCard, data.TipTen, latte)

	h.run(t, func() {
		checkout := c.AddDrink("Latte").
			OpenBasketExpectingLogin().
			LoginAs(data.DefaultUser()).
			ValidateContains(latte).
			ValidateTotal(latte.Price).
			ProceedToCheckout().
			Validate()
		assert.False(t, checkout.IsConfirmEnabled())
		assert.False(t, checkout.TipsRevealed())

		checkout.SelectPayment(data.PaymentCreditCard).SelectTip(data.TipTen).ValidateTotals(order)
		assert.Equal(t, "$0.40", checkout.TipAmount())
		assert.Equal(t, "$4.40", checkout.Total())

		checkout.Confirm()
		assert.Equal(t, "Order Confirmed", checkout.AlertTitle())
		checkout.AcceptAlert("")
		screens.ValidateIsDisplayed(screens.NewCatalog(h.sess), 0).OpenBasket().ValidateEmpty()
	})

	snap := h.app.Snapshot()
	require.Len(t, snap.Orders, 1)
	assert.Equal(t, data.Dollars(4, 40), snap.Orders[0].Total())
	assert.Empty(t, snap.Basket)
}

func TestCheckoutCompleteAndNavigateBack(t *testing.T) {
	h := newHarness(t, sim.Options{})
	c := h.catalog(t)

	h.run(t, func() {
		checkout := c.AddDrink("Espresso").AddDrink("Cappuccino").
			OpenBasketExpectingLogin().LoginAs(data.DefaultUser()).
			ProceedToCheckout()
		checkout = checkout.NavigateBack().ValidateItemCount(2).ProceedToCheckout()
		assert.Equal(t, "$7.25", checkout.Subtotal())
		checkout.RevealTips().RevealTips()
		assert.True(t, checkout.TipsRevealed())
		checkout.Complete(data.PaymentCash, data.TipTwenty).WaitUntilLoaded()
	})

	snap := h.app.Snapshot()
	require.Len(t, snap.Orders, 1)
	assert.Equal(t, data.TipTwenty, snap.Orders[0].Tip)
	assert.Equal(t, data.PaymentCash, snap.Orders[0].Payment)
}

func TestConfirmRequiresPayment(t *testing.T) {
	h := newHarness(t, sim.Options{})
	c := h.catalog(t)

	failed := h.rec.Run(func() {
		c.AddDrink("Latte").OpenBasketExpectingLogin().LoginAs(data.DefaultUser()).ProceedToCheckout().Confirm()
	})

	require.True(t, failed)
	assert.Contains(t, h.rec.Message(), "confirm needs a payment method")
	assert.Contains(t, h.rec.Message(), "expected enabled, observed disabled")
}

func TestSelectDrinkScrollsOffscreenCell(t *testing.T) {
	h := newHarness(t, sim.Options{VisibleRows: 4})
	c := h.catalog(t)
	chocolate, ok := data.ProductByName("Hot Chocolate")
	require.True(t, ok)

	h.run(t, func() {
		assert.False(t, c.IsDrinkVisible("Hot Chocolate"))
		c.SelectDrink("Hot Chocolate").ValidateProduct(chocolate).NavigateBack()
		require.True(t, c.ScrollTo(driver.ByID("drink.Espresso")))
	})
	assert.Equal(t, 12, c.DrinkCount())
	assert.Equal(t, "Espresso", c.DrinkNames()[0])
}

func TestScrollToReachesRowAboveStart(t *testing.T) {
	products := make([]data.Product, 30)
	for i := range products {
		products[i] = data.Product{Name: fmt.Sprintf("Blend %02d", i), Price: data.Dollars(3, 0)}
	}
	h := newHarness(t, sim.Options{Products: products, VisibleRows: 1})
	c := h.catalog(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, h.app.Swipe(driver.SwipeUp))
	}

	h.run(t, func() {
		require.False(t, c.IsDrinkVisible("Blend 00"))
		assert.True(t, c.ScrollTo(driver.ByID("drink.Blend 00")))
	})
	assert.True(t, c.IsDrinkVisible("Blend 00"))
}

func TestDrinkDetailQueries(t *testing.T) {
	h := newHarness(t, sim.Options{})
	c := h.catalog(t)

	h.run(t, func() {
		detail := c.Drink("Mocha").Tap().Validate()
		assert.Equal(t, "Mocha", detail.DrinkName())
		price, ok := detail.Price()
		assert.True(t, ok)
		assert.Equal(t, data.Dollars(4, 75), price)
		assert.Equal(t, 0, detail.NavigateBack().BasketCount())
	})
}

func TestRegistration(t *testing.T) {
	h := newHarness(t, sim.Options{})
	c := h.catalog(t)
	user := data.User{Name: "Ada", Email: "ada@coffee.app", Password: "espresso-42"}

	h.run(t, func() {
		form := c.OpenBasketExpectingLogin().Register().Validate()
		form.RegisterExpectingError(data.User{Name: "Ada", Email: user.Email, Password: "short"}).
			ValidateError("Password must be at least 8 characters")
		form.ClearAllInputs()
		assert.False(t, form.IsSubmitEnabled())
		catalog := form.Register(user)
		assert.True(t, catalog.IsLoggedIn())

		catalog.Logout().OpenBasketExpectingLogin().Register().
			RegisterExpectingError(user).
			ValidateError("An account with this email already exists").
			NavigateBack().Validate()
	})
}

func TestMustExistElementFailsWithEvidenceMessage(t *testing.T) {
	h := newHarness(t, sim.Options{})
	c := h.catalog(t)

	failed := h.rec.Run(func() { c.SelectDrink("Flat Mocha") })

	require.True(t, failed)
	assert.Contains(t, h.rec.Message(), `drink "Flat Mocha" is not on the menu`)
	assert.Contains(t, h.rec.Message(), "id=drink.Flat Mocha")
}
