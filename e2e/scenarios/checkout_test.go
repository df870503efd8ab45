package scenarios

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/splunk/ui-e2e/e2e/framework/assertions"
	"github.com/splunk/ui-e2e/e2e/framework/data"
	"github.com/splunk/ui-e2e/e2e/framework/driver"
	"github.com/splunk/ui-e2e/e2e/framework/screens"
)

var _ = Describe("Checkout", func() {
	It("empties the basket after paying", func() {
		c := suite.Begin(GinkgoT(), "", "checkout")
		w := c.World

		w.Given().UserIsLoggedIn(w.DefaultUser())
		w.Given().UserHasItemsInBasket(1)
		w.When().UserProceedsToCheckout()
		w.When().UserCompletesCheckout(data.PaymentCreditCard, data.TipTen)

		w.Then().CatalogShouldBeDisplayed().BasketBadgeShouldBe(0)
		w.When().UserOpensBasket()
		w.Then().BasketShouldContain(0).PlaceOrderShouldBeDisabled()
	})

	It("shows totals including the tip", func() {
		c := suite.Begin(GinkgoT(), "", "checkout")
		w := c.World

		w.Given().UserIsLoggedIn(w.DefaultUser())
		basket := w.Given().UserHasItemsInBasket(1)
		items := basket.ItemNames()
		Expect(items).To(HaveLen(1))

		product, ok := suite.Data.Product(items[0])
		if !ok {
			product, ok = data.ProductByName(items[0])
		}
		Expect(ok).To(BeTrue(), "fixture for %s", items[0])

		w.When().UserProceedsToCheckout().SelectPayment(data.PaymentCreditCard).SelectTip(data.TipTwenty)
		w.Then().OrderTotalsShouldMatch(data.NewOrder(data.PaymentCreditCard, data.TipTwenty, product))
	})
})

var _ = Describe("Screen objects", func() {
	It("validate repeatedly without side effects", func() {
		c := suite.Begin(GinkgoT(), "")

		catalog := screens.NewCatalog(c.Session).WaitUntilLoaded()
		before := catalog.DrinkNames()
		catalog.Validate().Validate().Validate()

		Expect(catalog.DrinkNames()).To(Equal(before))
		Expect(catalog.BasketCount()).To(BeZero())
	})

	It("report a label mismatch as a failure", func() {
		c := suite.Begin(GinkgoT(), "")
		screens.NewCatalog(c.Session).WaitUntilLoaded()

		var rec assertions.Recorder
		strict := assertions.New(&rec, c.Driver, c.Waiter, suite.Config)
		defer strict.Close()
		failed := rec.Run(func() {
			strict.HasLabel(driver.ByID("catalog.title"), "Tea Menu")
		})

		Expect(failed).To(BeTrue())
		Expect(rec.Message()).To(ContainSubstring("Tea Menu"))
		Expect(c.Assert.HasLabel(driver.ByID("catalog.title"), "Coffee Menu")).To(BeTrue())
	})
})
