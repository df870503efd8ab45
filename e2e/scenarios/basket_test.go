package scenarios

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/splunk/ui-e2e/e2e/framework/screens"
)

var _ = Describe("Basket", func() {
	DescribeTable("holds the requested number of drinks",
		func(n int) {
			c := suite.Begin(GinkgoT(), "", "basket")
			w := c.World

			w.Given().AppIsLaunched()
			w.Given().UserIsLoggedIn(w.DefaultUser())
			w.Given().UserHasItemsInBasket(n)

			then := w.Then().BasketShouldContain(n)
			if n == 0 {
				then.PlaceOrderShouldBeDisabled()
			} else {
				then.PlaceOrderShouldBeEnabled()
			}
			Expect(screens.NewBasket(c.Session).ItemCount()).To(Equal(n))
		},
		Entry("empty", 0),
		Entry("one drink", 1),
		Entry("two drinks", 2),
		Entry("three drinks", 3),
	)

	It("clears back to an empty basket", func() {
		c := suite.Begin(GinkgoT(), "")
		w := c.World

		w.Given().UserIsLoggedIn(w.DefaultUser())
		w.Given().UserHasItemsInBasket(2)
		basket := w.When().UserClearsBasket()

		Expect(basket.IsEmpty()).To(BeTrue())
		w.Then().BasketShouldContain(0).PlaceOrderShouldBeDisabled()
	})
})
