package scenarios

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/splunk/ui-e2e/e2e/framework/data"
	"github.com/splunk/ui-e2e/e2e/framework/screens"
)

var _ = Describe("Authentication", func() {
	It("sends a logged out basket tap to login", func() {
		c := suite.Begin(GinkgoT(), "", "auth")
		w := c.World

		w.Given().UserIsLoggedOut()
		shown := w.When().UserTapsBasket()

		Expect(shown).To(BeAssignableToTypeOf(&screens.Login{}))
		w.Then().LoginScreenShouldBeDisplayed()
	})

	It("rejects a wrong password", func() {
		c := suite.Begin(GinkgoT(), "", "auth")
		w := c.World

		w.Given().UserIsLoggedOut()
		login := w.When().UserLoginIsRejected(data.InvalidUser())

		Expect(login.ErrorMessage()).NotTo(BeEmpty())
		w.Then().LoginScreenShouldBeDisplayed()
	})

	It("signs in the default user", func() {
		c := suite.Begin(GinkgoT(), "", "auth")
		w := c.World

		w.Given().UserIsLoggedIn(w.DefaultUser())
		w.Then().UserShouldBeLoggedIn()
	})
})
