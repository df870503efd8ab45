package data

import (
	"fmt"
	"io"
	"math/rand"
	"strings"

	"github.com/google/uuid"
	"github.com/sethvargo/go-password/password"
)

// Catalog returns the drinks the app ships with, in display order.
func Catalog() []Product {
	return []Product{
		{Name: "Espresso", Price: Dollars(3, 0), Category: "espresso"},
		{Name: "Americano", Price: Dollars(3, 50), Category: "espresso"},
		{Name: "Latte", Price: Dollars(4, 0), Category: "milk"},
		{Name: "Cappuccino", Price: Dollars(4, 25), Category: "milk"},
		{Name: "Flat White", Price: Dollars(4, 50), Category: "milk"},
		{Name: "Mocha", Price: Dollars(4, 75), Category: "milk"},
		{Name: "Macchiato", Price: Dollars(3, 75), Category: "espresso"},
		{Name: "Cold Brew", Price: Dollars(4, 50), Category: "cold"},
		{Name: "Iced Latte", Price: Dollars(4, 50), Category: "cold"},
		{Name: "Chai Latte", Price: Dollars(4, 25), Category: "tea"},
		{Name: "Matcha Latte", Price: Dollars(5, 0), Category: "tea"},
		{Name: "Hot Chocolate", Price: Dollars(3, 25), Category: "other"},
	}
}

// ProductByName looks up a catalog drink, ignoring case.
func ProductByName(name string) (Product, bool) {
	for _, product := range Catalog() {
		if strings.EqualFold(product.Name, name) {
			return product, true
		}
	}
	return Product{}, false
}

// FirstProducts returns the first n catalog drinks; n is clamped to the
// catalog size.
func FirstProducts(n int) []Product {
	catalog := Catalog()
	if n < 0 {
		n = 0
	}
	if n > len(catalog) {
		n = len(catalog)
	}
	return catalog[:n]
}

// DefaultUser is the account the app is seeded with.
func DefaultUser() User {
	return User{Name: "Test User", Email: "test@coffee.app", Password: "Password123!"}
}

// InvalidUser has credentials the app rejects.
func InvalidUser() User {
	return User{Name: "Nobody", Email: "nobody@coffee.app", Password: "wrong-password"}
}

// SampleOrder is one latte paid by card with a 10% tip.
func SampleOrder() Order {
	latte, _ := ProductByName("Latte")
	return NewOrder(PaymentCreditCard, TipTen, latte)
}

// RandomUser builds a fresh registration identity. A seeded rng yields the
// same user every time.
func RandomUser(rng *rand.Rand) (User, error) {
	var reader io.Reader = rng
	id, err := uuid.NewRandomFromReader(reader)
	if err != nil {
		return User{}, fmt.Errorf("generate user id: %w", err)
	}
	gen, err := password.NewGenerator(&password.GeneratorInput{Reader: reader})
	if err != nil {
		return User{}, fmt.Errorf("create password generator: %w", err)
	}
	// 4 digits and 2 symbols satisfy the app's password rules.
	secret, err := gen.Generate(14, 4, 2, false, false)
	if err != nil {
		return User{}, fmt.Errorf("generate password: %w", err)
	}
	short := strings.Split(id.String(), "-")[0]
	return User{
		Name:     "User " + short,
		Email:    fmt.Sprintf("ui-e2e+%s@coffee.app", short),
		Password: secret,
	}, nil
}

// RandomOrder picks between 1 and maxItems catalog drinks, a payment method
// and a tip tier.
func RandomOrder(rng *rand.Rand, maxItems int) Order {
	catalog := Catalog()
	if maxItems < 1 {
		maxItems = 1
	}
	count := 1 + rng.Intn(maxItems)
	items := make([]Product, 0, count)
	for i := 0; i < count; i++ {
		items = append(items, catalog[rng.Intn(len(catalog))])
	}
	return NewOrder(
		PaymentMethods[rng.Intn(len(PaymentMethods))],
		TipTiers[rng.Intn(len(TipTiers))],
		items...,
	)
}
