// Package data provides the immutable fixtures scenarios run against: users,
// catalog products and orders with derived totals.
package data

import (
	"fmt"
	"strconv"
	"strings"
)

// Money is an amount in cents.
type Money int64

// Dollars builds a Money value from whole dollars and cents.
func Dollars(dollars, cents int64) Money {
	return Money(dollars*100 + cents)
}

func (m Money) String() string {
	sign := ""
	if m < 0 {
		sign = "-"
		m = -m
	}
	return fmt.Sprintf("%s$%d.%02d", sign, int64(m)/100, int64(m)%100)
}

// ParseMoney accepts "4", "4.5", "4.50" and "$4.50".
func ParseMoney(raw string) (Money, error) {
	value := strings.TrimPrefix(strings.TrimSpace(raw), "$")
	if value == "" {
		return 0, fmt.Errorf("empty amount")
	}
	whole, frac, hasFrac := strings.Cut(value, ".")
	dollars, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || dollars < 0 {
		return 0, fmt.Errorf("invalid amount %q", raw)
	}
	var cents int64
	if hasFrac {
		if len(frac) == 0 || len(frac) > 2 {
			return 0, fmt.Errorf("invalid amount %q", raw)
		}
		if len(frac) == 1 {
			frac += "0"
		}
		cents, err = strconv.ParseInt(frac, 10, 64)
		if err != nil || cents < 0 {
			return 0, fmt.Errorf("invalid amount %q", raw)
		}
	}
	return Dollars(dollars, cents), nil
}

// MarshalText renders the amount as "$4.00".
func (m Money) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText parses the forms accepted by ParseMoney.
func (m *Money) UnmarshalText(text []byte) error {
	parsed, err := ParseMoney(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// User is a set of test credentials.
type User struct {
	Name     string `json:"name" yaml:"name"`
	Email    string `json:"email" yaml:"email"`
	Password string `json:"password" yaml:"password"`
}

// Product is a catalog entry.
type Product struct {
	Name     string `json:"name" yaml:"name"`
	Price    Money  `json:"price" yaml:"price"`
	Category string `json:"category,omitempty" yaml:"category,omitempty"`
}

// PaymentMethod is one of the checkout payment options.
type PaymentMethod string

const (
	PaymentCreditCard PaymentMethod = "creditCard"
	PaymentApplePay   PaymentMethod = "applePay"
	PaymentCash       PaymentMethod = "cash"
)

// PaymentMethods lists every supported payment method.
var PaymentMethods = []PaymentMethod{PaymentCreditCard, PaymentApplePay, PaymentCash}

// ParsePaymentMethod accepts the identifier form and common spellings such as
// "credit card" or "apple_pay".
func ParsePaymentMethod(raw string) (PaymentMethod, bool) {
	normalized := strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.ToLower(strings.TrimSpace(raw)))
	for _, method := range PaymentMethods {
		if strings.ToLower(string(method)) == normalized {
			return method, true
		}
	}
	return "", false
}

// TipTier is a tip percentage offered at checkout.
type TipTier int

const (
	TipNone    TipTier = 0
	TipTen     TipTier = 10
	TipFifteen TipTier = 15
	TipTwenty  TipTier = 20
)

// TipTiers lists every offered tier.
var TipTiers = []TipTier{TipNone, TipTen, TipFifteen, TipTwenty}

// ParseTipTier accepts "10", "10%" and validates the value is offered.
func ParseTipTier(raw string) (TipTier, bool) {
	value, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
	if err != nil {
		return TipNone, false
	}
	for _, tier := range TipTiers {
		if int(tier) == value {
			return tier, true
		}
	}
	return TipNone, false
}

// Percent returns the tier as a whole percentage.
func (t TipTier) Percent() int {
	return int(t)
}

// Rate returns the tier as a fraction.
func (t TipTier) Rate() float64 {
	return float64(t) / 100
}

func (t TipTier) String() string {
	return fmt.Sprintf("%d%%", int(t))
}

// Apply returns the tip on amount, rounded half up to the cent.
func (t TipTier) Apply(amount Money) Money {
	return Money((int64(amount)*int64(t) + 50) / 100)
}

// Order is a set of line items with a payment method and tip tier.
type Order struct {
	Items   []Product     `json:"items" yaml:"items"`
	Payment PaymentMethod `json:"payment" yaml:"payment"`
	Tip     TipTier       `json:"tip" yaml:"tip"`
}

// NewOrder copies items so later changes to the caller's slice do not leak in.
func NewOrder(payment PaymentMethod, tip TipTier, items ...Product) Order {
	return Order{Items: append([]Product(nil), items...), Payment: payment, Tip: tip}
}

// Subtotal is the sum of item prices.
func (o Order) Subtotal() Money {
	var total Money
	for _, item := range o.Items {
		total += item.Price
	}
	return total
}

// TipAmount is the tip on the subtotal.
func (o Order) TipAmount() Money {
	return o.Tip.Apply(o.Subtotal())
}

// Total is subtotal plus tip.
func (o Order) Total() Money {
	return o.Subtotal() + o.TipAmount()
}

// ItemCount is the number of line items.
func (o Order) ItemCount() int {
	return len(o.Items)
}
