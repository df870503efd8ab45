package data

import (
	"fmt"
	"os"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// Source describes where a registry file lives.
type Source struct {
	File     string            `json:"file" yaml:"file"`
	Source   string            `json:"source,omitempty" yaml:"source,omitempty"`
	Bucket   string            `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Settings map[string]string `json:"settings,omitempty" yaml:"settings,omitempty"`
}

// OrderSpec references products by registry key.
type OrderSpec struct {
	Items   []string      `json:"items" yaml:"items"`
	Payment PaymentMethod `json:"payment" yaml:"payment"`
	Tip     TipTier       `json:"tip" yaml:"tip"`
}

// Registry holds named fixtures in file order.
type Registry struct {
	Users    *orderedmap.OrderedMap[string, User]
	Products *orderedmap.OrderedMap[string, Product]
	Orders   *orderedmap.OrderedMap[string, OrderSpec]
}

type registryFile struct {
	Users    yaml.Node `yaml:"users"`
	Products yaml.Node `yaml:"products"`
	Orders   yaml.Node `yaml:"orders"`
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		Users:    orderedmap.New[string, User](),
		Products: orderedmap.New[string, Product](),
		Orders:   orderedmap.New[string, OrderSpec](),
	}
}

// DefaultRegistry mirrors the built-in fixtures.
func DefaultRegistry() *Registry {
	reg := NewRegistry()
	reg.Users.Set("default", DefaultUser())
	reg.Users.Set("invalid", InvalidUser())
	for _, product := range Catalog() {
		reg.Products.Set(product.Name, product)
	}
	reg.Orders.Set("sample", OrderSpec{Items: []string{"Latte"}, Payment: PaymentCreditCard, Tip: TipTen})
	return reg
}

// LoadRegistry reads a registry YAML file. String values are expanded
// against the process environment.
func LoadRegistry(path string) (*Registry, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseRegistry(payload)
}

// ParseRegistry decodes registry YAML.
func ParseRegistry(payload []byte) (*Registry, error) {
	var raw registryFile
	if err := yaml.Unmarshal(payload, &raw); err != nil {
		return nil, err
	}
	reg := NewRegistry()
	if err := decodeOrdered(&raw.Users, reg.Users, expandUser); err != nil {
		return nil, fmt.Errorf("users: %w", err)
	}
	if err := decodeOrdered(&raw.Products, reg.Products, expandProduct); err != nil {
		return nil, fmt.Errorf("products: %w", err)
	}
	if err := decodeOrdered(&raw.Orders, reg.Orders, func(o OrderSpec) OrderSpec { return o }); err != nil {
		return nil, fmt.Errorf("orders: %w", err)
	}
	for pair := reg.Orders.Oldest(); pair != nil; pair = pair.Next() {
		for _, item := range pair.Value.Items {
			if _, ok := reg.Products.Get(item); !ok {
				return nil, fmt.Errorf("order %s references unknown product %s", pair.Key, item)
			}
		}
	}
	return reg, nil
}

func decodeOrdered[V any](node *yaml.Node, into *orderedmap.OrderedMap[string, V], expand func(V) V) error {
	if node.Kind == 0 {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		var value V
		if err := node.Content[i+1].Decode(&value); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		into.Set(key, expand(value))
	}
	return nil
}

func expandUser(user User) User {
	user.Name = os.ExpandEnv(user.Name)
	user.Email = os.ExpandEnv(user.Email)
	user.Password = os.ExpandEnv(user.Password)
	return user
}

func expandProduct(product Product) Product {
	product.Name = os.ExpandEnv(product.Name)
	product.Category = os.ExpandEnv(product.Category)
	return product
}

// UnmarshalYAML accepts numbers and "$4.50" strings.
func (m *Money) UnmarshalYAML(node *yaml.Node) error {
	return m.UnmarshalText([]byte(node.Value))
}

// UnmarshalYAML accepts "creditCard" and spellings like "credit card".
func (p *PaymentMethod) UnmarshalYAML(node *yaml.Node) error {
	method, ok := ParsePaymentMethod(node.Value)
	if !ok {
		return fmt.Errorf("line %d: unknown payment method %q", node.Line, node.Value)
	}
	*p = method
	return nil
}

// UnmarshalYAML accepts 10 and "10%".
func (t *TipTier) UnmarshalYAML(node *yaml.Node) error {
	tier, ok := ParseTipTier(node.Value)
	if !ok {
		return fmt.Errorf("line %d: unsupported tip tier %q", node.Line, node.Value)
	}
	*t = tier
	return nil
}

// User returns a user by key.
func (r *Registry) User(name string) (User, bool) {
	return r.Users.Get(name)
}

// Product returns a product by key.
func (r *Registry) Product(name string) (Product, bool) {
	return r.Products.Get(name)
}

// Order resolves an order's product references.
func (r *Registry) Order(name string) (Order, error) {
	spec, ok := r.Orders.Get(name)
	if !ok {
		return Order{}, fmt.Errorf("unknown order %s", name)
	}
	items := make([]Product, 0, len(spec.Items))
	for _, key := range spec.Items {
		product, ok := r.Products.Get(key)
		if !ok {
			return Order{}, fmt.Errorf("order %s references unknown product %s", name, key)
		}
		items = append(items, product)
	}
	return NewOrder(spec.Payment, spec.Tip, items...), nil
}

// ProductList returns products in registry order.
func (r *Registry) ProductList() []Product {
	out := make([]Product, 0, r.Products.Len())
	for pair := r.Products.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// Merge overlays other on r; keys in other win.
func (r *Registry) Merge(other *Registry) {
	if other == nil {
		return
	}
	for pair := other.Users.Oldest(); pair != nil; pair = pair.Next() {
		r.Users.Set(pair.Key, pair.Value)
	}
	for pair := other.Products.Oldest(); pair != nil; pair = pair.Next() {
		r.Products.Set(pair.Key, pair.Value)
	}
	for pair := other.Orders.Oldest(); pair != nil; pair = pair.Next() {
		r.Orders.Set(pair.Key, pair.Value)
	}
}
