package steps

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/splunk/ui-e2e/e2e/framework/assertions"
	"github.com/splunk/ui-e2e/e2e/framework/data"
	"github.com/splunk/ui-e2e/e2e/framework/screens"
)

// World holds shared state for the steps of one scenario.
type World struct {
	TestName string
	Session  *screens.Session
	Data     *data.Registry
	Evidence assertions.Capturer
	// Params are scenario-level defaults consulted when a step omits a key.
	Params map[string]string
	Vars   map[string]string
	// Rand drives generated data; seed it for reproducible runs.
	Rand *rand.Rand
}

// NewWorld creates the step state for a test. A nil registry falls back to
// the built-in fixtures.
func NewWorld(testName string, sess *screens.Session, registry *data.Registry, evidence assertions.Capturer) *World {
	if registry == nil {
		registry = data.DefaultRegistry()
	}
	return &World{
		TestName: testName,
		Session:  sess,
		Data:     registry,
		Evidence: evidence,
		Params:   make(map[string]string),
		Vars:     make(map[string]string),
		Rand:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Given returns the precondition steps.
func (w *World) Given() Given { return Given{w: w} }

// When returns the action steps.
func (w *World) When() When { return When{w: w} }

// Then returns the verification steps.
func (w *World) Then() Then { return Then{w: w} }

func (w *World) step(phase, format string, args ...any) {
	w.Session.Logger.Step(phase + " " + fmt.Sprintf(format, args...))
}

// DefaultUser is the registry's "default" user, or the built-in one.
func (w *World) DefaultUser() data.User {
	if user, ok := w.Data.User("default"); ok {
		return user
	}
	return data.DefaultUser()
}

// shown checks a screen identifier without waiting.
func (w *World) shown(s screens.Screen) bool {
	return w.Session.Driver.Find(s.Identifier()).Exists()
}

// toCatalog backs out of whatever screen is shown until the catalog is.
func (w *World) toCatalog() *screens.Catalog {
	s := w.Session
	catalog := screens.NewCatalog(s)
	checkout, basket := screens.NewCheckout(s), screens.NewBasket(s)
	login, detail, register := screens.NewLogin(s), screens.NewDrinkDetail(s), screens.NewRegistration(s)
	for i := 0; i < 4 && !w.shown(catalog); i++ {
		switch {
		case w.shown(checkout):
			checkout.NavigateBack()
		case w.shown(basket):
			basket.NavigateBack()
		case w.shown(login):
			login.NavigateBack()
		case w.shown(detail):
			detail.NavigateBack()
		case w.shown(register):
			register.NavigateBack()
		default:
			s.Logger.Debug("no known screen shown, waiting for catalog")
			return catalog.Validate()
		}
	}
	return catalog.Validate()
}

// toBasket reaches the basket, signing in as the default user if needed.
func (w *World) toBasket() *screens.Basket {
	basket := screens.NewBasket(w.Session)
	if w.shown(basket) {
		return screens.ValidateIsDisplayed(basket, 0)
	}
	if checkout := screens.NewCheckout(w.Session); w.shown(checkout) {
		return checkout.NavigateBack()
	}
	switch landed := w.toCatalog().TapBasket().(type) {
	case *screens.Basket:
		return landed
	case *screens.Login:
		user := w.DefaultUser()
		w.Session.Logger.Info("signing in to reach the basket", zap.String("email", user.Email))
		return landed.LoginAs(user)
	default:
		w.Session.Assert.Fail(basket.Identifier(), "basket button led to %T", landed)
		return basket
	}
}

// product resolves a registry key or display name.
func (w *World) product(name string) (data.Product, error) {
	if p, ok := w.Data.Product(name); ok {
		return p, nil
	}
	if p, ok := data.ProductByName(name); ok {
		return p, nil
	}
	return data.Product{}, fmt.Errorf("unknown product %q", name)
}

func (w *World) user(name string) (data.User, error) {
	key := strings.TrimSpace(name)
	if key == "" {
		return w.DefaultUser(), nil
	}
	if user, ok := w.Data.User(key); ok {
		return user, nil
	}
	if v, ok := w.Vars["user."+key+".email"]; ok {
		return data.User{Name: w.Vars["user."+key+".name"], Email: v, Password: w.Vars["user."+key+".password"]}, nil
	}
	return data.User{}, fmt.Errorf("unknown user %q", name)
}

func (w *World) rememberUser(key string, user data.User) {
	w.Vars["user."+key+".name"] = user.Name
	w.Vars["user."+key+".email"] = user.Email
	w.Vars["user."+key+".password"] = user.Password
}
