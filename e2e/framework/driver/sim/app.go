// Package sim is an in-memory coffee-ordering app behind the driver
// interface. Screen transitions and catalog loading complete asynchronously
// on the injected clock, so waits and assertions see the same eventually
// consistent UI a device would present.
package sim

import (
	"context"
	"strings"
	"sync"
	"time"

	"k8s.io/utils/clock"

	"github.com/splunk/ui-e2e/e2e/framework/data"
	"github.com/splunk/ui-e2e/e2e/framework/driver"
)

// Screen names reported by Snapshot.
const (
	ScreenCatalog  = "catalog"
	ScreenDetail   = "detail"
	ScreenLogin    = "login"
	ScreenRegister = "register"
	ScreenBasket   = "basket"
	ScreenCheckout = "checkout"
)

const (
	argResetState        = "--reset-state"
	argDisableAnimations = "--disable-animations"
	envDisableAnimations = "DISABLE_ANIMATIONS"
	envAppEnvironment    = "APP_ENVIRONMENT"
)

// Options tune the simulated app.
type Options struct {
	Clock clock.Clock
	// Products seeds the catalog; defaults to data.Catalog().
	Products []data.Product
	// Users seeds the accounts; defaults to data.DefaultUser().
	Users []data.User
	// TransitionDelay is how long a navigation animation takes when
	// animations are enabled.
	TransitionDelay time.Duration
	// LoadDelay is how long the catalog takes to populate after launch.
	LoadDelay time.Duration
	// VisibleRows is the number of catalog rows on screen at once.
	VisibleRows int
	// DroppedLogins makes the first n login submissions silently do nothing.
	DroppedLogins int
	// FailScreenshots makes Screenshot return an error.
	FailScreenshots bool
	// PollInterval is the existence-wait resolution.
	PollInterval time.Duration
}

func (o Options) withDefaults() Options {
	if o.Clock == nil {
		o.Clock = clock.RealClock{}
	}
	if o.Products == nil {
		o.Products = data.Catalog()
	}
	if o.Users == nil {
		o.Users = []data.User{data.DefaultUser()}
	}
	if o.TransitionDelay <= 0 {
		o.TransitionDelay = 250 * time.Millisecond
	}
	if o.LoadDelay < 0 {
		o.LoadDelay = 0
	}
	if o.VisibleRows <= 0 {
		o.VisibleRows = 6
	}
	if o.PollInterval <= 0 {
		o.PollInterval = 50 * time.Millisecond
	}
	return o
}

// persisted survives a relaunch unless the app is launched with --reset-state.
type persisted struct {
	users   map[string]data.User
	session *data.User
	basket  []data.Product
	orders  []data.Order
}

type transition struct {
	to      string
	readyAt time.Time
}

type alertState struct {
	title   string
	message string
	buttons []string
}

// session is the per-launch UI state.
type session struct {
	launched    bool
	environment string
	animations  bool
	screen      string
	pending     *transition
	loadedAt    time.Time
	scroll      int
	detail      data.Product
	fields      map[string]string
	focused     string
	loginError  string
	formError   string
	payment     data.PaymentMethod
	tip         data.TipTier
	tipsVisible bool
	alert       *alertState
}

// App is the simulated application and the driver.Driver that automates it.
type App struct {
	mu       sync.Mutex
	opts     Options
	clock    clock.Clock
	store    persisted
	ui       session
	dropped  int
	launches int
	last     driver.LaunchConfig
}

var _ driver.Driver = (*App)(nil)

// New creates an app that is not yet launched.
func New(opts Options) *App {
	opts = opts.withDefaults()
	a := &App{opts: opts, clock: opts.Clock, dropped: opts.DroppedLogins}
	a.resetStore()
	return a
}

func (a *App) resetStore() {
	users := make(map[string]data.User, len(a.opts.Users))
	for _, user := range a.opts.Users {
		users[strings.ToLower(user.Email)] = user
	}
	a.store = persisted{users: users}
}

// Launch starts the app on the catalog. Launch arguments and environment
// control state reset and animations.
func (a *App) Launch(ctx context.Context, cfg driver.LaunchConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	animations := true
	for _, arg := range cfg.Arguments {
		switch arg {
		case argResetState:
			a.resetStore()
		case argDisableAnimations:
			animations = false
		}
	}
	if cfg.Environment[envDisableAnimations] == "1" {
		animations = false
	}
	a.ui = session{
		launched:    true,
		environment: cfg.Environment[envAppEnvironment],
		animations:  animations,
		screen:      ScreenCatalog,
		loadedAt:    a.clock.Now().Add(a.opts.LoadDelay),
		fields:      make(map[string]string),
	}
	a.launches++
	a.last = driver.LaunchConfig{
		Arguments:   append([]string(nil), cfg.Arguments...),
		Environment: copyEnv(cfg.Environment),
	}
	return nil
}

// Terminate stops the app. Persisted state is kept for the next launch.
func (a *App) Terminate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ui = session{}
	return nil
}

func (a *App) navigateLocked(to string) {
	a.ui.focused = ""
	if !a.ui.animations {
		a.enterLocked(to)
		return
	}
	a.ui.pending = &transition{to: to, readyAt: a.clock.Now().Add(a.opts.TransitionDelay)}
}

func (a *App) enterLocked(to string) {
	a.ui.screen = to
	a.ui.pending = nil
	switch to {
	case ScreenLogin:
		a.ui.loginError = ""
		delete(a.ui.fields, "login.passwordField")
	case ScreenRegister:
		a.ui.formError = ""
	case ScreenCheckout:
		a.ui.payment = ""
		a.ui.tip = data.TipNone
		a.ui.tipsVisible = false
	}
}

// settleLocked completes a navigation whose animation has finished.
func (a *App) settleLocked() {
	if a.ui.pending != nil && !a.clock.Now().Before(a.ui.pending.readyAt) {
		a.enterLocked(a.ui.pending.to)
	}
}

// Snapshot is the app's state as seen from outside the UI.
type Snapshot struct {
	Launched      bool
	Environment   string
	Animations    bool
	Screen        string
	Transitioning bool
	Authenticated bool
	Basket        []data.Product
	Orders        []data.Order
	Launches      int
	LastLaunch    driver.LaunchConfig
}

// Snapshot returns a copy of the current state.
func (a *App) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.settleLocked()
	return Snapshot{
		Launched:      a.ui.launched,
		Environment:   a.ui.environment,
		Animations:    a.ui.animations,
		Screen:        a.ui.screen,
		Transitioning: a.ui.pending != nil,
		Authenticated: a.store.session != nil,
		Basket:        append([]data.Product(nil), a.store.basket...),
		Orders:        append([]data.Order(nil), a.store.orders...),
		Launches:      a.launches,
		LastLaunch:    a.last,
	}
}

func copyEnv(env map[string]string) map[string]string {
	out := make(map[string]string, len(env))
	for key, value := range env {
		out[key] = value
	}
	return out
}
