// Package rod drives the web build of the app through the Chrome DevTools
// protocol. Locators map onto data-testid, data-kind and aria-label
// attributes; launch arguments and environment travel as URL query
// parameters.
package rod

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/pkg/errors"

	"github.com/splunk/ui-e2e/e2e/framework/driver"
)

const (
	alertSelector        = `[role="alertdialog"]`
	alertButtonsSelector = `[role="alertdialog"] button`
	defaultPoll          = 100 * time.Millisecond
)

// Options configure the browser session.
type Options struct {
	AppURL       string
	BrowserBin   string
	ControlURL   string
	Headless     bool
	PollInterval time.Duration
	Logger       logr.Logger
}

// Driver implements driver.Driver on top of a rod page.
type Driver struct {
	opts    Options
	log     logr.Logger
	mu      sync.Mutex
	browser *rod.Browser
	page    *rod.Page
	chrome  *launcher.Launcher
}

var _ driver.Driver = (*Driver)(nil)

// New returns a driver; the browser starts on the first Launch.
func New(opts Options) *Driver {
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPoll
	}
	log := opts.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	return &Driver{opts: opts, log: log.WithName("rod")}
}

func (d *Driver) connect(ctx context.Context) error {
	if d.browser != nil {
		return nil
	}
	controlURL := d.opts.ControlURL
	if controlURL == "" {
		l := launcher.New().Headless(d.opts.Headless)
		if d.opts.BrowserBin != "" {
			l = l.Bin(d.opts.BrowserBin)
		}
		u, err := l.Launch()
		if err != nil {
			return errors.Wrap(err, "launch browser")
		}
		d.chrome = l
		controlURL = u
	}
	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return errors.Wrap(err, "connect to browser")
	}
	d.browser = browser.Context(context.Background())
	d.log.V(1).Info("browser connected", "control_url", controlURL)
	return nil
}

// Launch opens the app in a fresh tab.
func (d *Driver) Launch(ctx context.Context, cfg driver.LaunchConfig) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.connect(ctx); err != nil {
		return err
	}
	target, err := AppURL(d.opts.AppURL, cfg)
	if err != nil {
		return err
	}
	if d.page != nil {
		_ = d.page.Close()
		d.page = nil
	}
	page, err := d.browser.Page(proto.TargetCreateTarget{URL: target})
	if err != nil {
		return errors.Wrapf(err, "open %s", target)
	}
	if err := page.Context(ctx).WaitLoad(); err != nil {
		_ = page.Close()
		return errors.Wrap(err, "wait for app load")
	}
	d.page = page
	d.log.Info("app launched", "url", target)
	return nil
}

// Terminate closes the app tab.
func (d *Driver) Terminate(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.page == nil {
		return nil
	}
	err := d.page.Close()
	d.page = nil
	return err
}

// Close shuts the browser down.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	var err error
	if d.browser != nil {
		err = d.browser.Close()
		d.browser = nil
	}
	if d.chrome != nil {
		d.chrome.Kill()
		d.chrome = nil
	}
	d.page = nil
	return err
}

func (d *Driver) currentPage() *rod.Page {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.page
}

func (d *Driver) query(loc driver.Locator) []*rod.Element {
	page := d.currentPage()
	sel := Selector(loc)
	if page == nil || sel == "" {
		return nil
	}
	els, err := page.Elements(sel)
	if err != nil {
		d.log.V(1).Info("query failed", "selector", sel, "error", err.Error())
		return nil
	}
	return els
}

// Find returns a lazy element handle.
func (d *Driver) Find(loc driver.Locator) driver.Element {
	return &element{d: d, loc: loc}
}

// FindAll returns a handle per current match.
func (d *Driver) FindAll(loc driver.Locator) []driver.Element {
	n := len(d.query(loc))
	out := make([]driver.Element, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &element{d: d, loc: loc.At(i)})
	}
	return out
}

// Count returns the number of current matches.
func (d *Driver) Count(loc driver.Locator) int {
	return len(d.query(loc))
}

// WaitForExistence uses rod's element wait for the first match and polls
// for indexed locators.
func (d *Driver) WaitForExistence(loc driver.Locator, timeout time.Duration) bool {
	page := d.currentPage()
	sel := Selector(loc)
	if page == nil || sel == "" || timeout <= 0 {
		return false
	}
	if loc.Index == 0 {
		_, err := page.Timeout(timeout).Element(sel)
		return err == nil
	}
	deadline := time.Now().Add(timeout)
	for {
		if len(d.query(loc)) > loc.Index {
			return true
		}
		if !time.Now().Before(deadline) {
			return false
		}
		time.Sleep(min(d.opts.PollInterval, time.Until(deadline)))
	}
}

// Swipe scrolls the page and notifies the app of the gesture.
func (d *Driver) Swipe(dir driver.Direction) error {
	page := d.currentPage()
	if page == nil {
		return driver.ErrNotLaunched
	}
	_, err := page.Eval(`(d) => {
		const step = window.innerHeight / 2;
		if (d === 'up') window.scrollBy(0, step);
		if (d === 'down') window.scrollBy(0, -step);
		document.dispatchEvent(new CustomEvent('swipe', {detail: d}));
	}`, string(dir))
	return errors.Wrapf(err, "swipe %s", dir)
}

// Screenshot captures the viewport as PNG.
func (d *Driver) Screenshot() ([]byte, error) {
	page := d.currentPage()
	if page == nil {
		return nil, driver.ErrNotLaunched
	}
	return page.Screenshot(false, nil)
}

// Hierarchy returns the page HTML.
func (d *Driver) Hierarchy() ([]byte, error) {
	page := d.currentPage()
	if page == nil {
		return nil, driver.ErrNotLaunched
	}
	html, err := page.HTML()
	if err != nil {
		return nil, err
	}
	return []byte(html), nil
}

// KeyboardVisible reports whether a text input has focus, the web
// equivalent of an on-screen keyboard.
func (d *Driver) KeyboardVisible() bool {
	page := d.currentPage()
	if page == nil {
		return false
	}
	res, err := page.Eval(`() => {
		const el = document.activeElement;
		return !!el && (el.tagName === 'INPUT' || el.tagName === 'TEXTAREA' || el.isContentEditable);
	}`)
	return err == nil && res.Value.Bool()
}

// DismissKeyboard blurs the focused input.
func (d *Driver) DismissKeyboard() error {
	page := d.currentPage()
	if page == nil {
		return driver.ErrNotLaunched
	}
	_, err := page.Eval(`() => document.activeElement && document.activeElement.blur()`)
	return err
}

// Alert returns the role="alertdialog" surface.
func (d *Driver) Alert() driver.Alert {
	return &alert{d: d}
}

// Selector translates a locator into a compound CSS selector. An empty
// locator yields "".
func Selector(loc driver.Locator) string {
	var b strings.Builder
	if loc.ID != "" {
		fmt.Fprintf(&b, `[data-testid=%s]`, cssString(loc.ID))
	}
	if loc.Kind != "" {
		fmt.Fprintf(&b, `[data-kind=%s]`, cssString(loc.Kind))
	}
	if loc.Label != "" {
		fmt.Fprintf(&b, `[aria-label=%s]`, cssString(loc.Label))
	}
	return b.String()
}

func cssString(value string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(value) + `"`
}

// AppURL appends launch arguments as repeated "arg" parameters and launch
// environment as "env.<KEY>" parameters.
func AppURL(base string, cfg driver.LaunchConfig) (string, error) {
	if strings.TrimSpace(base) == "" {
		return "", fmt.Errorf("app url is required")
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", errors.Wrapf(err, "parse app url %q", base)
	}
	q := u.Query()
	for _, arg := range cfg.Arguments {
		q.Add("arg", arg)
	}
	for key, value := range cfg.Environment {
		q.Set("env."+key, value)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
