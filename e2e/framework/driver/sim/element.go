package sim

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"time"

	"github.com/pkg/errors"

	"github.com/splunk/ui-e2e/e2e/framework/driver"
)

func matches(n node, loc driver.Locator) bool {
	if loc.ID != "" && n.ID != loc.ID {
		return false
	}
	if loc.Kind != "" && n.Kind != loc.Kind {
		return false
	}
	if loc.Label != "" && n.Label != loc.Label {
		return false
	}
	return true
}

func (a *App) allLocked(loc driver.Locator) []node {
	if loc.IsZero() {
		return nil
	}
	var out []node
	for _, n := range a.nodesLocked() {
		if matches(n, loc) {
			out = append(out, n)
		}
	}
	return out
}

func (a *App) resolveLocked(loc driver.Locator) (node, bool) {
	all := a.allLocked(loc)
	if loc.Index < 0 || loc.Index >= len(all) {
		return node{}, false
	}
	return all[loc.Index], true
}

// Find returns a lazy handle; nothing is resolved until it is queried.
func (a *App) Find(loc driver.Locator) driver.Element {
	return &element{app: a, loc: loc}
}

// FindAll returns a handle per current match.
func (a *App) FindAll(loc driver.Locator) []driver.Element {
	count := a.Count(loc)
	out := make([]driver.Element, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, &element{app: a, loc: loc.At(i)})
	}
	return out
}

// Count returns the number of current matches.
func (a *App) Count(loc driver.Locator) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.allLocked(loc))
}

// WaitForExistence polls on the app clock. The lock is released while
// sleeping so the clock can advance pending transitions.
func (a *App) WaitForExistence(loc driver.Locator, timeout time.Duration) bool {
	deadline := a.clock.Now().Add(timeout)
	for {
		if a.exists(loc) {
			return true
		}
		remaining := deadline.Sub(a.clock.Now())
		if remaining <= 0 {
			return false
		}
		a.clock.Sleep(min(remaining, a.opts.PollInterval))
	}
}

func (a *App) exists(loc driver.Locator) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.resolveLocked(loc)
	return ok
}

// Swipe performs a full-screen gesture. On the catalog it scrolls the list.
func (a *App) Swipe(dir driver.Direction) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.ui.launched {
		return driver.ErrNotLaunched
	}
	a.settleLocked()
	a.scrollLocked(dir)
	return nil
}

// KeyboardVisible reports whether a text input has focus.
func (a *App) KeyboardVisible() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ui.launched && a.ui.focused != ""
}

// DismissKeyboard drops text focus.
func (a *App) DismissKeyboard() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.ui.launched {
		return driver.ErrNotLaunched
	}
	a.ui.focused = ""
	return nil
}

// Alert returns the modal alert surface.
func (a *App) Alert() driver.Alert {
	return alert{app: a}
}

type hierarchy struct {
	Screen        string  `json:"screen"`
	Transitioning bool    `json:"transitioning,omitempty"`
	Alert         *string `json:"alert,omitempty"`
	Nodes         []node  `json:"nodes"`
}

// Hierarchy returns the visible tree as JSON.
func (a *App) Hierarchy() ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.ui.launched {
		return nil, driver.ErrNotLaunched
	}
	h := hierarchy{Screen: a.ui.screen, Nodes: a.nodesLocked(), Transitioning: a.ui.pending != nil}
	if a.ui.alert != nil {
		h.Alert = &a.ui.alert.title
	}
	return json.MarshalIndent(h, "", "  ")
}

var kindColors = map[string]color.RGBA{
	KindButton:    {R: 0x2f, G: 0x6f, B: 0xeb, A: 0xff},
	KindText:      {R: 0x33, G: 0x33, B: 0x33, A: 0xff},
	KindTextField: {R: 0xdd, G: 0xdd, B: 0xdd, A: 0xff},
	KindSecure:    {R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff},
	KindDrinkCell: {R: 0x8b, G: 0x5a, B: 0x2b, A: 0xff},
	KindBasketRow: {R: 0xa0, G: 0x70, B: 0x40, A: 0xff},
}

const (
	shotWidth = 390
	rowHeight = 24
)

// Screenshot renders one band per visible element. Disabled and unhittable
// elements are drawn faded.
func (a *App) Screenshot() ([]byte, error) {
	a.mu.Lock()
	if a.opts.FailScreenshots {
		a.mu.Unlock()
		return nil, ErrScreenshotFailed
	}
	if !a.ui.launched {
		a.mu.Unlock()
		return nil, driver.ErrNotLaunched
	}
	nodes := a.nodesLocked()
	a.mu.Unlock()

	img := image.NewRGBA(image.Rect(0, 0, shotWidth, rowHeight*(len(nodes)+1)))
	for i, n := range nodes {
		c, ok := kindColors[n.Kind]
		if !ok {
			c = color.RGBA{R: 0x99, G: 0x99, B: 0x99, A: 0xff}
		}
		if !n.Enabled || !n.Hittable {
			c.A = 0x60
		}
		for y := (i + 1) * rowHeight; y < (i+2)*rowHeight-2; y++ {
			for x := 8; x < shotWidth-8; x++ {
				img.SetRGBA(x, y, c)
			}
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ErrScreenshotFailed is returned when Options.FailScreenshots is set.
var ErrScreenshotFailed = errors.New("screenshot capture failed")

type element struct {
	app *App
	loc driver.Locator
}

func (e *element) Locator() driver.Locator {
	return e.loc
}

func (e *element) read(f func(node) bool) bool {
	e.app.mu.Lock()
	defer e.app.mu.Unlock()
	n, ok := e.app.resolveLocked(e.loc)
	return ok && f(n)
}

func (e *element) text(f func(node) string) string {
	e.app.mu.Lock()
	defer e.app.mu.Unlock()
	n, ok := e.app.resolveLocked(e.loc)
	if !ok {
		return ""
	}
	return f(n)
}

func (e *element) Exists() bool   { return e.read(func(node) bool { return true }) }
func (e *element) Enabled() bool  { return e.read(func(n node) bool { return n.Enabled }) }
func (e *element) Hittable() bool { return e.read(func(n node) bool { return n.Hittable }) }
func (e *element) Selected() bool { return e.read(func(n node) bool { return n.Selected }) }
func (e *element) Value() string  { return e.text(func(n node) string { return n.Value }) }
func (e *element) Label() string  { return e.text(func(n node) string { return n.Label }) }

func (e *element) act(action string, f func(node) error) error {
	e.app.mu.Lock()
	defer e.app.mu.Unlock()
	if !e.app.ui.launched {
		return driver.ActionError(driver.ErrNotLaunched, action, e.loc)
	}
	n, ok := e.app.resolveLocked(e.loc)
	if !ok {
		return driver.ActionError(driver.ErrElementNotFound, action, e.loc)
	}
	return driver.ActionError(f(n), action, e.loc)
}

func (e *element) Tap() error {
	return e.act("tap", e.app.tapLocked)
}

func (e *element) TypeText(value string) error {
	return e.act("type into", func(n node) error { return e.app.typeLocked(n, value) })
}

func (e *element) ClearText() error {
	return e.act("clear", e.app.clearLocked)
}

func (e *element) Swipe(dir driver.Direction) error {
	return e.act("swipe "+string(dir), func(n node) error { return e.app.swipeElementLocked(n, dir) })
}

type alert struct {
	app *App
}

func (al alert) current() *alertState {
	al.app.mu.Lock()
	defer al.app.mu.Unlock()
	if !al.app.ui.launched {
		return nil
	}
	return al.app.ui.alert
}

func (al alert) Exists() bool {
	return al.current() != nil
}

func (al alert) Title() string {
	if s := al.current(); s != nil {
		return s.title
	}
	return ""
}

func (al alert) Message() string {
	if s := al.current(); s != nil {
		return s.message
	}
	return ""
}

func (al alert) Buttons() []string {
	if s := al.current(); s != nil {
		return append([]string(nil), s.buttons...)
	}
	return nil
}

func (al alert) Tap(label string) error {
	al.app.mu.Lock()
	defer al.app.mu.Unlock()
	if !al.app.ui.launched {
		return driver.ErrNotLaunched
	}
	return al.app.tapAlertLocked(label)
}
