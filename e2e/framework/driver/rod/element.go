package rod

import (
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/pkg/errors"

	"github.com/splunk/ui-e2e/e2e/framework/driver"
)

type element struct {
	d   *Driver
	loc driver.Locator
}

func (e *element) Locator() driver.Locator {
	return e.loc
}

func (e *element) resolve() (*rod.Element, bool) {
	els := e.d.query(e.loc)
	if e.loc.Index < 0 || e.loc.Index >= len(els) {
		return nil, false
	}
	return els[e.loc.Index], true
}

func (e *element) evalBool(js string) bool {
	el, ok := e.resolve()
	if !ok {
		return false
	}
	res, err := el.Eval(js)
	return err == nil && res.Value.Bool()
}

func (e *element) evalString(js string) string {
	el, ok := e.resolve()
	if !ok {
		return ""
	}
	res, err := el.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

func (e *element) Exists() bool {
	_, ok := e.resolve()
	return ok
}

func (e *element) Enabled() bool {
	return e.evalBool(`() => !this.disabled && this.getAttribute('aria-disabled') !== 'true'`)
}

func (e *element) Hittable() bool {
	el, ok := e.resolve()
	if !ok {
		return false
	}
	visible, err := el.Visible()
	if err != nil || !visible {
		return false
	}
	_, err = el.Interactable()
	return err == nil
}

func (e *element) Selected() bool {
	return e.evalBool(`() => this.checked === true ||
		this.getAttribute('aria-selected') === 'true' ||
		this.getAttribute('aria-pressed') === 'true'`)
}

func (e *element) Value() string {
	return e.evalString(`() => (typeof this.value === 'string')
		? this.value
		: (this.getAttribute('aria-valuetext') || this.textContent.trim())`)
}

func (e *element) Label() string {
	return e.evalString(`() => this.getAttribute('aria-label') || this.textContent.trim()`)
}

func (e *element) act(action string, f func(*rod.Element) error) error {
	if e.d.currentPage() == nil {
		return driver.ActionError(driver.ErrNotLaunched, action, e.loc)
	}
	el, ok := e.resolve()
	if !ok {
		return driver.ActionError(driver.ErrElementNotFound, action, e.loc)
	}
	e.d.log.V(1).Info(action, "locator", e.loc.String())
	return driver.ActionError(f(el), action, e.loc)
}

func (e *element) Tap() error {
	return e.act("tap", func(el *rod.Element) error {
		if _, err := el.Interactable(); err != nil {
			return errors.Wrap(driver.ErrNotHittable, err.Error())
		}
		return el.Click(proto.InputMouseButtonLeft, 1)
	})
}

func (e *element) TypeText(text string) error {
	return e.act("type into", func(el *rod.Element) error {
		return el.Input(text)
	})
}

func (e *element) ClearText() error {
	return e.act("clear", func(el *rod.Element) error {
		_, err := el.Eval(`() => {
			this.value = '';
			this.dispatchEvent(new Event('input', {bubbles: true}));
		}`)
		return err
	})
}

func (e *element) Swipe(dir driver.Direction) error {
	return e.act("swipe "+string(dir), func(el *rod.Element) error {
		_, err := el.Eval(`(d) => this.dispatchEvent(new CustomEvent('swipe', {detail: d, bubbles: true}))`, string(dir))
		return err
	})
}

type alert struct {
	d *Driver
}

func (a *alert) dialog() (*rod.Element, bool) {
	page := a.d.currentPage()
	if page == nil {
		return nil, false
	}
	has, el, err := page.Has(alertSelector)
	return el, err == nil && has
}

func (a *alert) Exists() bool {
	_, ok := a.dialog()
	return ok
}

func (a *alert) Title() string {
	el, ok := a.dialog()
	if !ok {
		return ""
	}
	res, err := el.Eval(`() => {
		const heading = this.querySelector('h1, h2, [data-role="title"]');
		return this.getAttribute('aria-label') || (heading ? heading.textContent.trim() : '');
	}`)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

func (a *alert) buttons() []*rod.Element {
	page := a.d.currentPage()
	if page == nil {
		return nil
	}
	els, err := page.Elements(alertButtonsSelector)
	if err != nil {
		return nil
	}
	return els
}

func (a *alert) Buttons() []string {
	var labels []string
	for _, el := range a.buttons() {
		text, err := el.Text()
		if err == nil {
			labels = append(labels, text)
		}
	}
	return labels
}

func (a *alert) Tap(label string) error {
	if !a.Exists() {
		return driver.ErrNoAlert
	}
	for _, el := range a.buttons() {
		if text, err := el.Text(); err == nil && text == label {
			return el.Click(proto.InputMouseButtonLeft, 1)
		}
	}
	return driver.ActionError(driver.ErrElementNotFound, "tap alert button", driver.ByLabel(label))
}
