package assertions

import (
	"fmt"
	"strings"

	"github.com/splunk/ui-e2e/e2e/framework/driver"
)

// Exists asserts loc appears within the default timeout.
func (a *Asserter) Exists(loc driver.Locator, opts ...CallOption) bool {
	a.helper()
	el := a.driver.Find(loc)
	return a.check(loc, probe{
		name:     "exists",
		expected: "present",
		observe: func() (string, bool) {
			ok := el.Exists()
			return presence(ok), ok
		},
	}, a.cfg.DefaultTimeout, opts)
}

// NotExists asserts loc disappears within the default timeout.
func (a *Asserter) NotExists(loc driver.Locator, opts ...CallOption) bool {
	a.helper()
	el := a.driver.Find(loc)
	return a.check(loc, probe{
		name:     "notExists",
		expected: "absent",
		observe: func() (string, bool) {
			ok := el.Exists()
			return presence(ok), !ok
		},
	}, a.cfg.DefaultTimeout, opts)
}

// IsVisible asserts loc exists and can receive a tap.
func (a *Asserter) IsVisible(loc driver.Locator, opts ...CallOption) bool {
	a.helper()
	el := a.driver.Find(loc)
	return a.check(loc, probe{
		name:     "isVisible",
		expected: "visible",
		observe: func() (string, bool) {
			switch {
			case !el.Exists():
				return "absent", false
			case !el.Hittable():
				return "present but not hittable", false
			default:
				return "visible", true
			}
		},
	}, a.cfg.DefaultTimeout, opts)
}

func (a *Asserter) flag(loc driver.Locator, name, want, other string, read func(driver.Element) bool, wantValue bool, opts []CallOption) bool {
	a.helper()
	el := a.driver.Find(loc)
	return a.check(loc, probe{
		name:     name,
		expected: want,
		observe: func() (string, bool) {
			if !el.Exists() {
				return "absent", false
			}
			if read(el) == wantValue {
				return want, true
			}
			return other, false
		},
	}, a.cfg.ShortTimeout, opts)
}

// IsEnabled asserts loc exists and is enabled.
func (a *Asserter) IsEnabled(loc driver.Locator, opts ...CallOption) bool {
	a.helper()
	return a.flag(loc, "isEnabled", "enabled", "disabled", driver.Element.Enabled, true, opts)
}

// IsDisabled asserts loc exists and is disabled.
func (a *Asserter) IsDisabled(loc driver.Locator, opts ...CallOption) bool {
	a.helper()
	return a.flag(loc, "isDisabled", "disabled", "enabled", driver.Element.Enabled, false, opts)
}

// IsSelected asserts loc exists and is selected.
func (a *Asserter) IsSelected(loc driver.Locator, opts ...CallOption) bool {
	a.helper()
	return a.flag(loc, "isSelected", "selected", "not selected", driver.Element.Selected, true, opts)
}

func (a *Asserter) text(loc driver.Locator, name, expected string, read func(driver.Element) string, match func(string) bool, opts []CallOption) bool {
	a.helper()
	el := a.driver.Find(loc)
	return a.check(loc, probe{
		name:     name,
		expected: expected,
		observe: func() (string, bool) {
			if !el.Exists() {
				return "absent", false
			}
			value := read(el)
			return fmt.Sprintf("%q", value), match(value)
		},
	}, a.cfg.ShortTimeout, opts)
}

// HasLabel asserts the label equals label exactly.
func (a *Asserter) HasLabel(loc driver.Locator, label string, opts ...CallOption) bool {
	a.helper()
	return a.text(loc, "hasLabel", fmt.Sprintf("label %q", label), driver.Element.Label,
		func(v string) bool { return v == label }, opts)
}

// LabelContains asserts the label contains substr.
func (a *Asserter) LabelContains(loc driver.Locator, substr string, opts ...CallOption) bool {
	a.helper()
	return a.text(loc, "labelContains", fmt.Sprintf("label containing %q", substr), driver.Element.Label,
		func(v string) bool { return strings.Contains(v, substr) }, opts)
}

// HasValue asserts the value equals value exactly.
func (a *Asserter) HasValue(loc driver.Locator, value string, opts ...CallOption) bool {
	a.helper()
	return a.text(loc, "hasValue", fmt.Sprintf("value %q", value), driver.Element.Value,
		func(v string) bool { return v == value }, opts)
}

// IsEmpty asserts the value is empty.
func (a *Asserter) IsEmpty(loc driver.Locator, opts ...CallOption) bool {
	a.helper()
	return a.text(loc, "isEmpty", "empty value", driver.Element.Value,
		func(v string) bool { return v == "" }, opts)
}

// IsNotEmpty asserts the value is not empty.
func (a *Asserter) IsNotEmpty(loc driver.Locator, opts ...CallOption) bool {
	a.helper()
	return a.text(loc, "isNotEmpty", "non-empty value", driver.Element.Value,
		func(v string) bool { return v != "" }, opts)
}

func (a *Asserter) count(query driver.Locator, name, expected string, match func(int) bool, opts []CallOption) bool {
	a.helper()
	return a.check(query, probe{
		name:     name,
		expected: expected,
		observe: func() (string, bool) {
			n := a.driver.Count(query)
			return fmt.Sprintf("count %d", n), match(n)
		},
	}, a.cfg.DefaultTimeout, opts)
}

// Count asserts exactly n elements match query.
func (a *Asserter) Count(query driver.Locator, n int, opts ...CallOption) bool {
	a.helper()
	return a.count(query, "count", fmt.Sprintf("count %d", n), func(got int) bool { return got == n }, opts)
}

// CountAtLeast asserts at least n elements match query.
func (a *Asserter) CountAtLeast(query driver.Locator, n int, opts ...CallOption) bool {
	a.helper()
	return a.count(query, "countAtLeast", fmt.Sprintf("count >= %d", n), func(got int) bool { return got >= n }, opts)
}
