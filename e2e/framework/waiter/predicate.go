package waiter

import (
	"fmt"
	"strings"

	"github.com/splunk/ui-e2e/e2e/framework/driver"
)

// Predicate is a named boolean query over an element's observable state.
type Predicate struct {
	Name string
	Eval func(driver.Element) bool
}

func (p Predicate) String() string {
	return p.Name
}

var (
	Exists    = Predicate{Name: "exists", Eval: func(e driver.Element) bool { return e.Exists() }}
	NotExists = Predicate{Name: "not exists", Eval: func(e driver.Element) bool { return !e.Exists() }}
	Enabled   = Predicate{Name: "enabled", Eval: func(e driver.Element) bool { return e.Exists() && e.Enabled() }}
	Disabled  = Predicate{Name: "disabled", Eval: func(e driver.Element) bool { return e.Exists() && !e.Enabled() }}
	Hittable  = Predicate{Name: "hittable", Eval: func(e driver.Element) bool { return e.Exists() && e.Hittable() }}
	Selected  = Predicate{Name: "selected", Eval: func(e driver.Element) bool { return e.Exists() && e.Selected() }}
)

// ValueEquals matches an element whose value is exactly value.
func ValueEquals(value string) Predicate {
	return Predicate{
		Name: fmt.Sprintf("value == %q", value),
		Eval: func(e driver.Element) bool { return e.Exists() && e.Value() == value },
	}
}

// LabelEquals matches an element whose label is exactly label.
func LabelEquals(label string) Predicate {
	return Predicate{
		Name: fmt.Sprintf("label == %q", label),
		Eval: func(e driver.Element) bool { return e.Exists() && e.Label() == label },
	}
}

// LabelContains matches an element whose label contains substr.
func LabelContains(substr string) Predicate {
	return Predicate{
		Name: fmt.Sprintf("label contains %q", substr),
		Eval: func(e driver.Element) bool { return e.Exists() && strings.Contains(e.Label(), substr) },
	}
}

// CountMode selects exact or minimum count matching.
type CountMode int

const (
	CountExact CountMode = iota
	CountAtLeast
)

// CountMatch compares a collection size against a target.
type CountMatch struct {
	Mode   CountMode
	Target int
}

// Exactly matches a count equal to n.
func Exactly(n int) CountMatch {
	return CountMatch{Mode: CountExact, Target: n}
}

// AtLeast matches a count of n or more.
func AtLeast(n int) CountMatch {
	return CountMatch{Mode: CountAtLeast, Target: n}
}

// Matches reports whether count satisfies the match.
func (m CountMatch) Matches(count int) bool {
	if m.Mode == CountAtLeast {
		return count >= m.Target
	}
	return count == m.Target
}

func (m CountMatch) String() string {
	if m.Mode == CountAtLeast {
		return fmt.Sprintf(">= %d", m.Target)
	}
	return fmt.Sprintf("== %d", m.Target)
}
