// Package driver defines the capability surface the framework consumes from a
// native UI-automation driver. Implementations live in sub-packages.
package driver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var (
	// ErrElementNotFound is returned by actions on an element that does not exist.
	ErrElementNotFound = errors.New("element not found")
	// ErrNotHittable is returned when a gesture targets an element that cannot receive it.
	ErrNotHittable = errors.New("element not hittable")
	// ErrNotLaunched is returned when the application is not running.
	ErrNotLaunched = errors.New("application not launched")
	// ErrNoAlert is returned when an alert action runs while no alert is shown.
	ErrNoAlert = errors.New("no alert displayed")
)

// Direction of a swipe gesture.
type Direction string

const (
	SwipeUp    Direction = "up"
	SwipeDown  Direction = "down"
	SwipeLeft  Direction = "left"
	SwipeRight Direction = "right"
)

// Locator finds an element independently of its visual position. Empty
// fields do not constrain the match; Index selects among multiple matches.
type Locator struct {
	ID    string `json:"id,omitempty" yaml:"id,omitempty"`
	Kind  string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
	Index int    `json:"index,omitempty" yaml:"index,omitempty"`
}

// ByID locates by stable accessibility identifier.
func ByID(id string) Locator {
	return Locator{ID: id}
}

// ByKind locates every element of a kind, e.g. all rows of a list.
func ByKind(kind string) Locator {
	return Locator{Kind: kind}
}

// ByLabel locates by visible label.
func ByLabel(label string) Locator {
	return Locator{Label: label}
}

// At selects the i-th match.
func (l Locator) At(index int) Locator {
	l.Index = index
	return l
}

// WithLabel narrows the locator to a visible label.
func (l Locator) WithLabel(label string) Locator {
	l.Label = label
	return l
}

// IsZero reports whether the locator has no constraints.
func (l Locator) IsZero() bool {
	return l.ID == "" && l.Kind == "" && l.Label == ""
}

func (l Locator) String() string {
	parts := make([]string, 0, 4)
	if l.ID != "" {
		parts = append(parts, "id="+l.ID)
	}
	if l.Kind != "" {
		parts = append(parts, "kind="+l.Kind)
	}
	if l.Label != "" {
		parts = append(parts, fmt.Sprintf("label=%q", l.Label))
	}
	if l.Index > 0 {
		parts = append(parts, fmt.Sprintf("index=%d", l.Index))
	}
	if len(parts) == 0 {
		return "<any>"
	}
	return strings.Join(parts, ",")
}

// LaunchConfig is passed to the application when it is launched.
type LaunchConfig struct {
	Arguments   []string
	Environment map[string]string
}

// Element is a lazily resolved handle: every query re-reads current UI state.
type Element interface {
	Locator() Locator
	Exists() bool
	Enabled() bool
	Hittable() bool
	Selected() bool
	Value() string
	Label() string
	Tap() error
	TypeText(text string) error
	ClearText() error
	Swipe(dir Direction) error
}

// Alert is the platform modal-alert surface.
type Alert interface {
	Exists() bool
	Title() string
	Buttons() []string
	Tap(button string) error
}

// Driver is the native automation capability consumed by the framework.
type Driver interface {
	Launch(ctx context.Context, cfg LaunchConfig) error
	Terminate(ctx context.Context) error
	Find(loc Locator) Element
	FindAll(loc Locator) []Element
	Count(loc Locator) int
	// WaitForExistence blocks until loc exists or timeout elapses.
	WaitForExistence(loc Locator, timeout time.Duration) bool
	Swipe(dir Direction) error
	Screenshot() ([]byte, error)
	Hierarchy() ([]byte, error)
	KeyboardVisible() bool
	DismissKeyboard() error
	Alert() Alert
}

// ActionError attaches the locator and gesture to a driver failure.
func ActionError(err error, action string, loc Locator) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, "%s %s", action, loc)
}

// IsNotFound reports whether err was caused by a missing element.
func IsNotFound(err error) bool {
	return errors.Cause(err) == ErrElementNotFound
}
