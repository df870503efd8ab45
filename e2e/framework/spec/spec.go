package spec

import (
	"fmt"
	"strings"
)

// Phase is the Given/When/Then section a step belongs to.
type Phase string

const (
	PhaseGiven Phase = "given"
	PhaseWhen  Phase = "when"
	PhaseThen  Phase = "then"
)

// TestSpec describes a single UI scenario.
type TestSpec struct {
	APIVersion string            `json:"apiVersion" yaml:"apiVersion"`
	Kind       string            `json:"kind" yaml:"kind"`
	Metadata   Metadata          `json:"metadata" yaml:"metadata"`
	Launch     LaunchSpec        `json:"launch,omitempty" yaml:"launch,omitempty"`
	Params     map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
	Given      []StepSpec        `json:"given,omitempty" yaml:"given,omitempty"`
	When       []StepSpec        `json:"when,omitempty" yaml:"when,omitempty"`
	Then       []StepSpec        `json:"then,omitempty" yaml:"then,omitempty"`
	// RequiresEnvironment skips the scenario unless the run targets one of
	// the listed environments.
	RequiresEnvironment []string      `json:"requires_environment,omitempty" yaml:"requires_environment,omitempty"`
	Timeout             string        `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	Retries             int           `json:"retries,omitempty" yaml:"retries,omitempty"`
	Variants            []VariantSpec `json:"variants,omitempty" yaml:"variants,omitempty"`
}

// Metadata captures human-readable scenario metadata.
type Metadata struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Owner       string   `json:"owner,omitempty" yaml:"owner,omitempty"`
	Suite       string   `json:"suite,omitempty" yaml:"suite,omitempty"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// LaunchSpec adds launch arguments and environment on top of the defaults.
type LaunchSpec struct {
	Arguments   []string          `json:"arguments,omitempty" yaml:"arguments,omitempty"`
	Environment map[string]string `json:"environment,omitempty" yaml:"environment,omitempty"`
}

// StepSpec defines a scenario step.
type StepSpec struct {
	Name   string                 `json:"name" yaml:"name"`
	Action string                 `json:"action" yaml:"action"`
	With   map[string]interface{} `json:"with,omitempty" yaml:"with,omitempty"`
	Phase  Phase                  `json:"-" yaml:"-"`
}

// Title is the step name, falling back to the action.
func (s StepSpec) Title() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Action
}

// VariantSpec defines a scenario variant derived from a base spec.
type VariantSpec struct {
	Name          string            `json:"name,omitempty" yaml:"name,omitempty"`
	NameSuffix    string            `json:"name_suffix,omitempty" yaml:"name_suffix,omitempty"`
	Tags          []string          `json:"tags,omitempty" yaml:"tags,omitempty"`
	Params        map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
	StepOverrides []StepOverride    `json:"step_overrides,omitempty" yaml:"step_overrides,omitempty"`
}

// StepOverride updates a single step in a variant. Steps that do not exist
// yet are appended to Phase, "then" by default.
type StepOverride struct {
	Name    string                 `json:"name" yaml:"name"`
	Action  string                 `json:"action,omitempty" yaml:"action,omitempty"`
	With    map[string]interface{} `json:"with,omitempty" yaml:"with,omitempty"`
	Phase   Phase                  `json:"phase,omitempty" yaml:"phase,omitempty"`
	Replace bool                   `json:"replace,omitempty" yaml:"replace,omitempty"`
}

// Steps returns every step in Given, When, Then order with its phase set.
func (s TestSpec) Steps() []StepSpec {
	out := make([]StepSpec, 0, len(s.Given)+len(s.When)+len(s.Then))
	for _, section := range []struct {
		phase Phase
		steps []StepSpec
	}{{PhaseGiven, s.Given}, {PhaseWhen, s.When}, {PhaseThen, s.Then}} {
		for _, step := range section.steps {
			step.Phase = section.phase
			out = append(out, step)
		}
	}
	return out
}

// Validate reports structural problems before anything is launched.
func (s TestSpec) Validate() error {
	if strings.TrimSpace(s.Metadata.Name) == "" {
		return fmt.Errorf("spec has no name")
	}
	steps := s.Steps()
	if len(steps) == 0 {
		return fmt.Errorf("spec %s has no steps", s.Metadata.Name)
	}
	for i, step := range steps {
		if strings.TrimSpace(step.Action) == "" {
			return fmt.Errorf("spec %s: %s step %d has no action", s.Metadata.Name, step.Phase, i+1)
		}
	}
	if s.Retries < 0 {
		return fmt.Errorf("spec %s: retries must not be negative", s.Metadata.Name)
	}
	return nil
}

// MatchesTags returns true if the test is allowed by include/exclude tags.
func (s TestSpec) MatchesTags(include []string, exclude []string) bool {
	if len(include) == 0 && len(exclude) == 0 {
		return true
	}
	for _, tag := range exclude {
		for _, existing := range s.Metadata.Tags {
			if strings.EqualFold(tag, existing) {
				return false
			}
		}
	}
	if len(include) == 0 {
		return true
	}
	for _, tag := range include {
		for _, existing := range s.Metadata.Tags {
			if strings.EqualFold(tag, existing) {
				return true
			}
		}
	}
	return false
}

// MatchesSuite reports whether the scenario belongs to suite. An empty
// suite selects everything.
func (s TestSpec) MatchesSuite(suite string) bool {
	suite = strings.TrimSpace(suite)
	return suite == "" || strings.EqualFold(suite, s.Metadata.Suite)
}

// SupportsEnvironment reports whether the scenario may run against env.
func (s TestSpec) SupportsEnvironment(env string) bool {
	if len(s.RequiresEnvironment) == 0 {
		return true
	}
	for _, required := range s.RequiresEnvironment {
		if strings.EqualFold(strings.TrimSpace(required), env) {
			return true
		}
	}
	return false
}
