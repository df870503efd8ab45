package lifecycle

import (
	"sync"

	"github.com/splunk/ui-e2e/e2e/framework/assertions"
	"github.com/splunk/ui-e2e/e2e/framework/results"
)

// ScenarioT is a T for code running outside `go test`. FailNow unwinds to
// the nearest Run and cleanups run on Finish, last registered first.
type ScenarioT struct {
	assertions.Recorder
	name string

	mu        sync.Mutex
	cleanups  []func()
	discarded bool
	result    *results.TestResult
}

// NewScenarioT returns a ScenarioT reporting name.
func NewScenarioT(name string) *ScenarioT {
	return &ScenarioT{name: name}
}

// Name returns the scenario name.
func (t *ScenarioT) Name() string {
	return t.name
}

// Cleanup registers fn to run on Finish.
func (t *ScenarioT) Cleanup(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cleanups = append(t.cleanups, fn)
}

// Discard keeps the outcome of this attempt out of the suite results. Call
// it before Finish.
func (t *ScenarioT) Discard() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.discarded = true
}

// Result returns the result the case recorded at teardown, if any.
func (t *ScenarioT) Result() (results.TestResult, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.result == nil {
		return results.TestResult{}, false
	}
	return *t.result, true
}

func (t *ScenarioT) record(result results.TestResult) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.result = &result
	return !t.discarded
}

// Finish runs the registered cleanups once and reports whether the
// scenario failed.
func (t *ScenarioT) Finish() bool {
	t.mu.Lock()
	cleanups := t.cleanups
	t.cleanups = nil
	t.mu.Unlock()
	for i := len(cleanups) - 1; i >= 0; i-- {
		t.Run(cleanups[i])
	}
	return t.Failed()
}
