package assertions

import (
	"fmt"
	"strings"
	"sync"
)

// failNow is the panic value Recorder.FailNow unwinds with.
type failNow struct{}

// Recorder is a TestingT for code that runs outside `go test`, such as the
// scenario runner. FailNow unwinds to the nearest Run.
type Recorder struct {
	mu     sync.Mutex
	errors []string
	failed bool
}

// Errorf records a failure message.
func (r *Recorder) Errorf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
	r.failed = true
}

// FailNow marks the recorder failed and unwinds to Run.
func (r *Recorder) FailNow() {
	r.mu.Lock()
	r.failed = true
	r.mu.Unlock()
	panic(failNow{})
}

// Helper satisfies the testing helper hook.
func (r *Recorder) Helper() {}

// Failed reports whether any failure was recorded.
func (r *Recorder) Failed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failed
}

// Errors returns the recorded messages.
func (r *Recorder) Errors() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.errors...)
}

// Message joins the recorded messages.
func (r *Recorder) Message() string {
	return strings.Join(r.Errors(), "; ")
}

// Run calls fn and stops at the first FailNow. Other panics propagate.
func (r *Recorder) Run(fn func()) (failed bool) {
	defer func() {
		if v := recover(); v != nil {
			if _, ok := v.(failNow); !ok {
				panic(v)
			}
		}
		failed = r.Failed()
	}()
	fn()
	return r.Failed()
}

// IsFailNow reports whether a recovered panic value came from FailNow.
func IsFailNow(v any) bool {
	_, ok := v.(failNow)
	return ok
}
