package results

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Status indicates outcome for a test or step.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// StepResult captures a single step execution.
type StepResult struct {
	Number    int64             `json:"number"`
	Name      string            `json:"name"`
	Action    string            `json:"action"`
	Status    Status            `json:"status"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time"`
	Duration  time.Duration     `json:"duration"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// AssertionResult captures a single assertion execution.
type AssertionResult struct {
	Name     string        `json:"name"`
	Status   Status        `json:"status"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// TestResult captures a test execution summary.
type TestResult struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Suite       string            `json:"suite,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	Status      Status            `json:"status"`
	Timestamp   time.Time         `json:"timestamp"`
	EndTime     time.Time         `json:"end_time"`
	Duration    time.Duration     `json:"duration"`
	Attempts    int               `json:"attempts,omitempty"`
	Error       string            `json:"error,omitempty"`
	Steps       []StepResult      `json:"steps"`
	Assertions  []AssertionResult `json:"assertions"`
	Artifacts   map[string]string `json:"artifacts,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Requires    []string          `json:"requires,omitempty"`
}

// AddArtifact records an attachment by name.
func (r *TestResult) AddArtifact(name, path string) {
	if r.Artifacts == nil {
		r.Artifacts = make(map[string]string)
	}
	r.Artifacts[name] = path
}

// RunResult captures the overall run summary.
type RunResult struct {
	RunID     string        `json:"run_id"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Tests     []TestResult  `json:"tests"`
}

// Collection accumulates results from concurrently running tests.
type Collection struct {
	mu    sync.Mutex
	tests []TestResult
}

// Add appends a result.
func (c *Collection) Add(result TestResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tests = append(c.tests, result)
}

// Results returns a copy of the collected results in insertion order.
func (c *Collection) Results() []TestResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]TestResult, len(c.tests))
	copy(out, c.tests)
	return out
}

// Clear drops every collected result.
func (c *Collection) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tests = nil
}

// Len returns the number of collected results.
func (c *Collection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tests)
}

// Failure names one failed test and its primary message.
type Failure struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// Summary aggregates a set of results.
type Summary struct {
	Total    int           `json:"total"`
	Passed   int           `json:"passed"`
	Failed   int           `json:"failed"`
	Skipped  int           `json:"skipped"`
	Duration time.Duration `json:"duration"`
	Failures []Failure     `json:"failures,omitempty"`
}

// PassRate is passed over executed tests, in percent.
func (s Summary) PassRate() float64 {
	executed := s.Passed + s.Failed
	if executed == 0 {
		return 0
	}
	return float64(s.Passed) * 100 / float64(executed)
}

// Summarize counts outcomes and collects failures sorted by name.
func Summarize(tests []TestResult) Summary {
	var summary Summary
	for _, test := range tests {
		summary.Total++
		summary.Duration += test.Duration
		switch test.Status {
		case StatusPassed:
			summary.Passed++
		case StatusFailed:
			summary.Failed++
			summary.Failures = append(summary.Failures, Failure{Name: test.Name, Message: test.Error})
		case StatusSkipped:
			summary.Skipped++
		}
	}
	sort.SliceStable(summary.Failures, func(i, j int) bool { return summary.Failures[i].Name < summary.Failures[j].Name })
	return summary
}

// Summary aggregates the collected results.
func (c *Collection) Summary() Summary {
	return Summarize(c.Results())
}

const summaryRule = "=================================================="

// RenderSummary formats s for a console or summary.txt.
func RenderSummary(s Summary) string {
	var b strings.Builder
	fmt.Fprintln(&b, summaryRule)
	fmt.Fprintln(&b, "TEST SUMMARY")
	fmt.Fprintln(&b, summaryRule)
	fmt.Fprintf(&b, "Total:    %d\n", s.Total)
	fmt.Fprintf(&b, "Passed:   %d\n", s.Passed)
	fmt.Fprintf(&b, "Failed:   %d\n", s.Failed)
	fmt.Fprintf(&b, "Skipped:  %d\n", s.Skipped)
	fmt.Fprintf(&b, "Duration: %s\n", s.Duration.Round(time.Millisecond))
	fmt.Fprintf(&b, "Pass rate: %.1f%%\n", s.PassRate())
	if len(s.Failures) > 0 {
		fmt.Fprintln(&b, "--------------------------------------------------")
		fmt.Fprintln(&b, "FAILED TESTS:")
		for _, failure := range s.Failures {
			if failure.Message == "" {
				fmt.Fprintf(&b, "  - %s\n", failure.Name)
				continue
			}
			fmt.Fprintf(&b, "  - %s: %s\n", failure.Name, firstLine(failure.Message))
		}
	}
	fmt.Fprintln(&b, summaryRule)
	return b.String()
}

func firstLine(message string) string {
	if idx := strings.IndexByte(message, '\n'); idx >= 0 {
		return message[:idx]
	}
	return message
}
