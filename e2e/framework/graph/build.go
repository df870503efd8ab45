package graph

import (
	"strings"

	"github.com/splunk/ui-e2e/e2e/framework/results"
)

// Node types.
const (
	TypeRun     = "run"
	TypeTest    = "test"
	TypeStep    = "step"
	TypeScreen  = "screen"
	TypeTag     = "tag"
	TypeFailure = "failure"
)

// Edge types.
const (
	EdgeContains   = "CONTAINS"
	EdgeHasStep    = "HAS_STEP"
	EdgeOnScreen   = "ON_SCREEN"
	EdgeTagged     = "TAGGED"
	EdgeFailedWith = "FAILED_WITH"
)

// FromRun builds the graph for run. Steps that reported a screen in their
// metadata link to a shared screen node; failed tests link to the category
// of their first error.
func FromRun(run results.RunResult) *Graph {
	g := &Graph{}
	runID := "run:" + run.RunID
	g.AddNode(Node{ID: runID, Type: TypeRun, Label: run.RunID, Attributes: map[string]any{
		"start_time": run.StartTime,
		"duration":   run.Duration.String(),
	}})

	for _, test := range run.Tests {
		testID := "test:" + test.Name
		g.AddNode(Node{ID: testID, Type: TypeTest, Label: test.Name, Attributes: map[string]any{
			"status":   string(test.Status),
			"suite":    test.Suite,
			"attempts": test.Attempts,
			"duration": test.Duration.String(),
		}})
		g.AddEdge(Edge{From: runID, To: testID, Type: EdgeContains})

		for _, tag := range test.Tags {
			tagID := "tag:" + tag
			g.AddNode(Node{ID: tagID, Type: TypeTag, Label: tag})
			g.AddEdge(Edge{From: testID, To: tagID, Type: EdgeTagged})
		}

		for i, step := range test.Steps {
			stepID := testID + "/step:" + step.Name
			attrs := map[string]any{"status": string(step.Status), "action": step.Action, "order": i + 1}
			if step.Error != "" {
				attrs["error"] = step.Error
			}
			g.AddNode(Node{ID: stepID, Type: TypeStep, Label: step.Name, Attributes: attrs})
			g.AddEdge(Edge{From: testID, To: stepID, Type: EdgeHasStep})
			if screen := step.Metadata["screen"]; screen != "" {
				screenID := "screen:" + screen
				g.AddNode(Node{ID: screenID, Type: TypeScreen, Label: screen})
				g.AddEdge(Edge{From: stepID, To: screenID, Type: EdgeOnScreen})
			}
		}

		if test.Status == results.StatusFailed {
			category := CategorizeError(test.Error)
			failureID := "failure:" + category
			g.AddNode(Node{ID: failureID, Type: TypeFailure, Label: category})
			g.AddEdge(Edge{From: testID, To: failureID, Type: EdgeFailedWith, Attributes: map[string]any{
				"error": test.Error,
			}})
		}
	}
	return g
}

var errorCategories = []struct {
	category string
	patterns []string
}{
	{"LaunchError", []string{"launch app", "create driver", "not launched"}},
	{"ElementNotFound", []string{"not found", "does not exist", "to exist"}},
	{"NavigationError", []string{"landed on", "neither", "expected screen"}},
	{"LabelMismatch", []string{"label", "value"}},
	{"StateMismatch", []string{"enabled", "disabled", "selected", "visible", "count"}},
	{"Timeout", []string{"timed out", "timeout", "deadline exceeded"}},
	{"StepError", []string{"no handler registered", "step"}},
}

// CategorizeError maps a failure message to a coarse category.
func CategorizeError(message string) string {
	lower := strings.ToLower(message)
	for _, c := range errorCategories {
		for _, p := range c.patterns {
			if strings.Contains(lower, p) {
				return c.category
			}
		}
	}
	return "Unknown"
}
