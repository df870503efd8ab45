package graph_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splunk/ui-e2e/e2e/framework/graph"
	"github.com/splunk/ui-e2e/e2e/framework/results"
)

func sampleRun() results.RunResult {
	start := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	return results.RunResult{
		RunID:     "run-7",
		StartTime: start,
		EndTime:   start.Add(time.Minute),
		Duration:  time.Minute,
		Tests: []results.TestResult{
			{
				Name:   "basket holds requested drinks-two",
				Status: results.StatusPassed,
				Tags:   []string{"smoke", "basket"},
				Steps: []results.StepResult{
					{Name: "app is launched", Action: "given.app_launched", Status: results.StatusPassed, Metadata: map[string]string{"screen": "Catalog"}},
					{Name: "basket shows two", Action: "then.basket_count", Status: results.StatusPassed, Metadata: map[string]string{"screen": "Basket"}},
				},
			},
			{
				Name:   "wrong password is rejected",
				Status: results.StatusFailed,
				Tags:   []string{"smoke"},
				Error:  `expected element #login.errorLabel to exist within 10s`,
				Steps: []results.StepResult{
					{Name: "app is launched", Action: "given.app_launched", Status: results.StatusPassed, Metadata: map[string]string{"screen": "Catalog"}},
					{Name: "login rejected", Action: "when.login_rejected", Status: results.StatusFailed, Error: "timed out"},
				},
			},
		},
	}
}

func TestFromRunBuildsNodesAndEdges(t *testing.T) {
	g := graph.FromRun(sampleRun())

	run, ok := g.Node("run:run-7")
	require.True(t, ok)
	assert.Equal(t, graph.TypeRun, run.Type)
	assert.Len(t, g.EdgesFrom("run:run-7", graph.EdgeContains), 2)

	passed := "test:basket holds requested drinks-two"
	assert.Len(t, g.EdgesFrom(passed, graph.EdgeHasStep), 2)
	assert.Len(t, g.EdgesFrom(passed, graph.EdgeTagged), 2)
	assert.Empty(t, g.EdgesFrom(passed, graph.EdgeFailedWith))

	catalogs := 0
	for _, n := range g.Nodes {
		if n.ID == "screen:Catalog" {
			catalogs++
		}
	}
	assert.Equal(t, 1, catalogs, "screens are shared")

	failed := g.EdgesFrom("test:wrong password is rejected", graph.EdgeFailedWith)
	require.Len(t, failed, 1)
	assert.Equal(t, "failure:ElementNotFound", failed[0].To)
}

func TestGraphSerializes(t *testing.T) {
	payload, err := json.Marshal(graph.FromRun(sampleRun()))
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"type":"HAS_STEP"`)
	assert.NotContains(t, string(payload), "index")
}

func TestCategorizeError(t *testing.T) {
	cases := map[string]string{
		"launch app: connection refused":                 "LaunchError",
		`expected label "Coffee Menu", got "Tea"`:        "LabelMismatch",
		"expected Basket after tapping, landed on Login": "NavigationError",
		`no handler registered for action "when.dance"`:  "StepError",
		"context deadline exceeded":                      "Timeout",
		"something odd":                                  "Unknown",
	}
	for message, want := range cases {
		assert.Equal(t, want, graph.CategorizeError(message), message)
	}
}

func TestRenderPlantUML(t *testing.T) {
	out := graph.RenderPlantUML(graph.FromRun(sampleRun()))
	assert.True(t, strings.HasPrefix(out, "@startuml\n"))
	assert.True(t, strings.HasSuffix(out, "@enduml\n"))
	assert.Contains(t, out, "title UI run run-7")
	assert.Contains(t, out, "#LightCoral")
	assert.Contains(t, out, "ElementNotFound")
	assert.Contains(t, out, "-->")

	empty := graph.RenderPlantUML(&graph.Graph{})
	assert.Contains(t, empty, "No tests recorded")
}
