package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/splunk/ui-e2e/e2e/framework/config"
	"github.com/splunk/ui-e2e/e2e/framework/lifecycle"
	"github.com/splunk/ui-e2e/e2e/framework/logging"
)

const passingSpec = `
metadata:
  name: empty basket disables place order
  suite: basket
  tags: [smoke]
given:
  - action: given.basket_items
    with:
      count: 0
then:
  - action: then.place_order
    with:
      enabled: false
`

const failingSpec = `
metadata:
  name: catalog expected on login
  suite: auth
given:
  - action: given.logged_out
when:
  - action: when.tap_basket
then:
  - action: then.screen
    with:
      name: catalog
`

func specDir(t *testing.T, specs map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range specs {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func testConfig(t *testing.T, dir string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.SpecDir = dir
	cfg.ArtifactDir = t.TempDir()
	cfg.MetricsPath = ""
	cfg.Fixtures = ""
	return cfg
}

func fakeSuiteOptions() []lifecycle.Option {
	core, _ := observer.New(zapcore.InfoLevel)
	return []lifecycle.Option{
		lifecycle.WithClock(testingclock.NewFakeClock(time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC))),
		lifecycle.WithLogger(logging.New(zap.New(core), logging.LevelInfo)),
	}
}

func TestRunScenariosPasses(t *testing.T) {
	cfg := testConfig(t, specDir(t, map[string]string{"basket.yaml": passingSpec}))
	var out bytes.Buffer

	require.NoError(t, runScenarios(context.Background(), cfg, &out, fakeSuiteOptions()...))
	assert.Contains(t, out.String(), "TEST SUMMARY")
	assert.Contains(t, out.String(), "Passed:   1")
	assert.FileExists(t, filepath.Join(cfg.ArtifactDir, "results.json"))
}

func TestRunScenariosReportsFailures(t *testing.T) {
	cfg := testConfig(t, specDir(t, map[string]string{
		"basket.yaml": passingSpec,
		"auth.yaml":   failingSpec,
	}))
	var out bytes.Buffer

	err := runScenarios(context.Background(), cfg, &out, fakeSuiteOptions()...)
	require.ErrorIs(t, err, errTestsFailed)
	assert.Contains(t, out.String(), "FAILED TESTS:")
	assert.Contains(t, out.String(), "  - catalog expected on login")
}

func TestListCommand(t *testing.T) {
	dir := specDir(t, map[string]string{"basket.yaml": passingSpec, "auth.yaml": failingSpec})

	var out bytes.Buffer
	cmd := newRootCommand(&out)
	cmd.SetArgs([]string{"list", "--spec-dir", dir, "--suite", "basket"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "NAME")
	assert.Contains(t, out.String(), "empty basket disables place order")
	assert.NotContains(t, out.String(), "catalog expected on login")

	out.Reset()
	cmd = newRootCommand(&out)
	cmd.SetArgs([]string{"list", "--spec-dir", dir, "--output", "json"})
	require.NoError(t, cmd.Execute())
	var rows []scenarioRow
	require.NoError(t, json.Unmarshal(out.Bytes(), &rows))
	assert.Len(t, rows, 2)

	cmd = newRootCommand(&out)
	cmd.SetArgs([]string{"list", "--spec-dir", dir, "--output", "yaml"})
	require.ErrorContains(t, cmd.Execute(), `unsupported output "yaml"`)
}

func TestStepsCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCommand(&out)
	cmd.SetArgs([]string{"steps"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "given.basket_items\n")
	assert.Contains(t, out.String(), "then.screen\n")
}
