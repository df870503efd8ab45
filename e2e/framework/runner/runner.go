package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/splunk/ui-e2e/e2e/framework/driver"
	"github.com/splunk/ui-e2e/e2e/framework/lifecycle"
	"github.com/splunk/ui-e2e/e2e/framework/logging"
	"github.com/splunk/ui-e2e/e2e/framework/results"
	"github.com/splunk/ui-e2e/e2e/framework/spec"
	"github.com/splunk/ui-e2e/e2e/framework/steps"
)

// Runner executes scenario specs through the step registry.
type Runner struct {
	suite    *lifecycle.Suite
	registry *steps.Registry
	logger   *logging.Logger
}

// NewRunner constructs a Runner. A nil registry gets the default step set.
func NewRunner(suite *lifecycle.Suite, registry *steps.Registry) *Runner {
	if registry == nil {
		registry = steps.NewRegistry()
		steps.RegisterDefaults(registry)
	}
	return &Runner{suite: suite, registry: registry, logger: suite.Logger}
}

// Plan loads the specs under dir and keeps those selected by the configured
// suite and tags.
func (r *Runner) Plan(dir string) ([]spec.TestSpec, error) {
	specs, err := spec.LoadSpecs(dir)
	if err != nil {
		return nil, fmt.Errorf("load specs: %w", err)
	}
	cfg := r.suite.Config
	selected := spec.Select(specs, cfg.TestSuite, cfg.Tags)
	r.logger.Info("scenarios selected",
		zap.String("dir", dir),
		zap.Int("loaded", len(specs)),
		zap.Int("selected", len(selected)),
		zap.String("suite", cfg.TestSuite),
		zap.Strings("tags", cfg.Tags),
	)
	return selected, nil
}

// RunAll executes specs one at a time and returns their results. Scenarios
// that target another environment are recorded as skipped.
func (r *Runner) RunAll(ctx context.Context, specs []spec.TestSpec) []results.TestResult {
	runCtx, runSpan := r.startRunSpan(ctx, specs)
	out := make([]results.TestResult, 0, len(specs))
	for _, testSpec := range specs {
		if err := ctx.Err(); err != nil {
			out = append(out, r.skip(testSpec, "run cancelled: "+err.Error()))
			continue
		}
		env := string(r.suite.Config.Environment)
		if !testSpec.SupportsEnvironment(env) {
			out = append(out, r.skip(testSpec, "requires environment "+joinList(testSpec.RequiresEnvironment)))
			continue
		}
		out = append(out, r.RunSpec(runCtx, testSpec))
	}
	r.finishRunSpan(runSpan, out)
	return out
}

// RunSpec runs one scenario, retrying failed attempts up to its retry
// count. Only the last attempt is recorded.
func (r *Runner) RunSpec(ctx context.Context, testSpec spec.TestSpec) results.TestResult {
	attempts := testSpec.Retries + 1
	var result results.TestResult
	for attempt := 1; attempt <= attempts; attempt++ {
		result = r.runAttempt(ctx, testSpec, attempt, attempt == attempts)
		if result.Status != results.StatusFailed {
			break
		}
		if attempt < attempts {
			r.logger.Warning("scenario failed, retrying",
				zap.String("test", testSpec.Metadata.Name),
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", attempts),
				zap.String("error", result.Error),
			)
		}
	}
	return result
}

func (r *Runner) runAttempt(ctx context.Context, testSpec spec.TestSpec, attempt int, last bool) results.TestResult {
	name := testSpec.Metadata.Name
	if timeout, err := time.ParseDuration(testSpec.Timeout); err == nil && timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	st := lifecycle.NewScenarioT(name)
	st.Run(func() {
		c := r.suite.Start(ctx, st, lifecycle.StartOptions{
			Name: name,
			Tags: testSpec.Metadata.Tags,
			Launch: driver.LaunchConfig{
				Arguments:   testSpec.Launch.Arguments,
				Environment: testSpec.Launch.Environment,
			},
		})
		c.SetAttempts(attempt)
		c.SetDescription(testSpec.Metadata.Description)
		for key, value := range testSpec.Params {
			c.World.Params[key] = value
		}
		for _, step := range testSpec.Steps() {
			if r.runStep(st, c, step).Status == results.StatusFailed {
				return
			}
		}
	})
	if st.Failed() && !last {
		st.Discard()
	}
	st.Finish()

	if result, ok := st.Result(); ok {
		return result
	}
	return results.TestResult{Name: name, Status: results.StatusFailed, Error: st.Message(), Attempts: attempt}
}

func (r *Runner) runStep(st *lifecycle.ScenarioT, c *lifecycle.Case, step spec.StepSpec) results.StepResult {
	clk := r.suite.Clock()
	start := clk.Now()
	ctx, span := r.startStepSpan(c, step)

	var metadata map[string]string
	var err error
	failedBefore := len(st.Errors())
	if st.Run(func() { metadata, err = r.registry.Execute(ctx, c.World, step) }) && err == nil {
		err = assertionError(st.Errors()[failedBefore:])
	}
	end := clk.Now()

	result := results.StepResult{
		Number:    c.Logger.CurrentStep(),
		Name:      step.Title(),
		Action:    step.Action,
		Status:    results.StatusPassed,
		StartTime: start,
		EndTime:   end,
		Duration:  end.Sub(start),
		Metadata:  metadata,
	}
	if err != nil {
		result.Status = results.StatusFailed
		result.Error = err.Error()
		if len(st.Errors()) == failedBefore {
			c.Errorf("%s step %q: %v", step.Phase, step.Title(), err)
		}
		c.Logger.Error("step failed",
			zap.String("phase", string(step.Phase)),
			zap.String("action", step.Action),
			zap.Error(err),
		)
	}
	r.finishStepSpan(span, c, step, result, err)
	c.RecordStep(result)
	return result
}

func assertionError(messages []string) error {
	if len(messages) == 0 {
		return errors.New("step failed")
	}
	return errors.New(messages[0])
}

func (r *Runner) skip(testSpec spec.TestSpec, reason string) results.TestResult {
	st := lifecycle.NewScenarioT(testSpec.Metadata.Name)
	st.Run(func() {
		// Skipped scenarios never launch the app.
		c := r.suite.Prepare(st, lifecycle.StartOptions{Name: testSpec.Metadata.Name, Tags: testSpec.Metadata.Tags})
		c.SetDescription(testSpec.Metadata.Description)
		c.Skip(reason)
	})
	st.Finish()
	result, _ := st.Result()
	return result
}
