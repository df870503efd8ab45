package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"github.com/splunk/ui-e2e/e2e/framework/lifecycle"
	"github.com/splunk/ui-e2e/e2e/framework/results"
	"github.com/splunk/ui-e2e/e2e/framework/spec"
)

func (r *Runner) startRunSpan(ctx context.Context, specs []spec.TestSpec) (context.Context, trace.Span) {
	cfg := r.suite.Config
	attrs := map[string]string{
		"ui_e2e.run_id":      cfg.RunID,
		"ui_e2e.suite":       cfg.TestSuite,
		"ui_e2e.environment": string(cfg.Environment),
		"ui_e2e.driver":      cfg.DriverKind,
		"ui_e2e.spec_count":  fmt.Sprintf("%d", len(specs)),
	}
	return r.suite.Telemetry.StartSpan(ctx, "ui_e2e.run", attrs)
}

func (r *Runner) finishRunSpan(span trace.Span, tests []results.TestResult) {
	summary := results.Summarize(tests)
	attrs := map[string]string{
		"ui_e2e.total":   fmt.Sprintf("%d", summary.Total),
		"ui_e2e.passed":  fmt.Sprintf("%d", summary.Passed),
		"ui_e2e.failed":  fmt.Sprintf("%d", summary.Failed),
		"ui_e2e.skipped": fmt.Sprintf("%d", summary.Skipped),
	}
	status := "passed"
	var err error
	switch {
	case summary.Failed > 0:
		status = "failed"
		err = errors.New("run failed")
	case summary.Passed == 0 && summary.Skipped > 0:
		status = "skipped"
	}
	r.suite.Telemetry.EndSpan(span, status, err, attrs)
}

func (r *Runner) startStepSpan(c *lifecycle.Case, step spec.StepSpec) (context.Context, trace.Span) {
	name := "ui_e2e.step"
	if step.Action != "" {
		name = "ui_e2e.step:" + step.Action
	}
	return r.suite.Telemetry.StartSpan(c.Context(), name, baseStepAttributes(c, step))
}

func (r *Runner) finishStepSpan(span trace.Span, c *lifecycle.Case, step spec.StepSpec, result results.StepResult, stepErr error) {
	attrs := mergeAttrs(baseStepAttributes(c, step), map[string]string{
		"ui_e2e.status":      string(result.Status),
		"ui_e2e.duration_ms": fmt.Sprintf("%d", result.Duration.Milliseconds()),
	})
	for key, value := range result.Metadata {
		attrs["ui_e2e.meta."+key] = value
	}
	r.suite.Telemetry.EndSpan(span, string(result.Status), stepErr, attrs)
}

func baseStepAttributes(c *lifecycle.Case, step spec.StepSpec) map[string]string {
	return mergeAttrs(map[string]string{
		"ui_e2e.test":   c.Name,
		"ui_e2e.phase":  string(step.Phase),
		"ui_e2e.step":   step.Name,
		"ui_e2e.action": step.Action,
	})
}

func mergeAttrs(values ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, attrs := range values {
		for key, value := range attrs {
			if value == "" {
				continue
			}
			out[key] = value
		}
	}
	return out
}

func joinList(values []string) string {
	return strings.Join(values, ",")
}
