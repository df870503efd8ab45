package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/splunk/ui-e2e/e2e/framework/config"
	"github.com/splunk/ui-e2e/e2e/framework/lifecycle"
	"github.com/splunk/ui-e2e/e2e/framework/results"
	"github.com/splunk/ui-e2e/e2e/framework/runner"
)

func newRunCommand(out io.Writer) *cobra.Command {
	cfg := config.FromEnv(nil)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the selected scenarios",
		Long: `Run loads every scenario under --spec-dir, keeps those matching --suite
and --tags, and executes them one at a time. Results, summaries, metrics and
evidence are written to --artifact-dir. The exit code is 1 when any scenario
fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.ApplyFlags(cmd.Flags()); err != nil {
				return err
			}
			return runScenarios(cmd.Context(), cfg, out)
		},
	}
	if err := cfg.BindFlags(cmd.Flags()); err != nil {
		panic(err)
	}
	return cmd
}

func runScenarios(ctx context.Context, cfg *config.Config, out io.Writer, opts ...lifecycle.Option) error {
	suite, err := lifecycle.NewSuite(ctx, cfg, opts...)
	if err != nil {
		return err
	}
	r := runner.NewRunner(suite, nil)
	specs, err := r.Plan(cfg.SpecDir)
	if err != nil {
		return err
	}
	if len(specs) == 0 {
		suite.Logger.Warning("no scenarios selected")
	}
	r.RunAll(ctx, specs)

	summary, err := suite.Finish(context.WithoutCancel(ctx))
	fmt.Fprint(out, results.RenderSummary(summary))
	fmt.Fprintf(out, "Artifacts: %s\n", suite.Artifacts.RunDir)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return errTestsFailed
	}
	return nil
}
