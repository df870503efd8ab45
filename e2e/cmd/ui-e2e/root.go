package main

import (
	"errors"
	"io"

	"github.com/spf13/cobra"
)

// errTestsFailed reports a completed run with at least one failure.
var errTestsFailed = errors.New("tests failed")

// Output formats.
const (
	outputText = "text"
	outputJSON = "json"
)

func newRootCommand(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ui-e2e",
		Short: "UI end-to-end scenario runner",
		Long: `ui-e2e drives the application UI through Given/When/Then scenarios
written in YAML. Configuration comes from environment variables (and a .env
file), and flags override them.

Examples:
  ui-e2e run --suite basket
  ui-e2e run --tags smoke,!slow --driver rod --app-url http://localhost:3000
  ui-e2e list --output json
  ui-e2e steps`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.SetOut(out)
	cmd.AddCommand(newRunCommand(out), newListCommand(out), newStepsCommand(out))
	return cmd
}
