package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/splunk/ui-e2e/e2e/framework/steps"
)

func newStepsCommand(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "steps",
		Short: "List the step actions scenarios can use",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			registry := steps.NewRegistry()
			steps.RegisterDefaults(registry)
			for _, action := range registry.Actions() {
				fmt.Fprintln(out, action)
			}
			return nil
		},
	}
}
