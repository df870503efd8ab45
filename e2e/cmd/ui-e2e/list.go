package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/splunk/ui-e2e/e2e/framework/config"
	"github.com/splunk/ui-e2e/e2e/framework/spec"
)

type scenarioRow struct {
	Name         string   `json:"name"`
	Suite        string   `json:"suite,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	Steps        int      `json:"steps"`
	Environments []string `json:"requires_environment,omitempty"`
	Runnable     bool     `json:"runnable"`
}

func newListCommand(out io.Writer) *cobra.Command {
	cfg := config.FromEnv(nil)
	var output string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the scenarios a run would select",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.ApplyFlags(cmd.Flags()); err != nil {
				return err
			}
			return listScenarios(cfg, output, out)
		},
	}
	if err := cfg.BindFlags(cmd.Flags()); err != nil {
		panic(err)
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output format (text|json)")
	return cmd
}

func listScenarios(cfg *config.Config, output string, out io.Writer) error {
	specs, err := spec.LoadSpecs(cfg.SpecDir)
	if err != nil {
		return fmt.Errorf("load specs: %w", err)
	}
	selected := spec.Select(specs, cfg.TestSuite, cfg.Tags)
	rows := make([]scenarioRow, 0, len(selected))
	for _, s := range selected {
		rows = append(rows, scenarioRow{
			Name:         s.Metadata.Name,
			Suite:        s.Metadata.Suite,
			Tags:         s.Metadata.Tags,
			Steps:        len(s.Steps()),
			Environments: s.RequiresEnvironment,
			Runnable:     s.SupportsEnvironment(string(cfg.Environment)),
		})
	}

	switch output {
	case outputJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case outputText, "":
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tSUITE\tTAGS\tSTEPS\tRUNNABLE")
		for _, row := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%t\n", row.Name, dash(row.Suite), dash(strings.Join(row.Tags, ",")), row.Steps, row.Runnable)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unsupported output %q", output)
	}
}

func dash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
