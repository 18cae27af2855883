package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/verdant-cli/verdant/internal/plan"
	"github.com/verdant-cli/verdant/internal/ui"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Generate a plan and show it without touching any repository",
	RunE:  runPreview,
}

func init() {
	addGenerationFlags(previewCmd)
	previewCmd.Flags().Bool("json", false, "write the plan as JSON to stdout")

	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, _ []string) error {
	params, err := loadGenParams(cmd)
	if err != nil {
		return err
	}
	p, _, err := buildPlan(params)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	}

	printer := ui.New()
	printer.PlanSummary(p, params.cfg.Seed, params.cfg.Strategy)
	for _, w := range plan.Validate(p, params.cfg.MaxPerDay).Warnings {
		printer.Warn(w)
	}
	fmt.Fprintln(os.Stderr)
	fmt.Fprint(os.Stderr, ui.Calendar(p))
	return nil
}
