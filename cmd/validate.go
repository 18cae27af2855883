package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/verdant-cli/verdant/internal/config"
	"github.com/verdant-cli/verdant/internal/gitrepo"
	"github.com/verdant-cli/verdant/internal/plan"
	"github.com/verdant-cli/verdant/internal/ui"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a plan for structural problems",
	Long: "Validates either a generated plan (from the usual generation flags) or a\n" +
		"JSON plan file produced by 'preview --json'. With --env it instead checks\n" +
		"that the environment is ready to run: git available, repository clean,\n" +
		"author identity resolvable.",
	RunE: runValidate,
}

func init() {
	addGenerationFlags(validateCmd)
	validateCmd.Flags().String("plan", "", "JSON plan file to validate instead of generating one")
	validateCmd.Flags().Bool("env", false, "check the environment instead of a plan")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	params, err := loadGenParams(cmd)
	if err != nil {
		return err
	}

	if env, _ := cmd.Flags().GetBool("env"); env {
		return validateEnv(cmd.Context(), params.cfg)
	}

	var p *plan.Plan
	if path, _ := cmd.Flags().GetString("plan"); path != "" {
		p, err = loadPlanFile(path)
	} else {
		p, _, err = buildPlan(params)
	}
	if err != nil {
		return err
	}

	res := plan.Validate(p, params.cfg.MaxPerDay)
	ui.New().ValidationResult(res)
	if !res.Valid {
		return errors.New("plan is invalid")
	}
	return nil
}

// validateEnv checks everything a run needs before it mutates anything.
func validateEnv(ctx context.Context, cfg config.Config) error {
	ok := true
	pass := func(format string, args ...any) {
		fmt.Fprintf(os.Stderr, "✓ "+format+"\n", args...)
	}
	fail := func(format string, args ...any) {
		fmt.Fprintf(os.Stderr, "✗ "+format+"\n", args...)
		ok = false
	}

	if path, err := exec.LookPath("git"); err != nil {
		fail("git: %v", err)
	} else {
		pass("git found at %s", path)
	}

	backend, err := gitrepo.New(ctx, cfg.RepoDir)
	if err != nil {
		fail("repository: %v", err)
	} else {
		pass("repository at %s", backend.Dir())

		if clean, err := backend.IsClean(ctx); err != nil {
			fail("work tree: %v", err)
		} else if !clean {
			fail("work tree has uncommitted changes")
		} else {
			pass("work tree clean")
		}

		if author, err := resolveAuthor(ctx, backend, cfg); err != nil {
			fail("author: %v", err)
		} else {
			pass("author %s <%s>", author.Name, author.Email)
		}
	}

	if !ok {
		return errors.New("environment not ready")
	}
	return nil
}

func loadPlanFile(path string) (*plan.Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan file: %w", err)
	}
	var p plan.Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &p, nil
}
