package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/verdant-cli/verdant/internal/plan"
)

func TestPlanSummary(t *testing.T) {
	t.Parallel()
	start := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	p := testPlan(start, 1, 5, 2)

	var buf bytes.Buffer
	NewTo(&buf).PlanSummary(p, "garden", "weighted")
	out := buf.String()

	for _, want := range []string{
		`seed "garden", weighted`,
		"days:         3 (3 active)",
		"commits:      8",
		"busiest day:  2024-06-02 (5)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestPlanSummary_EmptyPlan(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	NewTo(&buf).PlanSummary(&plan.Plan{}, "", "uniform")

	if strings.Contains(buf.String(), "busiest") {
		t.Errorf("empty plan should have no busiest-day line:\n%s", buf.String())
	}
}

func TestValidationResult(t *testing.T) {
	t.Parallel()

	t.Run("invalid lists errors", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		NewTo(&buf).ValidationResult(plan.Result{
			Valid:  false,
			Errors: []error{plan.ErrEmptyPlan},
		})
		out := buf.String()
		if !strings.Contains(out, "plan invalid") || !strings.Contains(out, plan.ErrEmptyPlan.Error()) {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("valid with warnings", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		NewTo(&buf).ValidationResult(plan.Result{
			Valid:    true,
			Warnings: []string{"day 2024-06-01 has commits but no messages"},
		})
		out := buf.String()
		if !strings.Contains(out, "plan valid") || !strings.Contains(out, "no messages") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})
}

func TestRunSummary(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	NewTo(&buf).RunSummary(RunSummaryData{
		RunID:      "abc123",
		Phase:      "completed",
		Successful: 6,
		Failed:     1,
		Total:      7,
		Duration:   1500 * time.Millisecond,
		Success:    true,
	})
	out := buf.String()

	for _, want := range []string{"run abc123", "6", "7", "1 failed", "1.5s", "completed"} {
		if !strings.Contains(out, want) {
			t.Errorf("run summary missing %q:\n%s", want, out)
		}
	}
}
