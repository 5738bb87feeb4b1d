package export

import (
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/forgelabs/promptforge/metadata"
	"github.com/forgelabs/promptforge/prompts"
)

// PromptsCSV renders test prompts as CSV. List-valued cells use "; " so a
// spreadsheet shows them in one column.
func PromptsCSV(list []prompts.TestPrompt) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	header := []string{"use_case", "prompt", "expected_object", "difficulty", "challenges", "expected_behavior"}
	if err := w.Write(header); err != nil {
		return "", err
	}
	for _, p := range list {
		row := []string{
			p.UseCase,
			p.Prompt,
			p.ExpectedObject,
			p.Difficulty,
			strings.Join(p.Challenges, "; "),
			p.ExpectedBehavior,
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	return sb.String(), w.Error()
}

// PlanCSV renders a preparation plan as CSV, one row per task. List cells
// join with " | " to keep multi-step instructions readable.
func PlanCSV(plan *prompts.PreparationPlan) (string, error) {
	if plan == nil || len(plan.Tasks) == 0 {
		return "", nil
	}

	var sb strings.Builder
	w := csv.NewWriter(&sb)

	header := []string{"category", "action", "purpose", "manual_steps", "test_prompts", "verification"}
	if err := w.Write(header); err != nil {
		return "", err
	}
	for _, t := range plan.Tasks {
		row := []string{
			t.Category,
			t.Action,
			t.Purpose,
			strings.Join(t.ManualSteps, " | "),
			strings.Join(t.TestPrompts, " | "),
			strings.Join(t.Verification, " | "),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	return sb.String(), w.Error()
}

// MetadataCSV renders the snapshot as metric/value rows.
func MetadataCSV(doc *metadata.Document) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	active := len(doc.ActiveFlowNames())
	rows := [][]string{
		{"Metric", "Value"},
		{"Org Name", doc.OrgInfo.Name},
		{"Org Type", doc.OrgInfo.OrganizationType},
		{"Is Sandbox", fmt.Sprintf("%t", doc.OrgInfo.IsSandbox)},
		{"Total Objects", fmt.Sprintf("%d", len(doc.Objects))},
		{"Custom Objects", fmt.Sprintf("%d", len(doc.CustomObjectNames()))},
		{"Total Flows", fmt.Sprintf("%d", len(doc.Flows))},
		{"Active Flows", fmt.Sprintf("%d", active)},
		{"Total Reports", fmt.Sprintf("%d", len(doc.Reports))},
		{"Validation Rules", fmt.Sprintf("%d", len(doc.ValidationRules))},
		{"Apex Classes", fmt.Sprintf("%d", len(doc.ApexClasses))},
		{"Active Users", fmt.Sprintf("%d", len(doc.Users))},
	}
	if err := w.WriteAll(rows); err != nil {
		return "", err
	}
	return sb.String(), nil
}
