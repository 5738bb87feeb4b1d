package prompts_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgelabs/promptforge/payload"
	"github.com/forgelabs/promptforge/prompts"
)

func TestParseUseCases(t *testing.T) {
	raw := "Here you go:\n```json\n" + `[
		{"id": "uc1", "name": "Query Records", "description": "Retrieve records by criteria", "default_prompt_count": 5},
		{"id": "uc2", "name": "Create Records", "description": "Insert new records"}
	]` + "\n```"

	cases, err := prompts.ParseUseCases(raw)
	require.NoError(t, err)
	require.Len(t, cases, 2)

	assert.Equal(t, "uc1", cases[0].ID)
	assert.Equal(t, 5, cases[0].EffectiveCount())

	// Missing counts are normalized to the default.
	assert.Equal(t, 3, cases[1].EffectiveCount())
}

func TestParseUseCasesMissingFieldFailsWhole(t *testing.T) {
	raw := `[
		{"id": "uc1", "name": "Query Records", "description": "ok"},
		{"id": "uc2", "description": "missing name"}
	]`

	_, err := prompts.ParseUseCases(raw)
	assert.ErrorIs(t, err, payload.ErrSchemaMismatch)
}

func TestParseUseCasesEmptyList(t *testing.T) {
	_, err := prompts.ParseUseCases(`[]`)
	assert.ErrorIs(t, err, payload.ErrSchemaMismatch)
}

func TestParseUseCasesNoPayload(t *testing.T) {
	_, err := prompts.ParseUseCases("I'm sorry, I can't identify any use cases.")
	assert.ErrorIs(t, err, payload.ErrNoPayload)
}

func TestParseTestPrompts(t *testing.T) {
	raw := `[
		{
			"use_case": "uc1",
			"prompt": "Show me all accounts named Acme",
			"expected_object": "Account",
			"difficulty": "easy",
			"challenges": ["fuzzy matching"],
			"expected_behavior": "Returns matching accounts"
		},
		{
			"use_case": "uc1",
			"prompt": "List opportunities closing this month",
			"difficulty": "medium",
			"expected_behavior": "Returns filtered opportunities"
		}
	]`

	got, err := prompts.ParseTestPrompts(raw)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Account", got[0].ExpectedObject)
	assert.Equal(t, []string{"fuzzy matching"}, got[0].Challenges)

	// Nil challenges normalize to an empty list.
	assert.NotNil(t, got[1].Challenges)
	assert.Empty(t, got[1].Challenges)
}

func TestParseTestPromptsMissingRequiredField(t *testing.T) {
	raw := `[
		{"use_case": "uc1", "prompt": "do things", "difficulty": "easy"}
	]`

	_, err := prompts.ParseTestPrompts(raw)
	require.ErrorIs(t, err, payload.ErrSchemaMismatch)
	assert.Contains(t, err.Error(), "expected_behavior")
}

func TestParsePlan(t *testing.T) {
	raw := "```json\n" + `{
		"tasks": [
			{
				"category": "data_setup",
				"action": "Create 5 test accounts",
				"purpose": "Gives query prompts real targets",
				"manual_steps": ["Open Setup", "Import CSV"],
				"verification": ["Run SELECT COUNT() FROM Account"]
			}
		]
	}` + "\n```"

	plan, err := prompts.ParsePlan(raw)
	require.NoError(t, err)
	require.Len(t, plan.Tasks, 1)

	task := plan.Tasks[0]
	assert.Equal(t, "data_setup", task.Category)
	assert.Len(t, task.ManualSteps, 2)

	// Absent lists normalize to empty, not nil.
	assert.NotNil(t, task.TestPrompts)
	assert.Empty(t, task.TestPrompts)
}

func TestParsePlanNoTasks(t *testing.T) {
	_, err := prompts.ParsePlan(`{"tasks": []}`)
	assert.ErrorIs(t, err, payload.ErrSchemaMismatch)
}

func TestParsePlanTaskMissingCategory(t *testing.T) {
	_, err := prompts.ParsePlan(`{"tasks": [{"action": "do something"}]}`)
	assert.ErrorIs(t, err, payload.ErrSchemaMismatch)
}

func TestDefaultUseCases(t *testing.T) {
	cases := prompts.DefaultUseCases()
	require.Len(t, cases, 5)

	ids := make([]string, 0, len(cases))
	for _, uc := range cases {
		ids = append(ids, uc.ID)
		assert.Equal(t, 3, uc.EffectiveCount())
	}
	assert.Equal(t, []string{"uc1", "uc2", "uc3", "uc4", "uc5"}, ids)
}
