// Package prompts defines the generative task vocabulary: the use cases a
// session tests, the test prompts the model produces, the preparation plan,
// and the instruction builders and typed decoders for each task kind.
package prompts

import (
	"time"

	"github.com/forgelabs/promptforge/llm"
)

// defaultPromptCount is used when a use case does not specify a count.
const defaultPromptCount = 3

// UseCase is one distinct testable capability of the connected org. The
// caller adjusts PromptCount between identification and generation.
type UseCase struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Description        string `json:"description"`
	DefaultPromptCount int    `json:"default_prompt_count"`
	PromptCount        int    `json:"prompt_count"`
}

// EffectiveCount returns the number of prompts to generate for this use
// case, falling back from PromptCount to DefaultPromptCount to the package
// default.
func (u UseCase) EffectiveCount() int {
	if u.PromptCount > 0 {
		return u.PromptCount
	}
	if u.DefaultPromptCount > 0 {
		return u.DefaultPromptCount
	}
	return defaultPromptCount
}

// DefaultUseCases is the fixed fallback set used when identification fails
// or returns nothing usable.
func DefaultUseCases() []UseCase {
	return []UseCase{
		{ID: "uc1", Name: "Query Records", Description: "Test querying records from custom objects", DefaultPromptCount: 3, PromptCount: 3},
		{ID: "uc2", Name: "Create Records", Description: "Test creating new records with validation", DefaultPromptCount: 3, PromptCount: 3},
		{ID: "uc3", Name: "Update Records", Description: "Test updating existing records", DefaultPromptCount: 3, PromptCount: 3},
		{ID: "uc4", Name: "Calculate Aggregations", Description: "Test calculating sums, averages, and aggregations", DefaultPromptCount: 3, PromptCount: 3},
		{ID: "uc5", Name: "Generate Reports", Description: "Test generating custom reports", DefaultPromptCount: 3, PromptCount: 3},
	}
}

// TestPrompt is one generated test prompt for an AI agent.
type TestPrompt struct {
	UseCase          string   `json:"use_case"`
	Prompt           string   `json:"prompt"`
	ExpectedObject   string   `json:"expected_object,omitempty"`
	Difficulty       string   `json:"difficulty"`
	Challenges       []string `json:"challenges"`
	ExpectedBehavior string   `json:"expected_behavior"`
}

// PlanTask is one preparation step in a test preparation plan.
type PlanTask struct {
	Category     string   `json:"category"`
	Action       string   `json:"action"`
	Purpose      string   `json:"purpose"`
	ManualSteps  []string `json:"manual_steps"`
	TestPrompts  []string `json:"test_prompts"`
	Verification []string `json:"verification"`
}

// PreparationPlan is the model-generated plan for setting up challenging
// test conditions in an org. Error is set instead of Tasks when generation
// or parsing failed; RecoveryPath then points at the saved raw response.
type PreparationPlan struct {
	Tasks []PlanTask `json:"tasks"`

	GenerationTimestamp time.Time       `json:"generation_timestamp"`
	Model               string          `json:"model"`
	TokensUsed          *llm.TokenUsage `json:"tokens_used,omitempty"`

	Error        string `json:"error,omitempty"`
	RecoveryPath string `json:"recovery_path,omitempty"`
}
