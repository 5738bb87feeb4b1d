package prompts

import (
	"encoding/json"
	"fmt"

	"github.com/forgelabs/promptforge/payload"
)

// ParseUseCases decodes a use-case identification response. Entries missing
// an id, name, or description invalidate the whole payload; counts are
// normalized so EffectiveCount never falls through to zero.
func ParseUseCases(raw string) ([]UseCase, error) {
	data, err := payload.ExtractArray(raw)
	if err != nil {
		return nil, err
	}

	var cases []UseCase
	if err := json.Unmarshal(data, &cases); err != nil {
		return nil, payload.SchemaError("use case list: %v", err)
	}
	if len(cases) == 0 {
		return nil, payload.SchemaError("use case list is empty")
	}
	for i := range cases {
		uc := &cases[i]
		if uc.ID == "" || uc.Name == "" || uc.Description == "" {
			return nil, payload.SchemaError("use case %d missing id, name, or description", i)
		}
		if uc.DefaultPromptCount <= 0 {
			uc.DefaultPromptCount = defaultPromptCount
		}
		if uc.PromptCount <= 0 {
			uc.PromptCount = uc.DefaultPromptCount
		}
	}
	return cases, nil
}

// ParseTestPrompts decodes a prompt-generation response. Any entry missing a
// required field invalidates the whole payload; a nil challenges list is
// normalized to empty so downstream renderers never see null.
func ParseTestPrompts(raw string) ([]TestPrompt, error) {
	data, err := payload.ExtractArray(raw)
	if err != nil {
		return nil, err
	}

	var prompts []TestPrompt
	if err := json.Unmarshal(data, &prompts); err != nil {
		return nil, payload.SchemaError("test prompt list: %v", err)
	}
	for i := range prompts {
		p := &prompts[i]
		if err := p.validate(); err != nil {
			return nil, payload.SchemaError("test prompt %d: %v", i, err)
		}
		if p.Challenges == nil {
			p.Challenges = []string{}
		}
	}
	return prompts, nil
}

func (p TestPrompt) validate() error {
	switch {
	case p.UseCase == "":
		return fmt.Errorf("missing use_case")
	case p.Prompt == "":
		return fmt.Errorf("missing prompt")
	case p.Difficulty == "":
		return fmt.Errorf("missing difficulty")
	case p.ExpectedBehavior == "":
		return fmt.Errorf("missing expected_behavior")
	}
	return nil
}

// ParsePlan decodes a preparation-plan response. The tasks key must be
// present and non-empty; list fields are normalized to empty slices.
func ParsePlan(raw string) (*PreparationPlan, error) {
	data, err := payload.ExtractObject(raw)
	if err != nil {
		return nil, err
	}

	var plan PreparationPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, payload.SchemaError("preparation plan: %v", err)
	}
	if len(plan.Tasks) == 0 {
		return nil, payload.SchemaError("preparation plan has no tasks")
	}
	for i := range plan.Tasks {
		t := &plan.Tasks[i]
		if t.Category == "" || t.Action == "" {
			return nil, payload.SchemaError("plan task %d missing category or action", i)
		}
		if t.ManualSteps == nil {
			t.ManualSteps = []string{}
		}
		if t.TestPrompts == nil {
			t.TestPrompts = []string{}
		}
		if t.Verification == nil {
			t.Verification = []string{}
		}
	}
	return &plan, nil
}
