package prompts_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/forgelabs/promptforge/metadata"
	"github.com/forgelabs/promptforge/prompts"
)

func TestBuildPromptGenerationBatch(t *testing.T) {
	uc := prompts.UseCase{
		ID:          "uc3",
		Name:        "Update Records",
		Description: "Test updating existing records",
		PromptCount: 7,
	}
	ctx := metadata.UseCaseContext{
		SampleAccounts:      []string{"Acme", "Globex"},
		SampleOpportunities: []string{metadata.NoOpportunitiesSentinel},
		CustomObjects:       []string{"Policy__c"},
	}

	got := prompts.BuildPromptGenerationBatch(uc, ctx)

	assert.Contains(t, got, "Generate exactly 7 test prompts")
	assert.Contains(t, got, "Generate EXACTLY 7 prompts")
	assert.Contains(t, got, "Name: Update Records")
	assert.Contains(t, got, `"use_case": "uc3"`)
	assert.Contains(t, got, "Return ONLY the JSON array, no additional text.")
	assert.Contains(t, got, "Acme")
	assert.Contains(t, got, metadata.NoOpportunitiesSentinel)
}

func TestBuildUseCaseIdentification(t *testing.T) {
	ctx := metadata.IdentificationContext{
		CustomObjects: []metadata.ObjectRef{{Name: "Policy__c", Label: "Policy"}},
		TotalFlows:    4,
		TotalReports:  2,
	}

	got := prompts.BuildUseCaseIdentification(ctx, "Test the insurance quoting flow end to end")

	assert.Contains(t, got, "Test the insurance quoting flow end to end")
	assert.Contains(t, got, "Policy__c")
	assert.Contains(t, got, "Return ONLY the JSON array, no additional text.")
}

func TestBuildOrgAnalysisWithDescription(t *testing.T) {
	ctx := metadata.AnalysisContext{OrgType: "Enterprise Edition"}

	got := prompts.BuildOrgAnalysis(ctx, "Focus on commission calculations")
	assert.Contains(t, got, "Focus on commission calculations")
	assert.Contains(t, got, "Enterprise Edition")
}

func TestBuildOrgAnalysisWithoutDescription(t *testing.T) {
	got := prompts.BuildOrgAnalysis(metadata.AnalysisContext{}, "")
	assert.NotContains(t, got, "Organization-Specific Use Cases")
}

func TestBuildPreparationPlan(t *testing.T) {
	ctx := metadata.PlanContext{
		OrgType:       "Developer Edition",
		CustomObjects: []string{"Policy__c"},
	}

	got := prompts.BuildPreparationPlan(ctx, "")
	assert.Contains(t, got, "Policy__c")
	assert.Contains(t, got, "Return ONLY the JSON, no additional text.")
}
