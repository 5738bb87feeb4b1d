package prompts

import (
	"encoding/json"
	"fmt"

	"github.com/forgelabs/promptforge/metadata"
)

// orgAnalysisPrompt asks for free-text analysis. Placeholders: use-case
// section, serialized analysis context.
const orgAnalysisPrompt = `You are a Salesforce testing expert. Analyze this Salesforce org metadata and provide:

1. **Org Overview**: Brief summary of the org type and key characteristics
2. **Custom Objects Analysis**: What custom objects exist and what they might be used for
3. **Testing Opportunities**: Specific test scenarios based on the metadata
4. **Prompt Recommendations**: Suggest 5-10 context-aware test prompts that leverage the actual metadata
5. **Challenge Scenarios**: Recommend specific changes to create challenging test conditions
%s
Metadata Summary:
%s

Provide your analysis in a structured format.`

const analysisUseCaseSection = `
**Organization-Specific Use Cases:**
%s

Please incorporate these use cases into your analysis and recommendations.
`

// BuildOrgAnalysis renders the org-analysis instruction. useCaseDescription
// may be empty.
func BuildOrgAnalysis(ctx metadata.AnalysisContext, useCaseDescription string) string {
	return fmt.Sprintf(orgAnalysisPrompt,
		useCaseSection(analysisUseCaseSection, useCaseDescription),
		mustMarshal(ctx))
}

// identificationPrompt asks for a JSON array of use cases. Placeholders:
// user description, serialized identification context.
const identificationPrompt = `You are a Salesforce testing expert. Based on the user's description and the org metadata, identify distinct use cases that should be tested.

**User's Use Case Description:**
%s

**Org Context:**
%s

**Your Task:**
Identify 5-10 distinct, testable use cases. Each use case should be specific and actionable.

Return ONLY a JSON array with this structure:
[
  {
    "id": "uc1",
    "name": "Query Insurance Policies",
    "description": "Test querying custom insurance policy objects for specific accounts",
    "default_prompt_count": 3
  }
]

Return ONLY the JSON array, no additional text.`

// BuildUseCaseIdentification renders the use-case identification instruction.
func BuildUseCaseIdentification(ctx metadata.IdentificationContext, useCaseDescription string) string {
	return fmt.Sprintf(identificationPrompt, useCaseDescription, mustMarshal(ctx))
}

// batchPrompt asks for an exact-count JSON array of test prompts for one use
// case. Placeholders: count, name, description, serialized context, count,
// use-case id.
const batchPrompt = `Generate exactly %d test prompts for this specific use case:

**Use Case:**
- Name: %s
- Description: %s

**Context:**
%s

**Requirements:**
- Generate EXACTLY %d prompts
- Use ACTUAL data from sample_accounts and sample_opportunities - DO NOT make up record names
- Vary difficulty: easy, medium, hard
- Include edge cases

Return ONLY a JSON array:
[
  {
    "use_case": "%s",
    "prompt": "actual prompt text with real data",
    "expected_object": "ObjectName",
    "difficulty": "easy|medium|hard",
    "challenges": ["challenge1", "challenge2"],
    "expected_behavior": "what should happen"
  }
]

Return ONLY the JSON array, no additional text.`

// BuildPromptGenerationBatch renders the per-use-case generation
// instruction for the use case's effective count.
func BuildPromptGenerationBatch(uc UseCase, ctx metadata.UseCaseContext) string {
	count := uc.EffectiveCount()
	return fmt.Sprintf(batchPrompt, count, uc.Name, uc.Description, mustMarshal(ctx), count, uc.ID)
}

// planPrompt asks for a JSON preparation plan. Placeholders: serialized plan
// context, use-case section.
const planPrompt = `You are a Salesforce testing expert. Create a comprehensive test preparation plan to challenge an AI agent's capabilities.

**Current Org State:**
%s
%s
**Your Task:**
Generate a detailed test preparation plan with specific, actionable steps to create challenging test scenarios. Include:

1. **Flow Challenges**: How to deactivate flows, create error flows, and test flow operations
2. **Data Ambiguity**: Creating duplicate/similar records to test disambiguation
3. **Validation Challenges**: Setting up validation rules that will trigger errors
4. **Permission Tests**: Restricting access to test error handling
5. **Performance Tests**: Ensuring sufficient data volume
6. **Custom Object Tests**: Leveraging actual custom objects in the org
7. **Edge Cases**: Unusual scenarios that test robustness

For each challenge category, provide:
- Specific manual steps to execute in Salesforce
- Expected test prompts to use
- What agent behavior to verify
- Why this tests a specific capability

Format as JSON:
{
  "tasks": [
    {
      "category": "CATEGORY_NAME",
      "action": "brief description",
      "purpose": "why this is important",
      "manual_steps": ["step 1", "step 2"],
      "test_prompts": ["prompt 1", "prompt 2"],
      "verification": ["what to check"]
    }
  ]
}

Return ONLY the JSON, no additional text.`

const planUseCaseSection = `
**Organization-Specific Use Cases:**
%s

Please incorporate these use cases into the test preparation plan.
`

// BuildPreparationPlan renders the preparation-plan instruction.
func BuildPreparationPlan(ctx metadata.PlanContext, useCaseDescription string) string {
	return fmt.Sprintf(planPrompt, mustMarshal(ctx),
		useCaseSection(planUseCaseSection, useCaseDescription))
}

func useCaseSection(template, description string) string {
	if description == "" {
		return ""
	}
	return fmt.Sprintf(template, description)
}

// mustMarshal indents a context struct for prompt embedding. The contexts
// are plain data types; marshaling cannot fail.
func mustMarshal(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		panic(err)
	}
	return string(b)
}
