package workflow

import (
	"context"
	"time"

	"github.com/forgelabs/promptforge/llm"
	"github.com/forgelabs/promptforge/metadata"
	"github.com/forgelabs/promptforge/prompts"
)

// Prepare generates a test preparation plan from a metadata snapshot. A
// model failure is returned as an error; an unparseable response yields an
// error-descriptor plan whose RecoveryPath points at the saved raw text.
func (p *Pipeline) Prepare(ctx context.Context, doc *metadata.Document, description, apiKey string) (*prompts.PreparationPlan, error) {
	client := p.newClient(apiKey)
	instruction := prompts.BuildPreparationPlan(metadata.NewPlanContext(doc), description)

	temp := planTemperature
	resp, err := client.Complete(ctx, llm.Request{
		Messages:    []llm.Message{{Role: "user", Content: instruction}},
		Temperature: &temp,
		MaxTokens:   planMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	plan, err := prompts.ParsePlan(resp.Content)
	if err != nil {
		p.logger.Warn("preparation plan unparseable", "error", err)
		path, saveErr := p.recorder.Save("preparation_plan", resp.Content)
		if saveErr != nil {
			p.logger.Warn("recovery save failed", "error", saveErr)
		}
		return &prompts.PreparationPlan{
			GenerationTimestamp: time.Now().UTC(),
			Model:               resp.Model,
			TokensUsed:          &resp.Usage,
			Error:               err.Error(),
			RecoveryPath:        path,
		}, nil
	}

	plan.GenerationTimestamp = time.Now().UTC()
	plan.Model = resp.Model
	plan.TokensUsed = &resp.Usage
	return plan, nil
}
