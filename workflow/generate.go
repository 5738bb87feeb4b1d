package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/forgelabs/promptforge/llm"
	"github.com/forgelabs/promptforge/metadata"
	"github.com/forgelabs/promptforge/payload"
	"github.com/forgelabs/promptforge/prompts"
	"github.com/forgelabs/promptforge/session"
)

// Generate runs step 2: one model call per requested use case, each asking
// for that use case's effective prompt count. A failing use case contributes
// zero prompts without aborting the rest. Results append to the session
// atomically; the session moves to the generated state.
func (p *Pipeline) Generate(ctx context.Context, sessionID string, useCases []prompts.UseCase) (*GenerateResult, error) {
	sess, err := p.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(useCases) == 0 {
		useCases = sess.UseCases
	}

	client := p.newClient(sess.APIKey)
	ucCtx := metadata.NewUseCaseContext(sess.Document)

	var all []prompts.TestPrompt
	var tokens llm.TokenUsage

	for _, uc := range useCases {
		batch, usage := p.generateForUseCase(ctx, client, uc, ucCtx)
		all = append(all, batch...)
		tokens.Add(usage)
	}

	now := time.Now().UTC()
	err = p.store.Update(ctx, sessionID, func(s *session.Session) error {
		s.Prompts = append(s.Prompts, all...)
		s.State = session.StateGenerated
		s.GenerationTimestamp = now
		s.TokensUsed.Add(tokens)
		s.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("record generated prompts: %w", err)
	}

	p.logger.Info("prompt generation complete",
		"session_id", sessionID,
		"use_cases", len(useCases),
		"prompts", len(all),
		"input_tokens", tokens.InputTokens,
		"output_tokens", tokens.OutputTokens)

	return &GenerateResult{
		SessionID:           sessionID,
		TotalPrompts:        len(all),
		Prompts:             all,
		GenerationTimestamp: now,
		Model:               p.modelName,
		TokensUsed:          tokens,
	}, nil
}

// generateForUseCase produces one use case's prompt batch. Token usage is
// reported even when the response fails to parse; the call still cost
// tokens.
func (p *Pipeline) generateForUseCase(ctx context.Context, client *llm.Client, uc prompts.UseCase, ucCtx metadata.UseCaseContext) ([]prompts.TestPrompt, llm.TokenUsage) {
	instruction := prompts.BuildPromptGenerationBatch(uc, ucCtx)

	temp := generateTemperature
	resp, err := client.Complete(ctx, llm.Request{
		Messages:    []llm.Message{{Role: "user", Content: instruction}},
		Temperature: &temp,
		MaxTokens:   generateMaxTokens,
	})
	if err != nil {
		p.logger.Warn("use case generation failed", "use_case", uc.ID, "error", err)
		return nil, llm.TokenUsage{}
	}

	batch, err := prompts.ParseTestPrompts(resp.Content)
	if err != nil {
		p.logger.Warn("use case response unparseable", "use_case", uc.ID, "error", err)
		if errors.Is(err, payload.ErrNoPayload) || errors.Is(err, payload.ErrMalformed) {
			p.recorder.Save("prompts_"+uc.ID, resp.Content)
		}
		return nil, resp.Usage
	}
	// Models sometimes over-deliver; a use case never yields more prompts
	// than it asked for.
	if n := uc.EffectiveCount(); len(batch) > n {
		p.logger.Warn("model returned extra prompts", "use_case", uc.ID, "requested", n, "returned", len(batch))
		batch = batch[:n]
	}
	return batch, resp.Usage
}
