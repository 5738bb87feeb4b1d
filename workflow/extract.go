package workflow

import (
	"context"
	"fmt"

	"github.com/forgelabs/promptforge/llm"
	"github.com/forgelabs/promptforge/metadata"
	"github.com/forgelabs/promptforge/prompts"
	"github.com/forgelabs/promptforge/session"
)

// Extract runs step 1: connect to the org, collect the metadata snapshot,
// analyze it, identify use cases, and store the session. Only the connection
// itself is a hard failure; analysis and identification degrade (error
// analysis variant, default use-case set).
func (p *Pipeline) Extract(ctx context.Context, req ExtractRequest) (*ExtractResult, error) {
	if err := req.Credentials.Validate(); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", err)
	}

	conn, err := p.connect(ctx, req.Credentials)
	if err != nil {
		return nil, err
	}

	collector := metadata.NewCollector(conn, metadata.WithCollectorLogger(p.logger))
	doc, err := collector.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect metadata: %w", err)
	}

	client := p.newClient(req.APIKey)

	p.analyze(ctx, client, doc, req.UseCaseDescription)

	useCases := p.identifyUseCases(ctx, client, doc, req.UseCaseDescription)

	sess := session.New(doc, req.UseCaseDescription, useCases, req.APIKey)
	if err := p.store.Put(ctx, sess); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	p.logger.Info("extraction complete",
		"session_id", sess.ID,
		"use_cases", len(useCases),
		"warnings", len(doc.Warnings))

	return &ExtractResult{
		SessionID:       sess.ID,
		UseCases:        useCases,
		MetadataSummary: metadata.NewSummary(doc),
	}, nil
}

// identifyUseCases asks the model to structure the user's description into
// testable use cases. Any failure falls back to the fixed default set; the
// step never blocks extraction.
func (p *Pipeline) identifyUseCases(ctx context.Context, client *llm.Client, doc *metadata.Document, description string) []prompts.UseCase {
	instruction := prompts.BuildUseCaseIdentification(metadata.NewIdentificationContext(doc), description)

	temp := identifyTemperature
	resp, err := client.Complete(ctx, llm.Request{
		Messages:    []llm.Message{{Role: "user", Content: instruction}},
		Temperature: &temp,
		MaxTokens:   identifyMaxTokens,
	})
	if err != nil {
		p.logger.Warn("use case identification failed, using defaults", "error", err)
		return prompts.DefaultUseCases()
	}

	useCases, err := prompts.ParseUseCases(resp.Content)
	if err != nil {
		p.logger.Warn("use case response unparseable, using defaults", "error", err)
		p.recorder.Save("use_cases", resp.Content)
		return prompts.DefaultUseCases()
	}
	return useCases
}
