package workflow

import (
	"context"

	"github.com/forgelabs/promptforge/llm"
	"github.com/forgelabs/promptforge/metadata"
	"github.com/forgelabs/promptforge/prompts"
)

const analysisFailureHint = "Verify the provider API key and model configuration, and check the provider documentation for current model IDs."

// analyze runs the free-text org analysis and stores the result on the
// document. Failure is soft: the document carries the error variant and a
// warning, and extraction continues.
func (p *Pipeline) analyze(ctx context.Context, client *llm.Client, doc *metadata.Document, description string) {
	instruction := prompts.BuildOrgAnalysis(metadata.NewAnalysisContext(doc), description)

	temp := analysisTemperature
	resp, err := client.Complete(ctx, llm.Request{
		Messages:    []llm.Message{{Role: "user", Content: instruction}},
		Temperature: &temp,
		MaxTokens:   analysisMaxTokens,
	})
	if err != nil {
		p.logger.Warn("org analysis failed", "error", err)
		doc.Analysis = metadata.NewAnalysisError(client.Model(), err, analysisFailureHint)
		doc.Warnings = append(doc.Warnings,
			"analysis failed: "+err.Error()+". "+analysisFailureHint)
		return
	}

	text := resp.Content
	if text == "" {
		text = "No analysis text returned by the model."
	}
	doc.Analysis = metadata.NewAnalysis(resp.Model, text, resp.Usage)
}
