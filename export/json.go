package export

import (
	"encoding/json"
	"time"

	"github.com/forgelabs/promptforge/llm"
	"github.com/forgelabs/promptforge/metadata"
	"github.com/forgelabs/promptforge/prompts"
	"github.com/forgelabs/promptforge/session"
)

// ResultsDocument is the combined JSON download: org overview, analysis,
// and the generated prompts.
type ResultsDocument struct {
	MetadataSummary     ResultsSummary       `json:"metadata_summary"`
	Analysis            *metadata.Analysis   `json:"analysis,omitempty"`
	TestPrompts         []prompts.TestPrompt `json:"test_prompts"`
	GenerationTimestamp time.Time            `json:"generation_timestamp,omitzero"`
	TotalPrompts        int                  `json:"total_prompts"`
	TokensUsed          llm.TokenUsage       `json:"tokens_used"`
}

// ResultsSummary is the org-level header of a results download.
type ResultsSummary struct {
	OrgInfo             metadata.OrgInfo `json:"org_info"`
	ExtractionTimestamp time.Time        `json:"extraction_timestamp"`
	CustomObjects       []string         `json:"custom_objects"`
	TotalFlows          int              `json:"total_flows"`
	TotalReports        int              `json:"total_reports"`
}

// ResultsJSON renders the session's accumulated results as indented JSON.
func ResultsJSON(s *session.Session) ([]byte, error) {
	doc := s.Document
	out := ResultsDocument{
		MetadataSummary: ResultsSummary{
			OrgInfo:             doc.OrgInfo,
			ExtractionTimestamp: doc.ExtractionTimestamp,
			CustomObjects:       doc.CustomObjectNames(),
			TotalFlows:          len(doc.Flows),
			TotalReports:        len(doc.Reports),
		},
		Analysis:            doc.Analysis,
		TestPrompts:         s.Prompts,
		GenerationTimestamp: s.GenerationTimestamp,
		TotalPrompts:        len(s.Prompts),
		TokensUsed:          s.TokensUsed,
	}
	if out.TestPrompts == nil {
		out.TestPrompts = []prompts.TestPrompt{}
	}
	return json.MarshalIndent(out, "", "  ")
}

// MetadataJSON renders the full snapshot as indented JSON.
func MetadataJSON(doc *metadata.Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// PlanJSON renders a preparation plan as indented JSON.
func PlanJSON(plan *prompts.PreparationPlan) ([]byte, error) {
	return json.MarshalIndent(plan, "", "  ")
}
