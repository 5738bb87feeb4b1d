package metadata

import "strings"

// financialKeywords flag fields whose name or label suggests monetary or
// policy data. Matching is a case-insensitive substring check on either.
var financialKeywords = []string{"commission", "premium", "amount", "value", "policy"}

const maxFinancialFieldsPerObject = 5

// ObjectRef is a name/label pair used in model context payloads.
type ObjectRef struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// AnalysisContext is the bounded summary embedded in the org-analysis
// instruction. It is a pure function of the document.
type AnalysisContext struct {
	OrgType                    string              `json:"org_type"`
	IsSandbox                  bool                `json:"is_sandbox"`
	CustomObjects              []ObjectRef         `json:"custom_objects"`
	TotalFlows                 int                 `json:"total_flows"`
	ActiveFlows                int                 `json:"active_flows"`
	InactiveFlows              int                 `json:"inactive_flows"`
	TotalReports               int                 `json:"total_reports"`
	ValidationRules            int                 `json:"validation_rules"`
	ObjectsWithFinancialFields map[string][]string `json:"objects_with_financial_fields"`
}

// NewAnalysisContext summarizes the document for the analysis task.
func NewAnalysisContext(doc *Document) AnalysisContext {
	ctx := AnalysisContext{
		OrgType:                    doc.OrgInfo.OrganizationType,
		IsSandbox:                  doc.OrgInfo.IsSandbox,
		CustomObjects:              customObjectRefs(doc, 0),
		TotalFlows:                 len(doc.Flows),
		ActiveFlows:                len(doc.ActiveFlowNames()),
		InactiveFlows:              len(doc.InactiveFlowNames()),
		TotalReports:               len(doc.Reports),
		ValidationRules:            len(doc.ValidationRules),
		ObjectsWithFinancialFields: FinancialFields(doc),
	}
	return ctx
}

// FinancialFields returns, per object, the field API names whose name or
// label contains a financial keyword, capped at maxFinancialFieldsPerObject.
// Objects without matches are omitted.
func FinancialFields(doc *Document) map[string][]string {
	out := make(map[string][]string)
	for name, obj := range doc.Objects {
		var matches []string
		for _, f := range obj.Fields {
			if isFinancialField(f) {
				matches = append(matches, f.Name)
				if len(matches) == maxFinancialFieldsPerObject {
					break
				}
			}
		}
		if len(matches) > 0 {
			out[name] = matches
		}
	}
	return out
}

func isFinancialField(f FieldDescriptor) bool {
	name := strings.ToLower(f.Name)
	label := strings.ToLower(f.Label)
	for _, kw := range financialKeywords {
		if strings.Contains(name, kw) || strings.Contains(label, kw) {
			return true
		}
	}
	return false
}

// Sample list sentinels. Generated prompts must reference real record names;
// when the org has none, the sentinel tells the model so explicitly instead
// of leaving an empty list it might fill with invented names.
const (
	NoAccountsSentinel      = "[No accounts found in org]"
	NoOpportunitiesSentinel = "[No opportunities found]"
)

// PromptContext is the bounded summary embedded in batch prompt-generation
// instructions.
type PromptContext struct {
	CustomObjects       []ObjectRef         `json:"custom_objects"`
	FinancialFields     map[string][]string `json:"financial_fields"`
	SampleAccounts      []string            `json:"sample_accounts"`
	SampleOpportunities []string            `json:"sample_opportunities"`
	CustomObjectSamples map[string][]string `json:"custom_object_samples"`
	TotalFlows          int                 `json:"total_flows"`
	InactiveFlows       []string            `json:"inactive_flows"`
	Reports             []ReportRef         `json:"reports"`
}

// ReportRef is a name/folder pair for the prompt context.
type ReportRef struct {
	Name   string `json:"name"`
	Folder string `json:"folder"`
}

// NewPromptContext summarizes the document for prompt generation.
func NewPromptContext(doc *Document) PromptContext {
	ctx := PromptContext{
		CustomObjects:       customObjectRefs(doc, 10),
		FinancialFields:     FinancialFields(doc),
		SampleAccounts:      SampleNames(doc, "accounts", 10, NoAccountsSentinel),
		SampleOpportunities: SampleNames(doc, "opportunities", 10, NoOpportunitiesSentinel),
		CustomObjectSamples: customObjectSamples(doc),
		TotalFlows:          len(doc.Flows),
		InactiveFlows:       capStrings(doc.InactiveFlowNames(), 5),
	}
	for i, r := range doc.Reports {
		if i == 10 {
			break
		}
		ctx.Reports = append(ctx.Reports, ReportRef{Name: r.Name, Folder: r.FolderName})
	}
	return ctx
}

// UseCaseContext is the summary embedded in the per-use-case generation
// instruction: a tighter cut of the prompt context.
type UseCaseContext struct {
	SampleAccounts      []string `json:"sample_accounts"`
	SampleOpportunities []string `json:"sample_opportunities"`
	CustomObjects       []string `json:"custom_objects"`
}

// NewUseCaseContext summarizes the document for single-use-case generation.
func NewUseCaseContext(doc *Document) UseCaseContext {
	return UseCaseContext{
		SampleAccounts:      SampleNames(doc, "accounts", 5, NoAccountsSentinel),
		SampleOpportunities: SampleNames(doc, "opportunities", 5, NoOpportunitiesSentinel),
		CustomObjects:       capStrings(doc.CustomObjectNames(), 5),
	}
}

// IdentificationContext is the summary embedded in the use-case
// identification instruction.
type IdentificationContext struct {
	CustomObjects []ObjectRef `json:"custom_objects"`
	TotalFlows    int         `json:"total_flows"`
	TotalReports  int         `json:"total_reports"`
}

// NewIdentificationContext summarizes the document for use-case
// identification.
func NewIdentificationContext(doc *Document) IdentificationContext {
	return IdentificationContext{
		CustomObjects: customObjectRefs(doc, 10),
		TotalFlows:    len(doc.Flows),
		TotalReports:  len(doc.Reports),
	}
}

// PlanContext is the summary embedded in the preparation-plan instruction.
type PlanContext struct {
	OrgType         string      `json:"org_type"`
	IsSandbox       bool        `json:"is_sandbox"`
	CustomObjects   []string    `json:"custom_objects"`
	Flows           FlowSummary `json:"flows"`
	Reports         int         `json:"reports"`
	ValidationRules int         `json:"validation_rules"`
}

// FlowSummary gives the plan context a bounded view of flow state.
type FlowSummary struct {
	Total    int      `json:"total"`
	Active   []string `json:"active"`
	Inactive []string `json:"inactive"`
}

// NewPlanContext summarizes the document for the preparation-plan task.
func NewPlanContext(doc *Document) PlanContext {
	return PlanContext{
		OrgType:       doc.OrgInfo.OrganizationType,
		IsSandbox:     doc.OrgInfo.IsSandbox,
		CustomObjects: capStrings(doc.CustomObjectNames(), 10),
		Flows: FlowSummary{
			Total:    len(doc.Flows),
			Active:   capStrings(doc.ActiveFlowNames(), 5),
			Inactive: capStrings(doc.InactiveFlowNames(), 5),
		},
		Reports:         len(doc.Reports),
		ValidationRules: len(doc.ValidationRules),
	}
}

// Summary is the compact org overview returned to API clients after
// extraction.
type Summary struct {
	OrgName       string `json:"org_name"`
	OrgType       string `json:"org_type"`
	IsSandbox     bool   `json:"is_sandbox"`
	CustomObjects int    `json:"custom_objects"`
	TotalFlows    int    `json:"total_flows"`
	TotalReports  int    `json:"total_reports"`
}

// NewSummary builds the client-facing overview.
func NewSummary(doc *Document) Summary {
	return Summary{
		OrgName:       doc.OrgInfo.Name,
		OrgType:       doc.OrgInfo.OrganizationType,
		IsSandbox:     doc.OrgInfo.IsSandbox,
		CustomObjects: len(doc.CustomObjectNames()),
		TotalFlows:    len(doc.Flows),
		TotalReports:  len(doc.Reports),
	}
}

// SampleNames returns up to max record names for the given sample key. An
// empty or missing sample list yields the single sentinel entry.
func SampleNames(doc *Document, key string, max int, sentinel string) []string {
	records := doc.SampleData[key]
	if len(records) == 0 {
		return []string{sentinel}
	}
	if len(records) > max {
		records = records[:max]
	}
	names := make([]string, 0, len(records))
	for _, r := range records {
		names = append(names, r.Name)
	}
	return names
}

func customObjectSamples(doc *Document) map[string][]string {
	out := make(map[string][]string)
	custom := capStrings(doc.CustomObjectNames(), maxSampleCustomObjects)
	for _, name := range custom {
		records, ok := doc.SampleData[name]
		if !ok {
			continue
		}
		var names []string
		for _, r := range records {
			if r.Name != "" {
				names = append(names, r.Name)
			}
		}
		out[name] = names
	}
	return out
}

func customObjectRefs(doc *Document, max int) []ObjectRef {
	var refs []ObjectRef
	for _, name := range doc.CustomObjectNames() {
		if max > 0 && len(refs) == max {
			break
		}
		refs = append(refs, ObjectRef{Name: name, Label: doc.Objects[name].Label})
	}
	return refs
}

func capStrings(s []string, max int) []string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
