// Package metadata defines the consolidated org snapshot and the collector
// that builds it from a Salesforce connection, plus the bounded context
// summaries handed to the generative model.
package metadata

import (
	"sort"
	"time"

	"github.com/forgelabs/promptforge/llm"
)

// Document is the consolidated org snapshot. Created once per extraction
// run, populated incrementally by each fetch step, and immutable after the
// run completes. A new extraction replaces the prior document; documents are
// never merged.
type Document struct {
	ExtractionTimestamp time.Time `json:"extraction_timestamp"`

	OrgInfo OrgInfo `json:"org_info"`

	// Objects maps object API name to its descriptor. Keys are unique by
	// construction; a descriptor's Fields list is either empty (not yet
	// fetched) or fully populated; there is no partial-field state.
	Objects map[string]*ObjectDescriptor `json:"objects"`

	Flows           []FlowDescriptor           `json:"flows"`
	Reports         []ReportDescriptor         `json:"reports"`
	ValidationRules []ValidationRuleDescriptor `json:"validation_rules"`
	ApexClasses     []ApexClassDescriptor      `json:"apex_classes"`
	Users           []UserDescriptor           `json:"users"`

	SampleData SampleDataSet `json:"sample_data"`

	Analysis *Analysis `json:"analysis,omitempty"`

	// Warnings records soft fetch-step failures. The corresponding
	// document field keeps its empty default.
	Warnings []string `json:"warnings"`
}

// NewDocument creates an empty document stamped with the current time.
func NewDocument() *Document {
	return &Document{
		ExtractionTimestamp: time.Now().UTC(),
		Objects:             make(map[string]*ObjectDescriptor),
		SampleData:          make(SampleDataSet),
		Warnings:            []string{},
	}
}

// CustomObjectNames returns the API names of all custom objects, sorted for
// deterministic output.
func (d *Document) CustomObjectNames() []string {
	names := make([]string, 0)
	for name, obj := range d.Objects {
		if obj.Custom {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// ActiveFlowNames returns the API names of active flows, in document order.
func (d *Document) ActiveFlowNames() []string {
	var names []string
	for _, f := range d.Flows {
		if f.IsActive {
			names = append(names, f.APIName)
		}
	}
	return names
}

// InactiveFlowNames returns the API names of inactive flows, in document order.
func (d *Document) InactiveFlowNames() []string {
	var names []string
	for _, f := range d.Flows {
		if !f.IsActive {
			names = append(names, f.APIName)
		}
	}
	return names
}

// OrgInfo describes the connected org.
type OrgInfo struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	OrganizationType string `json:"organization_type"`
	InstanceName     string `json:"instance_name"`
	IsSandbox        bool   `json:"is_sandbox"`
	NamespacePrefix  string `json:"namespace_prefix,omitempty"`
}

// ObjectDescriptor summarizes one sObject.
type ObjectDescriptor struct {
	Name      string `json:"name"`
	Label     string `json:"label"`
	Custom    bool   `json:"custom"`
	KeyPrefix string `json:"key_prefix,omitempty"`

	// Fields is empty until the field-fetch sub-step runs for this object.
	Fields []FieldDescriptor `json:"fields"`
}

// FieldDescriptor summarizes one field. PicklistValues is present iff the
// type tag is a choice type; ReferenceTo is present iff the field is a
// relationship.
type FieldDescriptor struct {
	Name       string `json:"name"`
	Label      string `json:"label"`
	Type       string `json:"type"`
	Custom     bool   `json:"custom"`
	Length     int    `json:"length,omitempty"`
	Unique     bool   `json:"unique,omitempty"`
	Nillable   bool   `json:"nillable,omitempty"`
	Updateable bool   `json:"updateable,omitempty"`
	Createable bool   `json:"createable,omitempty"`

	PicklistValues   []string `json:"picklistValues,omitempty"`
	ReferenceTo      []string `json:"referenceTo,omitempty"`
	RelationshipName string   `json:"relationshipName,omitempty"`
}

// IsChoiceType reports whether the field's type carries enumerated values.
func IsChoiceType(fieldType string) bool {
	return fieldType == "picklist" || fieldType == "multipicklist"
}

// FlowDescriptor summarizes one flow definition.
type FlowDescriptor struct {
	ID                string `json:"id"`
	APIName           string `json:"api_name"`
	Label             string `json:"label"`
	ProcessType       string `json:"process_type"`
	TriggerType       string `json:"trigger_type,omitempty"`
	RecordTriggerType string `json:"record_trigger_type,omitempty"`
	IsActive          bool   `json:"is_active"`
	VersionNumber     int    `json:"version_number,omitempty"`
	Description       string `json:"description,omitempty"`
	TriggerObject     string `json:"trigger_object,omitempty"`
	LastModifiedDate  string `json:"last_modified_date,omitempty"`
}

// ReportDescriptor summarizes one report.
type ReportDescriptor struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	FolderName  string `json:"folder_name,omitempty"`
	Format      string `json:"format,omitempty"`
	LastRunDate string `json:"last_run_date,omitempty"`
}

// ValidationRuleDescriptor summarizes one validation rule.
type ValidationRuleDescriptor struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ObjectName  string `json:"object_name,omitempty"`
	Active      bool   `json:"active"`
	Description string `json:"description,omitempty"`
}

// ApexClassDescriptor summarizes one Apex class.
type ApexClassDescriptor struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	APIVersion float64 `json:"api_version,omitempty"`
	Status     string  `json:"status,omitempty"`
	IsValid    bool    `json:"is_valid"`
}

// UserDescriptor summarizes one active user.
type UserDescriptor struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Profile  string `json:"profile,omitempty"`
	Role     string `json:"role,omitempty"`
	IsActive bool   `json:"is_active"`
}

// SampleRecord is a lightweight record stub used only as literal-value
// source material for prompt construction.
type SampleRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// Extra carries task-specific attributes for priority objects
	// (e.g. Amount and StageName for opportunities).
	Extra map[string]any `json:"extra,omitempty"`
}

// SampleDataSet maps object name to sampled record stubs. Never mutated
// after fetch; bounded at collection time.
type SampleDataSet map[string][]SampleRecord

// Analysis is the generative-model analysis of the snapshot. Exactly one of
// the success fields (AnalysisText, Usage) or the failure fields (Error,
// Suggestions) is populated.
type Analysis struct {
	Timestamp time.Time `json:"timestamp"`
	Model     string    `json:"model"`

	AnalysisText string          `json:"analysis,omitempty"`
	Usage        *llm.TokenUsage `json:"usage,omitempty"`

	Error       string `json:"error,omitempty"`
	Suggestions string `json:"suggestions,omitempty"`
}

// NewAnalysis builds the success variant.
func NewAnalysis(model, text string, usage llm.TokenUsage) *Analysis {
	return &Analysis{
		Timestamp:    time.Now().UTC(),
		Model:        model,
		AnalysisText: text,
		Usage:        &usage,
	}
}

// NewAnalysisError builds the failure variant with a remediation hint.
func NewAnalysisError(model string, err error, suggestions string) *Analysis {
	return &Analysis{
		Timestamp:   time.Now().UTC(),
		Model:       model,
		Error:       err.Error(),
		Suggestions: suggestions,
	}
}

// Failed reports whether the analysis is the failure variant.
func (a *Analysis) Failed() bool {
	return a != nil && a.Error != ""
}
