package metadata_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgelabs/promptforge/metadata"
)

func sampleDoc() *metadata.Document {
	doc := metadata.NewDocument()
	doc.OrgInfo = metadata.OrgInfo{
		Name:             "Acme Corp",
		OrganizationType: "Enterprise Edition",
		IsSandbox:        true,
	}
	doc.Objects["Account"] = &metadata.ObjectDescriptor{
		Name:  "Account",
		Label: "Account",
		Fields: []metadata.FieldDescriptor{
			{Name: "Name", Label: "Account Name"},
			{Name: "AnnualRevenue", Label: "Annual Revenue"},
		},
	}
	doc.Objects["Policy__c"] = &metadata.ObjectDescriptor{
		Name:   "Policy__c",
		Label:  "Policy",
		Custom: true,
		Fields: []metadata.FieldDescriptor{
			{Name: "Premium_Amount__c", Label: "Premium Amount"},
			{Name: "Commission_Rate__c", Label: "Commission Rate"},
			{Name: "Holder__c", Label: "Policy Holder"},
			{Name: "Status__c", Label: "Status"},
		},
	}
	return doc
}

func TestFinancialFields(t *testing.T) {
	got := metadata.FinancialFields(sampleDoc())

	// Account has no financial fields, so it is omitted entirely.
	assert.NotContains(t, got, "Account")

	// Premium and commission match on name; Holder__c matches "policy" on
	// its label; plain Status__c does not match at all.
	require.Contains(t, got, "Policy__c")
	assert.ElementsMatch(t, []string{"Premium_Amount__c", "Commission_Rate__c", "Holder__c"}, got["Policy__c"])
}

func TestFinancialFieldsCap(t *testing.T) {
	doc := metadata.NewDocument()
	obj := &metadata.ObjectDescriptor{Name: "Quote__c", Custom: true}
	for i := 0; i < 9; i++ {
		obj.Fields = append(obj.Fields, metadata.FieldDescriptor{
			Name:  fmt.Sprintf("Amount_%d__c", i),
			Label: fmt.Sprintf("Amount %d", i),
		})
	}
	doc.Objects["Quote__c"] = obj

	got := metadata.FinancialFields(doc)
	assert.Len(t, got["Quote__c"], 5)
}

func TestSampleNamesSentinel(t *testing.T) {
	doc := metadata.NewDocument()

	names := metadata.SampleNames(doc, "accounts", 10, metadata.NoAccountsSentinel)
	assert.Equal(t, []string{"[No accounts found in org]"}, names)

	names = metadata.SampleNames(doc, "opportunities", 10, metadata.NoOpportunitiesSentinel)
	assert.Equal(t, []string{"[No opportunities found]"}, names)
}

func TestSampleNamesCap(t *testing.T) {
	doc := metadata.NewDocument()
	for i := 0; i < 12; i++ {
		doc.SampleData["accounts"] = append(doc.SampleData["accounts"], metadata.SampleRecord{
			ID:   fmt.Sprintf("001%02d", i),
			Name: fmt.Sprintf("Account %d", i),
		})
	}

	names := metadata.SampleNames(doc, "accounts", 10, metadata.NoAccountsSentinel)
	assert.Len(t, names, 10)
	assert.Equal(t, "Account 0", names[0])
}

func TestNewAnalysisContext(t *testing.T) {
	doc := sampleDoc()
	doc.Flows = []metadata.FlowDescriptor{
		{APIName: "Active_One", IsActive: true},
		{APIName: "Inactive_One"},
		{APIName: "Inactive_Two"},
	}

	ctx := metadata.NewAnalysisContext(doc)

	assert.Equal(t, "Enterprise Edition", ctx.OrgType)
	assert.True(t, ctx.IsSandbox)
	assert.Equal(t, 3, ctx.TotalFlows)
	assert.Equal(t, 1, ctx.ActiveFlows)
	assert.Equal(t, 2, ctx.InactiveFlows)
	require.Len(t, ctx.CustomObjects, 1)
	assert.Equal(t, metadata.ObjectRef{Name: "Policy__c", Label: "Policy"}, ctx.CustomObjects[0])
	assert.Contains(t, ctx.ObjectsWithFinancialFields, "Policy__c")
}

func TestNewPromptContextBounds(t *testing.T) {
	doc := sampleDoc()
	for i := 0; i < 15; i++ {
		name := fmt.Sprintf("Extra%02d__c", i)
		doc.Objects[name] = &metadata.ObjectDescriptor{Name: name, Label: name, Custom: true}
	}
	for i := 0; i < 12; i++ {
		doc.Reports = append(doc.Reports, metadata.ReportDescriptor{
			Name:       fmt.Sprintf("Report %d", i),
			FolderName: "Sales",
		})
		doc.Flows = append(doc.Flows, metadata.FlowDescriptor{APIName: fmt.Sprintf("Flow_%d", i)})
	}

	ctx := metadata.NewPromptContext(doc)

	assert.Len(t, ctx.CustomObjects, 10)
	assert.Len(t, ctx.Reports, 10)
	assert.Len(t, ctx.InactiveFlows, 5)
	assert.Equal(t, 12, ctx.TotalFlows)
	assert.Equal(t, []string{metadata.NoAccountsSentinel}, ctx.SampleAccounts)
}

func TestNewUseCaseContext(t *testing.T) {
	doc := sampleDoc()
	doc.SampleData["accounts"] = []metadata.SampleRecord{
		{ID: "001A", Name: "Acme"},
	}

	ctx := metadata.NewUseCaseContext(doc)

	assert.Equal(t, []string{"Acme"}, ctx.SampleAccounts)
	assert.Equal(t, []string{metadata.NoOpportunitiesSentinel}, ctx.SampleOpportunities)
	assert.Equal(t, []string{"Policy__c"}, ctx.CustomObjects)
}

func TestNewPlanContext(t *testing.T) {
	doc := sampleDoc()
	for i := 0; i < 8; i++ {
		doc.Flows = append(doc.Flows, metadata.FlowDescriptor{
			APIName:  fmt.Sprintf("Flow_%d", i),
			IsActive: i%2 == 0,
		})
	}

	ctx := metadata.NewPlanContext(doc)

	assert.Equal(t, 8, ctx.Flows.Total)
	assert.Len(t, ctx.Flows.Active, 4)
	assert.Len(t, ctx.Flows.Inactive, 4)
	assert.Equal(t, []string{"Policy__c"}, ctx.CustomObjects)
}

func TestNewSummary(t *testing.T) {
	doc := sampleDoc()
	doc.Reports = []metadata.ReportDescriptor{{Name: "Pipeline"}}

	s := metadata.NewSummary(doc)

	assert.Equal(t, "Acme Corp", s.OrgName)
	assert.Equal(t, "Enterprise Edition", s.OrgType)
	assert.True(t, s.IsSandbox)
	assert.Equal(t, 1, s.CustomObjects)
	assert.Equal(t, 0, s.TotalFlows)
	assert.Equal(t, 1, s.TotalReports)
}
