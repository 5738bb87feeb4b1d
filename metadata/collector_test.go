package metadata_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgelabs/promptforge/metadata"
	"github.com/forgelabs/promptforge/salesforce"
)

// fakeConnection routes queries by the object named in the FROM clause.
type fakeConnection struct {
	records      map[string][]salesforce.Record
	queryErrs    map[string]error
	toolingErr   error
	describes    map[string]*salesforce.ObjectDescribe
	describeErrs map[string]error
	global       []salesforce.SObjectSummary
	globalErr    error

	describedObjects []string
	sampledObjects   []string
}

func fromObject(soql string) string {
	idx := strings.Index(soql, " FROM ")
	if idx < 0 {
		return ""
	}
	rest := soql[idx+6:]
	if sp := strings.IndexByte(rest, ' '); sp >= 0 {
		return rest[:sp]
	}
	return rest
}

func (f *fakeConnection) Query(_ context.Context, soql string) ([]salesforce.Record, error) {
	obj := fromObject(soql)
	if err := f.queryErrs[obj]; err != nil {
		return nil, err
	}
	if obj != "Organization" && obj != "FlowDefinitionView" && obj != "Report" && obj != "User" {
		f.sampledObjects = append(f.sampledObjects, obj)
	}
	return f.records[obj], nil
}

func (f *fakeConnection) ToolingQuery(_ context.Context, soql string) ([]salesforce.Record, error) {
	if f.toolingErr != nil {
		return nil, f.toolingErr
	}
	return f.records[fromObject(soql)], nil
}

func (f *fakeConnection) DescribeGlobal(_ context.Context) ([]salesforce.SObjectSummary, error) {
	if f.globalErr != nil {
		return nil, f.globalErr
	}
	return f.global, nil
}

func (f *fakeConnection) DescribeObject(_ context.Context, name string) (*salesforce.ObjectDescribe, error) {
	f.describedObjects = append(f.describedObjects, name)
	if err := f.describeErrs[name]; err != nil {
		return nil, err
	}
	if d, ok := f.describes[name]; ok {
		return d, nil
	}
	return &salesforce.ObjectDescribe{Name: name, Fields: []salesforce.FieldDescribe{}}, nil
}

func orgRecord() salesforce.Record {
	return salesforce.Record{
		"Id":               "00D000000000001",
		"Name":             "Acme Corp",
		"OrganizationType": "Enterprise Edition",
		"InstanceName":     "NA123",
		"IsSandbox":        true,
	}
}

func summary(name, label string, custom bool) salesforce.SObjectSummary {
	return salesforce.SObjectSummary{
		Name: name, Label: label, Custom: custom,
		Queryable: true, Retrieveable: true,
	}
}

func newFake() *fakeConnection {
	return &fakeConnection{
		records: map[string][]salesforce.Record{
			"Organization": {orgRecord()},
		},
		queryErrs:    map[string]error{},
		describes:    map[string]*salesforce.ObjectDescribe{},
		describeErrs: map[string]error{},
		global: []salesforce.SObjectSummary{
			summary("Account", "Account", false),
			summary("Opportunity", "Opportunity", false),
			summary("Policy__c", "Policy", true),
		},
	}
}

func TestCollectHappyPath(t *testing.T) {
	fake := newFake()
	fake.describes["Account"] = &salesforce.ObjectDescribe{
		Name: "Account",
		Fields: []salesforce.FieldDescribe{
			{Name: "Name", Label: "Account Name", Type: "string"},
			{
				Name: "Industry", Label: "Industry", Type: "picklist",
				PicklistValues: []salesforce.PicklistEntry{{Value: "Insurance"}, {Value: "Banking"}},
			},
		},
	}
	fake.records["Account"] = []salesforce.Record{
		{"Id": "001A", "Name": "Acme"},
		{"Id": "001B", "Name": "Globex"},
	}
	fake.records["FlowDefinitionView"] = []salesforce.Record{
		{"Id": "300A", "ApiName": "Assign_Leads", "Label": "Assign Leads", "IsActive": true, "VersionNumber": float64(3)},
		{"Id": "300B", "ApiName": "Old_Routing", "Label": "Old Routing", "IsActive": false, "VersionNumber": float64(1)},
	}
	fake.records["ValidationRule"] = []salesforce.Record{
		{
			"Id": "03dA", "ValidationName": "Require_Amount", "Active": true,
			"EntityDefinition": map[string]any{"QualifiedApiName": "Opportunity"},
		},
	}
	fake.records["ApexClass"] = []salesforce.Record{
		{"Id": "01pA", "Name": "QuoteCalculator", "ApiVersion": 59.0, "Status": "Active", "IsValid": true},
	}
	fake.records["User"] = []salesforce.Record{
		{
			"Id": "005A", "Name": "Pat Admin", "Username": "pat@acme.test", "IsActive": true,
			"Profile": map[string]any{"Name": "System Administrator"},
		},
	}

	doc, err := metadata.NewCollector(fake).Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Acme Corp", doc.OrgInfo.Name)
	assert.True(t, doc.OrgInfo.IsSandbox)
	require.Contains(t, doc.Objects, "Account")
	require.Len(t, doc.Objects["Account"].Fields, 2)

	industry := doc.Objects["Account"].Fields[1]
	assert.Equal(t, []string{"Insurance", "Banking"}, industry.PicklistValues)

	require.Len(t, doc.Flows, 2)
	assert.Equal(t, []string{"Assign_Leads"}, doc.ActiveFlowNames())
	assert.Equal(t, []string{"Old_Routing"}, doc.InactiveFlowNames())

	require.Len(t, doc.ValidationRules, 1)
	assert.Equal(t, "Opportunity", doc.ValidationRules[0].ObjectName)

	require.Len(t, doc.ApexClasses, 1)
	assert.Equal(t, 59.0, doc.ApexClasses[0].APIVersion)

	require.Len(t, doc.Users, 1)
	assert.Equal(t, "System Administrator", doc.Users[0].Profile)

	samples := doc.SampleData["accounts"]
	require.Len(t, samples, 2)
	assert.Equal(t, "Acme", samples[0].Name)
}

func TestCollectFiltersUnqueryableObjects(t *testing.T) {
	fake := newFake()
	fake.global = append(fake.global, salesforce.SObjectSummary{
		Name: "AccountHistory", Label: "Account History", Queryable: false, Retrieveable: true,
	})

	doc, err := metadata.NewCollector(fake).Collect(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, doc.Objects, "AccountHistory")
	assert.Contains(t, doc.Objects, "Account")
}

func TestCollectFieldFetchBounds(t *testing.T) {
	fake := newFake()
	fake.global = fake.global[:0]
	for _, name := range []string{"Account", "Contact", "Lead", "Opportunity", "User", "Profile", "RecordType"} {
		fake.global = append(fake.global, summary(name, name, false))
	}
	for i := 0; i < 30; i++ {
		name := fmt.Sprintf("Custom%02d__c", i)
		fake.global = append(fake.global, summary(name, name, true))
	}

	doc, err := metadata.NewCollector(fake).Collect(context.Background())
	require.NoError(t, err)

	// 7 priority objects plus the first 20 custom objects in sorted order.
	assert.Len(t, fake.describedObjects, 27)
	assert.Contains(t, fake.describedObjects, "Custom19__c")
	assert.NotContains(t, fake.describedObjects, "Custom20__c")

	// All 30 custom objects still appear in the inventory.
	assert.Len(t, doc.CustomObjectNames(), 30)
}

func TestCollectSkipsAbsentPriorityObjects(t *testing.T) {
	fake := newFake()
	fake.global = []salesforce.SObjectSummary{summary("Account", "Account", false)}

	_, err := metadata.NewCollector(fake).Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Account"}, fake.describedObjects)
}

func TestCollectDescribeFailureDegradesOneObject(t *testing.T) {
	fake := newFake()
	fake.describeErrs["Account"] = errors.New("describe blew up")
	fake.describes["Opportunity"] = &salesforce.ObjectDescribe{
		Name:   "Opportunity",
		Fields: []salesforce.FieldDescribe{{Name: "Amount", Label: "Amount", Type: "currency"}},
	}

	doc, err := metadata.NewCollector(fake).Collect(context.Background())
	require.NoError(t, err)

	assert.Empty(t, doc.Objects["Account"].Fields)
	assert.Len(t, doc.Objects["Opportunity"].Fields, 1)

	found := false
	for _, w := range doc.Warnings {
		if strings.Contains(w, "error fetching fields for Account") {
			found = true
		}
	}
	assert.True(t, found, "expected a per-object field warning, got %v", doc.Warnings)
}

func TestCollectToolingFailureIsSoft(t *testing.T) {
	fake := newFake()
	fake.toolingErr = errors.New("INVALID_TYPE: sobject type 'ValidationRule' is not supported")

	doc, err := metadata.NewCollector(fake).Collect(context.Background())
	require.NoError(t, err)

	assert.Empty(t, doc.ValidationRules)
	assert.Empty(t, doc.ApexClasses)

	joined := strings.Join(doc.Warnings, "\n")
	assert.Contains(t, joined, "validation_rules fetch failed")
	assert.Contains(t, joined, "Tooling API access")
	assert.Contains(t, joined, "apex_classes fetch failed")
}

func TestCollectConnectFailureEverywhereStillReturnsDocument(t *testing.T) {
	fake := newFake()
	fake.globalErr = errors.New("describe unavailable")
	fake.queryErrs["Organization"] = errors.New("org query denied")
	fake.queryErrs["FlowDefinitionView"] = errors.New("no flows view")
	fake.queryErrs["Report"] = errors.New("no reports")
	fake.queryErrs["User"] = errors.New("no users")
	fake.queryErrs["Account"] = errors.New("no accounts")
	fake.queryErrs["Opportunity"] = errors.New("no opps")
	fake.toolingErr = errors.New("no tooling")

	doc, err := metadata.NewCollector(fake).Collect(context.Background())
	require.NoError(t, err)

	assert.Empty(t, doc.Objects)
	assert.NotEmpty(t, doc.Warnings)
	// Failed sample queries leave explicit empty lists.
	assert.Empty(t, doc.SampleData["accounts"])
	assert.Empty(t, doc.SampleData["opportunities"])
}

func TestCollectSampleDataBounds(t *testing.T) {
	fake := newFake()
	fake.global = []salesforce.SObjectSummary{
		summary("Account", "Account", false),
		summary("Opportunity", "Opportunity", false),
	}
	for i := 0; i < 8; i++ {
		name := fmt.Sprintf("Obj%d__c", i)
		fake.global = append(fake.global, summary(name, name, true))
		fake.records[name] = []salesforce.Record{{"Id": "aX" + name}}
	}
	fake.records["Opportunity"] = []salesforce.Record{
		{"Id": "006A", "Name": "Big Deal", "Amount": 50000.0, "StageName": "Prospecting"},
	}

	doc, err := metadata.NewCollector(fake).Collect(context.Background())
	require.NoError(t, err)

	// Only the first 5 custom objects are sampled.
	assert.Len(t, fake.sampledObjects, 5+2) // 5 custom plus Account and Opportunity

	// Custom records without a Name fall back to a placeholder.
	require.NotEmpty(t, doc.SampleData["Obj0__c"])
	assert.Equal(t, "N/A", doc.SampleData["Obj0__c"][0].Name)

	opps := doc.SampleData["opportunities"]
	require.Len(t, opps, 1)
	assert.Equal(t, 50000.0, opps[0].Extra["Amount"])
	assert.Equal(t, "Prospecting", opps[0].Extra["StageName"])
}

func TestCollectHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := metadata.NewCollector(newFake()).Collect(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
