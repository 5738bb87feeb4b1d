package metadata

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/forgelabs/promptforge/salesforce"
)

// priorityObjects are the standard objects whose fields are always fetched.
var priorityObjects = []string{
	"Account", "Contact", "Lead", "Opportunity",
	"User", "Profile", "RecordType",
}

// Collection bounds. Custom objects beyond these cutoffs still appear in the
// object inventory, just without field detail or samples.
const (
	maxCustomObjectFields  = 20
	maxSampleCustomObjects = 5
)

// Collector builds a Document from an org connection. Every fetch step after
// the connection itself is soft: on failure the step appends a warning and
// leaves its document field at the empty default, and collection continues.
type Collector struct {
	conn   salesforce.Connection
	logger *slog.Logger
}

// CollectorOption configures a Collector.
type CollectorOption func(*Collector)

// WithCollectorLogger sets the logger used for fetch-step progress.
func WithCollectorLogger(logger *slog.Logger) CollectorOption {
	return func(c *Collector) {
		c.logger = logger
	}
}

// NewCollector creates a collector over an established connection.
func NewCollector(conn salesforce.Connection, opts ...CollectorOption) *Collector {
	c := &Collector{
		conn:   conn,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect runs every fetch step in order and returns the snapshot. The only
// error it returns is context cancellation; per-step failures are recorded
// in the document's Warnings.
func (c *Collector) Collect(ctx context.Context) (*Document, error) {
	doc := NewDocument()

	steps := []struct {
		name string
		run  func(context.Context, *Document) error
	}{
		{"org_info", c.fetchOrgInfo},
		{"objects", c.fetchObjects},
		{"object_fields", c.fetchKeyObjectFields},
		{"flows", c.fetchFlows},
		{"reports", c.fetchReports},
		{"validation_rules", c.fetchValidationRules},
		{"apex_classes", c.fetchApexClasses},
		{"users", c.fetchUsers},
		{"sample_data", c.fetchSampleData},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c.logger.Debug("fetch step starting", "step", step.name)
		if err := step.run(ctx, doc); err != nil {
			c.warn(doc, "%s fetch failed: %v", step.name, err)
		}
	}

	c.logger.Info("metadata collection complete",
		"objects", len(doc.Objects),
		"flows", len(doc.Flows),
		"reports", len(doc.Reports),
		"warnings", len(doc.Warnings))
	return doc, nil
}

func (c *Collector) warn(doc *Document, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	c.logger.Warn("fetch step degraded", "reason", msg)
	doc.Warnings = append(doc.Warnings, msg)
}

func (c *Collector) fetchOrgInfo(ctx context.Context, doc *Document) error {
	records, err := c.conn.Query(ctx, `SELECT Id, Name, OrganizationType, InstanceName, IsSandbox, NamespacePrefix FROM Organization`)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("organization query returned no rows")
	}
	r := records[0]
	doc.OrgInfo = OrgInfo{
		ID:               r.String("Id"),
		Name:             r.String("Name"),
		OrganizationType: r.String("OrganizationType"),
		InstanceName:     r.String("InstanceName"),
		IsSandbox:        r.Bool("IsSandbox"),
		NamespacePrefix:  r.String("NamespacePrefix"),
	}
	return nil
}

func (c *Collector) fetchObjects(ctx context.Context, doc *Document) error {
	summaries, err := c.conn.DescribeGlobal(ctx)
	if err != nil {
		return err
	}
	for _, s := range summaries {
		if !s.Queryable || !s.Retrieveable {
			continue
		}
		doc.Objects[s.Name] = &ObjectDescriptor{
			Name:      s.Name,
			Label:     s.Label,
			Custom:    s.Custom,
			KeyPrefix: s.KeyPrefix,
			Fields:    []FieldDescriptor{},
		}
	}
	return nil
}

// fetchKeyObjectFields populates field detail for the priority standard
// objects plus the first maxCustomObjectFields custom objects. Objects absent
// from the inventory are skipped silently; a failed describe degrades only
// that object.
func (c *Collector) fetchKeyObjectFields(ctx context.Context, doc *Document) error {
	targets := append([]string{}, priorityObjects...)

	custom := doc.CustomObjectNames()
	if len(custom) > maxCustomObjectFields {
		custom = custom[:maxCustomObjectFields]
	}
	targets = append(targets, custom...)

	for _, name := range targets {
		obj, ok := doc.Objects[name]
		if !ok {
			continue
		}
		describe, err := c.conn.DescribeObject(ctx, name)
		if err != nil {
			c.warn(doc, "error fetching fields for %s: %v", name, err)
			continue
		}
		obj.Fields = toFieldDescriptors(describe.Fields)
	}
	return nil
}

func toFieldDescriptors(fields []salesforce.FieldDescribe) []FieldDescriptor {
	out := make([]FieldDescriptor, 0, len(fields))
	for _, f := range fields {
		fd := FieldDescriptor{
			Name:       f.Name,
			Label:      f.Label,
			Type:       f.Type,
			Custom:     f.Custom,
			Length:     f.Length,
			Unique:     f.Unique,
			Nillable:   f.Nillable,
			Updateable: f.Updateable,
			Createable: f.Createable,
		}
		if IsChoiceType(f.Type) {
			for _, pv := range f.PicklistValues {
				fd.PicklistValues = append(fd.PicklistValues, pv.Value)
			}
		}
		if len(f.ReferenceTo) > 0 {
			fd.ReferenceTo = f.ReferenceTo
			fd.RelationshipName = f.RelationshipName
		}
		out = append(out, fd)
	}
	return out
}

func (c *Collector) fetchFlows(ctx context.Context, doc *Document) error {
	records, err := c.conn.Query(ctx, `SELECT Id, ApiName, Label, ProcessType, TriggerType, RecordTriggerType, IsActive, VersionNumber, Description, TriggerObjectOrEventLabel, LastModifiedDate FROM FlowDefinitionView ORDER BY LastModifiedDate DESC`)
	if err != nil {
		return err
	}
	for _, r := range records {
		doc.Flows = append(doc.Flows, FlowDescriptor{
			ID:                r.String("Id"),
			APIName:           r.String("ApiName"),
			Label:             r.String("Label"),
			ProcessType:       r.String("ProcessType"),
			TriggerType:       r.String("TriggerType"),
			RecordTriggerType: r.String("RecordTriggerType"),
			IsActive:          r.Bool("IsActive"),
			VersionNumber:     r.Int("VersionNumber"),
			Description:       r.String("Description"),
			TriggerObject:     r.String("TriggerObjectOrEventLabel"),
			LastModifiedDate:  r.String("LastModifiedDate"),
		})
	}
	return nil
}

func (c *Collector) fetchReports(ctx context.Context, doc *Document) error {
	records, err := c.conn.Query(ctx, `SELECT Id, Name, Description, FolderName, Format, LastRunDate FROM Report ORDER BY LastViewedDate DESC NULLS LAST LIMIT 500`)
	if err != nil {
		return err
	}
	for _, r := range records {
		doc.Reports = append(doc.Reports, ReportDescriptor{
			ID:          r.String("Id"),
			Name:        r.String("Name"),
			Description: r.String("Description"),
			FolderName:  r.String("FolderName"),
			Format:      r.String("Format"),
			LastRunDate: r.String("LastRunDate"),
		})
	}
	return nil
}

// fetchValidationRules uses the Tooling API, which some connected users
// cannot reach. The warning text points at the likely permission fix.
func (c *Collector) fetchValidationRules(ctx context.Context, doc *Document) error {
	records, err := c.conn.ToolingQuery(ctx, `SELECT Id, ValidationName, EntityDefinition.QualifiedApiName, Active, Description FROM ValidationRule ORDER BY EntityDefinition.QualifiedApiName, ValidationName LIMIT 200`)
	if err != nil {
		return fmt.Errorf("%w. Try the query in Developer Console or confirm Tooling API access", err)
	}
	for _, r := range records {
		doc.ValidationRules = append(doc.ValidationRules, ValidationRuleDescriptor{
			ID:          r.String("Id"),
			Name:        r.String("ValidationName"),
			ObjectName:  r.Child("EntityDefinition", "QualifiedApiName"),
			Active:      r.Bool("Active"),
			Description: r.String("Description"),
		})
	}
	return nil
}

func (c *Collector) fetchApexClasses(ctx context.Context, doc *Document) error {
	records, err := c.conn.ToolingQuery(ctx, `SELECT Id, Name, ApiVersion, Status, IsValid FROM ApexClass ORDER BY Name LIMIT 200`)
	if err != nil {
		return err
	}
	for _, r := range records {
		doc.ApexClasses = append(doc.ApexClasses, ApexClassDescriptor{
			ID:         r.String("Id"),
			Name:       r.String("Name"),
			APIVersion: r.Float("ApiVersion"),
			Status:     r.String("Status"),
			IsValid:    r.Bool("IsValid"),
		})
	}
	return nil
}

func (c *Collector) fetchUsers(ctx context.Context, doc *Document) error {
	records, err := c.conn.Query(ctx, `SELECT Id, Name, Username, Email, Profile.Name, IsActive, UserRole.Name FROM User WHERE IsActive = true ORDER BY Name LIMIT 50`)
	if err != nil {
		return err
	}
	for _, r := range records {
		doc.Users = append(doc.Users, UserDescriptor{
			ID:       r.String("Id"),
			Name:     r.String("Name"),
			Username: r.String("Username"),
			Email:    r.String("Email"),
			Profile:  r.Child("Profile", "Name"),
			Role:     r.Child("UserRole", "Name"),
			IsActive: r.Bool("IsActive"),
		})
	}
	return nil
}

// fetchSampleData pulls small, recent record samples used as literal values
// in generated prompts. A custom object without a Name field just yields no
// samples; that is not a warning.
func (c *Collector) fetchSampleData(ctx context.Context, doc *Document) error {
	if records, err := c.conn.Query(ctx, `SELECT Id, Name FROM Account ORDER BY LastModifiedDate DESC LIMIT 10`); err != nil {
		doc.SampleData["accounts"] = []SampleRecord{}
	} else {
		samples := make([]SampleRecord, 0, len(records))
		for _, r := range records {
			samples = append(samples, SampleRecord{ID: r.String("Id"), Name: r.String("Name")})
		}
		doc.SampleData["accounts"] = samples
	}

	if records, err := c.conn.Query(ctx, `SELECT Id, Name, Amount, StageName FROM Opportunity ORDER BY LastModifiedDate DESC LIMIT 10`); err != nil {
		doc.SampleData["opportunities"] = []SampleRecord{}
	} else {
		samples := make([]SampleRecord, 0, len(records))
		for _, r := range records {
			samples = append(samples, SampleRecord{
				ID:   r.String("Id"),
				Name: r.String("Name"),
				Extra: map[string]any{
					"Amount":    r["Amount"],
					"StageName": r["StageName"],
				},
			})
		}
		doc.SampleData["opportunities"] = samples
	}

	custom := doc.CustomObjectNames()
	if len(custom) > maxSampleCustomObjects {
		custom = custom[:maxSampleCustomObjects]
	}
	for _, name := range custom {
		records, err := c.conn.Query(ctx, fmt.Sprintf(`SELECT Id, Name FROM %s ORDER BY LastModifiedDate DESC LIMIT 5`, name))
		if err != nil {
			continue
		}
		samples := make([]SampleRecord, 0, len(records))
		for _, r := range records {
			n := r.String("Name")
			if n == "" {
				n = "N/A"
			}
			samples = append(samples, SampleRecord{ID: r.String("Id"), Name: n})
		}
		doc.SampleData[name] = samples
	}
	return nil
}
