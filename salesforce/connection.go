// Package salesforce provides the org connection used by the metadata
// collector: SOQL queries, global and per-object describes, and the Tooling
// API query path for introspection objects.
package salesforce

import (
	"context"
	"fmt"
)

// Credentials holds the username-password login material for an org.
type Credentials struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	SecurityToken string `json:"security_token"`

	// Domain selects the login host: "login" for production,
	// "test" for sandboxes. Defaults to "login".
	Domain string `json:"domain"`
}

// Validate checks that the required login fields are present.
func (c Credentials) Validate() error {
	if c.Username == "" {
		return fmt.Errorf("username is required")
	}
	if c.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// Record is one row returned by a SOQL query. Relationship fields arrive as
// nested maps (e.g. record["Profile"].(map[string]any)["Name"]).
type Record map[string]any

// String returns the named field as a string, or "" when absent or not a string.
func (r Record) String(field string) string {
	s, _ := r[field].(string)
	return s
}

// Bool returns the named field as a bool, or false when absent.
func (r Record) Bool(field string) bool {
	b, _ := r[field].(bool)
	return b
}

// Float returns the named field as a float64, or 0 when absent. JSON numbers
// decode as float64, so this covers every numeric column.
func (r Record) Float(field string) float64 {
	f, _ := r[field].(float64)
	return f
}

// Int returns the named field truncated to int, or 0 when absent.
func (r Record) Int(field string) int {
	return int(r.Float(field))
}

// Child returns a sub-field of a relationship column, e.g.
// r.Child("Profile", "Name"). Returns "" when the relationship is null.
func (r Record) Child(field, sub string) string {
	child, _ := r[field].(map[string]any)
	if child == nil {
		return ""
	}
	s, _ := child[sub].(string)
	return s
}

// SObjectSummary is one entry from a global describe.
type SObjectSummary struct {
	Name         string `json:"name"`
	Label        string `json:"label"`
	Custom       bool   `json:"custom"`
	KeyPrefix    string `json:"keyPrefix"`
	Queryable    bool   `json:"queryable"`
	Retrieveable bool   `json:"retrieveable"`
}

// PicklistEntry is one enumerated value of a picklist field.
type PicklistEntry struct {
	Value  string `json:"value"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

// FieldDescribe is one field entry from an object describe.
type FieldDescribe struct {
	Name             string          `json:"name"`
	Label            string          `json:"label"`
	Type             string          `json:"type"`
	Custom           bool            `json:"custom"`
	Length           int             `json:"length"`
	Unique           bool            `json:"unique"`
	Nillable         bool            `json:"nillable"`
	Updateable       bool            `json:"updateable"`
	Createable       bool            `json:"createable"`
	PicklistValues   []PicklistEntry `json:"picklistValues"`
	ReferenceTo      []string        `json:"referenceTo"`
	RelationshipName string          `json:"relationshipName"`
}

// ObjectDescribe is the result of a per-object describe call.
type ObjectDescribe struct {
	Name   string          `json:"name"`
	Fields []FieldDescribe `json:"fields"`
}

// Connection is the capability surface the collector consumes. The concrete
// implementation is the REST client below; tests substitute fakes.
type Connection interface {
	// Query runs a SOQL query and returns all records, following pagination.
	Query(ctx context.Context, soql string) ([]Record, error)

	// ToolingQuery runs a SOQL query against the Tooling API. It may fail
	// with a permission error depending on the connected user; callers must
	// treat that as a soft failure.
	ToolingQuery(ctx context.Context, soql string) ([]Record, error)

	// DescribeGlobal lists all objects visible to the connected user.
	DescribeGlobal(ctx context.Context) ([]SObjectSummary, error)

	// DescribeObject returns the full field list for one object.
	DescribeObject(ctx context.Context, name string) (*ObjectDescribe, error)
}

// ConnectionError is the terminal failure class: without a connection no
// snapshot is possible, so callers abort the whole collection run.
type ConnectionError struct {
	err error
}

func (e *ConnectionError) Error() string {
	return "salesforce connection failed: " + e.err.Error()
}

func (e *ConnectionError) Unwrap() error {
	return e.err
}

// NewConnectionError wraps an error as a terminal connection failure.
func NewConnectionError(err error) error {
	return &ConnectionError{err: err}
}
