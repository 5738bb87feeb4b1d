package salesforce

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultAPIVersion is the REST API version used when none is configured.
const DefaultAPIVersion = "59.0"

// maxResponseSize caps API response bodies.
const maxResponseSize = 50 * 1024 * 1024 // 50MB; describes on large orgs are big

// Client is the REST implementation of Connection. Authentication uses the
// SOAP username-password login (the only flow that works with just username,
// password and security token, no connected app required), then all data
// calls go through the REST and Tooling endpoints with the session token.
type Client struct {
	httpClient  *http.Client
	logger      *slog.Logger
	apiVersion  string
	loginHost   string
	instanceURL string
	sessionID   string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(client *Client) {
		client.logger = logger
	}
}

// WithAPIVersion overrides the REST API version (e.g. "60.0").
func WithAPIVersion(v string) Option {
	return func(client *Client) {
		client.apiVersion = v
	}
}

// WithLoginHost overrides the SOAP login host (scheme + host, no path).
// Primarily for tests and API gateways.
func WithLoginHost(host string) Option {
	return func(client *Client) {
		client.loginHost = host
	}
}

// Connect performs the SOAP login and returns a ready client. A failure here
// is terminal for the whole collection run.
func Connect(ctx context.Context, creds Credentials, opts ...Option) (*Client, error) {
	if err := creds.Validate(); err != nil {
		return nil, NewConnectionError(err)
	}

	c := &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     slog.Default(),
		apiVersion: DefaultAPIVersion,
	}
	for _, opt := range opts {
		opt(c)
	}

	loginHost := c.loginHost
	if loginHost == "" {
		domain := creds.Domain
		if domain == "" {
			domain = "login"
		}
		loginHost = fmt.Sprintf("https://%s.salesforce.com", domain)
	}

	if err := c.login(ctx, loginHost, creds); err != nil {
		return nil, NewConnectionError(err)
	}

	c.logger.Info("Connected to Salesforce", "instance", c.instanceURL)
	return c, nil
}

// loginEnvelope is the SOAP login request body.
const loginEnvelope = `<?xml version="1.0" encoding="utf-8"?>
<env:Envelope xmlns:xsd="http://www.w3.org/2001/XMLSchema"
    xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
    xmlns:env="http://schemas.xmlsoap.org/soap/envelope/"
    xmlns:urn="urn:partner.soap.sforce.com">
  <env:Body>
    <n1:login xmlns:n1="urn:partner.soap.sforce.com">
      <n1:username>%s</n1:username>
      <n1:password>%s</n1:password>
    </n1:login>
  </env:Body>
</env:Envelope>`

// loginResponse holds the fields we need from the SOAP login response.
type loginResponse struct {
	ServerURL string `xml:"Body>loginResponse>result>serverUrl"`
	SessionID string `xml:"Body>loginResponse>result>sessionId"`
}

// soapFault holds the fault string of a failed SOAP call.
type soapFault struct {
	FaultString string `xml:"Body>Fault>faultstring"`
}

// login performs the SOAP username-password login and captures the session
// token and instance URL.
func (c *Client) login(ctx context.Context, loginHost string, creds Credentials) error {
	endpoint := strings.TrimSuffix(loginHost, "/") + "/services/Soap/u/" + c.apiVersion

	body := fmt.Sprintf(loginEnvelope,
		xmlEscape(creds.Username),
		xmlEscape(creds.Password+creds.SecurityToken))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("create login request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=UTF-8")
	req.Header.Set("SOAPAction", "login")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("read login response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var fault soapFault
		if xml.Unmarshal(respBody, &fault) == nil && fault.FaultString != "" {
			return fmt.Errorf("login rejected: %s", fault.FaultString)
		}
		return fmt.Errorf("login failed with status %d", resp.StatusCode)
	}

	var lr loginResponse
	if err := xml.Unmarshal(respBody, &lr); err != nil {
		return fmt.Errorf("parse login response: %w", err)
	}
	if lr.SessionID == "" || lr.ServerURL == "" {
		return fmt.Errorf("login response missing session")
	}

	serverURL, err := url.Parse(lr.ServerURL)
	if err != nil {
		return fmt.Errorf("parse server URL: %w", err)
	}

	c.sessionID = lr.SessionID
	c.instanceURL = serverURL.Scheme + "://" + serverURL.Host
	return nil
}

// xmlEscape escapes credential text for embedding in the login envelope.
func xmlEscape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// queryResponse is the REST query result page format.
type queryResponse struct {
	TotalSize      int      `json:"totalSize"`
	Done           bool     `json:"done"`
	NextRecordsURL string   `json:"nextRecordsUrl"`
	Records        []Record `json:"records"`
}

// Query runs a SOQL query, following nextRecordsUrl pagination until done.
func (c *Client) Query(ctx context.Context, soql string) ([]Record, error) {
	path := fmt.Sprintf("/services/data/v%s/query?q=%s", c.apiVersion, url.QueryEscape(soql))
	return c.queryAll(ctx, path)
}

// ToolingQuery runs a SOQL query against the Tooling API.
func (c *Client) ToolingQuery(ctx context.Context, soql string) ([]Record, error) {
	path := fmt.Sprintf("/services/data/v%s/tooling/query?q=%s", c.apiVersion, url.QueryEscape(soql))
	return c.queryAll(ctx, path)
}

// queryAll fetches every page of a query result.
func (c *Client) queryAll(ctx context.Context, path string) ([]Record, error) {
	var records []Record
	for path != "" {
		var page queryResponse
		if err := c.get(ctx, path, &page); err != nil {
			return nil, err
		}
		records = append(records, page.Records...)
		if page.Done {
			break
		}
		path = page.NextRecordsURL
	}
	return records, nil
}

// globalDescribeResponse is the REST global describe format.
type globalDescribeResponse struct {
	SObjects []SObjectSummary `json:"sobjects"`
}

// DescribeGlobal lists all objects visible to the connected user.
func (c *Client) DescribeGlobal(ctx context.Context) ([]SObjectSummary, error) {
	var resp globalDescribeResponse
	path := fmt.Sprintf("/services/data/v%s/sobjects/", c.apiVersion)
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.SObjects, nil
}

// DescribeObject returns the full field list for one object.
func (c *Client) DescribeObject(ctx context.Context, name string) (*ObjectDescribe, error) {
	var resp ObjectDescribe
	path := fmt.Sprintf("/services/data/v%s/sobjects/%s/describe", c.apiVersion, url.PathEscape(name))
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// apiError is one entry of a REST error response body.
type apiError struct {
	Message   string `json:"message"`
	ErrorCode string `json:"errorCode"`
}

// get performs an authenticated GET and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.instanceURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.sessionID)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErrs []apiError
		if json.Unmarshal(body, &apiErrs) == nil && len(apiErrs) > 0 {
			return fmt.Errorf("salesforce API error (%s): %s", apiErrs[0].ErrorCode, apiErrs[0].Message)
		}
		return fmt.Errorf("salesforce API error: status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
