// Package workflow orchestrates the three-step session lifecycle: extract
// org metadata and identify use cases, generate test prompts per use case,
// and render downloads. It owns all model calls.
package workflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/forgelabs/promptforge/llm"
	"github.com/forgelabs/promptforge/metadata"
	"github.com/forgelabs/promptforge/payload"
	"github.com/forgelabs/promptforge/prompts"
	"github.com/forgelabs/promptforge/salesforce"
	"github.com/forgelabs/promptforge/session"
)

// Per-task sampling parameters. Identification and analysis run cool;
// prompt generation wants variety.
const (
	analysisTemperature = 0.3
	identifyTemperature = 0.3
	generateTemperature = 0.5
	planTemperature     = 0.4

	analysisMaxTokens = 4096
	identifyMaxTokens = 2048
	generateMaxTokens = 2048
	planMaxTokens     = 4096
)

// ConnectFunc establishes an org connection from credentials. The seam lets
// tests substitute a fake connection.
type ConnectFunc func(ctx context.Context, creds salesforce.Credentials) (salesforce.Connection, error)

// ClientFactory builds a model client bound to a caller-supplied API key.
type ClientFactory func(apiKey string) *llm.Client

// Pipeline runs the session workflow against a session store.
type Pipeline struct {
	store     session.Store
	connect   ConnectFunc
	newClient ClientFactory
	recorder  *payload.Recorder
	modelName string
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithConnectFunc replaces the org connection constructor.
func WithConnectFunc(fn ConnectFunc) Option {
	return func(p *Pipeline) {
		p.connect = fn
	}
}

// WithRecorder sets the recovery recorder for unparseable model responses.
func WithRecorder(r *payload.Recorder) Option {
	return func(p *Pipeline) {
		p.recorder = r
	}
}

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// NewPipeline creates a pipeline. The factory binds the configured provider
// and model; modelName is echoed in generation results.
func NewPipeline(store session.Store, factory ClientFactory, modelName string, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:     store,
		newClient: factory,
		modelName: modelName,
		connect: func(ctx context.Context, creds salesforce.Credentials) (salesforce.Connection, error) {
			return salesforce.Connect(ctx, creds)
		},
		recorder: payload.NewRecorder("", nil),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ExtractRequest carries everything the extraction step needs. The API key
// belongs to the model provider, not Salesforce.
type ExtractRequest struct {
	Credentials        salesforce.Credentials
	APIKey             string
	UseCaseDescription string
}

// ExtractResult is the client-facing outcome of step 1.
type ExtractResult struct {
	SessionID       string            `json:"session_id"`
	UseCases        []prompts.UseCase `json:"use_cases"`
	MetadataSummary metadata.Summary  `json:"metadata_summary"`
}

// GenerateResult is the client-facing outcome of step 2.
type GenerateResult struct {
	SessionID           string               `json:"session_id"`
	TotalPrompts        int                  `json:"total_prompts"`
	Prompts             []prompts.TestPrompt `json:"prompts"`
	GenerationTimestamp time.Time            `json:"generation_timestamp"`
	Model               string               `json:"model"`
	TokensUsed          llm.TokenUsage       `json:"tokens_used"`
}
