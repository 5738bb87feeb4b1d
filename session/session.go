// Package session holds per-workflow state between the extraction and
// generation steps, behind a Store interface with in-memory and NATS KV
// backends.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/forgelabs/promptforge/llm"
	"github.com/forgelabs/promptforge/metadata"
	"github.com/forgelabs/promptforge/prompts"
)

// ErrNotFound is returned when a session id is unknown. Deletes of unknown
// ids are not errors.
var ErrNotFound = errors.New("session not found")

// State is the session lifecycle position. There is no transition back from
// StateGenerated; re-extraction creates a new session.
type State string

const (
	StateExtracted State = "extracted"
	StateGenerated State = "generated"
)

// Session is the unit of state shared across workflow steps. The API key is
// held for the generation step and never returned to clients.
type Session struct {
	ID        string    `json:"id"`
	State     State     `json:"state"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Document           *metadata.Document `json:"document"`
	UseCaseDescription string             `json:"use_case_description"`
	UseCases           []prompts.UseCase  `json:"use_cases"`

	Prompts             []prompts.TestPrompt `json:"prompts,omitempty"`
	GenerationTimestamp time.Time            `json:"generation_timestamp,omitzero"`
	TokensUsed          llm.TokenUsage       `json:"tokens_used"`

	APIKey string `json:"api_key"`
}

// New creates an extracted-state session with a fresh UUID.
func New(doc *metadata.Document, description string, useCases []prompts.UseCase, apiKey string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:                 uuid.New().String(),
		State:              StateExtracted,
		CreatedAt:          now,
		UpdatedAt:          now,
		Document:           doc,
		UseCaseDescription: description,
		UseCases:           useCases,
		APIKey:             apiKey,
	}
}

// Clone deep-copies the session through its JSON form. Sessions are plain
// serializable data, so this cannot fail in practice.
func (s *Session) Clone() *Session {
	data, err := json.Marshal(s)
	if err != nil {
		panic(fmt.Sprintf("session marshal: %v", err))
	}
	var out Session
	if err := json.Unmarshal(data, &out); err != nil {
		panic(fmt.Sprintf("session unmarshal: %v", err))
	}
	return &out
}

// Store persists sessions. Implementations must make Update atomic per
// session id: concurrent updates to the same session serialize, and each
// mutate function sees the latest stored state.
type Store interface {
	// Put stores a session under its ID, replacing any existing value.
	Put(ctx context.Context, s *Session) error

	// Get returns the session or ErrNotFound. The returned value is the
	// caller's copy; mutations do not reach the store.
	Get(ctx context.Context, id string) (*Session, error)

	// Delete removes the session. Deleting an unknown id is a no-op.
	Delete(ctx context.Context, id string) error

	// Update applies mutate to the stored session and persists the result
	// atomically. Returns ErrNotFound for unknown ids; an error from
	// mutate aborts the update and is returned unchanged.
	Update(ctx context.Context, id string, mutate func(*Session) error) error
}
