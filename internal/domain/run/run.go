// Package run defines the Run execution record and the append-only RunEvent
// audit log.
package run

import (
	"encoding/json"
	"time"
)

// Status classifies the outcome of one execution attempt. Every run lands in
// exactly one terminal state.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusTimeout Status = "timeout"
)

// Input is the raw payload a run was executed with.
type Input struct {
	Variables map[string]string `json:"variables,omitempty"`
	// ContentOverride, when non-empty after trimming, replaces the prompt's
	// current version content for this run only.
	ContentOverride string `json:"content_override,omitempty"`
}

// Usage is token accounting extracted from the provider response.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Run is an immutable record of one execution attempt. Failed runs are
// recorded, not silently dropped.
type Run struct {
	ID        string          `json:"id"`
	UserID    string          `json:"-"`
	PromptID  string          `json:"prompt_id"`
	Model     string          `json:"model"`
	Status    Status          `json:"status"`
	Input     Input           `json:"input"`
	Output    *string         `json:"output,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	Usage     *Usage          `json:"usage,omitempty"`
	LatencyMS int64           `json:"latency_ms"`
	Error     *string         `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// EventType tags run-event audit rows.
type EventType string

const (
	EventRun          EventType = "run"
	EventImprove      EventType = "improve"
	EventImproveSaved EventType = "improve_saved"
	EventDelete       EventType = "delete"
	EventRestore      EventType = "restore"
)

// Event is an append-only audit/analytics row; never updated.
type Event struct {
	ID        string          `json:"id"`
	UserID    string          `json:"-"`
	Type      EventType       `json:"type"`
	PromptID  *string         `json:"prompt_id,omitempty"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// SetPayloadField sets one key in the payload object, treating a missing
// payload as empty. Stores use it to stamp ids that only exist after an
// insert, before the event row is written.
func (e *Event) SetPayloadField(key string, value any) {
	fields := map[string]any{}
	if len(e.Payload) > 0 {
		_ = json.Unmarshal(e.Payload, &fields)
	}
	fields[key] = value
	e.Payload, _ = json.Marshal(fields)
}
