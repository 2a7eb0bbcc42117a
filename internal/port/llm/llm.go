// Package llm defines the model-call port and the pre-flight check port.
package llm

import "context"

// Message is one chat message sent to the provider.
type Message struct {
	Role    string
	Content string
}

// Request is a single synchronous chat-completion call. The caller bounds it
// with a context deadline; no retries are performed.
type Request struct {
	Model       string
	Messages    []Message
	Temperature float32
	MaxTokens   int
}

// Usage is the provider's token accounting, when present.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Response is a successful completion.
type Response struct {
	Content  string
	Model    string
	Usage    *Usage
	Metadata []byte
}

// Outcome classifies a failed call.
type Outcome string

const (
	OutcomeTimeout Outcome = "timeout"
	OutcomeError   Outcome = "error"
)

// CallError carries the classified outcome of a failed model call.
type CallError struct {
	Outcome Outcome
	Message string
}

func (e *CallError) Error() string {
	return string(e.Outcome) + ": " + e.Message
}

// ChatClient is the external model-call port.
type ChatClient interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Preflight gates model calls before they happen. Implementations today are
// pass-through placeholders; the port exists so quota and rate enforcement
// can be plugged in without touching the orchestration.
type Preflight interface {
	CheckQuota(ctx context.Context, userID string) error
	CheckRate(ctx context.Context, userID string) error
}
