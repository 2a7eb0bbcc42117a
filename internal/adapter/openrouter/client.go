// Package openrouter implements the llm.ChatClient port against the
// OpenRouter chat-completions API.
package openrouter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/promptana/promptana/internal/config"
	"github.com/promptana/promptana/internal/port/llm"
	"github.com/promptana/promptana/internal/resilience"
)

// Client calls OpenRouter through its OpenAI-compatible surface.
type Client struct {
	api     *openai.Client
	breaker *resilience.Breaker
}

// NewClient creates an OpenRouter client from config. The API key is read
// once at startup; a missing key surfaces as provider errors at call time,
// never as a panic.
func NewClient(cfg config.OpenRouter) *Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	apiCfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	return &Client{api: openai.NewClientWithConfig(apiCfg)}
}

// SetBreaker attaches a circuit breaker to all outgoing calls.
func (c *Client) SetBreaker(b *resilience.Breaker) {
	c.breaker = b
}

// Complete performs one synchronous chat completion. Failures come back as
// *llm.CallError classified into timeout or error; there are no retries.
func (c *Client) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	messages := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}

	apiReq := openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	var resp openai.ChatCompletionResponse
	call := func() error {
		var err error
		resp, err = c.api.CreateChatCompletion(ctx, apiReq)
		return err
	}

	var err error
	if c.breaker != nil {
		err = c.breaker.Execute(call)
	} else {
		err = call()
	}
	if err != nil {
		return nil, classify(ctx, err)
	}

	if len(resp.Choices) == 0 {
		return nil, &llm.CallError{Outcome: llm.OutcomeError, Message: "provider returned no choices"}
	}

	out := &llm.Response{
		Content: resp.Choices[0].Message.Content,
		Model:   resp.Model,
	}
	if resp.Usage.TotalTokens > 0 {
		out.Usage = &llm.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}
	out.Metadata, _ = json.Marshal(map[string]any{
		"provider":      "openrouter",
		"id":            resp.ID,
		"model":         resp.Model,
		"finish_reason": string(resp.Choices[0].FinishReason),
		"created":       resp.Created,
	})

	return out, nil
}

// classify maps transport and API failures to the two run outcomes. Deadline
// expiry and gateway-timeout statuses are timeouts; everything else is a
// provider error.
func classify(ctx context.Context, err error) *llm.CallError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &llm.CallError{Outcome: llm.OutcomeTimeout, Message: "model call exceeded deadline"}
	}
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return &llm.CallError{Outcome: llm.OutcomeError, Message: "provider temporarily unavailable"}
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusGatewayTimeout, 524:
			return &llm.CallError{Outcome: llm.OutcomeTimeout, Message: apiErr.Message}
		default:
			return &llm.CallError{Outcome: llm.OutcomeError, Message: apiErr.Message}
		}
	}

	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &llm.CallError{Outcome: llm.OutcomeTimeout, Message: "model call timed out"}
	}

	return &llm.CallError{Outcome: llm.OutcomeError, Message: err.Error()}
}
