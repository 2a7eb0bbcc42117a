package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/promptana/promptana/internal/adapter/otel"
	"github.com/promptana/promptana/internal/config"
	"github.com/promptana/promptana/internal/domain"
	"github.com/promptana/promptana/internal/domain/run"
	"github.com/promptana/promptana/internal/logger"
	"github.com/promptana/promptana/internal/port/database"
	"github.com/promptana/promptana/internal/port/llm"
)

const improveSystemPrompt = `You are an expert prompt engineer. You revise prompts to be clearer,
more specific, and more effective, while preserving the author's intent.
Respond with a JSON object of the form
{"suggestions": [{"title": "...", "content": "...", "rationale": "..."}]}
and nothing else. No markdown fences, no commentary.`

// ImproveService asks the model for revised-prompt suggestions. Suggestions
// are ephemeral: nothing becomes a version until the user saves one.
type ImproveService struct {
	store   database.Store
	chat    llm.ChatClient
	metrics *otel.Metrics
	cfg     config.OpenRouter
}

// NewImproveService creates a new ImproveService.
func NewImproveService(store database.Store, chat llm.ChatClient, metrics *otel.Metrics, cfg config.OpenRouter) *ImproveService {
	return &ImproveService{store: store, chat: chat, metrics: metrics, cfg: cfg}
}

// Improve generates suggestions for a prompt's current content. The higher
// temperature and longer deadline are deliberate: this call explores, a run
// reproduces. An improve audit event is recorded on success.
func (s *ImproveService) Improve(ctx context.Context, userID, promptID string, req run.ImproveRequest) (*run.ImproveResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.store.GetPrompt(ctx, userID, promptID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound("prompt not found")
		}
		return nil, err
	}
	if p.CurrentVersionID == nil {
		return nil, domain.ValidationFailed(map[string]string{
			"prompt": "prompt has no content to improve",
		})
	}
	v, err := s.store.GetVersion(ctx, userID, promptID, *p.CurrentVersionID)
	if err != nil {
		return nil, fmt.Errorf("load current version: %w", err)
	}

	if s.metrics != nil {
		s.metrics.ImproveRequests.Add(ctx, 1)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.ImproveTimeout)
	defer cancel()

	start := time.Now()
	resp, err := s.chat.Complete(callCtx, llm.Request{
		Model: s.cfg.ImproveModel,
		Messages: []llm.Message{
			{Role: "system", Content: improveSystemPrompt},
			{Role: "user", Content: buildImproveUserPrompt(v.Title, v.Content, req)},
		},
		Temperature: s.cfg.ImproveTemperature,
	})
	latency := time.Since(start)

	if err != nil {
		var ce *llm.CallError
		if errors.As(err, &ce) && ce.Outcome == llm.OutcomeTimeout {
			return nil, domain.OpenRouter("improvement request timed out")
		}
		return nil, domain.OpenRouter("improvement request failed")
	}

	result := parseSuggestions(resp.Content, req.Count)
	result.Model = resp.Model
	result.LatencyMS = latency.Milliseconds()

	if s.metrics != nil {
		s.metrics.ImproveLatency.Record(ctx, latency.Seconds())
		if result.Fallback {
			s.metrics.ImproveFallback.Add(ctx, 1)
		}
	}
	if result.Fallback {
		logger.FromContext(ctx).Warn("improve response was not parseable JSON, wrapped raw text",
			"prompt_id", promptID, "model", resp.Model)
	}

	payload, _ := json.Marshal(map[string]any{
		"count":    len(result.Suggestions),
		"model":    result.Model,
		"fallback": result.Fallback,
	})
	ev := &run.Event{
		UserID:   userID,
		Type:     run.EventImprove,
		PromptID: &promptID,
		Payload:  payload,
	}
	if err := s.store.CreateEvent(ctx, ev); err != nil {
		// The suggestions are already in hand; losing the audit row is not
		// worth failing the request over.
		logger.FromContext(ctx).Warn("record improve event failed", "error", err)
	}

	return result, nil
}

func buildImproveUserPrompt(title, content string, req run.ImproveRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Produce %d improved variants of the prompt below.\n\n", req.Count)
	fmt.Fprintf(&b, "Title: %s\n\nPrompt:\n%s\n", title, content)
	if req.Goals != "" {
		fmt.Fprintf(&b, "\nGoals for the revision:\n%s\n", req.Goals)
	}
	if req.Constraints != "" {
		fmt.Fprintf(&b, "\nConstraints to respect:\n%s\n", req.Constraints)
	}
	return b.String()
}

// parseSuggestions extracts structured suggestions from the model output.
// Models occasionally wrap JSON in markdown fences or prepend prose; both are
// tolerated. When nothing parseable remains, the raw text becomes a single
// fallback suggestion so the user never gets an empty answer for a call that
// was paid for.
func parseSuggestions(raw string, limit int) *run.ImproveResult {
	text := strings.TrimSpace(raw)
	jsonText := extractJSONObject(text)

	var parsed struct {
		Suggestions []run.Suggestion `json:"suggestions"`
	}
	if jsonText != "" && json.Unmarshal([]byte(jsonText), &parsed) == nil {
		valid := parsed.Suggestions[:0]
		for _, sg := range parsed.Suggestions {
			if strings.TrimSpace(sg.Content) == "" {
				continue
			}
			if strings.TrimSpace(sg.Title) == "" {
				sg.Title = "Suggested revision"
			}
			valid = append(valid, sg)
		}
		if len(valid) > 0 {
			if len(valid) > limit {
				valid = valid[:limit]
			}
			return &run.ImproveResult{Suggestions: valid}
		}
	}

	return &run.ImproveResult{
		Suggestions: []run.Suggestion{{
			Title:   "Suggested revision",
			Content: text,
		}},
		Fallback: true,
	}
}

// extractJSONObject returns the first top-level {...} block in text, which
// also strips markdown fences and surrounding prose.
func extractJSONObject(text string) string {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}
