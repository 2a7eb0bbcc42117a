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
	"github.com/promptana/promptana/internal/domain/prompt"
	"github.com/promptana/promptana/internal/domain/run"
	"github.com/promptana/promptana/internal/logger"
	"github.com/promptana/promptana/internal/port/database"
	"github.com/promptana/promptana/internal/port/llm"
)

// RunService executes prompts against the model provider and records every
// attempt, successful or not.
type RunService struct {
	store     database.Store
	chat      llm.ChatClient
	preflight llm.Preflight
	metrics   *otel.Metrics
	cfg       config.OpenRouter
	allowed   map[string]bool
}

// NewRunService creates a new RunService.
func NewRunService(store database.Store, chat llm.ChatClient, preflight llm.Preflight, metrics *otel.Metrics, cfg config.OpenRouter) *RunService {
	allowed := make(map[string]bool, len(cfg.Models))
	for _, m := range cfg.Models {
		allowed[m] = true
	}
	return &RunService{
		store:     store,
		chat:      chat,
		preflight: preflight,
		metrics:   metrics,
		cfg:       cfg,
		allowed:   allowed,
	}
}

// AllowedModels exposes the model allow-list for the HTTP layer.
func (s *RunService) AllowedModels() []string {
	return s.cfg.Models
}

// Execute runs a prompt synchronously against the chosen model. The effective
// text is the content override when one is given, otherwise the current
// version content with {{variable}} placeholders substituted. Failed calls
// are persisted as error or timeout runs before the error is surfaced.
func (s *RunService) Execute(ctx context.Context, userID, promptID string, req run.ExecuteRequest) (*run.Run, error) {
	if err := req.Validate(s.allowed); err != nil {
		return nil, err
	}

	p, err := s.store.GetPrompt(ctx, userID, promptID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound("prompt not found")
		}
		return nil, err
	}

	text, err := s.effectiveText(ctx, userID, p, req.Input)
	if err != nil {
		return nil, err
	}

	if err := s.preflight.CheckQuota(ctx, userID); err != nil {
		return nil, domain.QuotaExceeded("model-call quota exhausted")
	}
	if err := s.preflight.CheckRate(ctx, userID); err != nil {
		return nil, domain.RateLimited("too many model calls")
	}

	if s.metrics != nil {
		s.metrics.RunsStarted.Add(ctx, 1)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.RunTimeout)
	defer cancel()

	start := time.Now()
	resp, callErr := s.chat.Complete(callCtx, llm.Request{
		Model: req.Model,
		Messages: []llm.Message{
			{Role: "user", Content: text},
		},
	})
	latency := time.Since(start)

	r := &run.Run{
		UserID:    userID,
		PromptID:  promptID,
		Model:     req.Model,
		Input:     req.Input,
		LatencyMS: latency.Milliseconds(),
	}
	if callErr != nil {
		r.Status = run.StatusError
		var ce *llm.CallError
		if errors.As(callErr, &ce) && ce.Outcome == llm.OutcomeTimeout {
			r.Status = run.StatusTimeout
		}
		msg := callErr.Error()
		r.Error = &msg
	} else {
		r.Status = run.StatusSuccess
		r.Output = &resp.Content
		r.Metadata = resp.Metadata
		if resp.Usage != nil {
			r.Usage = &run.Usage{
				PromptTokens:     resp.Usage.PromptTokens,
				CompletionTokens: resp.Usage.CompletionTokens,
				TotalTokens:      resp.Usage.TotalTokens,
			}
		}
	}

	evFields := map[string]any{
		"model":      r.Model,
		"status":     r.Status,
		"latency_ms": r.LatencyMS,
	}
	if r.Usage != nil {
		evFields["total_tokens"] = r.Usage.TotalTokens
	}
	payload, _ := json.Marshal(evFields)
	ev := &run.Event{
		UserID:   userID,
		Type:     run.EventRun,
		PromptID: &promptID,
		Payload:  payload,
	}
	if err := s.store.CreateRun(ctx, r, ev); err != nil {
		return nil, fmt.Errorf("persist run: %w", err)
	}

	s.recordRunMetrics(ctx, r, latency)

	if callErr != nil {
		logger.FromContext(ctx).Warn("model call failed",
			"prompt_id", promptID, "model", req.Model, "status", string(r.Status))
		return nil, domain.OpenRouter(*r.Error)
	}
	return r, nil
}

// Get returns one run.
func (s *RunService) Get(ctx context.Context, userID, id string) (*run.Run, error) {
	r, err := s.store.GetRun(ctx, userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound("run not found")
		}
		return nil, err
	}
	return r, nil
}

// List returns a page of a prompt's runs, newest first.
func (s *RunService) List(ctx context.Context, userID, promptID string, page, pageSize int) (domain.Page[run.Run], error) {
	page, pageSize = domain.NormalizePage(page, pageSize)

	if _, err := s.store.GetPrompt(ctx, userID, promptID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Page[run.Run]{}, domain.NotFound("prompt not found")
		}
		return domain.Page[run.Run]{}, err
	}

	items, total, err := s.store.ListRuns(ctx, userID, promptID, page, pageSize)
	if err != nil {
		return domain.Page[run.Run]{}, fmt.Errorf("list runs: %w", err)
	}
	return domain.NewPage(items, page, pageSize, total), nil
}

// effectiveText resolves what is actually sent to the model: the trimmed
// content override when non-empty, otherwise the current version content with
// variables substituted.
func (s *RunService) effectiveText(ctx context.Context, userID string, p *prompt.Prompt, input run.Input) (string, error) {
	if override := strings.TrimSpace(input.ContentOverride); override != "" {
		return override, nil
	}

	if p.CurrentVersionID == nil {
		return "", domain.ValidationFailed(map[string]string{
			"input": "prompt has no content to run",
		})
	}
	v, err := s.store.GetVersion(ctx, userID, p.ID, *p.CurrentVersionID)
	if err != nil {
		return "", fmt.Errorf("load current version: %w", err)
	}
	return substituteVariables(v.Content, input.Variables), nil
}

// substituteVariables replaces {{name}} placeholders. Unknown placeholders are
// left as-is rather than erased, so a missing variable is visible in the output.
func substituteVariables(content string, vars map[string]string) string {
	if len(vars) == 0 {
		return content
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(content)
}

func (s *RunService) recordRunMetrics(ctx context.Context, r *run.Run, latency time.Duration) {
	if s.metrics == nil {
		return
	}
	if r.Status != run.StatusSuccess {
		s.metrics.RunsFailed.Add(ctx, 1)
	}
	s.metrics.RunLatency.Record(ctx, latency.Seconds())
	if r.Usage != nil {
		s.metrics.TokensUsed.Add(ctx, int64(r.Usage.TotalTokens))
	}
}
