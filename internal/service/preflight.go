package service

import "context"

// PassthroughPreflight satisfies llm.Preflight without enforcing anything.
// Per-user quota and rate policies plug in here once billing exists.
type PassthroughPreflight struct{}

// NewPassthroughPreflight creates the no-op pre-flight checker.
func NewPassthroughPreflight() *PassthroughPreflight {
	return &PassthroughPreflight{}
}

// CheckQuota always passes.
func (*PassthroughPreflight) CheckQuota(context.Context, string) error { return nil }

// CheckRate always passes.
func (*PassthroughPreflight) CheckRate(context.Context, string) error { return nil }
