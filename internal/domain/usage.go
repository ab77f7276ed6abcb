package domain

import "context"

type completionUsageKey struct{}

// CompletionUsage collects completion token usage for a single HTTP request.
// The handler puts a mutable pointer into the context before calling the service;
// the generator writes after a successful completion; the handler reads it for response headers.
type CompletionUsage struct {
	TotalTokens int
	Provider    string // provider that produced the answer, empty if none did
}

// NewContextWithUsage returns a context with an embedded usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *CompletionUsage) {
	u := &CompletionUsage{}
	return context.WithValue(ctx, completionUsageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *CompletionUsage {
	u, _ := ctx.Value(completionUsageKey{}).(*CompletionUsage)
	return u
}

// Record stores the tokens consumed and the answering provider.
func (u *CompletionUsage) Record(provider string, tokens int) {
	if u != nil {
		u.TotalTokens += tokens
		u.Provider = provider
	}
}
