package completion

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/garden/internal/metrics"
)

// BudgetChecker enforces a token budget around a provider.
type BudgetChecker interface {
	Check(ctx context.Context) error
	Record(tokens int64)
	RemainingDaily() int64
	RemainingMonthly() int64
}

// InstrumentedProvider wraps a Provider with budget enforcement and logging.
// Request, duration and token metrics are recorded by the transport.
type InstrumentedProvider struct {
	inner  Provider
	model  string
	budget BudgetChecker
	logger *zap.Logger
}

// NewInstrumentedProvider wraps inner. budget may be nil.
func NewInstrumentedProvider(inner Provider, model string, budget BudgetChecker, logger *zap.Logger) *InstrumentedProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstrumentedProvider{inner: inner, model: model, budget: budget, logger: logger}
}

// Name returns the wrapped provider name.
func (p *InstrumentedProvider) Name() string { return p.inner.Name() }

// Complete checks the budget, delegates, and records token usage.
func (p *InstrumentedProvider) Complete(ctx context.Context, messages []Message) (Result, error) {
	if p.budget != nil {
		if err := p.budget.Check(ctx); err != nil {
			p.logger.Error("Completion budget exceeded",
				zap.String("provider", p.inner.Name()),
				zap.String("model", p.model),
				zap.Error(err),
			)
			return Result{}, fmt.Errorf("budget check: %w", err)
		}
	}

	start := time.Now()
	res, err := p.inner.Complete(ctx, messages)
	duration := time.Since(start)
	if err != nil {
		return Result{}, fmt.Errorf("complete: %w", err)
	}

	if p.budget != nil && res.TotalTokens > 0 {
		p.budget.Record(int64(res.TotalTokens))
		gauge := metrics.CompletionBudgetTokensRemaining
		gauge.WithLabelValues(p.inner.Name(), "daily").Set(float64(p.budget.RemainingDaily()))
		gauge.WithLabelValues(p.inner.Name(), "monthly").Set(float64(p.budget.RemainingMonthly()))
	}

	p.logger.Debug("Completion request completed",
		zap.String("provider", p.inner.Name()),
		zap.String("model", p.model),
		zap.Duration("duration", duration),
		zap.Int("prompt_tokens", res.PromptTokens),
		zap.Int("completion_tokens", res.CompletionTokens),
		zap.Int("total_tokens", res.TotalTokens),
	)
	return res, nil
}

// HealthCheck delegates to the wrapped provider when it supports health checks.
func (p *InstrumentedProvider) HealthCheck(ctx context.Context) error {
	if hc, ok := p.inner.(HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}
