package completion

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/garden/internal/domain"
	logpkg "github.com/kailas-cloud/garden/internal/logger"
)

// DefaultTimeout bounds a single provider attempt.
const DefaultTimeout = 15 * time.Second

// Generator asks the primary provider, then the keyless fallback provider.
// It sits in the synchronous request path: one attempt per provider, no retries, no backoff.
type Generator struct {
	primary  Provider
	fallback Provider
	timeout  time.Duration
	logger   *zap.Logger
}

// NewGenerator creates a generator. Either provider may be nil (skipped); a primary
// without credentials should be passed as nil by the caller.
func NewGenerator(primary, fallback Provider, timeout time.Duration, logger *zap.Logger) *Generator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{primary: primary, fallback: fallback, timeout: timeout, logger: logger}
}

// Generate returns the first non-empty completion text, or ok=false when every
// provider failed. Provider errors never escape this boundary.
func (g *Generator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, bool) {
	messages := []Message{
		{Role: RoleSystem, Content: systemPrompt},
		{Role: RoleUser, Content: userPrompt},
	}

	for _, p := range []Provider{g.primary, g.fallback} {
		if p == nil {
			continue
		}
		if text, ok := g.attempt(ctx, p, messages); ok {
			return text, true
		}
	}
	return "", false
}

func (g *Generator) attempt(ctx context.Context, p Provider, messages []Message) (string, bool) {
	log := logpkg.FromContextOr(ctx, g.logger)

	attemptCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	res, err := p.Complete(attemptCtx, messages)
	if err != nil {
		log.Warn("Completion provider failed, falling through",
			zap.String("provider", p.Name()),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return "", false
	}
	if strings.TrimSpace(res.Text) == "" {
		log.Warn("Completion provider returned empty content, falling through",
			zap.String("provider", p.Name()),
			zap.Duration("duration", time.Since(start)),
		)
		return "", false
	}

	domain.UsageFromContext(ctx).Record(p.Name(), res.TotalTokens)
	log.Debug("Completion succeeded",
		zap.String("provider", p.Name()),
		zap.Duration("duration", time.Since(start)),
		zap.Int("total_tokens", res.TotalTokens),
	)
	return res.Text, true
}

// Primary returns the keyed provider, nil when none is configured.
func (g *Generator) Primary() Provider { return g.primary }
