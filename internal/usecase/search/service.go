package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/garden/internal/domain/search/relevance"
	"github.com/kailas-cloud/garden/internal/domain/search/request"
	"github.com/kailas-cloud/garden/internal/domain/search/result"
	logpkg "github.com/kailas-cloud/garden/internal/logger"
	"github.com/kailas-cloud/garden/internal/metrics"
)

// Options tunes the pipeline. Zero values use the defaults.
type Options struct {
	Weights           relevance.Weights
	MaxContextItems   int
	MaxCharsPerItem   int
	FallbackThreshold float64
}

// Service answers a query from the garden's content: aggregate, rank, ask the
// model, then reconcile or fall back to local scores.
type Service struct {
	reader    ContentReader
	generator AnswerGenerator
	scorer    relevance.Scorer
	resolver  Resolver
	maxItems  int
	maxChars  int
	logger    *zap.Logger
}

// New creates a search service. generator may be nil, in which case every
// request takes the local fallback path.
func New(reader ContentReader, generator AnswerGenerator, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		reader:    reader,
		generator: generator,
		scorer:    relevance.NewScorer(opts.Weights),
		resolver:  NewResolver(opts.FallbackThreshold),
		maxItems:  opts.MaxContextItems,
		maxChars:  opts.MaxCharsPerItem,
		logger:    logger,
	}
}

// Search runs the pipeline for a validated request. Only storage failures are returned.
func (s *Service) Search(ctx context.Context, req *request.Request) (result.Response, error) {
	log := logpkg.FromContextOr(ctx, s.logger)
	start := time.Now()

	items, err := Aggregate(ctx, s.reader, log)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		metrics.SetOutcome(ctx, metrics.OutcomeError)
		return result.Response{}, fmt.Errorf("aggregate: %w", err)
	}
	metrics.SearchAggregatedItems.Observe(float64(len(items)))

	scored := ScoreItems(s.scorer, req.Query(), items)
	window := BuildContext(scored, s.maxItems, s.maxChars)

	var (
		raw string
		ok  bool
	)
	if s.generator != nil {
		raw, ok = s.generator.Generate(ctx, SystemPrompt(), UserPrompt(req.Query(), window.Text))
	}

	res := s.resolver.Resolve(req.Query(), raw, ok, window, scored, req.Limit())
	metrics.SearchRequestsTotal.WithLabelValues(res.Outcome).Inc()
	metrics.SetOutcome(ctx, res.Outcome)

	log.Info("Search resolved",
		zap.String("mode", string(req.Mode())),
		zap.Int("limit", req.Limit()),
		zap.Int("items", len(items)),
		zap.Int("window", len(window.Selected)),
		zap.String("outcome", res.Outcome),
		zap.Int("results", len(res.Response.Results)),
		zap.Int("dropped_references", res.Dropped),
		zap.Duration("duration", time.Since(start)),
	)
	return res.Response, nil
}
