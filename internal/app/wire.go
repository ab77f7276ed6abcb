// Package app assembles the garden services from configuration.
// It is the composition root shared by the API server and the CLI.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/garden/internal/config"
	"github.com/kailas-cloud/garden/internal/db"
	dbRedis "github.com/kailas-cloud/garden/internal/db/redis"
	"github.com/kailas-cloud/garden/internal/domain/content"
	"github.com/kailas-cloud/garden/internal/fixtures"
	budgetrepo "github.com/kailas-cloud/garden/internal/repository/budget"
	contentrepo "github.com/kailas-cloud/garden/internal/repository/content"
	pgrepo "github.com/kailas-cloud/garden/internal/repository/content/postgres"
	sqliterepo "github.com/kailas-cloud/garden/internal/repository/content/sqlite"
	openaiChat "github.com/kailas-cloud/garden/internal/transport/openai"
	completionuc "github.com/kailas-cloud/garden/internal/usecase/completion"
	healthuc "github.com/kailas-cloud/garden/internal/usecase/health"
	searchuc "github.com/kailas-cloud/garden/internal/usecase/search"
)

// ContentDeleter removes a single record. A missing record is domain.ErrNotFound.
type ContentDeleter interface {
	Delete(ctx context.Context, kind content.Kind, id string) error
}

// ContentStore is every capability the services need from a content backend.
type ContentStore interface {
	searchuc.ContentReader
	fixtures.Writer
	ContentDeleter
	healthuc.DBPinger
}

// Storage is an opened content backend.
type Storage struct {
	Content ContentStore
	// KV is the rueidis store, nil for SQL drivers. Budget counters persist only here.
	KV    db.Store
	close func()
}

// Close releases the backend.
func (s *Storage) Close() {
	if s.close != nil {
		s.close()
	}
}

// OpenStorage connects to the configured driver and waits until it answers.
func OpenStorage(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (*Storage, error) {
	readiness := time.Duration(cfg.ReadinessTimeout) * time.Second

	switch cfg.Driver {
	case config.DriverValkey, config.DriverRedis:
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:      cfg.Addrs,
			Password:   cfg.Password,
			ClientName: "garden",
		})
		if err != nil {
			return nil, fmt.Errorf("create %s store: %w", cfg.Driver, err)
		}
		if err := store.WaitForReady(ctx, readiness); err != nil {
			store.Close()
			return nil, fmt.Errorf("%s not ready: %w", cfg.Driver, err)
		}
		return &Storage{Content: kvContent{contentrepo.New(store), store}, KV: store, close: store.Close}, nil

	case config.DriverPostgres:
		rctx, cancel := context.WithTimeout(ctx, readiness)
		defer cancel()
		repo, err := pgrepo.New(rctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return &Storage{Content: repo, close: repo.Close}, nil

	case config.DriverSQLite:
		repo, err := sqliterepo.New(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return &Storage{Content: repo, close: func() {
			if err := repo.Close(); err != nil {
				logger.Warn("Failed to close sqlite", zap.Error(err))
			}
		}}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// kvContent pairs the hash repository with the store's Ping.
type kvContent struct {
	*contentrepo.Repo
	pinger db.Pinger
}

func (c kvContent) Ping(ctx context.Context) error {
	if err := c.pinger.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Completion is the assembled answer-generation chain.
type Completion struct {
	Generator *completionuc.Generator
	// Budget is nil when no limit is configured or no primary provider exists.
	Budget *completionuc.BudgetTracker
	// Checkers maps provider names to health probes.
	Checkers map[string]healthuc.CompletionChecker
}

// BuildCompletion wires primary (budgeted, instrumented) and fallback providers.
// kv may be nil, in which case budget counters live in memory only.
func BuildCompletion(ctx context.Context, cfg config.CompletionConfig, kv db.Store, logger *zap.Logger) *Completion {
	primary, fallback := openaiChat.NewProviders(completionuc.Config{
		PrimaryAPIKey:   cfg.Primary.APIKey,
		PrimaryBaseURL:  cfg.Primary.BaseURL,
		PrimaryModel:    cfg.Primary.Model,
		FallbackBaseURL: cfg.Fallback.BaseURL,
		FallbackModel:   cfg.Fallback.Model,
	}, logger)

	out := &Completion{Checkers: make(map[string]healthuc.CompletionChecker)}

	if primary != nil {
		// A nil *BudgetTracker inside the interface would not compare equal to nil.
		var checker completionuc.BudgetChecker
		if cfg.Budget.Enabled() {
			action := completionuc.BudgetActionWarn
			if cfg.Budget.Action == string(completionuc.BudgetActionReject) {
				action = completionuc.BudgetActionReject
			}
			out.Budget = completionuc.NewBudgetTracker(
				primary.Name(), cfg.Budget.DailyTokenLimit, cfg.Budget.MonthlyTokenLimit, action, logger,
			)
			if kv != nil {
				out.Budget.WithStore(ctx, budgetrepo.New(kv, budgetrepo.DefaultDailyTTL, budgetrepo.DefaultMonthlyTTL))
			}
			checker = out.Budget
		}
		instrumented := completionuc.NewInstrumentedProvider(primary, cfg.Primary.Model, checker, logger)
		primary = instrumented
		out.Checkers[instrumented.Name()] = instrumented
	}
	if fallback != nil {
		if hc, ok := fallback.(healthuc.CompletionChecker); ok {
			out.Checkers[fallback.Name()] = hc
		}
	}

	out.Generator = completionuc.NewGenerator(
		primary, fallback, time.Duration(cfg.TimeoutSec)*time.Second, logger,
	)
	return out
}

// HasProvider reports whether any completion provider is configured.
func (c *Completion) HasProvider() bool {
	return c.Generator.Primary() != nil || len(c.Checkers) > 0
}

// SearchOptions maps configuration onto pipeline options.
func SearchOptions(cfg config.SearchConfig) searchuc.Options {
	return searchuc.Options{
		Weights:           cfg.Weights,
		MaxContextItems:   cfg.MaxContextItems,
		MaxCharsPerItem:   cfg.MaxCharsPerItem,
		FallbackThreshold: cfg.FallbackThreshold,
	}
}
