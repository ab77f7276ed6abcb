package garden

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/garden/internal/db"
	dbRedis "github.com/kailas-cloud/garden/internal/db/redis"
	"github.com/kailas-cloud/garden/internal/domain/content"
	"github.com/kailas-cloud/garden/internal/fixtures"
	contentrepo "github.com/kailas-cloud/garden/internal/repository/content"
	openaiChat "github.com/kailas-cloud/garden/internal/transport/openai"
	completionuc "github.com/kailas-cloud/garden/internal/usecase/completion"
	searchuc "github.com/kailas-cloud/garden/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

type contentStore interface {
	searchuc.ContentReader
	fixtures.Writer
	Delete(ctx context.Context, kind content.Kind, id string) error
}

// Client is the garden SDK entry point.
type Client struct {
	store   db.Store
	content contentStore
	search  *searchuc.Service
}

// New creates a garden Client and connects to the database.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("garden: database address required (use WithValkey or WithRedis)")
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("garden: database not ready: %w", err)
	}

	c := wireClient(contentrepo.New(store), cfg)
	c.store = store
	return c, nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "valkey", "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:      cfg.addrs,
			Password:   cfg.password,
			ClientName: "garden-sdk",
		})
		if err != nil {
			return nil, fmt.Errorf("garden: create %s store: %w", cfg.driver, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("garden: unknown driver %q", cfg.driver)
	}
}

func wireClient(content contentStore, cfg *clientConfig) *Client {
	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	primary, fallback := openaiChat.NewProviders(completionuc.Config{
		PrimaryAPIKey:   cfg.primaryAPIKey,
		PrimaryBaseURL:  cfg.primaryBaseURL,
		PrimaryModel:    cfg.primaryModel,
		FallbackBaseURL: cfg.fallbackBaseURL,
		FallbackModel:   cfg.fallbackModel,
	}, logger)
	gen := completionuc.NewGenerator(primary, fallback, cfg.timeout, logger)

	return &Client{
		content: content,
		search:  searchuc.New(content, gen, searchuc.Options{Weights: cfg.weights}, logger),
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// PutArticle creates or replaces an article.
func (c *Client) PutArticle(ctx context.Context, a *Article) error {
	d := a.toDomain()
	if err := c.content.PutArticle(ctx, &d); err != nil {
		return fmt.Errorf("put article: %w", err)
	}
	return nil
}

// PutNote creates or replaces a note.
func (c *Client) PutNote(ctx context.Context, n *Note) error {
	d := n.toDomain()
	if err := c.content.PutNote(ctx, &d); err != nil {
		return fmt.Errorf("put note: %w", err)
	}
	return nil
}

// PutProject creates or replaces a project.
func (c *Client) PutProject(ctx context.Context, p *Project) error {
	d := p.toDomain()
	if err := c.content.PutProject(ctx, &d); err != nil {
		return fmt.Errorf("put project: %w", err)
	}
	return nil
}

// Delete removes one record. A missing record returns ErrNotFound.
func (c *Client) Delete(ctx context.Context, kind Kind, id string) error {
	if err := c.content.Delete(ctx, content.Kind(kind), id); err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	return nil
}

// Seed loads a YAML fixture file and stores every record in it.
func (c *Client) Seed(ctx context.Context, path string) (int, error) {
	set, err := fixtures.LoadFile(path)
	if err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}
	n, err := set.Write(ctx, c.content)
	if err != nil {
		return n, fmt.Errorf("seed: %w", err)
	}
	return n, nil
}

// Search starts a new query.
func (c *Client) Search() *SearchBuilder {
	return &SearchBuilder{svc: c.search, mode: ModeAuto}
}
