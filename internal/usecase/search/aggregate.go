package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/garden/internal/domain"
	"github.com/kailas-cloud/garden/internal/domain/content"
	"github.com/kailas-cloud/garden/internal/domain/search/item"
)

// Aggregate reads the three collections concurrently and flattens them into items,
// articles first, then notes, then projects. Any read failure fails the whole call.
// Records that cannot form an item and repeated ids within a kind are skipped.
func Aggregate(ctx context.Context, reader ContentReader, logger *zap.Logger) ([]item.Item, error) {
	var (
		articles []content.Article
		notes    []content.Note
		projects []content.Project
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if articles, err = reader.ListPublishedArticles(gctx); err != nil {
			return fmt.Errorf("list articles: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if notes, err = reader.ListNotes(gctx); err != nil {
			return fmt.Errorf("list notes: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if projects, err = reader.ListProjects(gctx); err != nil {
			return fmt.Errorf("list projects: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}

	items := make([]item.Item, 0, len(articles)+len(notes)+len(projects))
	seen := make(map[string]struct{}, cap(items))
	add := func(it item.Item, err error) {
		if err != nil {
			logger.Warn("Skipping unsearchable record", zap.Error(err))
			return
		}
		key := string(it.Kind()) + ":" + it.ID()
		if _, dup := seen[key]; dup {
			logger.Warn("Skipping duplicate record",
				zap.String("kind", string(it.Kind())),
				zap.String("id", it.ID()),
			)
			return
		}
		seen[key] = struct{}{}
		items = append(items, it)
	}

	for i := range articles {
		add(item.FromArticle(&articles[i]))
	}
	for i := range notes {
		add(item.FromNote(&notes[i]))
	}
	for i := range projects {
		add(item.FromProject(&projects[i]))
	}
	return items, nil
}
