package search

import (
	"context"

	"github.com/kailas-cloud/garden/internal/domain/content"
)

// ContentReader lists the three content collections. Implementations live in
// internal/repository/content.
type ContentReader interface {
	ListPublishedArticles(ctx context.Context) ([]content.Article, error)
	ListNotes(ctx context.Context) ([]content.Note, error)
	ListProjects(ctx context.Context) ([]content.Project, error)
}

// AnswerGenerator produces a completion or reports that none is available.
type AnswerGenerator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, bool)
}
