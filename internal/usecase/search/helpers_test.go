package search

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/kailas-cloud/garden/internal/domain/content"
)

type stubReader struct {
	articles []content.Article
	notes    []content.Note
	projects []content.Project

	articlesErr error
	notesErr    error
	projectsErr error

	calls atomic.Int32
}

func (s *stubReader) ListPublishedArticles(context.Context) ([]content.Article, error) {
	s.calls.Add(1)
	return s.articles, s.articlesErr
}

func (s *stubReader) ListNotes(context.Context) ([]content.Note, error) {
	s.calls.Add(1)
	return s.notes, s.notesErr
}

func (s *stubReader) ListProjects(context.Context) ([]content.Project, error) {
	s.calls.Add(1)
	return s.projects, s.projectsErr
}

type stubGenerator struct {
	text   string
	ok     bool
	calls  int
	system string
	user   string
}

func (g *stubGenerator) Generate(_ context.Context, systemPrompt, userPrompt string) (string, bool) {
	g.calls++
	g.system = systemPrompt
	g.user = userPrompt
	return g.text, g.ok
}

var day = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func gardenReader() *stubReader {
	return &stubReader{
		articles: []content.Article{
			{ID: "a1", Slug: "learning-typescript", Title: "Learning TypeScript", Excerpt: "Types for JS",
				Content: "A gentle tour of the type system.", Tags: []string{"typescript", "web"}, Published: true, CreatedAt: day},
			{ID: "a2", Slug: "rust-notes", Title: "Rust in practice", Excerpt: "Systems work",
				Content: "Ownership and borrowing explained.", Tags: []string{"rust"}, Published: true, CreatedAt: day},
		},
		notes: []content.Note{
			{ID: "n1", Slug: "ts-tips", Title: "Quick tips", Content: "Prefer typescript strict mode.", CreatedAt: day},
			{ID: "n2", Slug: "garden", Title: "Gardening log", Content: "Tomatoes are doing well.", CreatedAt: day},
		},
		projects: []content.Project{
			{ID: "p1", Slug: "garden-site", Title: "Garden site", Description: "This website",
				LongDescription: "Built with typescript and a lot of coffee.", Tags: []string{"web"}, CreatedAt: day},
		},
	}
}
