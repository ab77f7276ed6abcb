// Package fixtures loads garden content from YAML files for seeding a store.
package fixtures

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/garden/internal/domain"
	"github.com/kailas-cloud/garden/internal/domain/content"
)

// Writer persists content records. Every content repository satisfies it.
type Writer interface {
	PutArticle(ctx context.Context, a *content.Article) error
	PutNote(ctx context.Context, n *content.Note) error
	PutProject(ctx context.Context, p *content.Project) error
}

// Set is a parsed fixture file.
type Set struct {
	Articles []content.Article
	Notes    []content.Note
	Projects []content.Project
}

// Len returns the number of records in the set.
func (s *Set) Len() int { return len(s.Articles) + len(s.Notes) + len(s.Projects) }

type file struct {
	Articles []record `yaml:"articles"`
	Notes    []record `yaml:"notes"`
	Projects []record `yaml:"projects"`
}

type record struct {
	ID              string   `yaml:"id"`
	Slug            string   `yaml:"slug"`
	Title           string   `yaml:"title"`
	Excerpt         string   `yaml:"excerpt"`
	Content         string   `yaml:"content"`
	Description     string   `yaml:"description"`
	LongDescription string   `yaml:"long_description"`
	Tags            []string `yaml:"tags"`
	Published       *bool    `yaml:"published"`
	CreatedAt       string   `yaml:"created_at"`
}

// now is replaced in tests.
var now = func() time.Time { return time.Now().UTC() }

// LoadFile reads and parses a fixture file.
func LoadFile(path string) (Set, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Set{}, fmt.Errorf("read fixtures %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes fixture YAML. Records without an id get a random UUID, records
// without a slug get one derived from the title, and articles default to published.
func Parse(data []byte) (Set, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Set{}, fmt.Errorf("parse fixtures: %w", err)
	}

	var set Set
	for i := range f.Articles {
		r := &f.Articles[i]
		created, err := r.normalize(content.KindArticle, i)
		if err != nil {
			return Set{}, err
		}
		published := r.Published == nil || *r.Published
		set.Articles = append(set.Articles, content.Article{
			ID: r.ID, Slug: r.Slug, Title: r.Title, Excerpt: r.Excerpt, Content: r.Content,
			Tags: r.Tags, Published: published, CreatedAt: created,
		})
	}
	for i := range f.Notes {
		r := &f.Notes[i]
		created, err := r.normalize(content.KindNote, i)
		if err != nil {
			return Set{}, err
		}
		set.Notes = append(set.Notes, content.Note{
			ID: r.ID, Slug: r.Slug, Title: r.Title, Content: r.Content, Tags: r.Tags, CreatedAt: created,
		})
	}
	for i := range f.Projects {
		r := &f.Projects[i]
		created, err := r.normalize(content.KindProject, i)
		if err != nil {
			return Set{}, err
		}
		set.Projects = append(set.Projects, content.Project{
			ID: r.ID, Slug: r.Slug, Title: r.Title, Description: r.Description,
			LongDescription: r.LongDescription, Tags: r.Tags, CreatedAt: created,
		})
	}
	return set, nil
}

func (r *record) normalize(kind content.Kind, idx int) (time.Time, error) {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return time.Time{}, fmt.Errorf("%w: %s #%d has no title", domain.ErrInvalidContent, kind, idx+1)
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Slug == "" {
		r.Slug = slug.Make(r.Title)
	}
	if r.CreatedAt == "" {
		return now(), nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, r.CreatedAt); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %s %q has bad created_at %q",
		domain.ErrInvalidContent, kind, r.ID, r.CreatedAt)
}

// Write stores every record of the set and returns how many were written.
func (s *Set) Write(ctx context.Context, w Writer) (int, error) {
	n := 0
	for i := range s.Articles {
		if err := w.PutArticle(ctx, &s.Articles[i]); err != nil {
			return n, fmt.Errorf("article %q: %w", s.Articles[i].ID, err)
		}
		n++
	}
	for i := range s.Notes {
		if err := w.PutNote(ctx, &s.Notes[i]); err != nil {
			return n, fmt.Errorf("note %q: %w", s.Notes[i].ID, err)
		}
		n++
	}
	for i := range s.Projects {
		if err := w.PutProject(ctx, &s.Projects[i]); err != nil {
			return n, fmt.Errorf("project %q: %w", s.Projects[i].ID, err)
		}
		n++
	}
	return n, nil
}
