// Package item defines the uniform searchable record built per request from
// heterogeneous content. Items are never persisted.
package item

import (
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/garden/internal/domain"
	"github.com/kailas-cloud/garden/internal/domain/content"
	"github.com/kailas-cloud/garden/internal/domain/search/relevance"
)

// DateLayout is the calendar date format of CreatedDate.
const DateLayout = "2006-01-02"

// Item is a searchable view over one content record.
type Item struct {
	kind        content.Kind
	id          string
	slug        string
	title       string
	summary     string
	body        string
	tagNames    string
	createdDate string
	score       float64
}

// New validates and creates an item. The score starts at zero.
func New(
	kind content.Kind, id, slug, title, summary, body string,
	tags []string, createdAt time.Time,
) (Item, error) {
	if !kind.IsValid() {
		return Item{}, fmt.Errorf("%w: unknown kind %q", domain.ErrInvalidContent, kind)
	}
	if id == "" {
		return Item{}, fmt.Errorf("%w: %s id is required", domain.ErrInvalidContent, kind)
	}
	if strings.TrimSpace(title) == "" {
		return Item{}, fmt.Errorf("%w: %s %s has no title", domain.ErrInvalidContent, kind, id)
	}

	var created string
	if !createdAt.IsZero() {
		created = createdAt.UTC().Format(DateLayout)
	}

	return Item{
		kind:        kind,
		id:          id,
		slug:        slug,
		title:       title,
		summary:     summary,
		body:        body,
		tagNames:    content.JoinTags(tags),
		createdDate: created,
	}, nil
}

// FromArticle maps an article: body is the full content, summary the excerpt.
func FromArticle(a *content.Article) (Item, error) {
	return New(content.KindArticle, a.ID, a.Slug, a.Title, a.Excerpt, a.Content, a.Tags, a.CreatedAt)
}

// FromNote maps a note: body is the full content, notes carry no summary.
func FromNote(n *content.Note) (Item, error) {
	return New(content.KindNote, n.ID, n.Slug, n.Title, "", n.Content, n.Tags, n.CreatedAt)
}

// FromProject maps a project: body is the long description, falling back to the short one.
func FromProject(p *content.Project) (Item, error) {
	body := p.LongDescription
	if strings.TrimSpace(body) == "" {
		body = p.Description
	}
	return New(content.KindProject, p.ID, p.Slug, p.Title, p.Description, body, p.Tags, p.CreatedAt)
}

// Kind returns the source collection tag.
func (i *Item) Kind() content.Kind { return i.kind }

// ID returns the identifier, unique within the kind.
func (i *Item) ID() string { return i.id }

// Slug returns the link identifier.
func (i *Item) Slug() string { return i.slug }

// Title returns the display title.
func (i *Item) Title() string { return i.title }

// Summary returns the short description, if any.
func (i *Item) Summary() string { return i.summary }

// Body returns the full text used for deep matching.
func (i *Item) Body() string { return i.body }

// TagNames returns the comma-joined tags.
func (i *Item) TagNames() string { return i.tagNames }

// CreatedDate returns the ISO calendar date, empty if unknown.
func (i *Item) CreatedDate() string { return i.createdDate }

// Score returns the relevance score computed for the current request.
func (i *Item) Score() float64 { return i.score }

// Document returns the scorable view of the item.
func (i *Item) Document() relevance.Document {
	return relevance.Document{Title: i.title, Content: i.body, Description: i.summary}
}

// WithScore returns a copy carrying the given relevance score.
func (i Item) WithScore(score float64) Item {
	i.score = score
	return i
}
