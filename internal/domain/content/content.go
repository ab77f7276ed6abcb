// Package content defines the records the garden stores: articles, notes and projects.
package content

import "time"

// Kind tags the collection a record comes from.
type Kind string

// Content kinds.
const (
	KindArticle Kind = "article"
	KindNote    Kind = "note"
	KindProject Kind = "project"
)

// Kinds lists every kind in aggregation order.
func Kinds() []Kind { return []Kind{KindArticle, KindNote, KindProject} }

// IsValid checks if the kind is one of the supported values.
func (k Kind) IsValid() bool {
	return k == KindArticle || k == KindNote || k == KindProject
}

// Article is a long-form post. Only published articles are searchable.
type Article struct {
	ID        string
	Slug      string
	Title     string
	Excerpt   string
	Content   string
	Tags      []string
	Published bool
	CreatedAt time.Time
}

// Note is a short, always-visible garden note.
type Note struct {
	ID        string
	Slug      string
	Title     string
	Content   string
	Tags      []string
	CreatedAt time.Time
}

// Project is a portfolio entry with a short and an optional long description.
type Project struct {
	ID              string
	Slug            string
	Title           string
	Description     string
	LongDescription string
	Tags            []string
	CreatedAt       time.Time
}
