package garden

import (
	"time"

	"github.com/kailas-cloud/garden/internal/domain/content"
	"github.com/kailas-cloud/garden/internal/domain/search/result"
)

// Mode is the caller's stated intent. Every mode runs the same pipeline.
type Mode string

// Search mode constants.
const (
	ModeAuto   Mode = "auto"
	ModeSearch Mode = "search"
	ModeAsk    Mode = "ask"
)

// Kind names a content collection.
type Kind string

// Content kinds.
const (
	KindArticle Kind = "article"
	KindNote    Kind = "note"
	KindProject Kind = "project"
)

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

// Note is a short garden note.
type Note struct {
	ID        string
	Slug      string
	Title     string
	Content   string
	Tags      []string
	CreatedAt time.Time
}

// Project is a portfolio entry.
type Project struct {
	ID              string
	Slug            string
	Title           string
	Description     string
	LongDescription string
	Tags            []string
	CreatedAt       time.Time
}

// Result is one search hit.
type Result struct {
	Type       string // article, note or project
	ID         string
	Slug       string
	Title      string
	Summary    string
	Tags       string // comma-joined
	CreatedAt  string // YYYY-MM-DD
	MatchScore int    // 0-100
	Reason     string // set only when the model picked the result
}

// Response is the answer to one query.
type Response struct {
	Query      string
	Answer     string
	Results    []Result
	IsFallback bool
	Total      int
}

func fromResponse(r *result.Response) Response {
	out := Response{
		Query:      r.Query,
		Answer:     r.Answer,
		Results:    make([]Result, len(r.Results)),
		IsFallback: r.IsFallback,
		Total:      r.Total,
	}
	for i := range r.Results {
		res := &r.Results[i]
		out.Results[i] = Result{
			Type:       string(res.Kind()),
			ID:         res.ID(),
			Slug:       res.Slug(),
			Title:      res.Title(),
			Summary:    res.Summary(),
			Tags:       res.TagNames(),
			CreatedAt:  res.CreatedDate(),
			MatchScore: res.MatchScore(),
			Reason:     res.Reason(),
		}
	}
	return out
}

func (a *Article) toDomain() content.Article {
	return content.Article{
		ID: a.ID, Slug: a.Slug, Title: a.Title, Excerpt: a.Excerpt, Content: a.Content,
		Tags: a.Tags, Published: a.Published, CreatedAt: a.CreatedAt,
	}
}

func (n *Note) toDomain() content.Note {
	return content.Note{
		ID: n.ID, Slug: n.Slug, Title: n.Title, Content: n.Content, Tags: n.Tags, CreatedAt: n.CreatedAt,
	}
}

func (p *Project) toDomain() content.Project {
	return content.Project{
		ID: p.ID, Slug: p.Slug, Title: p.Title, Description: p.Description,
		LongDescription: p.LongDescription, Tags: p.Tags, CreatedAt: p.CreatedAt,
	}
}
