// Package sqlite keeps garden content in a SQLite file through sqlx.
package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // database/sql driver

	"github.com/kailas-cloud/garden/internal/domain"
	domcontent "github.com/kailas-cloud/garden/internal/domain/content"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS articles (
		id         TEXT PRIMARY KEY,
		slug       TEXT NOT NULL DEFAULT '',
		title      TEXT NOT NULL,
		excerpt    TEXT NOT NULL DEFAULT '',
		content    TEXT NOT NULL DEFAULT '',
		tags       TEXT NOT NULL DEFAULT '',
		published  INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS notes (
		id         TEXT PRIMARY KEY,
		slug       TEXT NOT NULL DEFAULT '',
		title      TEXT NOT NULL,
		content    TEXT NOT NULL DEFAULT '',
		tags       TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS projects (
		id               TEXT PRIMARY KEY,
		slug             TEXT NOT NULL DEFAULT '',
		title            TEXT NOT NULL,
		description      TEXT NOT NULL DEFAULT '',
		long_description TEXT NOT NULL DEFAULT '',
		tags             TEXT NOT NULL DEFAULT '',
		created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_articles_created ON articles(created_at DESC, id)`,
	`CREATE INDEX IF NOT EXISTS idx_notes_created ON notes(created_at DESC, id)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_created ON projects(created_at DESC, id)`,
}

var deleteStmts = map[domcontent.Kind]string{
	domcontent.KindArticle: `DELETE FROM articles WHERE id = ?`,
	domcontent.KindNote:    `DELETE FROM notes WHERE id = ?`,
	domcontent.KindProject: `DELETE FROM projects WHERE id = ?`,
}

type articleRow struct {
	ID        string    `db:"id"`
	Slug      string    `db:"slug"`
	Title     string    `db:"title"`
	Excerpt   string    `db:"excerpt"`
	Content   string    `db:"content"`
	Tags      string    `db:"tags"`
	Published bool      `db:"published"`
	CreatedAt time.Time `db:"created_at"`
}

type noteRow struct {
	ID        string    `db:"id"`
	Slug      string    `db:"slug"`
	Title     string    `db:"title"`
	Content   string    `db:"content"`
	Tags      string    `db:"tags"`
	CreatedAt time.Time `db:"created_at"`
}

type projectRow struct {
	ID              string    `db:"id"`
	Slug            string    `db:"slug"`
	Title           string    `db:"title"`
	Description     string    `db:"description"`
	LongDescription string    `db:"long_description"`
	Tags            string    `db:"tags"`
	CreatedAt       time.Time `db:"created_at"`
}

// Repo implements usecase/search.ContentReader over SQLite.
type Repo struct {
	db *sqlx.DB
}

// New opens (or creates) the database at path and applies the schema.
// Use ":memory:" for a throwaway database.
func New(ctx context.Context, path string) (*Repo, error) {
	db, err := sqlx.ConnectContext(ctx, "sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	r := &Repo{db: db}
	if err := r.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repo) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Ping checks the database handle.
func (r *Repo) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (r *Repo) Close() error { return r.db.Close() }

// ListPublishedArticles returns published articles, newest first.
func (r *Repo) ListPublishedArticles(ctx context.Context) ([]domcontent.Article, error) {
	var rows []articleRow
	err := r.db.SelectContext(ctx, &rows, `SELECT id, slug, title, excerpt, content, tags, published, created_at
		FROM articles WHERE published = 1 ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("select articles: %w", err)
	}
	out := make([]domcontent.Article, 0, len(rows))
	for _, row := range rows {
		out = append(out, domcontent.Article{
			ID: row.ID, Slug: row.Slug, Title: row.Title, Excerpt: row.Excerpt, Content: row.Content,
			Tags: domcontent.SplitTags(row.Tags), Published: row.Published, CreatedAt: row.CreatedAt.UTC(),
		})
	}
	return out, nil
}

// ListNotes returns every note, newest first.
func (r *Repo) ListNotes(ctx context.Context) ([]domcontent.Note, error) {
	var rows []noteRow
	err := r.db.SelectContext(ctx, &rows, `SELECT id, slug, title, content, tags, created_at
		FROM notes ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("select notes: %w", err)
	}
	out := make([]domcontent.Note, 0, len(rows))
	for _, row := range rows {
		out = append(out, domcontent.Note{
			ID: row.ID, Slug: row.Slug, Title: row.Title, Content: row.Content,
			Tags: domcontent.SplitTags(row.Tags), CreatedAt: row.CreatedAt.UTC(),
		})
	}
	return out, nil
}

// ListProjects returns every project, newest first.
func (r *Repo) ListProjects(ctx context.Context) ([]domcontent.Project, error) {
	var rows []projectRow
	err := r.db.SelectContext(ctx, &rows, `SELECT id, slug, title, description, long_description, tags, created_at
		FROM projects ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("select projects: %w", err)
	}
	out := make([]domcontent.Project, 0, len(rows))
	for _, row := range rows {
		out = append(out, domcontent.Project{
			ID: row.ID, Slug: row.Slug, Title: row.Title, Description: row.Description,
			LongDescription: row.LongDescription, Tags: domcontent.SplitTags(row.Tags), CreatedAt: row.CreatedAt.UTC(),
		})
	}
	return out, nil
}

// PutArticle creates or replaces an article.
func (r *Repo) PutArticle(ctx context.Context, a *domcontent.Article) error {
	return r.put(ctx, domcontent.KindArticle, a.ID, `INSERT OR REPLACE INTO articles
		(id, slug, title, excerpt, content, tags, published, created_at)
		VALUES (:id, :slug, :title, :excerpt, :content, :tags, :published, :created_at)`,
		articleRow{
			ID: a.ID, Slug: a.Slug, Title: a.Title, Excerpt: a.Excerpt, Content: a.Content,
			Tags: domcontent.JoinTags(a.Tags), Published: a.Published, CreatedAt: createdAt(a.CreatedAt),
		})
}

// PutNote creates or replaces a note.
func (r *Repo) PutNote(ctx context.Context, n *domcontent.Note) error {
	return r.put(ctx, domcontent.KindNote, n.ID, `INSERT OR REPLACE INTO notes
		(id, slug, title, content, tags, created_at)
		VALUES (:id, :slug, :title, :content, :tags, :created_at)`,
		noteRow{
			ID: n.ID, Slug: n.Slug, Title: n.Title, Content: n.Content,
			Tags: domcontent.JoinTags(n.Tags), CreatedAt: createdAt(n.CreatedAt),
		})
}

// PutProject creates or replaces a project.
func (r *Repo) PutProject(ctx context.Context, p *domcontent.Project) error {
	return r.put(ctx, domcontent.KindProject, p.ID, `INSERT OR REPLACE INTO projects
		(id, slug, title, description, long_description, tags, created_at)
		VALUES (:id, :slug, :title, :description, :long_description, :tags, :created_at)`,
		projectRow{
			ID: p.ID, Slug: p.Slug, Title: p.Title, Description: p.Description,
			LongDescription: p.LongDescription, Tags: domcontent.JoinTags(p.Tags), CreatedAt: createdAt(p.CreatedAt),
		})
}

// Delete removes a record, returning domain.ErrNotFound when there was none.
func (r *Repo) Delete(ctx context.Context, kind domcontent.Kind, id string) error {
	stmt, ok := deleteStmts[kind]
	if !ok {
		return fmt.Errorf("%w: unknown kind %q", domain.ErrInvalidContent, kind)
	}
	res, err := r.db.ExecContext(ctx, stmt, id)
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", kind, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", kind, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %q: %w", kind, id, domain.ErrNotFound)
	}
	return nil
}

func (r *Repo) put(ctx context.Context, kind domcontent.Kind, id, query string, row any) error {
	if id == "" {
		return fmt.Errorf("%w: %s id is required", domain.ErrInvalidContent, kind)
	}
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("insert %s %s: %w", kind, id, err)
	}
	return nil
}

func createdAt(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}
