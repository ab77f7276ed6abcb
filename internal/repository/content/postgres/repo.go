// Package postgres reads and writes garden content in PostgreSQL through pgx.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kailas-cloud/garden/internal/domain"
	domcontent "github.com/kailas-cloud/garden/internal/domain/content"
)

var _ pool = (*pgxpool.Pool)(nil)

// pool is the subset of *pgxpool.Pool the repository uses.
type pool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
	Close()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS articles (
		id         TEXT PRIMARY KEY,
		slug       TEXT NOT NULL DEFAULT '',
		title      TEXT NOT NULL,
		excerpt    TEXT NOT NULL DEFAULT '',
		content    TEXT NOT NULL DEFAULT '',
		tags       TEXT[] NOT NULL DEFAULT '{}',
		published  BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS notes (
		id         TEXT PRIMARY KEY,
		slug       TEXT NOT NULL DEFAULT '',
		title      TEXT NOT NULL,
		content    TEXT NOT NULL DEFAULT '',
		tags       TEXT[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS projects (
		id               TEXT PRIMARY KEY,
		slug             TEXT NOT NULL DEFAULT '',
		title            TEXT NOT NULL,
		description      TEXT NOT NULL DEFAULT '',
		long_description TEXT NOT NULL DEFAULT '',
		tags             TEXT[] NOT NULL DEFAULT '{}',
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

const (
	selectArticles = `SELECT id, slug, title, excerpt, content, tags, published, created_at
		FROM articles WHERE published ORDER BY created_at DESC, id`
	selectNotes = `SELECT id, slug, title, content, tags, created_at
		FROM notes ORDER BY created_at DESC, id`
	selectProjects = `SELECT id, slug, title, description, long_description, tags, created_at
		FROM projects ORDER BY created_at DESC, id`

	upsertArticle = `INSERT INTO articles (id, slug, title, excerpt, content, tags, published, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET slug = EXCLUDED.slug, title = EXCLUDED.title,
			excerpt = EXCLUDED.excerpt, content = EXCLUDED.content, tags = EXCLUDED.tags,
			published = EXCLUDED.published, created_at = EXCLUDED.created_at`
	upsertNote = `INSERT INTO notes (id, slug, title, content, tags, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET slug = EXCLUDED.slug, title = EXCLUDED.title,
			content = EXCLUDED.content, tags = EXCLUDED.tags, created_at = EXCLUDED.created_at`
	upsertProject = `INSERT INTO projects (id, slug, title, description, long_description, tags, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET slug = EXCLUDED.slug, title = EXCLUDED.title,
			description = EXCLUDED.description, long_description = EXCLUDED.long_description,
			tags = EXCLUDED.tags, created_at = EXCLUDED.created_at`
)

var deleteStmts = map[domcontent.Kind]string{
	domcontent.KindArticle: `DELETE FROM articles WHERE id = $1`,
	domcontent.KindNote:    `DELETE FROM notes WHERE id = $1`,
	domcontent.KindProject: `DELETE FROM projects WHERE id = $1`,
}

// Repo implements usecase/search.ContentReader over PostgreSQL.
type Repo struct {
	pool pool
}

// New connects to dsn and creates the schema when missing.
func New(ctx context.Context, dsn string) (*Repo, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	p, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	r := &Repo{pool: p}
	if err := r.Migrate(ctx); err != nil {
		p.Close()
		return nil, err
	}
	return r, nil
}

// Migrate creates the content tables.
func (r *Repo) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Ping checks connectivity.
func (r *Repo) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close releases the pool.
func (r *Repo) Close() { r.pool.Close() }

// ListPublishedArticles returns published articles, newest first.
func (r *Repo) ListPublishedArticles(ctx context.Context) ([]domcontent.Article, error) {
	return list(ctx, r.pool, "articles", selectArticles, func(row pgx.Rows) (domcontent.Article, error) {
		var a domcontent.Article
		err := row.Scan(&a.ID, &a.Slug, &a.Title, &a.Excerpt, &a.Content, &a.Tags, &a.Published, &a.CreatedAt)
		return a, err
	})
}

// ListNotes returns every note, newest first.
func (r *Repo) ListNotes(ctx context.Context) ([]domcontent.Note, error) {
	return list(ctx, r.pool, "notes", selectNotes, func(row pgx.Rows) (domcontent.Note, error) {
		var n domcontent.Note
		err := row.Scan(&n.ID, &n.Slug, &n.Title, &n.Content, &n.Tags, &n.CreatedAt)
		return n, err
	})
}

// ListProjects returns every project, newest first.
func (r *Repo) ListProjects(ctx context.Context) ([]domcontent.Project, error) {
	return list(ctx, r.pool, "projects", selectProjects, func(row pgx.Rows) (domcontent.Project, error) {
		var p domcontent.Project
		err := row.Scan(&p.ID, &p.Slug, &p.Title, &p.Description, &p.LongDescription, &p.Tags, &p.CreatedAt)
		return p, err
	})
}

// PutArticle creates or replaces an article.
func (r *Repo) PutArticle(ctx context.Context, a *domcontent.Article) error {
	return r.exec(ctx, domcontent.KindArticle, a.ID, upsertArticle,
		a.ID, a.Slug, a.Title, a.Excerpt, a.Content, tags(a.Tags), a.Published, createdAt(a.CreatedAt))
}

// PutNote creates or replaces a note.
func (r *Repo) PutNote(ctx context.Context, n *domcontent.Note) error {
	return r.exec(ctx, domcontent.KindNote, n.ID, upsertNote,
		n.ID, n.Slug, n.Title, n.Content, tags(n.Tags), createdAt(n.CreatedAt))
}

// PutProject creates or replaces a project.
func (r *Repo) PutProject(ctx context.Context, p *domcontent.Project) error {
	return r.exec(ctx, domcontent.KindProject, p.ID, upsertProject,
		p.ID, p.Slug, p.Title, p.Description, p.LongDescription, tags(p.Tags), createdAt(p.CreatedAt))
}

// Delete removes a record, returning domain.ErrNotFound when there was none.
func (r *Repo) Delete(ctx context.Context, kind domcontent.Kind, id string) error {
	stmt, ok := deleteStmts[kind]
	if !ok {
		return fmt.Errorf("%w: unknown kind %q", domain.ErrInvalidContent, kind)
	}
	tag, err := r.pool.Exec(ctx, stmt, id)
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", kind, id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %q: %w", kind, id, domain.ErrNotFound)
	}
	return nil
}

func (r *Repo) exec(ctx context.Context, kind domcontent.Kind, id, sql string, args ...any) error {
	if id == "" {
		return fmt.Errorf("%w: %s id is required", domain.ErrInvalidContent, kind)
	}
	if _, err := r.pool.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("upsert %s %s: %w", kind, id, err)
	}
	return nil
}

func list[T any](ctx context.Context, p pool, table, sql string, scan func(pgx.Rows) (T, error)) ([]T, error) {
	rows, err := p.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}
	return out, nil
}

func tags(t []string) []string {
	if t == nil {
		return []string{}
	}
	return t
}

func createdAt(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}
