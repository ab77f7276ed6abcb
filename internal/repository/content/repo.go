// Package content stores garden content as hashes in Redis or Valkey.
package content

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/kailas-cloud/garden/internal/db"
	"github.com/kailas-cloud/garden/internal/domain"
	domcontent "github.com/kailas-cloud/garden/internal/domain/content"
)

// store is the consumer interface for content hashes (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) (int64, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo implements usecase/search.ContentReader over hashes.
type Repo struct {
	store store
}

// New creates a content repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

func key(kind domcontent.Kind, id string) string {
	return fmt.Sprintf("%scontent:%s:%s", domain.KeyPrefix, kind, id)
}

func kindPrefix(kind domcontent.Kind) string {
	return fmt.Sprintf("%scontent:%s:", domain.KeyPrefix, kind)
}

// ListPublishedArticles returns published articles, newest first.
func (r *Repo) ListPublishedArticles(ctx context.Context) ([]domcontent.Article, error) {
	hashes, err := r.load(ctx, domcontent.KindArticle)
	if err != nil {
		return nil, err
	}
	out := make([]domcontent.Article, 0, len(hashes))
	for _, h := range hashes {
		if a := parseArticle(h.id, h.fields); a.Published {
			out = append(out, a)
		}
	}
	sortNewest(out, func(a *domcontent.Article) (time.Time, string) { return a.CreatedAt, a.ID })
	return out, nil
}

// ListNotes returns every note, newest first.
func (r *Repo) ListNotes(ctx context.Context) ([]domcontent.Note, error) {
	hashes, err := r.load(ctx, domcontent.KindNote)
	if err != nil {
		return nil, err
	}
	out := make([]domcontent.Note, 0, len(hashes))
	for _, h := range hashes {
		out = append(out, parseNote(h.id, h.fields))
	}
	sortNewest(out, func(n *domcontent.Note) (time.Time, string) { return n.CreatedAt, n.ID })
	return out, nil
}

// ListProjects returns every project, newest first.
func (r *Repo) ListProjects(ctx context.Context) ([]domcontent.Project, error) {
	hashes, err := r.load(ctx, domcontent.KindProject)
	if err != nil {
		return nil, err
	}
	out := make([]domcontent.Project, 0, len(hashes))
	for _, h := range hashes {
		out = append(out, parseProject(h.id, h.fields))
	}
	sortNewest(out, func(p *domcontent.Project) (time.Time, string) { return p.CreatedAt, p.ID })
	return out, nil
}

// PutArticle creates or replaces an article.
func (r *Repo) PutArticle(ctx context.Context, a *domcontent.Article) error {
	return r.put(ctx, domcontent.KindArticle, a.ID, articleFields(a))
}

// PutNote creates or replaces a note.
func (r *Repo) PutNote(ctx context.Context, n *domcontent.Note) error {
	return r.put(ctx, domcontent.KindNote, n.ID, noteFields(n))
}

// PutProject creates or replaces a project.
func (r *Repo) PutProject(ctx context.Context, p *domcontent.Project) error {
	return r.put(ctx, domcontent.KindProject, p.ID, projectFields(p))
}

// PutMany stores a batch of articles, notes and projects in one round-trip.
func (r *Repo) PutMany(
	ctx context.Context, articles []domcontent.Article, notes []domcontent.Note, projects []domcontent.Project,
) error {
	items := make([]db.HashSetItem, 0, len(articles)+len(notes)+len(projects))
	add := func(kind domcontent.Kind, id string, fields map[string]string) error {
		if id == "" {
			return fmt.Errorf("%w: %s id is required", domain.ErrInvalidContent, kind)
		}
		items = append(items, db.HashSetItem{Key: key(kind, id), Fields: fields})
		return nil
	}
	for i := range articles {
		if err := add(domcontent.KindArticle, articles[i].ID, articleFields(&articles[i])); err != nil {
			return err
		}
	}
	for i := range notes {
		if err := add(domcontent.KindNote, notes[i].ID, noteFields(&notes[i])); err != nil {
			return err
		}
	}
	for i := range projects {
		if err := add(domcontent.KindProject, projects[i].ID, projectFields(&projects[i])); err != nil {
			return err
		}
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("hset batch: %w", err)
	}
	return nil
}

// Delete removes a record, returning domain.ErrNotFound when there was none.
func (r *Repo) Delete(ctx context.Context, kind domcontent.Kind, id string) error {
	if !kind.IsValid() {
		return fmt.Errorf("%w: unknown kind %q", domain.ErrInvalidContent, kind)
	}
	n, err := r.store.Del(ctx, key(kind, id))
	if err != nil {
		return fmt.Errorf("del %s %s: %w", kind, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %q: %w", kind, id, domain.ErrNotFound)
	}
	return nil
}

func (r *Repo) put(ctx context.Context, kind domcontent.Kind, id string, fields map[string]string) error {
	if id == "" {
		return fmt.Errorf("%w: %s id is required", domain.ErrInvalidContent, kind)
	}
	k := key(kind, id)
	if err := r.store.HSet(ctx, k, fields); err != nil {
		return fmt.Errorf("hset %s: %w", k, err)
	}
	return nil
}

type hash struct {
	id     string
	fields map[string]string
}

// load reads every hash of a kind. Keys that vanished between SCAN and HGETALL are skipped.
func (r *Repo) load(ctx context.Context, kind domcontent.Kind) ([]hash, error) {
	prefix := kindPrefix(kind)
	keys, err := r.store.Scan(ctx, prefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", kind, err)
	}
	if len(keys) == 0 {
		return nil, nil
	}
	slices.Sort(keys)

	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", kind, err)
	}

	out := make([]hash, 0, len(maps))
	for i, m := range maps {
		if len(m) == 0 {
			continue
		}
		out = append(out, hash{id: strings.TrimPrefix(keys[i], prefix), fields: m})
	}
	return out, nil
}

// sortNewest orders records by creation time descending, then id ascending.
func sortNewest[T any](s []T, by func(*T) (time.Time, string)) {
	slices.SortStableFunc(s, func(a, b T) int {
		ta, ida := by(&a)
		tb, idb := by(&b)
		if c := tb.Compare(ta); c != 0 {
			return c
		}
		return cmp.Compare(ida, idb)
	})
}
