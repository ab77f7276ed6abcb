package content

import (
	"strconv"
	"time"

	domcontent "github.com/kailas-cloud/garden/internal/domain/content"
)

// Hash field names.
const (
	fieldID              = "id"
	fieldSlug            = "slug"
	fieldTitle           = "title"
	fieldExcerpt         = "excerpt"
	fieldContent         = "content"
	fieldDescription     = "description"
	fieldLongDescription = "long_description"
	fieldTags            = "tags"
	fieldPublished       = "published"
	fieldCreatedAt       = "created_at"
)

func articleFields(a *domcontent.Article) map[string]string {
	return map[string]string{
		fieldID:        a.ID,
		fieldSlug:      a.Slug,
		fieldTitle:     a.Title,
		fieldExcerpt:   a.Excerpt,
		fieldContent:   a.Content,
		fieldTags:      domcontent.JoinTags(a.Tags),
		fieldPublished: strconv.FormatBool(a.Published),
		fieldCreatedAt: formatTime(a.CreatedAt),
	}
}

func parseArticle(id string, m map[string]string) domcontent.Article {
	published, _ := strconv.ParseBool(m[fieldPublished])
	return domcontent.Article{
		ID:        firstNonEmpty(m[fieldID], id),
		Slug:      m[fieldSlug],
		Title:     m[fieldTitle],
		Excerpt:   m[fieldExcerpt],
		Content:   m[fieldContent],
		Tags:      domcontent.SplitTags(m[fieldTags]),
		Published: published,
		CreatedAt: parseTime(m[fieldCreatedAt]),
	}
}

func noteFields(n *domcontent.Note) map[string]string {
	return map[string]string{
		fieldID:        n.ID,
		fieldSlug:      n.Slug,
		fieldTitle:     n.Title,
		fieldContent:   n.Content,
		fieldTags:      domcontent.JoinTags(n.Tags),
		fieldCreatedAt: formatTime(n.CreatedAt),
	}
}

func parseNote(id string, m map[string]string) domcontent.Note {
	return domcontent.Note{
		ID:        firstNonEmpty(m[fieldID], id),
		Slug:      m[fieldSlug],
		Title:     m[fieldTitle],
		Content:   m[fieldContent],
		Tags:      domcontent.SplitTags(m[fieldTags]),
		CreatedAt: parseTime(m[fieldCreatedAt]),
	}
}

func projectFields(p *domcontent.Project) map[string]string {
	return map[string]string{
		fieldID:              p.ID,
		fieldSlug:            p.Slug,
		fieldTitle:           p.Title,
		fieldDescription:     p.Description,
		fieldLongDescription: p.LongDescription,
		fieldTags:            domcontent.JoinTags(p.Tags),
		fieldCreatedAt:       formatTime(p.CreatedAt),
	}
}

func parseProject(id string, m map[string]string) domcontent.Project {
	return domcontent.Project{
		ID:              firstNonEmpty(m[fieldID], id),
		Slug:            m[fieldSlug],
		Title:           m[fieldTitle],
		Description:     m[fieldDescription],
		LongDescription: m[fieldLongDescription],
		Tags:            domcontent.SplitTags(m[fieldTags]),
		CreatedAt:       parseTime(m[fieldCreatedAt]),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// parseTime reads RFC 3339 or a bare date; anything else is the zero time.
func parseTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t
	}
	return time.Time{}
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
