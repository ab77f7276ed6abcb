package result

import (
	"math"

	"github.com/kailas-cloud/garden/internal/domain/content"
	"github.com/kailas-cloud/garden/internal/domain/search/item"
)

// Result is a single search hit returned to the caller.
type Result struct {
	kind        content.Kind
	id          string
	slug        string
	title       string
	summary     string
	tagNames    string
	createdDate string
	matchScore  int
	reason      string
}

// FromItem creates a result from an item. relevance is in [0, 1]; reason may be empty.
func FromItem(it *item.Item, relevance float64, reason string) Result {
	return Result{
		kind:        it.Kind(),
		id:          it.ID(),
		slug:        it.Slug(),
		title:       it.Title(),
		summary:     it.Summary(),
		tagNames:    it.TagNames(),
		createdDate: it.CreatedDate(),
		matchScore:  MatchScore(relevance),
		reason:      reason,
	}
}

// MatchScore scales a [0, 1] relevance to an integer percentage, clamped to [0, 100].
func MatchScore(relevance float64) int {
	if math.IsNaN(relevance) {
		return 0
	}
	s := int(math.Round(relevance * 100))
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// Kind returns the source collection tag.
func (r *Result) Kind() content.Kind { return r.kind }

// ID returns the item identifier.
func (r *Result) ID() string { return r.id }

// Slug returns the link identifier.
func (r *Result) Slug() string { return r.slug }

// Title returns the display title.
func (r *Result) Title() string { return r.title }

// Summary returns the short description.
func (r *Result) Summary() string { return r.summary }

// TagNames returns the comma-joined tags.
func (r *Result) TagNames() string { return r.tagNames }

// CreatedDate returns the ISO calendar date.
func (r *Result) CreatedDate() string { return r.createdDate }

// MatchScore returns the 0-100 match percentage.
func (r *Result) MatchScore() int { return r.matchScore }

// Reason returns the model's explanation, empty on the local path.
func (r *Result) Reason() string { return r.reason }
