package search

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/kailas-cloud/garden/internal/domain/search/item"
	"github.com/kailas-cloud/garden/internal/domain/search/relevance"
)

// Context window bounds.
const (
	DefaultMaxContextItems = 30
	DefaultMaxCharsPerItem = 800
	truncatedMarker        = " [truncated]"
)

// Window is the bounded grounding handed to the model.
type Window struct {
	// Selected holds the ranked items serialized into Text, used for reconciliation.
	Selected []item.Item
	Text     string
}

// ScoreItems returns copies of items carrying their relevance to query, in input order.
func ScoreItems(scorer relevance.Scorer, query string, items []item.Item) []item.Item {
	scored := make([]item.Item, len(items))
	for i := range items {
		scored[i] = items[i].WithScore(scorer.Score(query, items[i].Document()))
	}
	return scored
}

// RankItems returns a copy of scored items ordered by descending score.
// Ties keep their input order.
func RankItems(scored []item.Item) []item.Item {
	ranked := slices.Clone(scored)
	slices.SortStableFunc(ranked, func(a, b item.Item) int {
		return cmp.Compare(b.Score(), a.Score())
	})
	return ranked
}

// BuildContext ranks scored items, keeps the top maxItems and serializes them
// with each body cut to maxCharsPerItem runes. Non-positive bounds use the defaults.
func BuildContext(scored []item.Item, maxItems, maxCharsPerItem int) Window {
	if maxItems <= 0 {
		maxItems = DefaultMaxContextItems
	}
	if maxCharsPerItem <= 0 {
		maxCharsPerItem = DefaultMaxCharsPerItem
	}

	ranked := RankItems(scored)
	if len(ranked) > maxItems {
		ranked = ranked[:maxItems]
	}

	var b strings.Builder
	for i := range ranked {
		it := &ranked[i]
		excerpt, cut := truncateRunes(it.Body(), maxCharsPerItem)
		if cut {
			excerpt += truncatedMarker
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%d] %s | id: %s\n", i+1, it.Kind(), it.ID())
		fmt.Fprintf(&b, "Title: %s\n", it.Title())
		fmt.Fprintf(&b, "Tags: %s\n", it.TagNames())
		fmt.Fprintf(&b, "Summary: %s\n", it.Summary())
		fmt.Fprintf(&b, "Content: %s\n", excerpt)
		b.WriteString("---")
	}

	return Window{Selected: ranked, Text: b.String()}
}

// truncateRunes returns at most n runes of s and whether anything was cut.
func truncateRunes(s string, n int) (string, bool) {
	count := 0
	for i := range s {
		if count == n {
			return s[:i], true
		}
		count++
	}
	return s, false
}
