package search

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/garden/internal/domain/search/answer"
	"github.com/kailas-cloud/garden/internal/domain/search/item"
	"github.com/kailas-cloud/garden/internal/domain/search/result"
	"github.com/kailas-cloud/garden/internal/metrics"
)

// DefaultFallbackThreshold is the minimum score an item needs to appear in local results.
const DefaultFallbackThreshold = 0.1

// Resolution is the resolver output plus bookkeeping for logs and metrics.
type Resolution struct {
	Response result.Response
	Outcome  string
	// Dropped counts model references that matched no selected item.
	Dropped int
}

// Resolver turns a generator outcome into the caller's response.
type Resolver struct {
	threshold float64
}

// NewResolver creates a resolver. A non-positive threshold uses the default.
func NewResolver(threshold float64) Resolver {
	if threshold <= 0 {
		threshold = DefaultFallbackThreshold
	}
	return Resolver{threshold: threshold}
}

// Resolve decides between the reconciled, unstructured and local fallback paths.
// raw and ok are the generator outcome; w is the window the model saw; scored
// holds every aggregated item with its score.
func (r Resolver) Resolve(query, raw string, ok bool, w Window, scored []item.Item, limit int) Resolution {
	if !ok {
		return r.fallback(query, scored, limit)
	}

	parsed := answer.Parse(raw)
	switch parsed.Kind() {
	case answer.Structured:
		results, dropped := reconcile(parsed.References(), w.Selected, limit)
		if strings.TrimSpace(parsed.Answer()) == "" && len(results) == 0 {
			res := r.fallback(query, scored, limit)
			res.Dropped = dropped
			return res
		}
		return Resolution{
			Response: result.Response{
				Query:   query,
				Answer:  parsed.Answer(),
				Results: results,
				Total:   len(results),
			},
			Outcome: metrics.OutcomeStructured,
			Dropped: dropped,
		}
	case answer.Unstructured:
		return Resolution{
			Response: result.Response{Query: query, Answer: parsed.Answer(), Results: []result.Result{}},
			Outcome:  metrics.OutcomeUnstructured,
		}
	default:
		return r.fallback(query, scored, limit)
	}
}

// fallback builds results from local scores alone.
func (r Resolver) fallback(query string, scored []item.Item, limit int) Resolution {
	ranked := RankItems(scored)
	results := make([]result.Result, 0, min(limit, len(ranked)))
	total := 0
	for i := range ranked {
		if ranked[i].Score() <= r.threshold {
			continue
		}
		total++
		if len(results) < limit {
			results = append(results, result.FromItem(&ranked[i], ranked[i].Score(), ""))
		}
	}

	msg := fmt.Sprintf("No matching content found for %q.", query)
	if total > 0 {
		msg = fmt.Sprintf("Found %d relevant item(s) for %q.", total, query)
	}

	return Resolution{
		Response: result.Response{
			Query:      query,
			Answer:     msg,
			Results:    results,
			IsFallback: true,
			Total:      total,
		},
		Outcome: metrics.OutcomeFallback,
	}
}

// reconcile maps model references back to selected items by id, then by title.
// Unmatched references are dropped; repeated references to one item are collapsed.
func reconcile(refs []answer.Reference, selected []item.Item, limit int) ([]result.Result, int) {
	byKindID := make(map[string]int, len(selected))
	byID := make(map[string]int, len(selected))
	byTitle := make(map[string]int, len(selected))
	for i := len(selected) - 1; i >= 0; i-- {
		byKindID[string(selected[i].Kind())+":"+selected[i].ID()] = i
		byID[selected[i].ID()] = i
		byTitle[selected[i].Title()] = i
	}
	lookup := func(ref answer.Reference) (int, bool) {
		if idx, ok := byKindID[ref.Type+":"+ref.ID]; ok {
			return idx, true
		}
		if idx, ok := byID[ref.ID]; ok {
			return idx, true
		}
		idx, ok := byTitle[ref.Title]
		return idx, ok
	}

	results := make([]result.Result, 0, min(limit, len(refs)))
	used := make(map[int]struct{}, len(refs))
	dropped := 0
	for _, ref := range refs {
		idx, found := lookup(ref)
		if !found {
			dropped++
			continue
		}
		if _, dup := used[idx]; dup {
			continue
		}
		if len(results) == limit {
			break
		}
		used[idx] = struct{}{}

		it := &selected[idx]
		relevance := it.Score()
		if ref.Relevance != nil {
			relevance = modelRelevance(*ref.Relevance)
		}
		results = append(results, result.FromItem(it, relevance, ref.Reason))
	}
	if dropped > 0 {
		metrics.SearchHallucinatedReferencesTotal.Add(float64(dropped))
	}
	return results, dropped
}

// modelRelevance normalizes a model-asserted relevance to [0, 1]. Values of 2
// and above are read as percentages; a small overshoot of the unit scale counts as 1.
func modelRelevance(v float64) float64 {
	switch {
	case v >= 2:
		return v / 100
	case v > 1:
		return 1
	default:
		return v
	}
}
