package search

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/garden/internal/domain/content"
	"github.com/kailas-cloud/garden/internal/domain/search/item"
	"github.com/kailas-cloud/garden/internal/domain/search/result"
	"github.com/kailas-cloud/garden/internal/metrics"
)

func scoredItems(t *testing.T) []item.Item {
	t.Helper()
	return []item.Item{
		mustItem(t, content.KindArticle, "a1", "Learning TypeScript", "").WithScore(0.8),
		mustItem(t, content.KindNote, "n1", "Quick tips", "").WithScore(0.4),
		mustItem(t, content.KindProject, "p1", "Garden site", "").WithScore(0.1),
		mustItem(t, content.KindNote, "n2", "Gardening log", "").WithScore(0.0),
		mustItem(t, content.KindArticle, "a2", "Rust in practice", "").WithScore(0.5),
	}
}

func TestResolve_NoResponseFallsBack(t *testing.T) {
	scored := scoredItems(t)
	w := BuildContext(scored, 30, 800)

	res := NewResolver(0).Resolve("typescript", "", false, w, scored, 10)
	assert.Equal(t, metrics.OutcomeFallback, res.Outcome)

	resp := res.Response
	assert.True(t, resp.IsFallback)
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, `Found 3 relevant item(s) for "typescript".`, resp.Answer)

	require.Len(t, resp.Results, 3)
	ids := []string{resp.Results[0].ID(), resp.Results[1].ID(), resp.Results[2].ID()}
	assert.Equal(t, []string{"a1", "a2", "n1"}, ids)
	for i := range resp.Results {
		r := &resp.Results[i]
		assert.Equal(t, int(math.Round(scoreOf(scored, r.ID())*100)), r.MatchScore())
		assert.Empty(t, r.Reason())
	}
}

func scoreOf(items []item.Item, id string) float64 {
	for i := range items {
		if items[i].ID() == id {
			return items[i].Score()
		}
	}
	return -1
}

func TestResolve_FallbackRespectsLimitButCountsAll(t *testing.T) {
	scored := scoredItems(t)
	res := NewResolver(0).Resolve("q", "", false, Window{}, scored, 1)

	require.Len(t, res.Response.Results, 1)
	assert.Equal(t, "a1", res.Response.Results[0].ID())
	assert.Equal(t, 3, res.Response.Total)
}

func TestResolve_FallbackNoMatches(t *testing.T) {
	scored := []item.Item{mustItem(t, content.KindNote, "n1", "x", "")}
	res := NewResolver(0.1).Resolve("zzz", "", false, Window{}, scored, 10)

	assert.True(t, res.Response.IsFallback)
	assert.Empty(t, res.Response.Results)
	assert.NotNil(t, res.Response.Results)
	assert.Equal(t, `No matching content found for "zzz".`, res.Response.Answer)
}

func TestResolve_PlainText(t *testing.T) {
	scored := scoredItems(t)
	res := NewResolver(0).Resolve("hi", "Hello", true, BuildContext(scored, 30, 800), scored, 10)

	assert.Equal(t, metrics.OutcomeUnstructured, res.Outcome)
	assert.Equal(t, result.Response{Query: "hi", Answer: "Hello", Results: []result.Result{}}, res.Response)
}

func TestResolve_HallucinationDropped(t *testing.T) {
	scored := scoredItems(t)
	raw := `{"answer":"x","results":[{"id":"bad-id","title":"Nonexistent"}]}`

	res := NewResolver(0).Resolve("q", raw, true, BuildContext(scored, 30, 800), scored, 10)
	assert.Equal(t, metrics.OutcomeStructured, res.Outcome)
	assert.Equal(t, "x", res.Response.Answer)
	assert.Empty(t, res.Response.Results)
	assert.False(t, res.Response.IsFallback)
	assert.Equal(t, 1, res.Dropped)
}

func TestResolve_Reconciled(t *testing.T) {
	scored := scoredItems(t)
	raw := "Sure!\n```json\n" + `{"answer":"Two hits","results":[
		{"id":"n1","type":"note","title":"Quick tips","relevanceScore":0.9,"reason":"tips"},
		{"id":"wrong","title":"Learning TypeScript"},
		{"id":"n1","title":"Quick tips"},
		{"id":"a2","relevanceScore":"75"},
		{"id":"ghost","title":"Ghost"}
	]}` + "\n```"

	res := NewResolver(0).Resolve("q", raw, true, BuildContext(scored, 30, 800), scored, 10)
	require.Equal(t, metrics.OutcomeStructured, res.Outcome)

	resp := res.Response
	require.Len(t, resp.Results, 3)
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, 1, res.Dropped)

	assert.Equal(t, "n1", resp.Results[0].ID())
	assert.Equal(t, 90, resp.Results[0].MatchScore())
	assert.Equal(t, "tips", resp.Results[0].Reason())

	assert.Equal(t, "a1", resp.Results[1].ID(), "matched by title")
	assert.Equal(t, 80, resp.Results[1].MatchScore(), "item score when model gives none")

	assert.Equal(t, "a2", resp.Results[2].ID())
	assert.Equal(t, 75, resp.Results[2].MatchScore(), "percent-scale model relevance")
}

func TestResolve_ReconcileOnlyAgainstWindow(t *testing.T) {
	scored := scoredItems(t)
	w := BuildContext(scored, 1, 800)
	raw := `{"answer":"x","results":[{"id":"n1"},{"id":"a1"}]}`

	res := NewResolver(0).Resolve("q", raw, true, w, scored, 10)
	require.Len(t, res.Response.Results, 1)
	assert.Equal(t, "a1", res.Response.Results[0].ID())
}

func TestResolve_ReconcileCapsAtLimit(t *testing.T) {
	scored := scoredItems(t)
	raw := `{"answer":"x","results":[{"id":"a1"},{"id":"n1"},{"id":"a2"}]}`

	res := NewResolver(0).Resolve("q", raw, true, BuildContext(scored, 30, 800), scored, 2)
	require.Len(t, res.Response.Results, 2)
	assert.Equal(t, 2, res.Response.Total)
}

func TestResolve_KindDisambiguatesSharedIDs(t *testing.T) {
	scored := []item.Item{
		mustItem(t, content.KindArticle, "1", "Article one", "").WithScore(0.5),
		mustItem(t, content.KindNote, "1", "Note one", "").WithScore(0.3),
	}
	raw := `{"answer":"x","results":[{"id":"1","type":"note"}]}`

	res := NewResolver(0).Resolve("q", raw, true, BuildContext(scored, 30, 800), scored, 10)
	require.Len(t, res.Response.Results, 1)
	assert.Equal(t, content.KindNote, res.Response.Results[0].Kind())
}

func TestResolve_ParseFailureFallsBack(t *testing.T) {
	scored := scoredItems(t)
	res := NewResolver(0).Resolve("q", `{"answer": oops}`, true, BuildContext(scored, 30, 800), scored, 10)

	assert.Equal(t, metrics.OutcomeFallback, res.Outcome)
	assert.True(t, res.Response.IsFallback)
	assert.Len(t, res.Response.Results, 3)
}

func TestModelRelevance(t *testing.T) {
	assert.InDelta(t, 0.5, modelRelevance(0.5), 1e-9)
	assert.InDelta(t, 1.0, modelRelevance(1), 1e-9)
	assert.InDelta(t, 0.42, modelRelevance(42), 1e-9)
	assert.InDelta(t, 1.0, modelRelevance(1.5), 1e-9)
	assert.InDelta(t, 0.02, modelRelevance(2), 1e-9)
	assert.Equal(t, 100, result.MatchScore(modelRelevance(250)))
	assert.Equal(t, 0, result.MatchScore(modelRelevance(-3)))
}

func TestResolve_OvershootRelevanceScoresFull(t *testing.T) {
	scored := scoredItems(t)
	raw := `{"answer":"x","results":[{"id":"a1","relevanceScore":1.5}]}`

	res := NewResolver(0).Resolve("q", raw, true, BuildContext(scored, 30, 800), scored, 10)
	require.Len(t, res.Response.Results, 1)
	assert.Equal(t, 100, res.Response.Results[0].MatchScore())
}

func TestResolve_BlankStructuredAnswerFallsBack(t *testing.T) {
	scored := scoredItems(t)
	w := BuildContext(scored, 30, 800)

	tests := map[string]string{
		"no results":          `{"answer":"","results":[]}`,
		"whitespace answer":   `{"answer":"  \n","results":[]}`,
		"only hallucinations": `{"answer":"","results":[{"id":"bad-id"}]}`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			res := NewResolver(0).Resolve("typescript", raw, true, w, scored, 10)
			assert.Equal(t, metrics.OutcomeFallback, res.Outcome)
			assert.True(t, res.Response.IsFallback)
			assert.Equal(t, `Found 3 relevant item(s) for "typescript".`, res.Response.Answer)
			assert.Len(t, res.Response.Results, 3)
		})
	}
}

func TestResolve_BlankAnswerWithResultsStaysStructured(t *testing.T) {
	scored := scoredItems(t)
	raw := `{"answer":"","results":[{"id":"a1"}]}`

	res := NewResolver(0).Resolve("q", raw, true, BuildContext(scored, 30, 800), scored, 10)
	assert.Equal(t, metrics.OutcomeStructured, res.Outcome)
	assert.False(t, res.Response.IsFallback)
	require.Len(t, res.Response.Results, 1)
	assert.Equal(t, "a1", res.Response.Results[0].ID())
}
