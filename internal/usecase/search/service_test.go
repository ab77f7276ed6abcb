package search

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kailas-cloud/garden/internal/domain"
	"github.com/kailas-cloud/garden/internal/domain/search/mode"
	"github.com/kailas-cloud/garden/internal/domain/search/request"
)

func mustRequest(t *testing.T, q string, m mode.Mode, limit int) *request.Request {
	t.Helper()
	req, err := request.New(q, m, limit)
	require.NoError(t, err)
	return &req
}

func TestService_GeneratorUnavailable(t *testing.T) {
	reader := gardenReader()
	svc := New(reader, &stubGenerator{ok: false}, Options{}, zap.NewNop())

	resp, err := svc.Search(context.Background(), mustRequest(t, "typescript", mode.Auto, 10))
	require.NoError(t, err)

	assert.True(t, resp.IsFallback)
	assert.Equal(t, "typescript", resp.Query)
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, "a1", resp.Results[0].ID())
	assert.Equal(t, 80, resp.Results[0].MatchScore())
	for i := 1; i < len(resp.Results); i++ {
		assert.GreaterOrEqual(t, resp.Results[i-1].MatchScore(), resp.Results[i].MatchScore())
	}
	assert.Equal(t, len(resp.Results), resp.Total)
}

func TestService_NilGeneratorFallsBack(t *testing.T) {
	svc := New(gardenReader(), nil, Options{}, nil)

	resp, err := svc.Search(context.Background(), mustRequest(t, "typescript", mode.Search, 0))
	require.NoError(t, err)
	assert.True(t, resp.IsFallback)
}

func TestService_StructuredAnswer(t *testing.T) {
	gen := &stubGenerator{
		ok:   true,
		text: `{"answer":"Start with the article.","results":[{"id":"a1","type":"article","title":"Learning TypeScript","relevanceScore":0.95,"reason":"direct hit"}]}`,
	}
	svc := New(gardenReader(), gen, Options{}, zap.NewNop())

	resp, err := svc.Search(context.Background(), mustRequest(t, "typescript", mode.Ask, 10))
	require.NoError(t, err)
	assert.False(t, resp.IsFallback)
	assert.Equal(t, "Start with the article.", resp.Answer)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, 95, resp.Results[0].MatchScore())
	assert.Equal(t, "learning-typescript", resp.Results[0].Slug())

	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, SystemPrompt(), gen.system)
	assert.True(t, strings.HasPrefix(gen.user, "Question: typescript\n"))
	assert.Contains(t, gen.user, "[1] article | id: a1")
}

func TestService_StorageFailure(t *testing.T) {
	reader := gardenReader()
	reader.projectsErr = errors.New("db down")
	gen := &stubGenerator{ok: true, text: "Hello"}
	svc := New(reader, gen, Options{}, zap.NewNop())

	_, err := svc.Search(context.Background(), mustRequest(t, "typescript", mode.Auto, 10))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.Equal(t, 0, gen.calls)
}

func TestService_Idempotent(t *testing.T) {
	gen := &stubGenerator{ok: true, text: `{"answer":"x","results":[{"id":"n1"},{"title":"Garden site"}]}`}
	svc := New(gardenReader(), gen, Options{}, zap.NewNop())
	req := mustRequest(t, "typescript tips", mode.Auto, 10)

	first, err := svc.Search(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.Search(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	fallback := New(gardenReader(), nil, Options{}, zap.NewNop())
	a, err := fallback.Search(context.Background(), req)
	require.NoError(t, err)
	b, err := fallback.Search(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestService_OptionsApplied(t *testing.T) {
	gen := &stubGenerator{ok: false}
	svc := New(gardenReader(), gen, Options{MaxContextItems: 1, MaxCharsPerItem: 5, FallbackThreshold: 0.5}, zap.NewNop())

	resp, err := svc.Search(context.Background(), mustRequest(t, "typescript", mode.Auto, 10))
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(gen.user, "\n---"))
	assert.Contains(t, gen.user, "Content: A gen [truncated]")
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "a1", resp.Results[0].ID())
}

func TestService_ModeDoesNotChangeOutput(t *testing.T) {
	svc := New(gardenReader(), nil, Options{}, zap.NewNop())

	var answers []string
	for _, m := range []mode.Mode{mode.Auto, mode.Search, mode.Ask} {
		resp, err := svc.Search(context.Background(), mustRequest(t, "garden", m, 10))
		require.NoError(t, err)
		answers = append(answers, resp.Answer)
	}
	assert.Equal(t, answers[0], answers[1])
	assert.Equal(t, answers[0], answers[2])
}
