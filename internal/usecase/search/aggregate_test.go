package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kailas-cloud/garden/internal/domain"
	"github.com/kailas-cloud/garden/internal/domain/content"
)

func TestAggregate_OrderAndMapping(t *testing.T) {
	reader := gardenReader()

	items, err := Aggregate(context.Background(), reader, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, items, 5)
	assert.Equal(t, int32(3), reader.calls.Load())

	var kinds []content.Kind
	for i := range items {
		kinds = append(kinds, items[i].Kind())
	}
	assert.Equal(t, []content.Kind{
		content.KindArticle, content.KindArticle, content.KindNote, content.KindNote, content.KindProject,
	}, kinds)

	assert.Equal(t, "Types for JS", items[0].Summary())
	assert.Equal(t, "typescript, web", items[0].TagNames())
	assert.Equal(t, "2025-06-01", items[0].CreatedDate())
	assert.Empty(t, items[2].Summary())
	assert.Equal(t, "Built with typescript and a lot of coffee.", items[4].Body())
	assert.Equal(t, "This website", items[4].Summary())
}

func TestAggregate_FailureIsAllOrNothing(t *testing.T) {
	reader := gardenReader()
	reader.notesErr = errors.New("connection reset")

	items, err := Aggregate(context.Background(), reader, zap.NewNop())
	require.Error(t, err)
	assert.Nil(t, items)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}

func TestAggregate_SkipsInvalidAndDuplicates(t *testing.T) {
	reader := &stubReader{
		articles: []content.Article{
			{ID: "a1", Title: "First"},
			{ID: "a1", Title: "Shadow copy"},
			{ID: "a2", Title: "   "},
		},
		notes: []content.Note{{ID: "a1", Title: "Same id, other kind"}},
	}

	items, err := Aggregate(context.Background(), reader, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "First", items[0].Title())
	assert.Equal(t, content.KindNote, items[1].Kind())
}

func TestAggregate_Empty(t *testing.T) {
	items, err := Aggregate(context.Background(), &stubReader{}, zap.NewNop())
	require.NoError(t, err)
	assert.Empty(t, items)
}
