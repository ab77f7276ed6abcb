package garden

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/garden/internal/domain/search/mode"
	"github.com/kailas-cloud/garden/internal/domain/search/request"
	searchuc "github.com/kailas-cloud/garden/internal/usecase/search"
)

// SearchBuilder is a fluent builder for one query.
type SearchBuilder struct {
	svc   *searchuc.Service
	query string
	limit int
	mode  Mode
}

// Query sets the question text.
func (b *SearchBuilder) Query(q string) *SearchBuilder {
	b.query = q
	return b
}

// Limit sets the maximum number of results (default 10, max 50).
func (b *SearchBuilder) Limit(n int) *SearchBuilder {
	b.limit = n
	return b
}

// Mode sets the caller's intent.
func (b *SearchBuilder) Mode(m Mode) *SearchBuilder {
	b.mode = m
	return b
}

// Do runs the query. Only validation and storage failures are returned;
// a failing completion provider yields a fallback response instead.
func (b *SearchBuilder) Do(ctx context.Context) (Response, error) {
	req, err := request.New(b.query, mode.Mode(b.mode), b.limit)
	if err != nil {
		return Response{}, fmt.Errorf("search: %w", err)
	}

	resp, err := b.svc.Search(ctx, &req)
	if err != nil {
		return Response{}, fmt.Errorf("search: %w", err)
	}
	return fromResponse(&resp), nil
}
