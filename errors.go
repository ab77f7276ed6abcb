package garden

import "github.com/kailas-cloud/garden/internal/domain"

// Sentinel errors, matchable with errors.Is.
var (
	ErrEmptyQuery         = domain.ErrEmptyQuery
	ErrInvalidRequest     = domain.ErrInvalidRequest
	ErrInvalidContent     = domain.ErrInvalidContent
	ErrNotFound           = domain.ErrNotFound
	ErrStorageUnavailable = domain.ErrStorageUnavailable
)
