package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrEmptyQuery signals a search query that is empty after trimming.
	ErrEmptyQuery = errors.New("query is required")
	// ErrInvalidRequest signals a malformed request parameter (mode, limit, length).
	ErrInvalidRequest = errors.New("invalid request")
	// ErrInvalidContent signals a content record that cannot be made searchable.
	ErrInvalidContent = errors.New("invalid content")
	// ErrStorageUnavailable signals a failed read from the content store.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrCompletionProvider signals a completion provider failure.
	ErrCompletionProvider = errors.New("completion provider error")
	// ErrCompletionQuotaExceeded signals an exhausted completion token budget.
	ErrCompletionQuotaExceeded = errors.New("completion quota exceeded")
)
