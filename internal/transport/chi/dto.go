package chi

import "time"

// ErrorResponseCode is the machine-readable error code of an ErrorResponse.
type ErrorResponseCode string

// Error codes returned by the API.
const (
	ErrorResponseCodeBadRequest       ErrorResponseCode = "bad_request"
	ErrorResponseCodeEmptyQuery       ErrorResponseCode = "empty_query"
	ErrorResponseCodeValidationFailed ErrorResponseCode = "validation_failed"
	ErrorResponseCodeUnauthorized     ErrorResponseCode = "unauthorized"
	ErrorResponseCodeInternalError    ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	Query string  `json:"query"`
	Limit *int    `json:"limit,omitempty"`
	Mode  *string `json:"mode,omitempty"`
}

// SearchParams are the query parameters of GET /search.
type SearchParams struct {
	Q     *string `form:"q" json:"q,omitempty"`
	Limit *int    `form:"limit" json:"limit,omitempty"`
	Mode  *string `form:"mode" json:"mode,omitempty"`
}

// SearchResultItem is one entry of SearchResponse.Results.
type SearchResultItem struct {
	Type       string `json:"type"`
	ID         string `json:"id"`
	Slug       string `json:"slug"`
	Title      string `json:"title"`
	Summary    string `json:"summary"`
	Tags       string `json:"tags"`
	CreatedAt  string `json:"createdAt"`
	MatchScore int    `json:"matchScore"`
	Reason     string `json:"reason,omitempty"`
}

// SearchResponse is the body of a successful search.
type SearchResponse struct {
	Query      string             `json:"query"`
	Answer     string             `json:"answer"`
	Results    []SearchResultItem `json:"results"`
	IsFallback bool               `json:"isFallback,omitempty"`
	Total      int                `json:"total"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// UsageMetrics holds token consumption for the period.
type UsageMetrics struct {
	Tokens int64 `json:"tokens"`
}

// BudgetStatus is the completion token budget snapshot.
type BudgetStatus struct {
	TokensLimit     int64      `json:"tokensLimit"`
	TokensRemaining int64      `json:"tokensRemaining"`
	IsExhausted     bool       `json:"isExhausted"`
	ResetsAt        *time.Time `json:"resetsAt,omitempty"`
}

// UsageResponse is the body of GET /usage.
type UsageResponse struct {
	Period        string       `json:"period"`
	Provider      string       `json:"provider,omitempty"`
	PeriodStartAt *time.Time   `json:"periodStartAt,omitempty"`
	PeriodEndAt   *time.Time   `json:"periodEndAt,omitempty"`
	Usage         UsageMetrics `json:"usage"`
	Budget        BudgetStatus `json:"budget"`
}
