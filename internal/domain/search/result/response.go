package result

// Response is the outcome of one search request.
type Response struct {
	Query      string
	Answer     string
	Results    []Result
	IsFallback bool
	// Total counts every item over the fallback threshold (local path) or
	// every reconciled result (model path), before the limit is applied.
	Total int
}
