package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/garden/internal/domain"
	"github.com/kailas-cloud/garden/internal/domain/search/mode"
	"github.com/kailas-cloud/garden/internal/domain/search/request"
	"github.com/kailas-cloud/garden/internal/domain/search/result"
	domusage "github.com/kailas-cloud/garden/internal/domain/usage"
	logpkg "github.com/kailas-cloud/garden/internal/logger"
	healthuc "github.com/kailas-cloud/garden/internal/usecase/health"
	searchuc "github.com/kailas-cloud/garden/internal/usecase/search"
	usageuc "github.com/kailas-cloud/garden/internal/usecase/usage"
)

const maxBodyBytes = 64 << 10

// Response headers carrying completion usage of the request.
const (
	HeaderCompletionTokens   = "X-Completion-Tokens"
	HeaderCompletionProvider = "X-Completion-Provider"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the search, health, usage and metrics endpoints.
type Server struct {
	search        *searchuc.Service
	usage         *usageuc.Service
	health        *healthuc.Service
	defaultLimit  int
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	usage *usageuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		search:       search,
		usage:        usage,
		health:       health,
		defaultLimit: request.DefaultLimit,
		logger:       logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrEmptyQuery, http.StatusBadRequest, ErrorResponseCodeEmptyQuery),
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorResponseCodeValidationFailed),
	}
	return s
}

// WithDefaultLimit sets the result limit applied when a request names none.
func (s *Server) WithDefaultLimit(n int) *Server {
	if n > 0 {
		s.defaultLimit = n
	}
	return s
}

// Register mounts the API routes on r.
func (s *Server) Register(r chi.Router) {
	r.Post("/search", s.PostSearch)
	r.Get("/search", s.GetSearch)
	r.Get("/health", s.HealthCheck)
	r.Get("/usage", s.GetUsage)
	r.Get("/metrics", s.Metrics)
}

// PostSearch handles POST /search.
func (s *Server) PostSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	s.runSearch(w, r, req.Query, req.Mode, req.Limit)
}

// GetSearch handles GET /search.
func (s *Server) GetSearch(w http.ResponseWriter, r *http.Request) {
	var params SearchParams
	for _, p := range []struct {
		name string
		dest any
	}{
		{"q", &params.Q},
		{"limit", &params.Limit},
		{"mode", &params.Mode},
	} {
		if err := runtime.BindQueryParameter("form", true, false, p.name, r.URL.Query(), p.dest); err != nil {
			writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed,
				"Invalid format for parameter "+p.name)
			return
		}
	}

	query := ""
	if params.Q != nil {
		query = *params.Q
	}
	s.runSearch(w, r, query, params.Mode, params.Limit)
}

func (s *Server) runSearch(w http.ResponseWriter, r *http.Request, query string, m *string, limit *int) {
	n := s.defaultLimit
	if limit != nil && *limit != 0 {
		n = *limit
	}
	var sm mode.Mode
	if m != nil {
		sm = mode.Mode(*m)
	}

	req, err := request.New(query, sm, n)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	resp, err := s.search.Search(ctx, &req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setCompletionHeaders(w, usage)
	writeJSON(w, http.StatusOK, NewSearchResponse(&resp))
}

// GetUsage handles GET /usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	period := domusage.PeriodMonth
	if p := r.URL.Query().Get("period"); p != "" {
		period = domusage.Period(p)
		if !period.IsValid() {
			writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed,
				"period must be one of day, month, total")
			return
		}
	}

	report := s.usage.GetReport(r.Context(), period)
	b := report.Budget()

	resp := UsageResponse{
		Period:   string(report.Period()),
		Provider: report.Provider(),
		Usage:    UsageMetrics{Tokens: report.TokensUsed()},
		Budget: BudgetStatus{
			TokensLimit:     b.TokensLimit(),
			TokensRemaining: b.TokensRemaining(),
			IsExhausted:     b.IsExhausted(),
		},
	}
	if report.PeriodStart() > 0 {
		start := time.UnixMilli(report.PeriodStart()).UTC()
		end := time.UnixMilli(report.PeriodEnd()).UTC()
		resp.PeriodStartAt = &start
		resp.PeriodEndAt = &end
	}
	if b.ResetsAt() > 0 && !b.IsUnlimited() {
		resetsAt := time.UnixMilli(b.ResetsAt()).UTC()
		resp.Budget.ResetsAt = &resetsAt
	}

	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func setCompletionHeaders(w http.ResponseWriter, usage *domain.CompletionUsage) {
	if usage == nil || usage.Provider == "" {
		return
	}
	w.Header().Set(HeaderCompletionTokens, strconv.Itoa(usage.TotalTokens))
	w.Header().Set(HeaderCompletionProvider, usage.Provider)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// Validation messages are safe to echo, so the full error text is returned.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContextOr(r.Context(), s.logger)
	for _, h := range s.errorHandlers {
		if h(w, err, err.Error()) {
			log.Debug("request rejected", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}

// NewSearchResponse renders a domain response in its wire shape.
func NewSearchResponse(resp *result.Response) SearchResponse {
	items := make([]SearchResultItem, len(resp.Results))
	for i := range resp.Results {
		items[i] = searchResultToDTO(&resp.Results[i])
	}
	return SearchResponse{
		Query:      resp.Query,
		Answer:     resp.Answer,
		Results:    items,
		IsFallback: resp.IsFallback,
		Total:      resp.Total,
	}
}

func searchResultToDTO(r *result.Result) SearchResultItem {
	return SearchResultItem{
		Type:       string(r.Kind()),
		ID:         r.ID(),
		Slug:       r.Slug(),
		Title:      r.Title(),
		Summary:    r.Summary(),
		Tags:       r.TagNames(),
		CreatedAt:  r.CreatedDate(),
		MatchScore: r.MatchScore(),
		Reason:     r.Reason(),
	}
}
