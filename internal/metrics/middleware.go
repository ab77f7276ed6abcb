package metrics

import (
	"context"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

// OutcomeNone labels requests that never reached the search pipeline.
const OutcomeNone = "none"

var (
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "garden",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and search outcome",
			// Requests that wait on a completion provider land in the upper buckets.
			Buckets: []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		},
		[]string{"method", "route", "status", "outcome"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "garden",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, status and search outcome",
		},
		[]string{"method", "route", "status", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestDuration, httpRequestsTotal)
}

type outcomeKey struct{}

// outcomeSlot is filled by the search pipeline and read back once the handler returns.
type outcomeSlot struct {
	v atomic.Value
}

// withOutcomeSlot attaches an empty outcome slot to ctx.
func withOutcomeSlot(ctx context.Context) (context.Context, *outcomeSlot) {
	slot := &outcomeSlot{}
	return context.WithValue(ctx, outcomeKey{}, slot), slot
}

// SetOutcome records the search outcome for the request carried by ctx.
// It is a no-op outside an instrumented request.
func SetOutcome(ctx context.Context, outcome string) {
	if slot, ok := ctx.Value(outcomeKey{}).(*outcomeSlot); ok {
		slot.v.Store(outcome)
	}
}

func (s *outcomeSlot) get() string {
	if v, ok := s.v.Load().(string); ok && v != "" {
		return v
	}
	return OutcomeNone
}

// Middleware records request latency and count labelled with the chi route
// pattern and the search outcome the pipeline reported.
func Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx, slot := withOutcomeSlot(r.Context())

			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r.WithContext(ctx))

			route := routeLabel(chi.RouteContext(ctx))
			labels := []string{r.Method, route, strconv.Itoa(ww.status), slot.get()}
			httpRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
			httpRequestsTotal.WithLabelValues(labels...).Inc()
		})
	}
}

// routeLabel keeps cardinality bounded: unmatched paths collapse to "unknown".
func routeLabel(rctx *chi.Context) string {
	if rctx == nil {
		return "unknown"
	}
	if p := rctx.RoutePattern(); p != "" {
		return p
	}
	return "unknown"
}

// statusWriter captures the response status code.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b) //nolint:wrapcheck // delegating to underlying ResponseWriter
}
