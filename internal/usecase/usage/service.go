package usage

import (
	"context"
	"time"

	domusage "github.com/kailas-cloud/garden/internal/domain/usage"
	"github.com/kailas-cloud/garden/internal/domain/usage/budget"
)

// Service reports completion token usage.
type Service struct {
	br  BudgetReader
	now func() time.Time
}

// New creates a Service. br can be nil when no budget is configured.
func New(br BudgetReader) *Service {
	return &Service{br: br, now: func() time.Time { return time.Now().UTC() }}
}

type counters struct {
	limit, used, remaining int64
}

// GetReport builds a usage report for the period. The total period reports the
// monthly counters since older months are not retained.
func (s *Service) GetReport(_ context.Context, period domusage.Period) domusage.Report {
	var (
		start, end time.Time
		c          counters
		provider   string
	)
	now := s.now()

	switch period {
	case domusage.PeriodDay:
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 0, 1)
	case domusage.PeriodMonth:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 1, 0)
	}

	if s.br != nil {
		provider = s.br.Provider()
		if period == domusage.PeriodDay {
			c = counters{s.br.DailyLimit(), s.br.DailyUsed(), s.br.RemainingDaily()}
		} else {
			c = counters{s.br.MonthlyLimit(), s.br.MonthlyUsed(), s.br.RemainingMonthly()}
		}
	}

	remaining := max(c.remaining, 0)
	if c.limit == 0 {
		remaining = -1
	}
	b := budget.New(c.limit, remaining, c.limit > 0 && remaining == 0, unixMilli(end))
	return domusage.NewReport(period, unixMilli(start), unixMilli(end), provider, c.used, b)
}

func unixMilli(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
