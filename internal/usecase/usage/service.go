// Package usage reports token consumption against the configured budgets.
package usage

import (
	"context"
	"sort"
	"time"

	domusage "github.com/kailas-cloud/lexiscope/internal/domain/usage"
)

// Service handles usage reporting.
type Service struct {
	readers map[string]BudgetReader
	now     func() time.Time
}

// New creates a Service over the budgets keyed by role. Nil readers are
// reported as unlimited with no recorded usage.
func New(readers map[string]BudgetReader) *Service {
	return &Service{readers: readers, now: func() time.Time { return time.Now().UTC() }}
}

// Reports builds one report per role for the given period, sorted by role.
func (s *Service) Reports(_ context.Context, period domusage.Period) []domusage.Report {
	start, end := s.bounds(period)

	roles := make([]string, 0, len(s.readers))
	for role := range s.readers {
		roles = append(roles, role)
	}
	sort.Strings(roles)

	out := make([]domusage.Report, 0, len(roles))
	for _, role := range roles {
		br := s.readers[role]
		var limit, used int64
		remaining := int64(-1)
		if br != nil {
			if period == domusage.PeriodMonth {
				limit, used, remaining = br.MonthlyLimit(), br.MonthlyUsed(), br.RemainingMonthly()
			} else {
				limit, used, remaining = br.DailyLimit(), br.DailyUsed(), br.RemainingDaily()
			}
		}
		out = append(out, domusage.NewReport(role, period, start, end, used, domusage.NewBudget(limit, remaining, end)))
	}
	return out
}

func (s *Service) bounds(period domusage.Period) (int64, int64) {
	now := s.now()
	if period == domusage.PeriodMonth {
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return monthStart.UnixMilli(), monthStart.AddDate(0, 1, 0).UnixMilli()
	}
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return dayStart.UnixMilli(), dayStart.Add(24 * time.Hour).UnixMilli()
}
