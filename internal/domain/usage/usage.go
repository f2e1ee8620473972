// Package usage describes token budget reports for the model providers.
package usage

import "fmt"

// Period is the aggregation granularity.
type Period string

// Aggregation period constants.
const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
)

// ParsePeriod maps a query value to a Period. Empty means day.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case "", PeriodDay:
		return PeriodDay, nil
	case PeriodMonth:
		return PeriodMonth, nil
	default:
		return "", fmt.Errorf("unknown period %q", s)
	}
}

// Budget is a token budget snapshot. A zero limit means unlimited.
type Budget struct {
	limit     int64
	remaining int64
	resetsAt  int64 // unix millis
}

// NewBudget creates a Budget snapshot. Negative remaining means unlimited.
func NewBudget(limit, remaining, resetsAt int64) Budget {
	return Budget{limit: limit, remaining: remaining, resetsAt: resetsAt}
}

// Limit returns the token cap, 0 when unlimited.
func (b Budget) Limit() int64 { return b.limit }

// Remaining returns tokens left, -1 when unlimited.
func (b Budget) Remaining() int64 { return b.remaining }

// Exhausted reports whether a limited budget is spent.
func (b Budget) Exhausted() bool { return b.limit > 0 && b.remaining <= 0 }

// ResetsAt returns the reset timestamp (unix millis).
func (b Budget) ResetsAt() int64 { return b.resetsAt }

// Report is the token usage of one provider role for a period.
type Report struct {
	role        string
	period      Period
	periodStart int64
	periodEnd   int64
	tokensUsed  int64
	budget      Budget
}

// NewReport creates a usage report.
func NewReport(role string, period Period, start, end, used int64, b Budget) Report {
	return Report{
		role:        role,
		period:      period,
		periodStart: start,
		periodEnd:   end,
		tokensUsed:  used,
		budget:      b,
	}
}

// Role names the tracked provider role (embedding, completion).
func (r *Report) Role() string { return r.role }

// Period returns the aggregation granularity.
func (r *Report) Period() Period { return r.period }

// PeriodStart returns the period start timestamp (unix millis).
func (r *Report) PeriodStart() int64 { return r.periodStart }

// PeriodEnd returns the period end timestamp (unix millis).
func (r *Report) PeriodEnd() int64 { return r.periodEnd }

// TokensUsed returns tokens consumed in the period.
func (r *Report) TokensUsed() int64 { return r.tokensUsed }

// Budget returns the budget status.
func (r *Report) Budget() Budget { return r.budget }
