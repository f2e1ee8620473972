package usage

// BudgetReader is the read side of a budget.Tracker. A role with no limits
// is registered with a nil reader.
type BudgetReader interface {
	// Configured limits; zero means unlimited.
	DailyLimit() int64
	MonthlyLimit() int64

	DailyUsed() int64
	MonthlyUsed() int64
	RemainingDaily() int64
	RemainingMonthly() int64
}
