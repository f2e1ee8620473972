// Package budget tracks daily and monthly token consumption per provider.
package budget

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexiscope/internal/domain"
)

// Action defines behavior when a limit is reached.
type Action string

const (
	// ActionWarn logs and lets the request through.
	ActionWarn Action = "warn"
	// ActionReject fails the request with domain.ErrQuotaExceeded.
	ActionReject Action = "reject"
)

// ParseAction maps config values; anything but "reject" warns.
func ParseAction(s string) Action {
	if s == string(ActionReject) {
		return ActionReject
	}
	return ActionWarn
}

// Store persists counters. IncrBy may be called repeatedly for the same key.
type Store interface {
	IncrBy(ctx context.Context, key string, val int64) error
	Get(ctx context.Context, key string) (int64, error)
}

// Tracker keeps counters in memory and writes increments behind to a Store.
// Check never leaves the process.
type Tracker struct {
	mu          sync.Mutex
	dailyUsed   int64
	monthlyUsed int64
	day         time.Time
	month       time.Time

	dailyLimit   int64
	monthlyLimit int64
	action       Action
	provider     string
	store        Store
	now          func() time.Time
	logger       *zap.Logger
}

// NewTracker creates a tracker. Zero limits are unlimited.
func NewTracker(provider string, dailyLimit, monthlyLimit int64, action Action, logger *zap.Logger) *Tracker {
	t := &Tracker{
		dailyLimit:   dailyLimit,
		monthlyLimit: monthlyLimit,
		action:       action,
		provider:     provider,
		now:          func() time.Time { return time.Now().UTC() },
		logger:       logger,
	}
	now := t.now()
	t.day, t.month = truncateToDay(now), truncateToMonth(now)
	return t
}

// WithStore attaches persistence and loads the current period's counters.
func (t *Tracker) WithStore(ctx context.Context, store Store) *Tracker {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.store = store
	now := t.now()
	if v, err := store.Get(ctx, t.dailyKey(now)); err == nil {
		t.dailyUsed = v
	} else {
		t.logger.Warn("Failed to load daily budget", zap.String("provider", t.provider), zap.Error(err))
	}
	if v, err := store.Get(ctx, t.monthlyKey(now)); err == nil {
		t.monthlyUsed = v
	} else {
		t.logger.Warn("Failed to load monthly budget", zap.String("provider", t.provider), zap.Error(err))
	}

	t.logger.Info("Budget loaded",
		zap.String("provider", t.provider),
		zap.Int64("daily_used", t.dailyUsed),
		zap.Int64("monthly_used", t.monthlyUsed),
	)
	return t
}

func (t *Tracker) dailyKey(at time.Time) string {
	return fmt.Sprintf("%sbudget:%s:daily:%s", domain.KeyPrefix, t.provider, at.Format("2006-01-02"))
}

func (t *Tracker) monthlyKey(at time.Time) string {
	return fmt.Sprintf("%sbudget:%s:monthly:%s", domain.KeyPrefix, t.provider, at.Format("2006-01"))
}

// Check reports whether another request may proceed.
func (t *Tracker) Check(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollover()

	daily := t.dailyLimit > 0 && t.dailyUsed >= t.dailyLimit
	monthly := t.monthlyLimit > 0 && t.monthlyUsed >= t.monthlyLimit
	if !daily && !monthly {
		return nil
	}
	if t.action == ActionReject {
		return fmt.Errorf("%s budget: %w", t.provider, domain.ErrQuotaExceeded)
	}

	t.logger.Warn("Token budget exceeded",
		zap.String("provider", t.provider),
		zap.Int64("daily_used", t.dailyUsed),
		zap.Int64("daily_limit", t.dailyLimit),
		zap.Int64("monthly_used", t.monthlyUsed),
		zap.Int64("monthly_limit", t.monthlyLimit),
	)
	return nil
}

// Record adds consumed tokens, then persists the increment if a store is attached.
func (t *Tracker) Record(tokens int64) {
	t.mu.Lock()
	t.rollover()
	t.dailyUsed += tokens
	t.monthlyUsed += tokens
	store := t.store
	now := t.now()
	dailyKey, monthlyKey := t.dailyKey(now), t.monthlyKey(now)
	t.mu.Unlock()

	if store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := store.IncrBy(ctx, dailyKey, tokens); err != nil {
		t.logger.Warn("Failed to persist daily budget", zap.String("key", dailyKey), zap.Error(err))
	}
	if err := store.IncrBy(ctx, monthlyKey, tokens); err != nil {
		t.logger.Warn("Failed to persist monthly budget", zap.String("key", monthlyKey), zap.Error(err))
	}
}

// RemainingDaily returns tokens left today, or -1 when unlimited.
func (t *Tracker) RemainingDaily() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollover()
	return remaining(t.dailyLimit, t.dailyUsed)
}

// RemainingMonthly returns tokens left this month, or -1 when unlimited.
func (t *Tracker) RemainingMonthly() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollover()
	return remaining(t.monthlyLimit, t.monthlyUsed)
}

func (t *Tracker) DailyUsed() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollover()
	return t.dailyUsed
}

func (t *Tracker) MonthlyUsed() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollover()
	return t.monthlyUsed
}

func (t *Tracker) Provider() string { return t.provider }

// DailyLimit returns the daily cap, 0 when unlimited.
func (t *Tracker) DailyLimit() int64 { return t.dailyLimit }

// MonthlyLimit returns the monthly cap, 0 when unlimited.
func (t *Tracker) MonthlyLimit() int64 { return t.monthlyLimit }

func remaining(limit, used int64) int64 {
	if limit == 0 {
		return -1
	}
	if used >= limit {
		return 0
	}
	return limit - used
}

// rollover zeroes counters when the day or month changes. Caller holds mu.
func (t *Tracker) rollover() {
	now := t.now()
	if day := truncateToDay(now); day.After(t.day) {
		t.dailyUsed = 0
		t.day = day
	}
	if month := truncateToMonth(now); month.After(t.month) {
		t.monthlyUsed = 0
		t.month = month
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func truncateToMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
