package budget

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexiscope/internal/domain"
)

type memStore struct {
	mu     sync.Mutex
	data   map[string]int64
	getErr error
	setErr error
}

func newMemStore() *memStore { return &memStore{data: make(map[string]int64)} }

func (m *memStore) IncrBy(_ context.Context, key string, val int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] += val
	return nil
}

func (m *memStore) Get(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return 0, m.getErr
	}
	return m.data[key], nil
}

func TestCheck_Actions(t *testing.T) {
	tests := []struct {
		name    string
		daily   int64
		monthly int64
		action  Action
		used    int64
		wantErr bool
	}{
		{"daily reject", 100, 0, ActionReject, 100, true},
		{"monthly reject", 0, 500, ActionReject, 500, true},
		{"warn lets through", 100, 0, ActionWarn, 200, false},
		{"below limit", 1000, 10000, ActionReject, 500, false},
		{"unlimited", 0, 0, ActionReject, 999999, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tr := NewTracker("groq", tc.daily, tc.monthly, tc.action, zap.NewNop())
			tr.Record(tc.used)
			err := tr.Check(context.Background())
			if tc.wantErr && !errors.Is(err, domain.ErrQuotaExceeded) {
				t.Fatalf("expected ErrQuotaExceeded, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestRemaining(t *testing.T) {
	tr := NewTracker("groq", 1000, 10000, ActionWarn, zap.NewNop())
	tr.Record(300)
	if got := tr.RemainingDaily(); got != 700 {
		t.Errorf("RemainingDaily = %d, want 700", got)
	}
	if got := tr.RemainingMonthly(); got != 9700 {
		t.Errorf("RemainingMonthly = %d, want 9700", got)
	}

	tr.Record(5000)
	if got := tr.RemainingDaily(); got != 0 {
		t.Errorf("RemainingDaily after overrun = %d, want 0", got)
	}

	unlimited := NewTracker("groq", 0, 0, ActionWarn, zap.NewNop())
	if unlimited.RemainingDaily() != -1 || unlimited.RemainingMonthly() != -1 {
		t.Error("expected -1 for unlimited budgets")
	}
}

func TestWithStore_LoadsAndPersists(t *testing.T) {
	store := newMemStore()
	tr := NewTracker("groq", 1000, 10000, ActionReject, zap.NewNop())
	now := tr.now()
	store.data[tr.dailyKey(now)] = 300
	store.data[tr.monthlyKey(now)] = 5000

	tr.WithStore(context.Background(), store)
	if tr.DailyUsed() != 300 || tr.MonthlyUsed() != 5000 {
		t.Fatalf("loaded daily=%d monthly=%d", tr.DailyUsed(), tr.MonthlyUsed())
	}

	tr.Record(50)
	if store.data[tr.dailyKey(now)] != 350 {
		t.Errorf("daily key = %d, want 350", store.data[tr.dailyKey(now)])
	}
	if store.data[tr.monthlyKey(now)] != 5050 {
		t.Errorf("monthly key = %d, want 5050", store.data[tr.monthlyKey(now)])
	}
}

func TestWithStore_Errors(t *testing.T) {
	store := newMemStore()
	store.getErr = errors.New("down")
	store.setErr = errors.New("down")

	tr := NewTracker("groq", 100, 0, ActionReject, zap.NewNop()).WithStore(context.Background(), store)
	if tr.DailyUsed() != 0 {
		t.Errorf("DailyUsed = %d, want 0", tr.DailyUsed())
	}
	tr.Record(10)
	if tr.DailyUsed() != 10 {
		t.Errorf("in-memory counter must advance when the store fails, got %d", tr.DailyUsed())
	}
}

func TestRollover(t *testing.T) {
	clock := time.Date(2026, 1, 31, 23, 0, 0, 0, time.UTC)
	tr := NewTracker("groq", 100, 1000, ActionReject, zap.NewNop())
	tr.now = func() time.Time { return clock }
	tr.day, tr.month = truncateToDay(clock), truncateToMonth(clock)

	tr.Record(100)
	if err := tr.Check(context.Background()); err == nil {
		t.Fatal("expected quota error before rollover")
	}

	clock = clock.Add(2 * time.Hour)
	if err := tr.Check(context.Background()); err != nil {
		t.Fatalf("expected reset after day change, got %v", err)
	}
	if tr.MonthlyUsed() != 0 {
		t.Errorf("MonthlyUsed = %d, want 0 after month change", tr.MonthlyUsed())
	}
}

func TestParseAction(t *testing.T) {
	if ParseAction("reject") != ActionReject {
		t.Error("reject")
	}
	if ParseAction("") != ActionWarn || ParseAction("bogus") != ActionWarn {
		t.Error("default should warn")
	}
}

func TestConcurrentRecord(t *testing.T) {
	tr := NewTracker("groq", 0, 0, ActionWarn, zap.NewNop())
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Record(2)
		}()
	}
	wg.Wait()
	if tr.DailyUsed() != 100 {
		t.Errorf("DailyUsed = %d, want 100", tr.DailyUsed())
	}
}
