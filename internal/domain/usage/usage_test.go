package usage

import "testing"

func TestNewReport(t *testing.T) {
	b := NewBudget(1000000, 615800, 1700000000000)
	r := NewReport("completion", PeriodMonth, 1700000000, 1702600000, 384200, b)

	if r.Role() != "completion" {
		t.Errorf("Role() = %q", r.Role())
	}
	if r.Period() != PeriodMonth {
		t.Errorf("Period() = %q", r.Period())
	}
	if r.PeriodStart() != 1700000000 || r.PeriodEnd() != 1702600000 {
		t.Errorf("period = %d..%d", r.PeriodStart(), r.PeriodEnd())
	}
	if r.TokensUsed() != 384200 {
		t.Errorf("TokensUsed() = %d", r.TokensUsed())
	}
	if r.Budget().Limit() != 1000000 || r.Budget().Remaining() != 615800 {
		t.Errorf("Budget() = %+v", r.Budget())
	}
}

func TestBudget_Exhausted(t *testing.T) {
	tests := []struct {
		name      string
		limit     int64
		remaining int64
		want      bool
	}{
		{"unlimited", 0, -1, false},
		{"room left", 1000, 10, false},
		{"spent", 1000, 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := NewBudget(tc.limit, tc.remaining, 0).Exhausted(); got != tc.want {
				t.Errorf("Exhausted() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in      string
		want    Period
		wantErr bool
	}{
		{"", PeriodDay, false},
		{"day", PeriodDay, false},
		{"month", PeriodMonth, false},
		{"year", "", true},
	}
	for _, tc := range tests {
		got, err := ParsePeriod(tc.in)
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Errorf("ParsePeriod(%q) = %q, %v", tc.in, got, err)
		}
	}
}
