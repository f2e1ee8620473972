package metadata

import (
	"testing"

	"github.com/kailas-cloud/lexiscope/internal/domain/metadata"
)

func TestParseExtraction(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want metadata.Fields
		tier parseTier
	}{
		{
			name: "strict json",
			in:   `{"title":"A vs B","judges":"X, Y","date":"01-02-2003","summary":"Dismissed."}`,
			want: metadata.Fields{Title: "A vs B", Judges: "X, Y", Date: "01-02-2003", Summary: "Dismissed."},
			tier: tierStrict,
		},
		{
			name: "code fence and chatter",
			in:   "Here you go:\n```json\n{\"title\":\" A vs B \",\"judges\":\"X\",\"date\":\"d\",\"summary\":\"s\"}\n```",
			want: metadata.Fields{Title: "A vs B", Judges: "X", Date: "d", Summary: "s"},
			tier: tierStrict,
		},
		{
			name: "judges as list",
			in:   `{"title":"A vs B","judges":["X","Y", ""],"date":"d","summary":"s"}`,
			want: metadata.Fields{Title: "A vs B", Judges: "X, Y", Date: "d", Summary: "s"},
			tier: tierStrict,
		},
		{
			name: "missing and empty fields default independently",
			in:   `{"title":"A vs B","judges":"","summary":null}`,
			want: metadata.Fields{Title: "A vs B", Judges: metadata.NotAvailable, Date: metadata.NotAvailable, Summary: metadata.NotAvailable},
			tier: tierStrict,
		},
		{
			name: "truncated json recovered per key",
			in:   `{"title": "A vs B", "judges": "X", "date": "01-02-2003", "summary": "The appeal was`,
			want: metadata.Fields{Title: "A vs B", Judges: "X", Date: "01-02-2003", Summary: metadata.NotAvailable},
			tier: tierRecovered,
		},
		{
			name: "case-insensitive keys in broken json",
			in:   `{"Title": "A vs B", "JUDGES": "X" "date": }`,
			want: metadata.Fields{Title: "A vs B", Judges: "X", Date: metadata.NotAvailable, Summary: metadata.NotAvailable},
			tier: tierRecovered,
		},
		{
			name: "nothing usable",
			in:   "I cannot help with that.",
			want: metadata.SentinelFields(),
			tier: tierFallback,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, tier := parseExtraction(tc.in)
			if got != tc.want {
				t.Errorf("fields = %+v, want %+v", got, tc.want)
			}
			if tier != tc.tier {
				t.Errorf("tier = %d, want %d", tier, tc.tier)
			}
		})
	}
}

func TestParseTierOutcome(t *testing.T) {
	if tierStrict.outcome() != "extracted" || tierRecovered.outcome() != "recovered" || tierFallback.outcome() != "fallback" {
		t.Error("unexpected outcome labels")
	}
}
