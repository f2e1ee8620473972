package domain

import "testing"

func TestIdentityFromSource(t *testing.T) {
	tests := map[string]string{
		"supreme_court_texts/42.txt":   "42",
		"/data/corpus/7.txt":           "7",
		`C:\corpus\texts\9.txt`:        "9",
		"12":                           "12",
		"nested/dir/case-2024-01.json": "case-2024-01",
		"":                             "",
	}
	for in, want := range tests {
		if got := IdentityFromSource(in); got != want {
			t.Errorf("IdentityFromSource(%q) = %q, want %q", in, got, want)
		}
	}
}
