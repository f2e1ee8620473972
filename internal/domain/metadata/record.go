// Package metadata holds the structured case metadata record and its lifecycle.
package metadata

import (
	"fmt"
	"strings"
	"time"
)

// NotAvailable stands in for missing or unrecoverable metadata.
const NotAvailable = "Not available"

// MaxTitleLength bounds a usable case title.
const MaxTitleLength = 200

// Status is the extraction lifecycle state of a record.
type Status string

const (
	// StatusAbsent means no extraction has been attempted.
	StatusAbsent Status = "absent"
	// StatusComputing means an extraction is in flight.
	StatusComputing Status = "computing"
	// StatusReady means the record was parsed from a completion response.
	StatusReady Status = "ready"
	// StatusFailed means extraction failed and sentinel values were stored.
	StatusFailed Status = "failed"
)

// ParseStatus converts a stored value to a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusAbsent, StatusComputing, StatusReady, StatusFailed:
		return Status(s), nil
	case "":
		return StatusAbsent, nil
	default:
		return "", fmt.Errorf("unknown extraction status %q", s)
	}
}

// IsTerminal reports whether the status stops further extraction.
func (s Status) IsTerminal() bool {
	return s == StatusReady || s == StatusFailed
}

// Fields are the four values extracted from a judgment.
type Fields struct {
	Title   string
	Judges  string
	Date    string
	Summary string
}

// SentinelFields returns fields with every value set to NotAvailable.
func SentinelFields() Fields {
	return Fields{Title: NotAvailable, Judges: NotAvailable, Date: NotAvailable, Summary: NotAvailable}
}

// WithDefaults trims every field and replaces empty ones with NotAvailable.
func (f Fields) WithDefaults() Fields {
	return Fields{
		Title:   orSentinel(f.Title),
		Judges:  orSentinel(f.Judges),
		Date:    orSentinel(f.Date),
		Summary: orSentinel(f.Summary),
	}
}

// Missing returns the names of fields that hold the sentinel.
func (f Fields) Missing() []string {
	var out []string
	if f.Title == NotAvailable {
		out = append(out, "title")
	}
	if f.Judges == NotAvailable {
		out = append(out, "judges")
	}
	if f.Date == NotAvailable {
		out = append(out, "date")
	}
	if f.Summary == NotAvailable {
		out = append(out, "summary")
	}
	return out
}

func orSentinel(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return NotAvailable
	}
	return v
}

// FallbackTitle builds a clickable title from the document identity.
func FallbackTitle(identity string) string {
	return fmt.Sprintf("Legal Case %s - Supreme Court Judgment", identity)
}

// UsableTitle returns title, or the identity fallback when title is empty,
// too long or mentions the sentinel.
func UsableTitle(title, identity string) string {
	t := strings.TrimSpace(title)
	if t == "" || len(t) > MaxTitleLength || strings.Contains(strings.ToLower(t), strings.ToLower(NotAvailable)) {
		return FallbackTitle(identity)
	}
	return t
}

// Record is the cached metadata of one judgment (immutable value object).
type Record struct {
	identity   string
	title      string
	judges     string
	date       string
	summary    string
	sourcePath string
	status     Status
	updatedAt  int64
}

// New builds a record from extracted fields.
// Empty fields become NotAvailable and the title is replaced when unusable.
func New(identity, sourcePath string, f Fields, status Status) (Record, error) {
	if strings.TrimSpace(identity) == "" {
		return Record{}, fmt.Errorf("identity is required")
	}
	if _, err := ParseStatus(string(status)); err != nil {
		return Record{}, err
	}

	f = f.WithDefaults()
	return Record{
		identity:   identity,
		title:      UsableTitle(f.Title, identity),
		judges:     f.Judges,
		date:       f.Date,
		summary:    f.Summary,
		sourcePath: sourcePath,
		status:     status,
		updatedAt:  time.Now().UnixMilli(),
	}, nil
}

// Reconstruct creates a Record without validation (storage hydration).
func Reconstruct(
	identity, title, judges, date, summary, sourcePath string,
	status Status, updatedAt int64,
) Record {
	return Record{
		identity:   identity,
		title:      title,
		judges:     judges,
		date:       date,
		summary:    summary,
		sourcePath: sourcePath,
		status:     status,
		updatedAt:  updatedAt,
	}
}

// Identity returns the document identity.
func (r *Record) Identity() string { return r.identity }

// Title returns the case title.
func (r *Record) Title() string { return r.title }

// Judges returns the bench, comma separated.
func (r *Record) Judges() string { return r.judges }

// DecisionDate returns the judgment date as extracted.
func (r *Record) DecisionDate() string { return r.date }

// Summary returns the short case summary.
func (r *Record) Summary() string { return r.summary }

// SourcePath returns where the full text lives.
func (r *Record) SourcePath() string { return r.sourcePath }

// Status returns the extraction status.
func (r *Record) Status() Status { return r.status }

// UpdatedAt returns the last write time in unix millis.
func (r *Record) UpdatedAt() int64 { return r.updatedAt }

// Fields returns the extracted values.
func (r *Record) Fields() Fields {
	return Fields{Title: r.title, Judges: r.judges, Date: r.date, Summary: r.summary}
}
