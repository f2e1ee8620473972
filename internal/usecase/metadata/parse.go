package metadata

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/kailas-cloud/lexiscope/internal/domain/metadata"
)

// parseTier records how much of a completion response was usable.
type parseTier int

const (
	tierStrict parseTier = iota
	tierRecovered
	tierFallback
)

func (t parseTier) outcome() string {
	switch t {
	case tierStrict:
		return "extracted"
	case tierRecovered:
		return "recovered"
	default:
		return "fallback"
	}
}

var fieldPatterns = map[string]*regexp.Regexp{
	"title":   regexp.MustCompile(`(?i)"title"\s*:\s*"([^"]*)"`),
	"judges":  regexp.MustCompile(`(?i)"judges"\s*:\s*"([^"]*)"`),
	"date":    regexp.MustCompile(`(?i)"date"\s*:\s*"([^"]*)"`),
	"summary": regexp.MustCompile(`(?i)"summary"\s*:\s*"([^"]*)"`),
}

// parseExtraction reads the four fields from a completion response.
// It tries the JSON object between the first '{' and the last '}', then
// per-field patterns, then gives up with sentinel values. Every returned
// field is non-empty.
func parseExtraction(text string) (metadata.Fields, parseTier) {
	if f, ok := parseStrict(text); ok {
		return f.WithDefaults(), tierStrict
	}
	if f, ok := parseRecovered(text); ok {
		return f.WithDefaults(), tierRecovered
	}
	return metadata.SentinelFields(), tierFallback
}

func parseStrict(text string) (metadata.Fields, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return metadata.Fields{}, false
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return metadata.Fields{}, false
	}
	return metadata.Fields{
		Title:   stringValue(raw["title"]),
		Judges:  stringValue(raw["judges"]),
		Date:    stringValue(raw["date"]),
		Summary: stringValue(raw["summary"]),
	}, true
}

// stringValue accepts strings and lists of strings; lists are joined with ", ".
func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				parts = append(parts, strings.TrimSpace(s))
			}
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

func parseRecovered(text string) (metadata.Fields, bool) {
	found := false
	get := func(key string) string {
		m := fieldPatterns[key].FindStringSubmatch(text)
		if m == nil {
			return ""
		}
		found = true
		return m[1]
	}
	f := metadata.Fields{
		Title:   get("title"),
		Judges:  get("judges"),
		Date:    get("date"),
		Summary: get("summary"),
	}
	return f, found
}
