// Package analytics describes the search log and its aggregates.
package analytics

// Kind tells which endpoint produced a logged search.
type Kind string

const (
	// KindSemantic is an orchestrated vector search.
	KindSemantic Kind = "semantic"
	// KindDatabase is a substring search over stored metadata.
	KindDatabase Kind = "database"
)

// SearchLog is one logged search.
type SearchLog struct {
	ID        string
	Query     string
	Kind      Kind
	Results   int
	LatencyMS int64
	CreatedAt int64 // unix millis
}

// PopularQuery is a query and how often it was issued.
type PopularQuery struct {
	Query string
	Count int
}

// Summary aggregates the search log over a trailing period.
type Summary struct {
	PeriodDays     int
	TotalSearches  int
	UniqueQueries  int
	AvgLatencyMS   float64
	AvgResultCount float64
	Popular        []PopularQuery
}
