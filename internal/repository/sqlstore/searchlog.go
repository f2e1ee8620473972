package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/lexiscope/internal/domain"
	"github.com/kailas-cloud/lexiscope/internal/domain/analytics"
)

const popularLimit = 10

// LogSearch appends an entry to the search log. Empty ID and CreatedAt are filled in.
func (s *Store) LogSearch(ctx context.Context, e analytics.SearchLog) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().UnixMilli()
	}
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO search_logs (id, query, kind, results_count, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`),
		e.ID, e.Query, string(e.Kind), e.Results, e.LatencyMS, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("log search: %w: %w", domain.ErrStore, err)
	}
	return nil
}

// Summarize aggregates searches newer than since.
func (s *Store) Summarize(ctx context.Context, since time.Time) (analytics.Summary, error) {
	var sum analytics.Summary
	cutoff := since.UnixMilli()

	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT COUNT(*), COUNT(DISTINCT query),
		       COALESCE(AVG(latency_ms), 0), COALESCE(AVG(results_count), 0)
		FROM search_logs WHERE created_at >= ?`), cutoff,
	).Scan(&sum.TotalSearches, &sum.UniqueQueries, &sum.AvgLatencyMS, &sum.AvgResultCount)
	if err != nil {
		return analytics.Summary{}, fmt.Errorf("summarize searches: %w: %w", domain.ErrStore, err)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT query, COUNT(*) AS n FROM search_logs
		WHERE created_at >= ?
		GROUP BY query
		ORDER BY n DESC, query
		LIMIT ?`), cutoff, popularLimit)
	if err != nil {
		return analytics.Summary{}, fmt.Errorf("popular searches: %w: %w", domain.ErrStore, err)
	}
	defer rows.Close()

	for rows.Next() {
		var p analytics.PopularQuery
		if err := rows.Scan(&p.Query, &p.Count); err != nil {
			return analytics.Summary{}, fmt.Errorf("scan popular search: %w", err)
		}
		sum.Popular = append(sum.Popular, p)
	}
	if err := rows.Err(); err != nil {
		return analytics.Summary{}, fmt.Errorf("iterate popular searches: %w: %w", domain.ErrStore, err)
	}
	return sum, nil
}
