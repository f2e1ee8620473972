// Package catalog browses stored case metadata and the search log.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexiscope/internal/domain"
	"github.com/kailas-cloud/lexiscope/internal/domain/analytics"
	"github.com/kailas-cloud/lexiscope/internal/domain/metadata"
	metadatauc "github.com/kailas-cloud/lexiscope/internal/usecase/metadata"
)

// Paging bounds.
const (
	DefaultLimit = 20
	MaxLimit     = 100
	// AnalyticsDays is the trailing period of the search summary.
	AnalyticsDays = 30
)

// Page is one slice of the case listing.
type Page struct {
	Cases   []metadata.Record
	Total   int
	Limit   int
	Offset  int
	HasMore bool
}

// Service serves case lookups. Listing and search need a Browser; without
// one they return domain.ErrNotImplemented.
type Service struct {
	resolver resolver
	texts    metadatauc.TextSource
	browser  Browser
	now      func() time.Time
	logger   *zap.Logger
}

// New creates a Service. browser may be nil.
func New(r resolver, texts metadatauc.TextSource, browser Browser, logger *zap.Logger) *Service {
	return &Service{resolver: r, texts: texts, browser: browser, now: time.Now, logger: logger}
}

// Case returns the metadata of one case, extracting it when needed.
// Identities without a corpus text yield domain.ErrNotFound.
func (s *Service) Case(ctx context.Context, identity string) (metadata.Record, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return metadata.Record{}, fmt.Errorf("empty case id: %w", domain.ErrInvalidInput)
	}
	if rec, ok, err := s.resolver.Cached(ctx, identity); err == nil && ok {
		return rec, nil
	}
	if _, err := s.texts.FullText(ctx, identity); err != nil {
		return metadata.Record{}, fmt.Errorf("case %s: %w", identity, err)
	}
	rec, err := s.resolver.Resolve(ctx, identity, s.texts)
	if err != nil {
		return metadata.Record{}, fmt.Errorf("case %s: %w", identity, err)
	}
	return rec, nil
}

// List pages through stored cases. Out of range limits are clamped.
func (s *Service) List(ctx context.Context, limit, offset int) (Page, error) {
	if s.browser == nil {
		return Page{}, fmt.Errorf("case listing: %w", domain.ErrNotImplemented)
	}
	limit = clampLimit(limit)
	if offset < 0 {
		offset = 0
	}
	recs, total, err := s.browser.List(ctx, limit, offset)
	if err != nil {
		return Page{}, fmt.Errorf("list cases: %w", err)
	}
	return Page{
		Cases:   recs,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: offset+len(recs) < total,
	}, nil
}

// ByJudge returns cases whose bench mentions judge.
func (s *Service) ByJudge(ctx context.Context, judge string, limit int) ([]metadata.Record, error) {
	if s.browser == nil {
		return nil, fmt.Errorf("judge search: %w", domain.ErrNotImplemented)
	}
	judge = strings.TrimSpace(judge)
	if judge == "" {
		return nil, fmt.Errorf("empty judge: %w", domain.ErrInvalidInput)
	}
	recs, err := s.browser.ByJudge(ctx, judge, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("cases by judge: %w", err)
	}
	return recs, nil
}

// Search matches q against stored titles, benches and summaries and logs
// the search.
func (s *Service) Search(ctx context.Context, q string, limit int) ([]metadata.Record, error) {
	if s.browser == nil {
		return nil, fmt.Errorf("database search: %w", domain.ErrNotImplemented)
	}
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fmt.Errorf("empty query: %w", domain.ErrInvalidInput)
	}
	start := s.now()
	recs, err := s.browser.SearchText(ctx, q, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("database search: %w", err)
	}

	err = s.browser.LogSearch(context.WithoutCancel(ctx), analytics.SearchLog{
		Query:     q,
		Kind:      analytics.KindDatabase,
		Results:   len(recs),
		LatencyMS: s.now().Sub(start).Milliseconds(),
	})
	if err != nil {
		s.logger.Warn("Failed to log search", zap.String("op", "log_search"), zap.Error(err))
	}
	return recs, nil
}

// Analytics summarizes the search log over the trailing AnalyticsDays.
func (s *Service) Analytics(ctx context.Context) (analytics.Summary, error) {
	if s.browser == nil {
		return analytics.Summary{}, fmt.Errorf("search analytics: %w", domain.ErrNotImplemented)
	}
	sum, err := s.browser.Summarize(ctx, s.now().AddDate(0, 0, -AnalyticsDays))
	if err != nil {
		return analytics.Summary{}, fmt.Errorf("search analytics: %w", err)
	}
	sum.PeriodDays = AnalyticsDays
	return sum, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}
