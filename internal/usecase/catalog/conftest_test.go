package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/lexiscope/internal/domain"
	"github.com/kailas-cloud/lexiscope/internal/domain/analytics"
	"github.com/kailas-cloud/lexiscope/internal/domain/metadata"
	metadatauc "github.com/kailas-cloud/lexiscope/internal/usecase/metadata"
)

type mockResolver struct {
	cached   map[string]metadata.Record
	resolved []string
}

func (m *mockResolver) Cached(_ context.Context, id string) (metadata.Record, bool, error) {
	rec, ok := m.cached[id]
	return rec, ok, nil
}

func (m *mockResolver) Resolve(_ context.Context, id string, src metadatauc.TextSource) (metadata.Record, error) {
	m.resolved = append(m.resolved, id)
	return metadata.New(id, src.Path(id), metadata.Fields{Title: "Resolved " + id}, metadata.StatusReady)
}

type mapTexts map[string]string

func (m mapTexts) FullText(_ context.Context, id string) (string, error) {
	if t, ok := m[id]; ok {
		return t, nil
	}
	return "", fmt.Errorf("text %s: %w", id, domain.ErrNotFound)
}

func (m mapTexts) Path(id string) string { return "data/" + id + ".txt" }

type mockBrowser struct {
	recs      []metadata.Record
	lastLimit int
	lastQuery string
	since     time.Time
	logs      []analytics.SearchLog
	logErr    error
	err       error
}

func (m *mockBrowser) List(_ context.Context, limit, offset int) ([]metadata.Record, int, error) {
	m.lastLimit = limit
	if m.err != nil {
		return nil, 0, m.err
	}
	if offset >= len(m.recs) {
		return nil, len(m.recs), nil
	}
	end := min(offset+limit, len(m.recs))
	return m.recs[offset:end], len(m.recs), nil
}

func (m *mockBrowser) ByJudge(_ context.Context, judge string, limit int) ([]metadata.Record, error) {
	m.lastQuery, m.lastLimit = judge, limit
	return m.recs, m.err
}

func (m *mockBrowser) SearchText(_ context.Context, q string, limit int) ([]metadata.Record, error) {
	m.lastQuery, m.lastLimit = q, limit
	return m.recs, m.err
}

func (m *mockBrowser) LogSearch(_ context.Context, e analytics.SearchLog) error {
	m.logs = append(m.logs, e)
	return m.logErr
}

func (m *mockBrowser) Summarize(_ context.Context, since time.Time) (analytics.Summary, error) {
	m.since = since
	return analytics.Summary{TotalSearches: 3}, m.err
}

func records(n int) []metadata.Record {
	out := make([]metadata.Record, n)
	for i := range out {
		out[i] = metadata.Reconstruct(fmt.Sprint(i+1), "T", "J", "D", "S", "", metadata.StatusReady, 1)
	}
	return out
}
