package chi

import (
	"context"

	"github.com/kailas-cloud/lexiscope/internal/domain"
	"github.com/kailas-cloud/lexiscope/internal/domain/analytics"
	"github.com/kailas-cloud/lexiscope/internal/domain/metadata"
	domusage "github.com/kailas-cloud/lexiscope/internal/domain/usage"
	docindexrepo "github.com/kailas-cloud/lexiscope/internal/repository/docindex"
	"github.com/kailas-cloud/lexiscope/internal/usecase/catalog"
	"github.com/kailas-cloud/lexiscope/internal/usecase/chat"
	healthuc "github.com/kailas-cloud/lexiscope/internal/usecase/health"
	"github.com/kailas-cloud/lexiscope/internal/usecase/query"
	"github.com/kailas-cloud/lexiscope/internal/usecase/ratelimit"
)

type mockSearcher struct {
	tokens  int
	resp    query.Response
	err     error
	gotQ    string
	gotTopK int
}

func (m *mockSearcher) Search(ctx context.Context, q string, topK int) (query.Response, error) {
	m.gotQ, m.gotTopK = q, topK
	domain.UsageFromContext(ctx).AddTokens(m.tokens)
	return m.resp, m.err
}

type mockChatter struct {
	ready    chat.Readiness
	readyErr error
	answer   string
	err      error
	gotID    string
	gotBuild bool
	gotQ     string
}

func (m *mockChatter) EnsureReady(_ context.Context, identity string, build bool) (chat.Readiness, error) {
	m.gotID, m.gotBuild = identity, build
	return m.ready, m.readyErr
}

func (m *mockChatter) Answer(_ context.Context, identity, question string) (string, error) {
	m.gotID, m.gotQ = identity, question
	return m.answer, m.err
}

type mockCatalog struct {
	rec      metadata.Record
	page     catalog.Page
	recs     []metadata.Record
	summary  analytics.Summary
	err      error
	gotID    string
	gotLimit int
	gotOff   int
	gotArg   string
}

func (m *mockCatalog) Case(_ context.Context, identity string) (metadata.Record, error) {
	m.gotID = identity
	return m.rec, m.err
}

func (m *mockCatalog) List(_ context.Context, limit, offset int) (catalog.Page, error) {
	m.gotLimit, m.gotOff = limit, offset
	return m.page, m.err
}

func (m *mockCatalog) ByJudge(_ context.Context, judge string, limit int) ([]metadata.Record, error) {
	m.gotArg, m.gotLimit = judge, limit
	return m.recs, m.err
}

func (m *mockCatalog) Search(_ context.Context, q string, limit int) ([]metadata.Record, error) {
	m.gotArg, m.gotLimit = q, limit
	return m.recs, m.err
}

func (m *mockCatalog) Analytics(_ context.Context) (analytics.Summary, error) {
	return m.summary, m.err
}

type mockRate struct{ st ratelimit.Status }

func (m *mockRate) Status() ratelimit.Status { return m.st }

type mockIndexes struct {
	stats docindexrepo.Stats
	err   error
}

func (m *mockIndexes) Stats(int) (docindexrepo.Stats, error) { return m.stats, m.err }

type mockHealth struct{ report healthuc.Report }

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }

type mockUsage struct {
	reports   []domusage.Report
	gotPeriod domusage.Period
}

func (m *mockUsage) Reports(_ context.Context, period domusage.Period) []domusage.Report {
	m.gotPeriod = period
	return m.reports
}
