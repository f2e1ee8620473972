package chi

import (
	"context"

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

type searcher interface {
	Search(ctx context.Context, q string, topK int) (query.Response, error)
}

type chatter interface {
	EnsureReady(ctx context.Context, identity string, build bool) (chat.Readiness, error)
	Answer(ctx context.Context, identity, question string) (string, error)
}

type caseCatalog interface {
	Case(ctx context.Context, identity string) (metadata.Record, error)
	List(ctx context.Context, limit, offset int) (catalog.Page, error)
	ByJudge(ctx context.Context, judge string, limit int) ([]metadata.Record, error)
	Search(ctx context.Context, q string, limit int) ([]metadata.Record, error)
	Analytics(ctx context.Context) (analytics.Summary, error)
}

type rateReporter interface {
	Status() ratelimit.Status
}

type indexReporter interface {
	Stats(maxSamples int) (docindexrepo.Stats, error)
}

type healthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

type usageReporter interface {
	Reports(ctx context.Context, period domusage.Period) []domusage.Report
}
