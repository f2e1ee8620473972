package catalog

import (
	"context"
	"time"

	"github.com/kailas-cloud/lexiscope/internal/domain/analytics"
	"github.com/kailas-cloud/lexiscope/internal/domain/metadata"
	metadatauc "github.com/kailas-cloud/lexiscope/internal/usecase/metadata"
)

// Browser is implemented by metadata stores that can list and search records.
type Browser interface {
	List(ctx context.Context, limit, offset int) ([]metadata.Record, int, error)
	ByJudge(ctx context.Context, judge string, limit int) ([]metadata.Record, error)
	SearchText(ctx context.Context, q string, limit int) ([]metadata.Record, error)
	LogSearch(ctx context.Context, e analytics.SearchLog) error
	Summarize(ctx context.Context, since time.Time) (analytics.Summary, error)
}

type resolver interface {
	Cached(ctx context.Context, identity string) (metadata.Record, bool, error)
	Resolve(ctx context.Context, identity string, src metadatauc.TextSource) (metadata.Record, error)
}
