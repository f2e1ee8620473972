package query

import (
	"context"

	"github.com/kailas-cloud/lexiscope/internal/domain"
	"github.com/kailas-cloud/lexiscope/internal/domain/analytics"
	"github.com/kailas-cloud/lexiscope/internal/domain/metadata"
	metadatauc "github.com/kailas-cloud/lexiscope/internal/usecase/metadata"
)

// passageIndex is the corpus-wide vector index.
type passageIndex interface {
	Search(ctx context.Context, vector []float32, k int) ([]domain.Hit, error)
}

// metadataResolver is the metadata cache-or-compute pipeline.
type metadataResolver interface {
	Resolve(ctx context.Context, identity string, src metadatauc.TextSource) (metadata.Record, error)
}

// searchLogger appends to the search log. Optional.
type searchLogger interface {
	LogSearch(ctx context.Context, e analytics.SearchLog) error
}
