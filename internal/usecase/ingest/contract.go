package ingest

import (
	"context"

	"github.com/kailas-cloud/lexiscope/internal/domain"
)

// passageWriter is the corpus-wide vector index.
type passageWriter interface {
	EnsureIndex(ctx context.Context) error
	Reset(ctx context.Context) error
	Put(ctx context.Context, passages []domain.Passage) error
}

// corpus enumerates and reads the judgment texts.
type corpus interface {
	List() ([]string, error)
	FullText(ctx context.Context, identity string) (string, error)
	Path(identity string) string
}
