package chat

import (
	"context"

	"github.com/kailas-cloud/lexiscope/internal/domain"
	"github.com/kailas-cloud/lexiscope/internal/domain/docindex"
	"github.com/kailas-cloud/lexiscope/internal/domain/metadata"
)

// indexManager is the per-document index lifecycle.
type indexManager interface {
	Exists(ctx context.Context, identity string) (bool, error)
	EnsureBuilt(ctx context.Context, identity, fullText string) (*docindex.Handle, error)
	Load(ctx context.Context, identity string) (*docindex.Handle, error)
	Search(ctx context.Context, h *docindex.Handle, query string, k int) ([]domain.Hit, error)
}

// metadataReader reads finished metadata without triggering extraction.
type metadataReader interface {
	Cached(ctx context.Context, identity string) (metadata.Record, bool, error)
}

type admitter interface {
	Admit(ctx context.Context) error
}

// TextSource supplies the full text used to build an index on demand.
type TextSource interface {
	FullText(ctx context.Context, identity string) (string, error)
}
