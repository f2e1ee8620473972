package docindex

import (
	"context"

	"github.com/kailas-cloud/lexiscope/internal/domain/docindex"
	docindexrepo "github.com/kailas-cloud/lexiscope/internal/repository/docindex"
)

// artifactStore persists built handles. Save must be atomic.
type artifactStore interface {
	Exists(identity string) (bool, error)
	Save(h *docindex.Handle) error
	Load(identity string) (*docindex.Handle, error)
	Stats(maxSamples int) (docindexrepo.Stats, error)
}

// TextSource supplies full document text for bulk builds.
type TextSource interface {
	FullText(ctx context.Context, identity string) (string, error)
}
