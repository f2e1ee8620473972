package metadata

import (
	"context"

	"github.com/kailas-cloud/lexiscope/internal/domain/metadata"
)

// recordStore is the metadata store. Get returns domain.ErrNotFound for unknown identities.
type recordStore interface {
	Get(ctx context.Context, identity string) (metadata.Record, error)
	Upsert(ctx context.Context, rec metadata.Record) error
}

// admitter is the rate gateway in front of the completion service.
type admitter interface {
	Admit(ctx context.Context) error
}

// TextSource supplies the full text of a document and where it lives.
type TextSource interface {
	FullText(ctx context.Context, identity string) (string, error)
	Path(identity string) string
}
