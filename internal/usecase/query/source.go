package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/lexiscope/internal/domain"
	metadatauc "github.com/kailas-cloud/lexiscope/internal/usecase/metadata"
)

// hitSource serves the full text from the corpus and falls back to the
// content of the hit that surfaced the document when the file is missing.
type hitSource struct {
	texts metadatauc.TextSource
	hit   domain.Hit
}

func (s hitSource) FullText(ctx context.Context, identity string) (string, error) {
	text, err := s.texts.FullText(ctx, identity)
	if err == nil {
		return text, nil
	}
	if errors.Is(err, domain.ErrNotFound) && s.hit.Content != "" {
		return s.hit.Content, nil
	}
	return "", fmt.Errorf("full text %s: %w", identity, err)
}

func (s hitSource) Path(identity string) string {
	if s.hit.Source != "" {
		return s.hit.Source
	}
	return s.texts.Path(identity)
}
