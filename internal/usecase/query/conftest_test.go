package query

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kailas-cloud/lexiscope/internal/domain"
	"github.com/kailas-cloud/lexiscope/internal/domain/analytics"
	"github.com/kailas-cloud/lexiscope/internal/domain/metadata"
	metadatauc "github.com/kailas-cloud/lexiscope/internal/usecase/metadata"
)

type mockEmbedder struct {
	err   error
	calls int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: []float32{1, 0, 0}}, nil
}

type mockIndex struct {
	hits  []domain.Hit
	err   error
	lastK int
}

func (m *mockIndex) Search(_ context.Context, _ []float32, k int) ([]domain.Hit, error) {
	m.lastK = k
	if m.err != nil {
		return nil, m.err
	}
	if k < len(m.hits) {
		return m.hits[:k], nil
	}
	return m.hits, nil
}

type mockResolver struct {
	mu      sync.Mutex
	order   []string
	sources map[string]metadatauc.TextSource
	fail    map[string]error
}

func (m *mockResolver) Resolve(
	ctx context.Context, identity string, src metadatauc.TextSource,
) (metadata.Record, error) {
	m.mu.Lock()
	m.order = append(m.order, identity)
	if m.sources == nil {
		m.sources = map[string]metadatauc.TextSource{}
	}
	m.sources[identity] = src
	err := m.fail[identity]
	m.mu.Unlock()
	if err != nil {
		return metadata.Record{}, err
	}
	text, _ := src.FullText(ctx, identity)
	return metadata.New(identity, src.Path(identity), metadata.Fields{Title: "Case " + identity, Summary: text}, metadata.StatusReady)
}

type mapTexts map[string]string

func (m mapTexts) FullText(_ context.Context, id string) (string, error) {
	if t, ok := m[id]; ok {
		return t, nil
	}
	return "", fmt.Errorf("text %s: %w", id, domain.ErrNotFound)
}

func (m mapTexts) Path(id string) string { return "data/" + id + ".txt" }

type mockSearchLog struct {
	entries []analytics.SearchLog
	err     error
}

func (m *mockSearchLog) LogSearch(_ context.Context, e analytics.SearchLog) error {
	m.entries = append(m.entries, e)
	return m.err
}

var errBoom = errors.New("boom")
