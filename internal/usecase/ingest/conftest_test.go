package ingest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/kailas-cloud/lexiscope/internal/domain"
)

type memIndex struct {
	mu       sync.Mutex
	passages map[string][]domain.Passage
	ensured  int
	resets   int
	putErr   error
}

func newMemIndex() *memIndex { return &memIndex{passages: map[string][]domain.Passage{}} }

func (m *memIndex) EnsureIndex(_ context.Context) error {
	m.ensured++
	return nil
}

func (m *memIndex) Reset(_ context.Context) error {
	m.resets++
	m.passages = map[string][]domain.Passage{}
	return nil
}

func (m *memIndex) Put(_ context.Context, ps []domain.Passage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	for _, p := range ps {
		m.passages[p.Identity] = append(m.passages[p.Identity], p)
	}
	return nil
}

type lenEmbedder struct {
	failOn string
}

func (e *lenEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	if e.failOn != "" && strings.Contains(text, e.failOn) {
		return domain.EmbeddingResult{}, domain.ErrEmbeddingProviderError
	}
	return domain.EmbeddingResult{Embedding: []float32{float32(len(text)), 1}}, nil
}

type mapCorpus map[string]string

func (m mapCorpus) List() ([]string, error) {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m mapCorpus) FullText(_ context.Context, id string) (string, error) {
	if t, ok := m[id]; ok {
		return t, nil
	}
	return "", fmt.Errorf("text %s: %w", id, domain.ErrNotFound)
}

func (m mapCorpus) Path(id string) string { return "data/" + id + ".txt" }

var errDisk = errors.New("disk full")
