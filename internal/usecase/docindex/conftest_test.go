package docindex

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/kailas-cloud/lexiscope/internal/domain"
	"github.com/kailas-cloud/lexiscope/internal/domain/docindex"
	docindexrepo "github.com/kailas-cloud/lexiscope/internal/repository/docindex"
)

type memStore struct {
	mu      sync.Mutex
	handles map[string]*docindex.Handle
	saveErr error
	saves   int
}

func newMemStore() *memStore { return &memStore{handles: map[string]*docindex.Handle{}} }

func (m *memStore) Exists(id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.handles[id]
	return ok, nil
}

func (m *memStore) Save(h *docindex.Handle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.handles[h.Identity()] = h
	return nil
}

func (m *memStore) Load(id string) (*docindex.Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.handles[id]
	if !ok {
		return nil, fmt.Errorf("index %s: %w", id, domain.ErrIndexNotFound)
	}
	return h, nil
}

func (m *memStore) Stats(maxSamples int) (docindexrepo.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.handles))
	for id := range m.handles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return docindexrepo.Stats{Count: len(ids), Samples: ids[:min(len(ids), maxSamples)]}, nil
}

// keywordEmbedder maps text to a 3-d vector of keyword presence.
type keywordEmbedder struct {
	batchCalls atomic.Int32
	err        error
	gate       chan struct{}
}

func vectorFor(text string) []float32 {
	v := []float32{0.01, 0.01, 0.01}
	for i, kw := range []string{"contract", "murder", "tax"} {
		if containsWord(text, kw) {
			v[i] = 1
		}
	}
	return v
}

func containsWord(text, kw string) bool {
	for i := 0; i+len(kw) <= len(text); i++ {
		if text[i:i+len(kw)] == kw {
			return true
		}
	}
	return false
}

func (e *keywordEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	if e.err != nil {
		return domain.EmbeddingResult{}, e.err
	}
	return domain.EmbeddingResult{Embedding: vectorFor(text)}, nil
}

func (e *keywordEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	e.batchCalls.Add(1)
	if e.gate != nil {
		<-e.gate
	}
	if e.err != nil {
		return domain.BatchEmbeddingResult{}, e.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = vectorFor(t)
	}
	return domain.BatchEmbeddingResult{Embeddings: out}, nil
}

type mapTexts map[string]string

func (m mapTexts) FullText(_ context.Context, id string) (string, error) {
	t, ok := m[id]
	if !ok {
		return "", fmt.Errorf("text %s: %w", id, domain.ErrNotFound)
	}
	return t, nil
}
