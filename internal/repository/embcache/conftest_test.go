package embcache

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexiscope/internal/db"
	"github.com/kailas-cloud/lexiscope/internal/domain"
)

// fakeEmbedder returns a vector derived from the text length.
type fakeEmbedder struct {
	err        error
	calls      int
	batchCalls int
	batchSizes []int
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	f.calls++
	if f.err != nil {
		return domain.EmbeddingResult{}, f.err
	}
	return domain.EmbeddingResult{Embedding: []float32{float32(len(text))}, PromptTokens: 3, TotalTokens: 3}, nil
}

func (f *fakeEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	f.batchCalls++
	f.batchSizes = append(f.batchSizes, len(texts))
	if f.err != nil {
		return domain.BatchEmbeddingResult{}, f.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t))}
	}
	return domain.BatchEmbeddingResult{Embeddings: out, PromptTokens: 3 * len(texts), TotalTokens: 3 * len(texts)}, nil
}

// memKV is an in-memory store with optional injected failures.
type memKV struct {
	mu     sync.Mutex
	data   map[string][]byte
	ttls   map[string]time.Duration
	getErr error
	setErr error
}

func newMemKV() *memKV {
	return &memKV{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memKV) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func newTestCache(t *testing.T, inner domain.Embedder) (*CachedEmbedder, *memKV) {
	t.Helper()
	kv := newMemKV()
	return New(inner, kv, "test-model", time.Hour, nil, zap.NewNop()), kv
}
