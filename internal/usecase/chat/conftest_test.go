package chat

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/kailas-cloud/lexiscope/internal/domain"
	"github.com/kailas-cloud/lexiscope/internal/domain/docindex"
	"github.com/kailas-cloud/lexiscope/internal/domain/metadata"
)

type mockIndexes struct {
	built     map[string]*docindex.Handle
	hits      []domain.Hit
	searchErr error
	buildErr  error
	lastK     int
	builds    int
}

func newMockIndexes() *mockIndexes { return &mockIndexes{built: map[string]*docindex.Handle{}} }

func (m *mockIndexes) Exists(_ context.Context, id string) (bool, error) {
	_, ok := m.built[id]
	return ok, nil
}

func (m *mockIndexes) EnsureBuilt(_ context.Context, id, text string) (*docindex.Handle, error) {
	m.builds++
	if m.buildErr != nil {
		return nil, m.buildErr
	}
	h, err := docindex.New(id, "test", []string{text}, [][]float32{{1, 0}}, 1)
	if err != nil {
		return nil, err
	}
	m.built[id] = h
	return h, nil
}

func (m *mockIndexes) Load(_ context.Context, id string) (*docindex.Handle, error) {
	h, ok := m.built[id]
	if !ok {
		return nil, fmt.Errorf("%w: %w", domain.ErrNotFound, domain.ErrIndexNotFound)
	}
	return h, nil
}

func (m *mockIndexes) Search(_ context.Context, _ *docindex.Handle, _ string, k int) ([]domain.Hit, error) {
	m.lastK = k
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if k < len(m.hits) {
		return m.hits[:k], nil
	}
	return m.hits, nil
}

type mockMeta struct {
	rec metadata.Record
	ok  bool
	err error
}

func (m *mockMeta) Cached(_ context.Context, _ string) (metadata.Record, bool, error) {
	return m.rec, m.ok, m.err
}

type mockGate struct {
	err    error
	admits atomic.Int32
}

func (m *mockGate) Admit(_ context.Context) error {
	m.admits.Add(1)
	return m.err
}

type mockCompleter struct {
	text   string
	err    error
	msgs   []domain.Message
	params domain.CompletionParams
	calls  int
}

func (m *mockCompleter) Generate(
	_ context.Context, msgs []domain.Message, p domain.CompletionParams,
) (domain.CompletionResult, error) {
	m.calls++
	m.msgs = msgs
	m.params = p
	if m.err != nil {
		return domain.CompletionResult{}, m.err
	}
	return domain.CompletionResult{Text: m.text}, nil
}

type mapTexts map[string]string

func (m mapTexts) FullText(_ context.Context, id string) (string, error) {
	if t, ok := m[id]; ok {
		return t, nil
	}
	return "", fmt.Errorf("text %s: %w", id, domain.ErrNotFound)
}
