package corpus

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/lexiscope/internal/db"
	"github.com/kailas-cloud/lexiscope/internal/domain"
)

func TestEnsureIndex_CreatesWhenMissing(t *testing.T) {
	repo, ms := newTestRepo(t)
	var created *db.IndexDefinition
	ms.createIndexFn = func(_ context.Context, def *db.IndexDefinition) error {
		created = def
		return nil
	}

	if err := repo.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == nil {
		t.Fatal("expected index to be created")
	}
	if created.Name != "lexiscope:idx:corpus" || created.Prefixes[0] != "lexiscope:chunk:" {
		t.Errorf("unexpected definition: %s", created)
	}
	last := created.Fields[len(created.Fields)-1]
	if last.Type != db.IndexFieldVector || last.Dim != 3 || last.M != 16 {
		t.Errorf("unexpected vector field: %+v", last)
	}
}

func TestEnsureIndex_ExistingIsNoop(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.indexExistsFn = func(context.Context, string) (bool, error) { return true, nil }
	ms.createIndexFn = func(context.Context, *db.IndexDefinition) error {
		t.Fatal("CreateIndex must not be called")
		return nil
	}
	if err := repo.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEnsureIndex_RaceToleratesExists(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.createIndexFn = func(context.Context, *db.IndexDefinition) error { return db.ErrIndexExists }
	if err := repo.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReset(t *testing.T) {
	repo, ms := newTestRepo(t)
	var dd bool
	ms.dropIndexFn = func(_ context.Context, _ string, deleteDocs bool) error {
		dd = deleteDocs
		return db.ErrIndexNotFound
	}
	if err := repo.Reset(context.Background()); err != nil {
		t.Fatalf("missing index must not fail reset: %v", err)
	}
	if !dd {
		t.Error("reset must delete documents")
	}
}

func TestPut(t *testing.T) {
	repo, ms := newTestRepo(t)
	var items []db.HashSetItem
	ms.hsetMultiFn = func(_ context.Context, in []db.HashSetItem) error {
		items = in
		return nil
	}

	err := repo.Put(context.Background(), []domain.Passage{
		{Identity: "7", Source: "texts/7.txt", Index: 0, Content: "first", Vector: []float32{1, 0, 0}},
		{Identity: "7", Source: "texts/7.txt", Index: 1, Content: "second", Vector: []float32{0, 1, 0}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	if items[1].Key != "lexiscope:chunk:7:1" {
		t.Errorf("key = %q", items[1].Key)
	}
	f := items[0].Fields
	if f["identity"] != "7" || f["source"] != "texts/7.txt" || f["chunk_index"] != "0" || len(f["vector"]) != 12 {
		t.Errorf("unexpected fields: %v", f)
	}
}

func TestPut_DimensionMismatch(t *testing.T) {
	repo, _ := newTestRepo(t)
	err := repo.Put(context.Background(), []domain.Passage{{Identity: "1", Vector: []float32{1}}})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSearch(t *testing.T) {
	repo, ms := newTestRepo(t)
	var got *db.KNNQuery
	ms.searchKNNFn = func(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
		got = q
		return &db.SearchResult{Total: 3, Entries: []db.SearchEntry{
			{Key: "lexiscope:chunk:7:2", Score: 0.9, Fields: map[string]string{
				"identity": "7", "source": "texts/7.txt", "chunk_index": "2", "content": "rights",
			}},
			{Key: "lexiscope:chunk:9:0", Score: 0.8, Fields: map[string]string{
				"source": "texts/9.txt", "chunk_index": "0",
			}},
			{Key: "lexiscope:chunk:case:11:4", Score: 0.7, Fields: map[string]string{}},
		}}, nil
	}

	hits, err := repo.Search(context.Background(), []float32{1, 0, 0}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.K != 3 || got.VectorField != "vector" || got.IndexName != "lexiscope:idx:corpus" {
		t.Errorf("unexpected query: %+v", got)
	}
	if len(hits) != 3 {
		t.Fatalf("hits = %d, want 3", len(hits))
	}
	if hits[0].Identity != "7" || hits[0].Index != 2 || hits[0].Content != "rights" || hits[0].Score != 0.9 {
		t.Errorf("hit[0] = %+v", hits[0])
	}
	if hits[1].Identity != "9" {
		t.Errorf("hit[1] identity = %q, want derived from source", hits[1].Identity)
	}
	if hits[2].Identity != "case:11" {
		t.Errorf("hit[2] identity = %q, want derived from key", hits[2].Identity)
	}
}

func TestSearch_Error(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchKNNFn = func(context.Context, *db.KNNQuery) (*db.SearchResult, error) {
		return nil, errors.New("down")
	}
	if _, err := repo.Search(context.Background(), []float32{1, 0, 0}, 1); err == nil {
		t.Fatal("expected error")
	}
}

func TestCount_MissingIndexIsZero(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchCountFn = func(context.Context, string, string) (int, error) { return 0, db.ErrIndexNotFound }
	n, err := repo.Count(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("Count = %d, %v", n, err)
	}
}
