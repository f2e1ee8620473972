// Package corpus stores corpus-wide passages in a Redis HNSW index.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/lexiscope/internal/db"
	"github.com/kailas-cloud/lexiscope/internal/db/redis"
	"github.com/kailas-cloud/lexiscope/internal/domain"
)

var (
	indexName = domain.KeyPrefix + "idx:corpus"
	keyPrefix = domain.KeyPrefix + "chunk:"
)

const (
	fieldIdentity = "identity"
	fieldSource   = "source"
	fieldIndex    = "chunk_index"
	fieldContent  = "content"
	fieldVector   = "vector"
)

type store interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string, deleteDocs bool) error
	IndexExists(ctx context.Context, name string) (bool, error)
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// Config describes the HNSW vector field.
type Config struct {
	Dimensions     int
	M              int
	EFConstruction int
}

// Repo is the corpus VectorIndex.
type Repo struct {
	store store
	cfg   Config
}

// New creates a corpus repository.
func New(s store, cfg Config) *Repo {
	return &Repo{store: s, cfg: cfg}
}

// EnsureIndex creates the FT index unless it already exists.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	ok, err := r.store.IndexExists(ctx, indexName)
	if err != nil {
		return fmt.Errorf("probe corpus index: %w", err)
	}
	if ok {
		return nil
	}

	def := db.NewIndex(indexName, keyPrefix).
		Tag(fieldIdentity).
		Numeric(fieldIndex).
		Vector(fieldVector, r.cfg.Dimensions, db.DistanceCosine, r.cfg.M, r.cfg.EFConstruction)
	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create corpus index: %w", err)
	}
	return nil
}

// Reset drops the index together with every stored passage.
func (r *Repo) Reset(ctx context.Context) error {
	if err := r.store.DropIndex(ctx, indexName, true); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop corpus index: %w", err)
	}
	return nil
}

// Put writes passages; an existing passage with the same identity and index
// is overwritten.
func (r *Repo) Put(ctx context.Context, passages []domain.Passage) error {
	items := make([]db.HashSetItem, 0, len(passages))
	for _, p := range passages {
		if len(p.Vector) != r.cfg.Dimensions {
			return fmt.Errorf("passage %s/%d: vector has %d dimensions, want %d: %w",
				p.Identity, p.Index, len(p.Vector), r.cfg.Dimensions, domain.ErrInvalidInput)
		}
		items = append(items, db.HashSetItem{
			Key: passageKey(p.Identity, p.Index),
			Fields: map[string]string{
				fieldIdentity: p.Identity,
				fieldSource:   p.Source,
				fieldIndex:    strconv.Itoa(p.Index),
				fieldContent:  p.Content,
				fieldVector:   redis.VectorToBytes(p.Vector),
			},
		})
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("store passages: %w", err)
	}
	return nil
}

// Search returns the k passages nearest to vector, best first.
func (r *Repo) Search(ctx context.Context, vector []float32, k int) ([]domain.Hit, error) {
	res, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    indexName,
		VectorField:  fieldVector,
		Vector:       vector,
		K:            k,
		ReturnFields: []string{fieldIdentity, fieldSource, fieldIndex, fieldContent},
	})
	if err != nil {
		return nil, fmt.Errorf("search corpus: %w", err)
	}

	hits := make([]domain.Hit, 0, len(res.Entries))
	for _, e := range res.Entries {
		idx, _ := strconv.Atoi(e.Fields[fieldIndex])
		h := domain.Hit{
			Identity: e.Fields[fieldIdentity],
			Source:   e.Fields[fieldSource],
			Index:    idx,
			Content:  e.Fields[fieldContent],
			Score:    e.Score,
		}
		if h.Identity == "" {
			h.Identity = domain.IdentityFromSource(h.Source)
		}
		if h.Identity == "" {
			h.Identity = identityFromKey(e.Key)
		}
		hits = append(hits, h)
	}
	return hits, nil
}

// Count returns the number of indexed passages, zero before the first ingest.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, indexName, "*")
	if errors.Is(err, db.ErrIndexNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("count passages: %w", err)
	}
	return n, nil
}

func passageKey(identity string, index int) string {
	return keyPrefix + identity + ":" + strconv.Itoa(index)
}

// identityFromKey recovers the identity from "<prefix><identity>:<index>".
func identityFromKey(key string) string {
	rest := strings.TrimPrefix(key, keyPrefix)
	if i := strings.LastIndexByte(rest, ':'); i > 0 {
		return rest[:i]
	}
	return rest
}
