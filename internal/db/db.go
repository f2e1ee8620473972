// Package db defines the Redis facade behind the corpus passage index, the
// embedding cache, usage counters and the redis metadata driver.
package db

import (
	"context"
	"time"
)

// Store is everything the redis implementation offers. Repositories declare
// the narrow subset they use instead of depending on Store.
type Store interface {
	Pinger
	HashStore
	JSONStore
	KVStore
	IndexManager
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger backs the database health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashSetItem is one passage hash: its key and field values.
type HashSetItem struct {
	Key    string
	Fields map[string]string
}

// HashStore writes the passage hashes the corpus FT index picks up.
type HashStore interface {
	HSetMulti(ctx context.Context, items []HashSetItem) error
	Del(ctx context.Context, key string) error
}

// JSONStore holds metadata records under the redis metadata driver.
type JSONStore interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Del(ctx context.Context, key string) error
}

// KVStore serves the embedding cache and the token usage counters.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	IncrBy(ctx context.Context, key string, val int64) error
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// IndexManager creates and drops the corpus FT index.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string, deleteDocs bool) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher runs KNN and count queries against an FT index.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}
