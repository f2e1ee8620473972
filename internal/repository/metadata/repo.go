// Package metadata stores case metadata records as Redis JSON documents.
package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kailas-cloud/lexiscope/internal/db"
	"github.com/kailas-cloud/lexiscope/internal/domain"
	"github.com/kailas-cloud/lexiscope/internal/domain/metadata"
)

var keyPrefix = domain.KeyPrefix + "meta:"

type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Del(ctx context.Context, key string) error
}

// Repo is the Redis-backed metadata store.
type Repo struct {
	store store
}

// New creates a metadata repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Get returns the record for identity or domain.ErrNotFound.
func (r *Repo) Get(ctx context.Context, identity string) (metadata.Record, error) {
	raw, err := r.store.JSONGet(ctx, keyPrefix+identity)
	if errors.Is(err, db.ErrKeyNotFound) {
		return metadata.Record{}, domain.ErrNotFound
	}
	if err != nil {
		return metadata.Record{}, fmt.Errorf("get metadata %s: %w: %w", identity, domain.ErrStore, err)
	}

	var doc recordJSON
	if err := json.Unmarshal(raw, &doc); err != nil {
		return metadata.Record{}, fmt.Errorf("decode metadata %s: %w", identity, err)
	}
	return doc.toDomain()
}

// Upsert replaces the stored record.
func (r *Repo) Upsert(ctx context.Context, rec metadata.Record) error {
	data, err := json.Marshal(toJSON(&rec))
	if err != nil {
		return fmt.Errorf("encode metadata %s: %w", rec.Identity(), err)
	}
	if err := r.store.JSONSet(ctx, keyPrefix+rec.Identity(), "$", data); err != nil {
		return fmt.Errorf("put metadata %s: %w: %w", rec.Identity(), domain.ErrStore, err)
	}
	return nil
}

// Delete removes the record so the next resolve extracts again.
func (r *Repo) Delete(ctx context.Context, identity string) error {
	if err := r.store.Del(ctx, keyPrefix+identity); err != nil {
		return fmt.Errorf("delete metadata %s: %w: %w", identity, domain.ErrStore, err)
	}
	return nil
}
