package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/lexiscope/internal/db"
)

// exec runs a single command. A nil reply becomes db.ErrKeyNotFound and any
// other failure a *db.Error tagged with op.
func (s *Store) exec(ctx context.Context, op string, cmd rueidis.Completed) (rueidis.RedisResult, error) {
	res := s.do(ctx, cmd)
	if err := res.Error(); err != nil {
		if rueidis.IsRedisNil(err) {
			return res, db.ErrKeyNotFound
		}
		return res, &db.Error{Op: op, Err: err}
	}
	return res, nil
}

// Get returns the raw value of an embedding cache entry or usage counter.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	res, err := s.exec(ctx, db.OpGet, s.b().Get().Key(key).Build())
	if err != nil {
		return nil, err
	}
	data, err := res.AsBytes()
	if err != nil {
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	return data, nil
}

// SetWithTTL stores a value that expires after ttl.
func (s *Store) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := s.exec(ctx, db.OpSet, s.b().Set().Key(key).Value(rueidis.BinaryString(value)).Ex(ttl).Build())
	return err
}

// IncrBy atomically adds val to a counter.
func (s *Store) IncrBy(ctx context.Context, key string, val int64) error {
	_, err := s.exec(ctx, db.OpIncrBy, s.b().Incrby().Key(key).Increment(val).Build())
	return err
}

// Expire sets a TTL in whole seconds. With nx the TTL is only set when the key has none.
func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error {
	secs := int64(ttl.Seconds())
	var cmd rueidis.Completed
	if nx {
		cmd = s.b().Expire().Key(key).Seconds(secs).Nx().Build()
	} else {
		cmd = s.b().Expire().Key(key).Seconds(secs).Build()
	}
	_, err := s.exec(ctx, db.OpExpire, cmd)
	return err
}

// JSONSet stores a metadata document at path.
func (s *Store) JSONSet(ctx context.Context, key, path string, data []byte) error {
	_, err := s.exec(ctx, db.OpJSONSet, s.b().JsonSet().Key(key).Path(path).Value(string(data)).Build())
	return err
}

// JSONGet reads a document, or the given paths of it.
func (s *Store) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	res, err := s.exec(ctx, db.OpJSONGet, s.b().JsonGet().Key(key).Path(paths...).Build())
	if err != nil {
		return nil, err
	}
	raw, err := res.ToString()
	if err != nil {
		return nil, &db.Error{Op: db.OpJSONGet, Err: err}
	}
	if raw == "" {
		return nil, db.ErrKeyNotFound
	}
	return []byte(raw), nil
}

// HSetMulti writes passage hashes in one DoMulti round-trip.
func (s *Store) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if len(items) == 0 {
		return nil
	}

	cmds := make(rueidis.Commands, 0, len(items))
	for _, item := range items {
		cmd := s.b().Hset().Key(item.Key).FieldValue()
		for k, v := range item.Fields {
			cmd = cmd.FieldValue(k, v)
		}
		cmds = append(cmds, cmd.Build())
	}

	for i, res := range s.client.DoMulti(ctx, cmds...) {
		if err := res.Error(); err != nil {
			return &db.Error{Op: db.OpHSet, Err: fmt.Errorf("key %s: %w", items[i].Key, err)}
		}
	}
	return nil
}

// Del removes a key. Deleting a missing key is not an error.
func (s *Store) Del(ctx context.Context, key string) error {
	_, err := s.exec(ctx, db.OpDel, s.b().Del().Key(key).Build())
	return err
}
