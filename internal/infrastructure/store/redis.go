package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/hszk-dev/clipstore/internal/domain/repository"
)

const (
	// dataKeyPrefix prefixes the payload key for each stored asset.
	dataKeyPrefix = "asset:data:"
	// sizesKey is the hash holding declared sizes, field = canonical URL.
	sizesKey = "asset:sizes"
	// indexKey is the sorted set holding insertion order, scored by sequence.
	indexKey = "asset:index"
	// seqKey is the INCR counter allocating insertion sequence numbers.
	seqKey = "asset:seq"
)

// Redis implements repository.AssetStore on a Redis instance, so multiple
// edge replicas can share one cache. Insertion order is kept explicitly:
// every Put allocates a sequence number and records it as the entry's score
// in a sorted set, rather than trusting any backend iteration order.
type Redis struct {
	client *redis.Client
}

// Compile-time verification that Redis implements repository.AssetStore.
var _ repository.AssetStore = (*Redis)(nil)

// NewRedis creates a Redis-backed asset store.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Get retrieves a stored asset. Returns nil, nil on miss.
func (s *Redis) Get(ctx context.Context, key string) (*repository.StoredAsset, error) {
	data, err := s.client.Get(ctx, dataKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var declaredSize int64
	sizeStr, err := s.client.HGet(ctx, sizesKey, key).Result()
	switch {
	case errors.Is(err, redis.Nil):
		// Size record missing (partial delete race). Treat as undeclared.
	case err != nil:
		return nil, fmt.Errorf("redis hget size: %w", err)
	default:
		declaredSize, err = strconv.ParseInt(sizeStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse declared size: %w", err)
		}
	}

	return &repository.StoredAsset{
		Data:         data,
		DeclaredSize: declaredSize,
	}, nil
}

// Put stores an asset, overwriting any existing entry. The freshly
// allocated sequence re-ranks overwritten entries as newest.
func (s *Redis) Put(ctx context.Context, key string, data []byte, declaredSize int64) error {
	seq, err := s.client.Incr(ctx, seqKey).Result()
	if err != nil {
		return fmt.Errorf("redis incr seq: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, dataKeyPrefix+key, data, 0)
		pipe.HSet(ctx, sizesKey, key, strconv.FormatInt(declaredSize, 10))
		pipe.ZAdd(ctx, indexKey, redis.Z{Score: float64(seq), Member: key})
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis put: %w", err)
	}
	return nil
}

// Delete removes an entry. Absent keys are a no-op, so concurrent eviction
// passes may safely overlap.
func (s *Redis) Delete(ctx context.Context, key string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, dataKeyPrefix+key)
		pipe.HDel(ctx, sizesKey, key)
		pipe.ZRem(ctx, indexKey, key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}

// Entries enumerates stored entries oldest first.
func (s *Redis) Entries(ctx context.Context) ([]repository.AssetEntry, error) {
	members, err := s.client.ZRangeWithScores(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis zrange index: %w", err)
	}
	if len(members) == 0 {
		return nil, nil
	}

	sizes, err := s.client.HGetAll(ctx, sizesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall sizes: %w", err)
	}

	entries := make([]repository.AssetEntry, 0, len(members))
	for _, m := range members {
		key, ok := m.Member.(string)
		if !ok {
			continue
		}
		var declaredSize int64
		if sizeStr, ok := sizes[key]; ok {
			if parsed, err := strconv.ParseInt(sizeStr, 10, 64); err == nil {
				declaredSize = parsed
			}
		}
		entries = append(entries, repository.AssetEntry{
			Key:          key,
			DeclaredSize: declaredSize,
			Seq:          uint64(m.Score),
		})
	}
	return entries, nil
}
