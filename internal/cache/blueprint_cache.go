package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/stemsi/skillcheck-backend/internal/config"
	"github.com/stemsi/skillcheck-backend/internal/model"
)

// BlueprintCache caches rendered blueprints in Redis with a local
// in-process fallback. When Redis is unreachable the cache degrades to the
// local tier instead of failing the request; cached entries are stored as
// JSON snapshots so every Get hands out a fresh copy that callers may
// annotate freely.
type BlueprintCache struct {
	rdb *redis.Client
	ttl time.Duration

	mu    sync.RWMutex
	local map[int64]localEntry
}

type localEntry struct {
	payload   []byte
	expiresAt time.Time
}

// NewBlueprintCache creates a blueprint cache. rdb may be nil, in which
// case only the local tier is used.
func NewBlueprintCache(rdb *redis.Client, ttl time.Duration) *BlueprintCache {
	return &BlueprintCache{
		rdb:   rdb,
		ttl:   ttl,
		local: make(map[int64]localEntry),
	}
}

// Get returns the cached blueprint for a bank, or (nil, false) on a miss.
// Redis is consulted first; a Redis error counts as a miss on that tier.
func (c *BlueprintCache) Get(ctx context.Context, bankID int64) ([]model.BlueprintProcedure, bool) {
	if c.rdb != nil {
		payload, err := c.rdb.Get(ctx, config.CacheKey.BlueprintKey(bankID)).Bytes()
		if err == nil {
			if bp, ok := decode(payload); ok {
				return bp, true
			}
		} else if err != redis.Nil {
			log.Warn().Err(err).Int64("bank_id", bankID).Msg("redis get failed, falling back to local cache")
		}
	}

	c.mu.RLock()
	entry, ok := c.local[bankID]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return decode(entry.payload)
}

// Set stores a blueprint in both tiers with the configured TTL.
func (c *BlueprintCache) Set(ctx context.Context, bankID int64, blueprint []model.BlueprintProcedure) {
	payload, err := json.Marshal(blueprint)
	if err != nil {
		log.Error().Err(err).Int64("bank_id", bankID).Msg("blueprint marshal failed, skipping cache")
		return
	}

	if c.rdb != nil {
		if err := c.rdb.Set(ctx, config.CacheKey.BlueprintKey(bankID), payload, c.ttl).Err(); err != nil {
			log.Warn().Err(err).Int64("bank_id", bankID).Msg("redis set failed, local cache only")
		}
	}

	c.mu.Lock()
	c.local[bankID] = localEntry{payload: payload, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// Invalidate drops the blueprint from both tiers. Called after every
// content mutation so the next admission rebuilds from the database.
func (c *BlueprintCache) Invalidate(ctx context.Context, bankID int64) {
	if c.rdb != nil {
		if err := c.rdb.Del(ctx, config.CacheKey.BlueprintKey(bankID)).Err(); err != nil {
			log.Warn().Err(err).Int64("bank_id", bankID).Msg("redis del failed")
		}
	}

	c.mu.Lock()
	delete(c.local, bankID)
	c.mu.Unlock()
}

func decode(payload []byte) ([]model.BlueprintProcedure, bool) {
	var bp []model.BlueprintProcedure
	if err := json.Unmarshal(payload, &bp); err != nil {
		log.Error().Err(err).Msg("blueprint unmarshal failed, treating as miss")
		return nil, false
	}
	return bp, true
}
