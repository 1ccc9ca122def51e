// Package cache keeps the last-known register status in Redis. The snapshot
// is a hint for read paths only — every mutating call re-derives authority
// from the database and then invalidates or rewrites the snapshot. A TTL
// bounds how stale the hint can silently get between poll refreshes.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Afa-Tecnologia/alfa360-sub004/internal/model"
)

const statusKey = "caixa:status"

// sentinel stored when no register is open, so a cache hit can distinguish
// "known closed" from "unknown".
const noneMarker = "none"

type StatusCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStatusCache(rdb *redis.Client, ttl time.Duration) *StatusCache {
	return &StatusCache{rdb: rdb, ttl: ttl}
}

// Get returns (register, hit, err). A hit with a nil register means the
// store was last seen with no open register.
func (c *StatusCache) Get(ctx context.Context) (*model.CashRegister, bool, error) {
	raw, err := c.rdb.Get(ctx, statusKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if raw == noneMarker {
		return nil, true, nil
	}
	var reg model.CashRegister
	if err := json.Unmarshal([]byte(raw), &reg); err != nil {
		// Corrupt snapshot — treat as a miss, the caller re-reads the store.
		return nil, false, nil
	}
	return &reg, true, nil
}

// Set stores the current open register, or the none marker when reg is nil.
func (c *StatusCache) Set(ctx context.Context, reg *model.CashRegister) error {
	if reg == nil {
		return c.rdb.Set(ctx, statusKey, noneMarker, c.ttl).Err()
	}
	data, err := json.Marshal(reg)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, statusKey, data, c.ttl).Err()
}

// Invalidate drops the snapshot. Called after every mutating register call.
func (c *StatusCache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, statusKey).Err()
}
