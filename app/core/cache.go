package core

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/askbase-ai/askbase-ai/pkg/types"
)

// Cache wraps the redis client with the small set of primitives the
// logic layer needs: kv with expiry, mutual exclusion locks, daily
// counters and the statistic signal set.
type Cache struct {
	rds *redis.Client
}

var _ types.Cache = (*Cache)(nil)

func NewCache(rds *redis.Client) *Cache {
	return &Cache{rds: rds}
}

func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	res, err := c.rds.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return res, err
}

func (c *Cache) SetEx(ctx context.Context, key, value string, expiresAt time.Duration) error {
	return c.rds.SetEx(ctx, key, value, expiresAt).Err()
}

func (c *Cache) Expire(ctx context.Context, key string, expiresAt time.Duration) error {
	return c.rds.Expire(ctx, key, expiresAt).Err()
}

// TryLock acquires a mutual exclusion lock via SETNX. It returns false
// without error when another holder owns the key.
func (c *Cache) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return c.rds.SetNX(ctx, key, "1", ttl).Result()
}

func (c *Cache) ReleaseLock(ctx context.Context, key string) error {
	return c.rds.Del(ctx, key).Err()
}

func (c *Cache) IsLocked(ctx context.Context, key string) (bool, error) {
	n, err := c.rds.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// IncrWithDayExpire bumps a daily counter, setting a 24h expiry when the
// key is created so stale counters clean themselves up.
func (c *Cache) IncrWithDayExpire(ctx context.Context, key string) (int64, error) {
	n, err := c.rds.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err = c.rds.Expire(ctx, key, time.Hour*24).Err(); err != nil {
			return n, err
		}
	}
	return n, nil
}

// AppendTokenUsage records one call's input and output token counts as
// an alternating pair on the qa record's ledger list.
func (c *Cache) AppendTokenUsage(ctx context.Context, qaUUID string, inputTokens, outputTokens int) error {
	key := types.QaTokenUsageKey(qaUUID)
	if err := c.rds.RPush(ctx, key, inputTokens, outputTokens).Err(); err != nil {
		return err
	}
	return c.rds.Expire(ctx, key, time.Hour*24).Err()
}

func (c *Cache) TokenUsage(ctx context.Context, qaUUID string) ([]string, error) {
	return c.rds.LRange(ctx, types.QaTokenUsageKey(qaUUID), 0, -1).Result()
}

// SignalStatRecalc marks a knowledge base so the next statistics run
// recomputes its counts. SADD keeps repeated signals idempotent.
func (c *Cache) SignalStatRecalc(ctx context.Context, kbUUID string) error {
	return c.rds.SAdd(ctx, types.KbStatSignalKey, kbUUID).Err()
}

// StatSignals lists the pending members. Members are removed only after
// successful processing so failures retry on the next tick.
func (c *Cache) StatSignals(ctx context.Context) ([]string, error) {
	res, err := c.rds.SMembers(ctx, types.KbStatSignalKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	return res, err
}

func (c *Cache) RemoveStatSignal(ctx context.Context, kbUUID string) error {
	return c.rds.SRem(ctx, types.KbStatSignalKey, kbUUID).Err()
}

// DeleteTokenUsage clears a qa record's token ledger once summed.
func (c *Cache) DeleteTokenUsage(ctx context.Context, qaUUID string) error {
	return c.rds.Del(ctx, types.QaTokenUsageKey(qaUUID)).Err()
}
