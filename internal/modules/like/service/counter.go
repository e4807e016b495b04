package service

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/gooddeeds/internal/entity"
	"github.com/redis/go-redis/v9"
)

// incrIfCached only moves a counter that is already cached, so a missing field
// is rebuilt from the database instead of starting at +1 or -1.
var incrIfCached = redis.NewScript(`
if redis.call("HEXISTS", KEYS[1], ARGV[1]) == 1 then
	return redis.call("HINCRBY", KEYS[1], ARGV[1], ARGV[2])
end
return false
`)

type likeCounter struct {
	rdb *redis.Client
}

func countKey(target entity.Target) (string, string) {
	kind, id := target.Kind()
	return fmt.Sprintf("counts:likes:%s", kind), id.String()
}

func (c *likeCounter) get(ctx context.Context, target entity.Target) (int64, bool, error) {
	if c.rdb == nil {
		return 0, false, nil
	}
	key, field := countKey(target)
	n, err := c.rdb.HGet(ctx, key, field).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

func (c *likeCounter) set(ctx context.Context, target entity.Target, n int64) error {
	if c.rdb == nil {
		return nil
	}
	key, field := countKey(target)
	return c.rdb.HSetNX(ctx, key, field, n).Err()
}

func (c *likeCounter) add(ctx context.Context, target entity.Target, delta int64) error {
	if c.rdb == nil {
		return nil
	}
	key, field := countKey(target)
	err := incrIfCached.Run(ctx, c.rdb, []string{key}, field, delta).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}
