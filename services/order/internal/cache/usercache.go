// Package cache is a redis-backed TTL cache for user summaries attached to
// order responses. A cache outage is treated the same as a miss.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"orderhub/pkg/logging"
	"orderhub/services/order/internal/transport"
)

const userSummaryTTL = 5 * time.Minute

type UserCache struct {
	rdb *redis.Client
}

func NewUserCache(addr string) *UserCache {
	return &UserCache{
		rdb: redis.NewClient(&redis.Options{
			Addr:         addr,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
		}),
	}
}

func key(id uint) string { return fmt.Sprintf("orderhub:user:%d", id) }

func (c *UserCache) Get(ctx context.Context, id uint) (*transport.UserSummary, bool) {
	if c == nil {
		return nil, false
	}
	data, err := c.rdb.Get(ctx, key(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logging.FromContext(ctx).Warn("user cache get failed", "error", err)
		}
		return nil, false
	}

	var summary transport.UserSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, false
	}
	return &summary, true
}

func (c *UserCache) Set(ctx context.Context, summary *transport.UserSummary) {
	if c == nil || summary == nil {
		return
	}
	data, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key(summary.ID), data, userSummaryTTL).Err(); err != nil {
		logging.FromContext(ctx).Warn("user cache set failed", "error", err)
	}
}

func (c *UserCache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
