// Package cache keeps a short-lived copy of the active prioritization rule in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Sumiattri/task-manager/internal/logger"
	"github.com/Sumiattri/task-manager/internal/model"
)

// RuleKey is the Redis key holding the cached rule.
const RuleKey = "taskmanager:rule:active"

// RuleCache serves the admin rule read path. Scoring never reads from it, so a
// stale entry can only affect what an admin sees, never a stored score. Redis
// failures degrade to a cache miss. A nil *RuleCache is a valid no-op.
type RuleCache struct {
	client redis.Cmdable
	ttl    time.Duration
	log    *logger.Logger
}

func NewRuleCache(client redis.Cmdable, ttl time.Duration, log *logger.Logger) *RuleCache {
	return &RuleCache{client: client, ttl: ttl, log: log.With("component", "RuleCache")}
}

func (c *RuleCache) Get(ctx context.Context) (*model.PrioritizationRule, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, RuleKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("rule cache read failed", "error", err)
		}
		return nil, false
	}
	var rule model.PrioritizationRule
	if err := json.Unmarshal(raw, &rule); err != nil {
		c.log.Warn("rule cache entry unreadable", "error", err)
		return nil, false
	}
	return &rule, true
}

func (c *RuleCache) Set(ctx context.Context, rule *model.PrioritizationRule) {
	if c == nil || c.client == nil || rule == nil {
		return
	}
	raw, err := json.Marshal(rule)
	if err != nil {
		c.log.Warn("rule cache encode failed", "error", err)
		return
	}
	if err := c.client.Set(ctx, RuleKey, raw, c.ttl).Err(); err != nil {
		c.log.Warn("rule cache write failed", "error", err)
	}
}

func (c *RuleCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, RuleKey).Err(); err != nil {
		c.log.Warn("rule cache invalidate failed", "error", err)
	}
}

// Connect parses url and pings the server.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
