package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/Sumiattri/task-manager/internal/logger"
	"github.com/Sumiattri/task-manager/internal/model"
)

func TestNilRuleCacheIsNoop(t *testing.T) {
	var c *RuleCache
	ctx := context.Background()

	c.Set(ctx, &model.PrioritizationRule{Revision: 3})
	c.Invalidate(ctx)
	rule, ok := c.Get(ctx)
	assert.False(t, ok)
	assert.Nil(t, rule)
}

func TestUnreachableRedisDegradesToMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 200 * time.Millisecond,
	})
	t.Cleanup(func() { _ = client.Close() })

	c := NewRuleCache(client, time.Minute, logger.NewNop())
	ctx := context.Background()

	c.Set(ctx, &model.PrioritizationRule{Revision: 3})
	rule, ok := c.Get(ctx)
	assert.False(t, ok)
	assert.Nil(t, rule)
	c.Invalidate(ctx)
}

func TestConnectRejectsBadURL(t *testing.T) {
	_, err := Connect(context.Background(), "not-a-url")
	assert.Error(t, err)
}
