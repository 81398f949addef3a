package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumiattri/task-manager/internal/apperr"
	"github.com/Sumiattri/task-manager/internal/logger"
	"github.com/Sumiattri/task-manager/internal/model"
	"github.com/Sumiattri/task-manager/internal/repository"
	"github.com/Sumiattri/task-manager/internal/testutil"
)

type memoryRuleCache struct {
	rule        *model.PrioritizationRule
	invalidated int
}

func (c *memoryRuleCache) Get(context.Context) (*model.PrioritizationRule, bool) {
	return c.rule, c.rule != nil
}

func (c *memoryRuleCache) Set(_ context.Context, rule *model.PrioritizationRule) {
	c.rule = rule
}

func (c *memoryRuleCache) Invalidate(context.Context) {
	c.rule = nil
	c.invalidated++
}

func TestRuleService_CurrentDefaultsWhenEmpty(t *testing.T) {
	cache := &memoryRuleCache{}
	svc := NewRuleService(repository.NewRuleRepository(testutil.OpenDB(t)), cache, logger.NewNop())

	rule, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), rule.Revision)
	assert.Equal(t, repository.DefaultLevels(), rule.Levels())
	assert.Nil(t, cache.rule, "defaults are not cached")
}

func TestRuleService_UpdateInvalidatesCache(t *testing.T) {
	cache := &memoryRuleCache{}
	svc := NewRuleService(repository.NewRuleRepository(testutil.OpenDB(t)), cache, logger.NewNop())
	ctx := context.Background()
	admin := uuid.New()

	rule, err := svc.Update(ctx, admin, RuleUpdate{DeadlineWeight: testutil.Ptr(0.3)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rule.Revision)
	assert.Equal(t, 1, cache.invalidated)

	current, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.3, current.DeadlineWeight)
	require.NotNil(t, cache.rule)

	_, err = svc.Update(ctx, admin, RuleUpdate{ImportanceLevels: map[string]int{"critical": 5}, Revision: testutil.Ptr(int64(1))})
	require.NoError(t, err)
	assert.Nil(t, cache.rule)

	current, err = svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, current.Levels()["critical"])
	assert.Equal(t, 0.3, current.DeadlineWeight)
}

func TestRuleService_StaleRevisionConflicts(t *testing.T) {
	svc := NewRuleService(repository.NewRuleRepository(testutil.OpenDB(t)), nil, logger.NewNop())
	ctx := context.Background()

	_, err := svc.Update(ctx, uuid.New(), RuleUpdate{DeadlineWeight: testutil.Ptr(0.4)})
	require.NoError(t, err)
	_, err = svc.Update(ctx, uuid.New(), RuleUpdate{DeadlineWeight: testutil.Ptr(0.6), Revision: testutil.Ptr(int64(1))})
	require.NoError(t, err)

	_, err = svc.Update(ctx, uuid.New(), RuleUpdate{DeadlineWeight: testutil.Ptr(0.9), Revision: testutil.Ptr(int64(1))})
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, repository.ConflictMessage, apperr.Message(err))

	current, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.6, current.DeadlineWeight)
}

func TestValidateRuleUpdate(t *testing.T) {
	cases := map[string]RuleUpdate{
		"deadline weight above one":  {DeadlineWeight: testutil.Ptr(1.2)},
		"negative importance weight": {ImportanceWeight: testutil.Ptr(-0.1)},
		"unknown level":              {ImportanceLevels: map[string]int{"urgent": 3}},
		"zero level weight":          {ImportanceLevels: map[string]int{"low": 0}},
		"negative revision":          {Revision: testutil.Ptr(int64(-1))},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, ValidateRuleUpdate(in), apperr.ErrValidation)
		})
	}

	assert.NoError(t, ValidateRuleUpdate(RuleUpdate{
		DeadlineWeight:   testutil.Ptr(0.0),
		ImportanceWeight: testutil.Ptr(1.0),
		ImportanceLevels: map[string]int{"critical": 10},
	}))
}
