package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Sumiattri/task-manager/internal/apperr"
	"github.com/Sumiattri/task-manager/internal/logger"
	"github.com/Sumiattri/task-manager/internal/model"
	"github.com/Sumiattri/task-manager/internal/priority"
	"github.com/Sumiattri/task-manager/internal/repository"
)

// RuleCache holds the last stored active rule for the admin read path.
type RuleCache interface {
	Get(ctx context.Context) (*model.PrioritizationRule, bool)
	Set(ctx context.Context, rule *model.PrioritizationRule)
	Invalidate(ctx context.Context)
}

// RuleUpdate is an admin's partial change to the active rule.
type RuleUpdate struct {
	DeadlineWeight   *float64
	ImportanceWeight *float64
	ImportanceLevels map[string]int
	Revision         *int64
}

// RuleService reads and writes the active prioritization rule. Writing a rule
// never rescores existing tasks; they keep their cached score until edited or
// until an operator runs TaskService.RescoreAll.
type RuleService struct {
	rules *repository.RuleRepository
	cache RuleCache
	log   *logger.Logger
}

// NewRuleService wires the service. cache may be nil.
func NewRuleService(rules *repository.RuleRepository, cache RuleCache, log *logger.Logger) *RuleService {
	return &RuleService{rules: rules, cache: cache, log: log.With("service", "RuleService")}
}

// Current returns the active rule, or the defaults (revision 0) when none is stored.
func (s *RuleService) Current(ctx context.Context) (model.PrioritizationRule, error) {
	if s.cache != nil {
		if rule, ok := s.cache.Get(ctx); ok {
			return *rule, nil
		}
	}
	rule, err := s.rules.Active(ctx)
	if err != nil {
		return model.PrioritizationRule{}, err
	}
	if rule == nil {
		return repository.DefaultRule(), nil
	}
	if s.cache != nil {
		s.cache.Set(ctx, rule)
	}
	return *rule, nil
}

// Update validates in and merges it into the active rule on behalf of actor.
func (s *RuleService) Update(ctx context.Context, actor uuid.UUID, in RuleUpdate) (*model.PrioritizationRule, error) {
	if err := ValidateRuleUpdate(in); err != nil {
		return nil, err
	}

	rule, err := s.rules.Upsert(ctx, repository.RulePatch{
		DeadlineWeight:   in.DeadlineWeight,
		ImportanceWeight: in.ImportanceWeight,
		ImportanceLevels: priority.Levels(in.ImportanceLevels),
		Revision:         in.Revision,
	}, actor)
	if err != nil {
		if !errors.Is(err, apperr.ErrConflict) {
			s.log.Error("update rule failed", "actor", actor.String(), "error", err)
		} else {
			s.log.Warn("rule update conflict", "actor", actor.String())
		}
		return nil, err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	s.log.Info("rule updated",
		"actor", actor.String(),
		"revision", rule.Revision,
		"deadline_weight", rule.DeadlineWeight,
		"importance_weight", rule.ImportanceWeight,
	)
	return rule, nil
}

// ValidateRuleUpdate rejects weights outside [0,1], unknown level names and
// non-positive level weights.
func ValidateRuleUpdate(in RuleUpdate) error {
	if in.DeadlineWeight != nil && !unitInterval(*in.DeadlineWeight) {
		return apperr.Validation("deadlineWeight must be within [0,1]")
	}
	if in.ImportanceWeight != nil && !unitInterval(*in.ImportanceWeight) {
		return apperr.Validation("importanceWeight must be within [0,1]")
	}
	for name, weight := range in.ImportanceLevels {
		if !priority.IsCanonicalLevel(name) {
			return apperr.Validation("unknown importance level %q", name)
		}
		if weight <= 0 {
			return apperr.Validation("importance level %q must have a positive weight", name)
		}
	}
	if in.Revision != nil && *in.Revision < 0 {
		return apperr.Validation("revision must not be negative")
	}
	return nil
}

func unitInterval(v float64) bool {
	return v >= 0 && v <= 1
}
