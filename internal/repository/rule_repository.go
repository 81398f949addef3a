package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Sumiattri/task-manager/internal/apperr"
	"github.com/Sumiattri/task-manager/internal/model"
	"github.com/Sumiattri/task-manager/internal/priority"
)

// Defaults applied when no rule is active or a new rule is seeded.
const (
	DefaultDeadlineWeight   = 0.5
	DefaultImportanceWeight = 0.5
)

// ConflictMessage is returned when another admin changed the rule first.
const ConflictMessage = "Rules were modified by another admin. Please refresh and try again."

// DefaultLevels returns the importance weights {low:1, medium:2, high:3, critical:4}.
func DefaultLevels() priority.Levels {
	return priority.Levels{
		priority.Low:      1,
		priority.Medium:   2,
		priority.High:     3,
		priority.Critical: 4,
	}
}

// DefaultRule is the rule in effect while none has been stored. Its revision is 0.
func DefaultRule() model.PrioritizationRule {
	return model.PrioritizationRule{
		DeadlineWeight:   DefaultDeadlineWeight,
		ImportanceWeight: DefaultImportanceWeight,
		ImportanceLevels: datatypes.NewJSONType(DefaultLevels()),
		IsActive:         true,
	}
}

// RulePatch is a partial rule update. Nil fields keep their current value and
// ImportanceLevels is merged key by key. Revision, when set, is the revision the
// writer last read (0 means it saw no stored rule).
type RulePatch struct {
	DeadlineWeight   *float64
	ImportanceWeight *float64
	ImportanceLevels priority.Levels
	Revision         *int64
}

// MergeRule applies patch on top of base without touching base.
func MergeRule(base model.PrioritizationRule, patch RulePatch) model.PrioritizationRule {
	merged := base
	if patch.DeadlineWeight != nil {
		merged.DeadlineWeight = *patch.DeadlineWeight
	}
	if patch.ImportanceWeight != nil {
		merged.ImportanceWeight = *patch.ImportanceWeight
	}
	levels := base.Levels().Clone()
	for name, weight := range patch.ImportanceLevels {
		levels[name] = weight
	}
	merged.ImportanceLevels = datatypes.NewJSONType(levels)
	return merged
}

// RuleRepository stores the active prioritization rule.
type RuleRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewRuleRepository(db *gorm.DB) *RuleRepository {
	return &RuleRepository{db: db, now: time.Now}
}

// Active returns the active rule, or nil when none is stored.
func (r *RuleRepository) Active(ctx context.Context) (*model.PrioritizationRule, error) {
	var rule model.PrioritizationRule
	err := r.db.WithContext(ctx).Where("is_active = ?", true).First(&rule).Error
	switch {
	case err == nil:
		return &rule, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, apperr.Storage("find active rule", err)
	}
}

// ActiveOrDefault returns the active rule, or DefaultRule when none is stored.
func (r *RuleRepository) ActiveOrDefault(ctx context.Context) (model.PrioritizationRule, error) {
	rule, err := r.Active(ctx)
	if err != nil {
		return model.PrioritizationRule{}, err
	}
	if rule == nil {
		return DefaultRule(), nil
	}
	return *rule, nil
}

// Upsert merges patch into the active rule, creating one from the defaults if
// needed. The write only lands if the stored revision still equals the one the
// merge was based on; otherwise the caller gets a conflict and nothing changes.
func (r *RuleRepository) Upsert(ctx context.Context, patch RulePatch, actor uuid.UUID) (*model.PrioritizationRule, error) {
	current, err := r.Active(ctx)
	if err != nil {
		return nil, err
	}

	if current == nil {
		if patch.Revision != nil && *patch.Revision != 0 {
			return nil, apperr.Conflict(ConflictMessage)
		}
		return r.create(ctx, patch, actor)
	}

	expected := current.Revision
	if patch.Revision != nil && *patch.Revision != expected {
		return nil, apperr.Conflict(ConflictMessage)
	}

	merged := MergeRule(*current, patch)
	merged.Revision = expected + 1
	merged.LastModifiedBy = &actor
	merged.UpdatedAt = r.now()

	res := r.db.WithContext(ctx).
		Model(&model.PrioritizationRule{}).
		Where("id = ? AND revision = ? AND is_active = ?", current.ID, expected, true).
		Updates(map[string]interface{}{
			"deadline_weight":   merged.DeadlineWeight,
			"importance_weight": merged.ImportanceWeight,
			"importance_levels": merged.ImportanceLevels,
			"revision":          merged.Revision,
			"last_modified_by":  actor,
			"updated_at":        merged.UpdatedAt,
		})
	if res.Error != nil {
		return nil, apperr.Storage("update rule", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.Conflict(ConflictMessage)
	}
	return &merged, nil
}

func (r *RuleRepository) create(ctx context.Context, patch RulePatch, actor uuid.UUID) (*model.PrioritizationRule, error) {
	rule := MergeRule(DefaultRule(), patch)
	rule.IsActive = true
	rule.Revision = 1
	rule.LastModifiedBy = &actor

	// Two first writers race on the single-active index; the loser conflicts.
	if err := r.db.WithContext(ctx).Create(&rule).Error; err != nil {
		if isDuplicate(err) {
			return nil, apperr.Conflict(ConflictMessage)
		}
		return nil, apperr.Storage("create rule", err)
	}
	return &rule, nil
}
