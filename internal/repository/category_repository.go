package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Sumiattri/task-manager/internal/apperr"
	"github.com/Sumiattri/task-manager/internal/model"
)

// CategoryRepository manages task categories.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(ctx context.Context, category *model.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		if isDuplicate(err) {
			return apperr.Validation("Category already exists")
		}
		return apperr.Storage("create category", err)
	}
	return nil
}

// ListNewest returns categories most recently created first.
func (r *CategoryRepository) ListNewest(ctx context.Context) ([]model.Category, error) {
	return r.list(ctx, "created_at DESC")
}

// ListByName returns categories in alphabetical order.
func (r *CategoryRepository) ListByName(ctx context.Context) ([]model.Category, error) {
	return r.list(ctx, "name ASC")
}

func (r *CategoryRepository) list(ctx context.Context, order string) ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.WithContext(ctx).Order(order).Find(&categories).Error; err != nil {
		return nil, apperr.Storage("list categories", err)
	}
	return categories, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, translate("find category", "Category", err)
	}
	return &category, nil
}

func (r *CategoryRepository) Update(ctx context.Context, id uuid.UUID, name, description string) (*model.Category, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Category{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"name": name, "description": description})
	if res.Error != nil {
		if isDuplicate(res.Error) {
			return nil, apperr.Validation("Category already exists")
		}
		return nil, apperr.Storage("update category", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound("Category")
	}
	return r.GetByID(ctx, id)
}

func (r *CategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Category{})
	if res.Error != nil {
		return apperr.Storage("delete category", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Category")
	}
	return nil
}
