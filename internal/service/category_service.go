package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/Sumiattri/task-manager/internal/apperr"
	"github.com/Sumiattri/task-manager/internal/logger"
	"github.com/Sumiattri/task-manager/internal/model"
	"github.com/Sumiattri/task-manager/internal/repository"
)

// CategoryService provides helpers around categories.
type CategoryService struct {
	repo *repository.CategoryRepository
	log  *logger.Logger
}

func NewCategoryService(repo *repository.CategoryRepository, log *logger.Logger) *CategoryService {
	return &CategoryService{repo: repo, log: log.With("service", "CategoryService")}
}

func (s *CategoryService) Create(ctx context.Context, name, description string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("Category name is required")
	}
	category := model.Category{Name: name, Description: strings.TrimSpace(description)}
	if err := s.repo.Create(ctx, &category); err != nil {
		return nil, err
	}
	s.log.Info("category created", "category_id", category.ID.String(), "name", name)
	return &category, nil
}

// ListForAdmin returns categories newest first.
func (s *CategoryService) ListForAdmin(ctx context.Context) ([]model.Category, error) {
	return s.repo.ListNewest(ctx)
}

// List returns categories in alphabetical order.
func (s *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	return s.repo.ListByName(ctx)
}

func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, name, description string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("Category name is required")
	}
	return s.repo.Update(ctx, id, name, strings.TrimSpace(description))
}

// Delete removes a category. Tasks keep their dangling reference.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("category deleted", "category_id", id.String())
	return nil
}
