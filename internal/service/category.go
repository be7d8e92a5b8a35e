package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/tie-inventory/internal/domain"
	"github.com/pkordes/tie-inventory/internal/repo"
	"github.com/pkordes/tie-inventory/internal/validation"
)

// CategoryService implements business logic for categories.
// Renames and deletes never touch ties; a tie keeps whatever name it stores.
type CategoryService struct {
	repo repo.CategoryRepo
}

// NewCategoryService constructs a CategoryService backed by the provided CategoryRepo.
func NewCategoryService(r repo.CategoryRepo) *CategoryService {
	return &CategoryService{repo: r}
}

// List returns all categories ordered by name.
func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	cats, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.CategoryService.List: %w", err)
	}
	return cats, nil
}

// Create validates and stores a new category.
// A name that exists in any casing returns domain.ErrConflict.
func (s *CategoryService) Create(ctx context.Context, name string) (domain.Category, error) {
	name, err := validation.ValidateCategoryName(name)
	if err != nil {
		return domain.Category{}, err
	}
	c, err := s.repo.Create(ctx, name)
	if err != nil {
		return domain.Category{}, fmt.Errorf("service.CategoryService.Create: %w", err)
	}
	return c, nil
}

// Rename validates and applies a new name.
func (s *CategoryService) Rename(ctx context.Context, id uuid.UUID, name string) (domain.Category, error) {
	name, err := validation.ValidateCategoryName(name)
	if err != nil {
		return domain.Category{}, err
	}
	c, err := s.repo.Rename(ctx, id, name)
	if err != nil {
		return domain.Category{}, fmt.Errorf("service.CategoryService.Rename: %w", err)
	}
	return c, nil
}

// Delete removes a category by ID.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.CategoryService.Delete: %w", err)
	}
	return nil
}
