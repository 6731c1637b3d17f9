package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/skladpro/warehouse-api/internal/application/dto"
	"github.com/skladpro/warehouse-api/internal/domain"
	"github.com/skladpro/warehouse-api/internal/domain/entity"
	"github.com/skladpro/warehouse-api/internal/domain/repository"
)

// CategoryUseCase manages product categories. Deleting a category detaches its
// products instead of removing them.
type CategoryUseCase struct {
	categoryRepo repository.CategoryRepository
}

// NewCategoryUseCase builds the use case.
func NewCategoryUseCase(categoryRepo repository.CategoryRepository) *CategoryUseCase {
	return &CategoryUseCase{categoryRepo: categoryRepo}
}

// Create persists a new category.
func (uc *CategoryUseCase) Create(ctx context.Context, in dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	category := &entity.Category{
		ID:          uuid.New().String(),
		Name:        in.Name,
		Description: in.Description,
		CreatedAt:   time.Now(),
	}
	if err := uc.categoryRepo.Create(category); err != nil {
		return nil, err
	}
	return toCategoryResponse(category), nil
}

// List returns all categories ordered by name.
func (uc *CategoryUseCase) List(ctx context.Context) ([]dto.CategoryResponse, error) {
	categories, err := uc.categoryRepo.List()
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, *toCategoryResponse(c))
	}
	return out, nil
}

// Update renames a category or changes its description.
func (uc *CategoryUseCase) Update(ctx context.Context, id string, in dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	category, err := uc.categoryRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	category.Name = in.Name
	category.Description = in.Description
	if err := uc.categoryRepo.Update(category); err != nil {
		return nil, err
	}
	return toCategoryResponse(category), nil
}

// Delete removes a category; referencing products lose the reference and stay.
func (uc *CategoryUseCase) Delete(ctx context.Context, id string) error {
	category, err := uc.categoryRepo.GetByID(id)
	if err != nil {
		return err
	}
	if category == nil {
		return domain.ErrNotFound
	}
	return uc.categoryRepo.Delete(id)
}

func toCategoryResponse(c *entity.Category) *dto.CategoryResponse {
	return &dto.CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
	}
}
