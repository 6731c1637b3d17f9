package repository

import "github.com/skladpro/warehouse-api/internal/domain/entity"

// CategoryRepository is the persistence port for categories. Delete detaches
// referencing products (set null) rather than removing them.
type CategoryRepository interface {
	Create(category *entity.Category) error
	GetByID(id string) (*entity.Category, error)
	List() ([]*entity.Category, error)
	Update(category *entity.Category) error
	Delete(id string) error
}
