package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/skladpro/warehouse-api/internal/domain/entity"
	"github.com/skladpro/warehouse-api/internal/domain/repository"
)

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

// CategoryRepo implements CategoryRepository over PostgreSQL (pool or tx).
type CategoryRepo struct {
	q Querier
}

// NewCategoryRepository builds the adapter. Pass pool or tx.
func NewCategoryRepository(q Querier) *CategoryRepo {
	return &CategoryRepo{q: q}
}

// Create persists a new category.
func (r *CategoryRepo) Create(category *entity.Category) error {
	_, err := r.q.Exec(context.Background(),
		`INSERT INTO categories (id, name, description, created_at) VALUES ($1, $2, $3, $4)`,
		category.ID, category.Name, category.Description, category.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// GetByID returns a category, or nil when absent.
func (r *CategoryRepo) GetByID(id string) (*entity.Category, error) {
	var c entity.Category
	err := r.q.QueryRow(context.Background(),
		`SELECT id, name, description, created_at FROM categories WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

// List returns all categories ordered by name.
func (r *CategoryRepo) List() ([]*entity.Category, error) {
	rows, err := r.q.Query(context.Background(),
		`SELECT id, name, description, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()
	var list []*entity.Category
	for rows.Next() {
		var c entity.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

// Update modifies name and description.
func (r *CategoryRepo) Update(category *entity.Category) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE categories SET name = $2, description = $3 WHERE id = $1`,
		category.ID, category.Name, category.Description,
	)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

// Delete removes a category. products.category_id is ON DELETE SET NULL, so
// referencing products are detached, not removed.
func (r *CategoryRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
