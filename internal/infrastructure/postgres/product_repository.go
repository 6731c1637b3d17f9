package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/skladpro/warehouse-api/internal/domain"
	"github.com/skladpro/warehouse-api/internal/domain/entity"
	"github.com/skladpro/warehouse-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, name, category_id, sku, description, price, quantity, min_quantity, location, created_at, updated_at, created_by`

// ProductRepo implements ProductRepository over PostgreSQL (pool or tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository builds the product persistence adapter. Pass pool or tx.
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persists a new product. A sku collision yields ErrDuplicateSKU.
func (r *ProductRepo) Create(product *entity.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(context.Background(), query,
		product.ID, product.Name, nullIfEmpty(product.CategoryID), product.SKU,
		product.Description, product.Price, product.Quantity, product.MinQuantity,
		product.Location, product.CreatedAt, product.UpdatedAt, nullIfEmpty(product.CreatedBy),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateSKU
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID returns a product by id, or nil when absent.
func (r *ProductRepo) GetByID(id string) (*entity.Product, error) {
	return r.getOne(`SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// GetBySKU returns a product by its exact sku, or nil when absent.
func (r *ProductRepo) GetBySKU(sku string) (*entity.Product, error) {
	return r.getOne(`SELECT `+productColumns+` FROM products WHERE sku = $1`, sku)
}

// GetForUpdate returns the product and locks its row (SELECT FOR UPDATE) until
// the surrounding transaction ends.
func (r *ProductRepo) GetForUpdate(id string) (*entity.Product, error) {
	return r.getOne(`SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
}

func (r *ProductRepo) getOne(query string, arg any) (*entity.Product, error) {
	var p entity.Product
	var categoryID, createdBy *string
	err := r.q.QueryRow(context.Background(), query, arg).Scan(
		&p.ID, &p.Name, &categoryID, &p.SKU, &p.Description, &p.Price,
		&p.Quantity, &p.MinQuantity, &p.Location, &p.CreatedAt, &p.UpdatedAt, &createdBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	p.CategoryID = derefStr(categoryID)
	p.CreatedBy = derefStr(createdBy)
	return &p, nil
}

// filterClause renders the WHERE clause and arguments for a ProductFilter.
func filterClause(f repository.ProductFilter) (string, []any) {
	var conds []string
	var args []any
	if f.Query != "" {
		args = append(args, "%"+f.Query+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR sku ILIKE $%d)", n, n))
	}
	if f.CategoryID != "" {
		args = append(args, f.CategoryID)
		conds = append(conds, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if f.InStock {
		conds = append(conds, "quantity > 0")
	}
	if f.LowStock {
		conds = append(conds, "quantity <= min_quantity")
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List returns a filtered page, newest first.
func (r *ProductRepo) List(f repository.ProductFilter) ([]*entity.Product, error) {
	where, args := filterClause(f)
	args = append(args, f.Limit, f.Offset)
	query := fmt.Sprintf(`SELECT %s FROM products%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		productColumns, where, len(args)-1, len(args))
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		var p entity.Product
		var categoryID, createdBy *string
		if err := rows.Scan(&p.ID, &p.Name, &categoryID, &p.SKU, &p.Description, &p.Price,
			&p.Quantity, &p.MinQuantity, &p.Location, &p.CreatedAt, &p.UpdatedAt, &createdBy); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.CategoryID = derefStr(categoryID)
		p.CreatedBy = derefStr(createdBy)
		list = append(list, &p)
	}
	return list, rows.Err()
}

// Count returns the size of the whole filtered set.
func (r *ProductRepo) Count(f repository.ProductFilter) (int, error) {
	where, args := filterClause(f)
	var count int
	err := r.q.QueryRow(context.Background(), `SELECT COUNT(*) FROM products`+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return count, nil
}

// TotalValue returns SUM(price * quantity) over the whole filtered set.
func (r *ProductRepo) TotalValue(f repository.ProductFilter) (decimal.Decimal, error) {
	where, args := filterClause(f)
	var total decimal.Decimal
	err := r.q.QueryRow(context.Background(),
		`SELECT COALESCE(SUM(price * quantity), 0) FROM products`+where, args...).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("total stock value: %w", err)
	}
	return total, nil
}

// Search finds in-stock products by name or sku substring, for the invoice picker.
func (r *ProductRepo) Search(query string, limit int) ([]*entity.Product, error) {
	return r.List(repository.ProductFilter{Query: query, InStock: true, Limit: limit})
}

// Update modifies catalog fields. SKU and quantity are deliberately absent:
// the sku is immutable and quantity changes only through the ledger.
func (r *ProductRepo) Update(product *entity.Product) error {
	query := `
		UPDATE products
		SET name = $2, category_id = $3, description = $4, price = $5,
		    min_quantity = $6, location = $7, updated_at = $8
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		product.ID, product.Name, nullIfEmpty(product.CategoryID), product.Description,
		product.Price, product.MinQuantity, product.Location, product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// UpdateQuantity sets the stock quantity. Called only by the ledger inside its
// transaction, after the row has been locked.
func (r *ProductRepo) UpdateQuantity(id string, quantity int) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE products SET quantity = $2, updated_at = now() WHERE id = $1`,
		id, quantity,
	)
	if err != nil {
		return fmt.Errorf("update product quantity: %w", err)
	}
	return nil
}

// Delete removes a product. Movements cascade away with it; a product still
// referenced by invoice items is protected and yields ErrReferencedByInvoice.
func (r *ProductRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrReferencedByInvoice
		}
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}
