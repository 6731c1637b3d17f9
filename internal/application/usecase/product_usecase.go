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

// ProductUseCase manages the product catalog. Quantity mutations are not done
// here: they go through the inventory ledger. The initial quantity supplied at
// creation is the opening stock.
type ProductUseCase struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewProductUseCase builds the use case.
func NewProductUseCase(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository) *ProductUseCase {
	return &ProductUseCase{productRepo: productRepo, categoryRepo: categoryRepo}
}

// Create persists a new product. The sku must not collide with any existing
// product (case-sensitive exact match).
func (uc *ProductUseCase) Create(ctx context.Context, actorID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if in.Name == "" || in.SKU == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Quantity < 0 || in.MinQuantity < 0 || in.Price.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if in.CategoryID != "" {
		category, err := uc.categoryRepo.GetByID(in.CategoryID)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, domain.ErrNotFound
		}
	}
	now := time.Now()
	product := &entity.Product{
		ID:          uuid.New().String(),
		Name:        in.Name,
		CategoryID:  in.CategoryID,
		SKU:         in.SKU,
		Description: in.Description,
		Price:       in.Price,
		Quantity:    in.Quantity,
		MinQuantity: in.MinQuantity,
		Location:    in.Location,
		CreatedAt:   now,
		UpdatedAt:   now,
		CreatedBy:   actorID,
	}
	if err := uc.productRepo.Create(product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID returns a product, or ErrProductNotFound when it does not exist.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	return toProductResponse(product), nil
}

// List returns a filtered page plus the count and stock value of the whole
// filtered set.
func (uc *ProductUseCase) List(ctx context.Context, filter repository.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	products, err := uc.productRepo.List(filter)
	if err != nil {
		return nil, err
	}
	total, err := uc.productRepo.Count(filter)
	if err != nil {
		return nil, err
	}
	totalValue, err := uc.productRepo.TotalValue(filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.ProductListResponse{
		Total:      total,
		TotalValue: totalValue,
		Products:   make([]dto.ProductResponse, 0, len(products)),
	}
	for _, p := range products {
		resp.Products = append(resp.Products, *toProductResponse(p))
	}
	return resp, nil
}

// Search is the lightweight in-stock picker used when building an invoice.
func (uc *ProductUseCase) Search(ctx context.Context, query string, limit int) ([]dto.ProductSearchResult, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	products, err := uc.productRepo.Search(query, limit)
	if err != nil {
		return nil, err
	}
	categories := map[string]string{}
	results := make([]dto.ProductSearchResult, 0, len(products))
	for _, p := range products {
		categoryName := "Без категории"
		if p.CategoryID != "" {
			name, ok := categories[p.CategoryID]
			if !ok {
				if category, err := uc.categoryRepo.GetByID(p.CategoryID); err == nil && category != nil {
					name = category.Name
				}
				categories[p.CategoryID] = name
			}
			if name != "" {
				categoryName = name
			}
		}
		results = append(results, dto.ProductSearchResult{
			ID:       p.ID,
			Name:     p.Name,
			SKU:      p.SKU,
			Price:    p.Price,
			Quantity: p.Quantity,
			Category: categoryName,
		})
	}
	return results, nil
}

// Stock returns the current-stock payload for one product.
func (uc *ProductUseCase) Stock(ctx context.Context, id string) (*dto.ProductStockResponse, error) {
	product, err := uc.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	return &dto.ProductStockResponse{
		ID:       product.ID,
		Name:     product.Name,
		Quantity: product.Quantity,
		Price:    product.Price,
	}, nil
}

// Update modifies catalog fields. SKU is immutable; quantity is owned by the
// ledger and not touched here.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	if in.Name == "" || in.Price.IsNegative() || in.MinQuantity < 0 {
		return nil, domain.ErrInvalidInput
	}
	product.Name = in.Name
	product.CategoryID = in.CategoryID
	product.Description = in.Description
	product.Price = in.Price
	product.MinQuantity = in.MinQuantity
	product.Location = in.Location
	product.UpdatedAt = time.Now()
	if err := uc.productRepo.Update(product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// Delete removes a product. The store refuses while invoice items reference it
// (ErrReferencedByInvoice); movement history is removed along with the product.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	product, err := uc.productRepo.GetByID(id)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrProductNotFound
	}
	return uc.productRepo.Delete(id)
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		CategoryID:  p.CategoryID,
		SKU:         p.SKU,
		Description: p.Description,
		Price:       p.Price,
		Quantity:    p.Quantity,
		MinQuantity: p.MinQuantity,
		Location:    p.Location,
		IsLowStock:  p.IsLowStock(),
		TotalValue:  p.TotalValue(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		CreatedBy:   p.CreatedBy,
	}
}
