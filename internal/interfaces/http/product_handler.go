package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/skladpro/warehouse-api/internal/application/dto"
	"github.com/skladpro/warehouse-api/internal/application/inventory"
	"github.com/skladpro/warehouse-api/internal/application/usecase"
	"github.com/skladpro/warehouse-api/internal/domain/repository"
)

// recentMovements caps the history embedded into the product detail payload.
const recentMovements = 10

// ProductHandler handles HTTP requests for products (protected).
type ProductHandler struct {
	uc     *usecase.ProductUseCase
	ledger *inventory.Ledger
}

// NewProductHandler builds the handler.
func NewProductHandler(uc *usecase.ProductUseCase, ledger *inventory.Ledger) *ProductHandler {
	return &ProductHandler{uc: uc, ledger: ledger}
}

// Create godoc
// @Summary      Create product
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "Product data"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	if in.SKU == "" || in.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "sku and name are required"})
	}
	out, err := h.uc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      List products
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        q            query  string  false  "Search over name and sku"
// @Param        category_id  query  string  false  "Filter by category"
// @Param        in_stock     query  bool    false  "Only quantity > 0"
// @Param        low_stock    query  bool    false  "Only quantity <= min_quantity"
// @Param        limit        query  int     false  "Limit"   default(20)
// @Param        offset       query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.ProductListResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	filter := repository.ProductFilter{
		Query:      c.Query("q"),
		CategoryID: c.Query("category_id"),
		InStock:    c.QueryBool("in_stock", false),
		LowStock:   c.QueryBool("low_stock", false),
		Limit:      limit,
		Offset:     offset,
	}
	out, err := h.uc.List(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Search godoc
// @Summary      Search in-stock products for invoice building
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        q  query  string  true  "Search over name and sku"
// @Success      200  {array}  dto.ProductSearchResult
// @Router       /api/products/search [get]
func (h *ProductHandler) Search(c *fiber.Ctx) error {
	out, err := h.uc.Search(c.UserContext(), c.Query("q"), c.QueryInt("limit", 20))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Get product with recent movements
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Product ID"
// @Success      200  {object}  dto.ProductDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	product, err := h.uc.GetByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	movements, err := h.ledger.History(c.UserContext(), id, recentMovements)
	if err != nil {
		return respondError(c, err)
	}
	detail := dto.ProductDetailResponse{
		ProductResponse: *product,
		Movements:       make([]dto.MovementResponse, 0, len(movements)),
	}
	for _, m := range movements {
		detail.Movements = append(detail.Movements, dto.MovementResponse{
			ID:        m.ID,
			ProductID: m.ProductID,
			Type:      m.Type,
			Quantity:  m.Quantity,
			Reason:    m.Reason,
			CreatedAt: m.CreatedAt,
			CreatedBy: m.CreatedBy,
		})
	}
	return c.JSON(detail)
}

// Stock godoc
// @Summary      Current stock of a product
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Product ID"
// @Success      200  {object}  dto.ProductStockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/stock [get]
func (h *ProductHandler) Stock(c *fiber.Ctx) error {
	out, err := h.uc.Stock(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Update product fields (sku and quantity are immutable here)
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "Product ID"
// @Param        body  body  dto.UpdateProductRequest  true  "Fields to update"
// @Success      200   {object}  dto.ProductResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{id} [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	if in.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "name is required"})
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Delete product
// @Tags         products
// @Security     Bearer
// @Param        id  path  string  true  "Product ID"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse  "Referenced by an invoice"
// @Router       /api/products/{id} [delete]
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
