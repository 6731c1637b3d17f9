package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/skladpro/warehouse-api/internal/application/dto"
	"github.com/skladpro/warehouse-api/internal/application/inventory"
	"github.com/skladpro/warehouse-api/internal/domain/entity"
)

// InventoryHandler handles stock movement requests (protected).
type InventoryHandler struct {
	ledger *inventory.Ledger
}

// NewInventoryHandler builds the handler.
func NewInventoryHandler(ledger *inventory.Ledger) *InventoryHandler {
	return &InventoryHandler{ledger: ledger}
}

// RegisterMovement godoc
// @Summary      Record a stock movement
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "product_id, type (in|out), quantity, reason"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "Insufficient stock"
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	if in.ProductID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id is required"})
	}
	if !entity.ValidMovementType(in.Type) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "type must be \"in\" or \"out\""})
	}
	movement, err := h.ledger.ApplyMovement(c.UserContext(), inventory.MovementInput{
		ProductID: in.ProductID,
		Type:      in.Type,
		Quantity:  in.Quantity,
		Reason:    in.Reason,
		ActorID:   GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MovementResponse{
		ID:        movement.ID,
		ProductID: movement.ProductID,
		Type:      movement.Type,
		Quantity:  movement.Quantity,
		Reason:    movement.Reason,
		CreatedAt: movement.CreatedAt,
		CreatedBy: movement.CreatedBy,
	})
}

// Movements godoc
// @Summary      Movement history of a product, newest first
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id     path   string  true   "Product ID"
// @Param        limit  query  int     false  "Limit"  default(50)
// @Success      200  {array}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/movements [get]
func (h *InventoryHandler) Movements(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	movements, err := h.ledger.History(c.UserContext(), c.Params("id"), limit)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, dto.MovementResponse{
			ID:        m.ID,
			ProductID: m.ProductID,
			Type:      m.Type,
			Quantity:  m.Quantity,
			Reason:    m.Reason,
			CreatedAt: m.CreatedAt,
			CreatedBy: m.CreatedBy,
		})
	}
	return c.JSON(out)
}
