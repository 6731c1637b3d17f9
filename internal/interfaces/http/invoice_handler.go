package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/skladpro/warehouse-api/internal/application/billing"
	"github.com/skladpro/warehouse-api/internal/application/dto"
)

// InvoiceHandler handles invoice generation and retrieval (protected).
type InvoiceHandler struct {
	generate *billing.GenerateInvoiceUseCase
	pdf      *billing.PDFUseCase
}

// NewInvoiceHandler builds the handler.
func NewInvoiceHandler(generate *billing.GenerateInvoiceUseCase, pdf *billing.PDFUseCase) *InvoiceHandler {
	return &InvoiceHandler{generate: generate, pdf: pdf}
}

// Generate godoc
// @Summary      Generate an invoice and write off its stock
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.GenerateInvoiceRequest  true  "Line items"
// @Success      201   {object}  dto.InvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "Insufficient stock or concurrency conflict"
// @Failure      502   {object}  dto.ErrorResponse  "Invoice committed but PDF rendering failed"
// @Router       /api/invoices [post]
func (h *InvoiceHandler) Generate(c *fiber.Ctx) error {
	var in dto.GenerateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	out, err := h.generate.Generate(c.UserContext(), GetUserID(c), in.Items)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      List invoices, newest first
// @Tags         invoices
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Limit"   default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200  {object}  dto.InvoiceListResponse
// @Router       /api/invoices [get]
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	out, err := h.generate.ListInvoices(c.UserContext(), c.QueryInt("limit", 20), c.QueryInt("offset", 0))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Get invoice with items
// @Tags         invoices
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Invoice ID"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.generate.GetInvoice(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// DownloadPDF godoc
// @Summary      Download the invoice PDF
// @Tags         invoices
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  string  true  "Invoice ID"
// @Success      200  {file}  file
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/pdf [get]
func (h *InvoiceHandler) DownloadPDF(c *fiber.Ctx) error {
	data, filename, err := h.pdf.Download(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(data)
}

// Render godoc
// @Summary      Re-render the invoice PDF
// @Tags         invoices
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Invoice ID"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/render [post]
func (h *InvoiceHandler) Render(c *fiber.Ctx) error {
	path, err := h.pdf.Render(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"pdf_path": path})
}
