package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/skladpro/warehouse-api/internal/application/auth"
	"github.com/skladpro/warehouse-api/internal/application/billing"
	"github.com/skladpro/warehouse-api/internal/application/inventory"
	"github.com/skladpro/warehouse-api/internal/application/usecase"
	"github.com/skladpro/warehouse-api/internal/domain/entity"
)

// RouterDeps holds the use cases the router wires handlers to.
type RouterDeps struct {
	AuthUC          *auth.AuthUseCase
	CategoryUC      *usecase.CategoryUseCase
	ProductUC       *usecase.ProductUseCase
	Ledger          *inventory.Ledger
	GenerateInvoice *billing.GenerateInvoiceUseCase
	InvoicePDF      *billing.PDFUseCase
	JWTSecret       string
}

// Router registers the API routes.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (public)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Everything else requires a Bearer token
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	adminOnly := RequireRole(entity.RoleAdmin)

	// Categories
	categories := protected.Group("/categories")
	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	categories.Get("/", categoryHandler.List)
	categories.Post("/", adminOnly, categoryHandler.Create)
	categories.Put("/:id", adminOnly, categoryHandler.Update)
	categories.Delete("/:id", adminOnly, categoryHandler.Delete)

	// Products; catalog writes are admin-only, reads are not
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, deps.Ledger)
	inventoryHandler := NewInventoryHandler(deps.Ledger)
	products.Get("/", productHandler.List)
	products.Get("/search", productHandler.Search)
	products.Get("/:id", productHandler.GetByID)
	products.Get("/:id/stock", productHandler.Stock)
	products.Get("/:id/movements", inventoryHandler.Movements)
	products.Post("/", adminOnly, productHandler.Create)
	products.Put("/:id", adminOnly, productHandler.Update)
	products.Delete("/:id", adminOnly, productHandler.Delete)

	// Stock movements
	invGroup := protected.Group("/inventory")
	invGroup.Post("/movements", inventoryHandler.RegisterMovement)

	// Invoices
	invoices := protected.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.GenerateInvoice, deps.InvoicePDF)
	invoices.Post("/", invoiceHandler.Generate)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Get("/:id/pdf", invoiceHandler.DownloadPDF)
	invoices.Post("/:id/render", invoiceHandler.Render)
}
