package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/skladpro/warehouse-api/internal/application/auth"
	"github.com/skladpro/warehouse-api/internal/application/billing"
	"github.com/skladpro/warehouse-api/internal/application/inventory"
	"github.com/skladpro/warehouse-api/internal/application/usecase"
	infrapdf "github.com/skladpro/warehouse-api/internal/infrastructure/pdf"
	"github.com/skladpro/warehouse-api/internal/infrastructure/postgres"
	"github.com/skladpro/warehouse-api/internal/infrastructure/storage"
	httpRouter "github.com/skladpro/warehouse-api/internal/interfaces/http"
	"github.com/skladpro/warehouse-api/pkg/config"
	"github.com/skladpro/warehouse-api/pkg/logger"
)

func runMigrations(dsn string) error {
	sqlDB, err := goose.OpenDBWithDriver("postgres", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	return goose.Up(sqlDB, "migrations")
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("starting application")

	if err := runMigrations(cfg.DB.ConnectionString()); err != nil {
		log.Fatal().Err(err).Msg("apply migrations")
	}
	log.Info().Msg("migrations applied")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	movementRepo := postgres.NewStockMovementRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	artifacts, err := storage.NewLocalStore(cfg.Storage.MediaDir)
	if err != nil {
		log.Fatal().Err(err).Msg("init media storage")
	}
	renderer := infrapdf.NewMarotoRenderer()

	ledger := inventory.NewLedger(txRunner, movementRepo)
	categoryUC := usecase.NewCategoryUseCase(categoryRepo)
	productUC := usecase.NewProductUseCase(productRepo, categoryRepo)
	generateInvoiceUC := billing.NewGenerateInvoiceUseCase(
		txRunner, ledger, invoiceRepo, productRepo, userRepo, renderer, artifacts,
	)
	invoicePDFUC := billing.NewPDFUseCase(generateInvoiceUC, invoiceRepo, artifacts)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:          authUC,
		CategoryUC:      categoryUC,
		ProductUC:       productUC,
		Ledger:          ledger,
		GenerateInvoice: generateInvoiceUC,
		InvoicePDF:      invoicePDFUC,
		JWTSecret:       cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("HTTP server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutdown signal received, stopping server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}

	log.Info().Msg("application stopped")
}
