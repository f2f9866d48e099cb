package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Costeo-api/internal/application/auth"
	"github.com/jhoicas/Costeo-api/internal/application/catalog"
	"github.com/jhoicas/Costeo-api/internal/application/costing"
	"github.com/jhoicas/Costeo-api/internal/application/ledger"
	"github.com/jhoicas/Costeo-api/internal/application/pricing"
	"github.com/jhoicas/Costeo-api/internal/application/production"
	"github.com/jhoicas/Costeo-api/internal/application/reporting"
	infrapdf "github.com/jhoicas/Costeo-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Costeo-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Costeo-api/internal/interfaces/http"
	"github.com/jhoicas/Costeo-api/pkg/config"
	"github.com/jhoicas/Costeo-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   "info",
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	supplierRepo := postgres.NewSupplierRepository(pool)
	materialRepo := postgres.NewRawMaterialRepository(pool)
	packagingRepo := postgres.NewPackagingRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	recipeRepo := postgres.NewRecipeRepository(pool)
	eventRepo := postgres.NewStockEventRepository(pool)
	productionRepo := postgres.NewProductionLogRepository(pool)
	auditRepo := postgres.NewStockAuditRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Catálogo
	supplierUC := catalog.NewSupplierUseCase(supplierRepo, log)
	materialUC := catalog.NewMaterialUseCase(materialRepo, supplierUC, log)
	packagingUC := catalog.NewPackagingUseCase(packagingRepo, log)
	recipeUC := catalog.NewRecipeUseCase(recipeRepo, categoryRepo, txRunner, log)

	// Costeo: motores de solo lectura sobre el pool; strict según config
	costLenient := costing.New(recipeRepo, materialRepo, packagingRepo, log, false)
	costStrict := costing.New(recipeRepo, materialRepo, packagingRepo, log, true)

	// Ledger de stock y resolutor de precios
	stockSvc := ledger.NewService(eventRepo, productionRepo, recipeRepo, materialRepo)
	countUC := ledger.NewRecordCountUseCase(txRunner, log)
	priceResolver := pricing.NewResolver(stockSvc)

	// Producción
	executor := production.NewExecutor(txRunner, log)

	// Reportes
	pdfGenerator := infrapdf.NewReportPDFGenerator()
	reportUC := reporting.NewReportUseCase(productionRepo, recipeRepo, auditRepo, pdfGenerator, log)

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	// El proveedor general existe desde el arranque: los materiales sin
	// vínculos explícitos cuelgan de él.
	if _, err := supplierUC.EnsureDefault(ctx); err != nil {
		log.Fatal().Err(err).Msg("crear proveedor general")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Costeo API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		JWTSecret:  cfg.JWT.Secret,
		Auth:       httpRouter.NewAuthHandler(authUC),
		Suppliers:  httpRouter.NewSupplierHandler(supplierUC),
		Materials:  httpRouter.NewMaterialHandler(materialUC, priceResolver),
		Packagings: httpRouter.NewPackagingHandler(packagingUC),
		Recipes:    httpRouter.NewRecipeHandler(recipeUC, costLenient, costStrict, cfg.App.StrictCosting),
		Stock:      httpRouter.NewStockHandler(stockSvc, countUC, eventRepo),
		Production: httpRouter.NewProductionHandler(executor, productionRepo),
		Reports:    httpRouter.NewReportHandler(reportUC),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
