// Package http registra las rutas del API y sus middlewares.
package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Costeo-api/internal/domain/entity"
)

// RouterDeps agrupa los handlers y la configuración que el router necesita.
type RouterDeps struct {
	JWTSecret string

	Auth       *AuthHandler
	Suppliers  *SupplierHandler
	Materials  *MaterialHandler
	Packagings *PackagingHandler
	Recipes    *RecipeHandler
	Stock      *StockHandler
	Production *ProductionHandler
	Reports    *ReportHandler
}

// Router registra todas las rutas del API.
//
// RBAC: la escritura del catálogo es de admin; producir es de admin y
// produccion; los conteos y correcciones de stock son de admin y auditor.
// Las lecturas son de cualquier usuario autenticado.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas públicas
	authGroup := api.Group("/auth")
	authGroup.Post("/register", deps.Auth.Register)
	authGroup.Post("/login", deps.Auth.Login)

	// Rutas protegidas
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	adminOnly := RequireRole(entity.RoleAdmin)
	canProduce := RequireRole(entity.RoleAdmin, entity.RoleProduccion)
	canAudit := RequireRole(entity.RoleAdmin, entity.RoleAuditor)

	// Proveedores
	suppliers := protected.Group("/suppliers")
	suppliers.Get("/", deps.Suppliers.List)
	suppliers.Get("/:id", deps.Suppliers.GetByID)
	suppliers.Post("/", adminOnly, deps.Suppliers.Create)
	suppliers.Put("/:id", adminOnly, deps.Suppliers.Update)
	suppliers.Delete("/:id", adminOnly, deps.Suppliers.Remove)

	// Materias primas
	materials := protected.Group("/materials")
	materials.Get("/", deps.Materials.List)
	materials.Get("/:id", deps.Materials.GetByID)
	materials.Get("/:id/allocation", deps.Materials.Allocation)
	materials.Post("/", adminOnly, deps.Materials.Create)
	materials.Put("/:id", adminOnly, deps.Materials.Update)
	materials.Put("/:id/links", adminOnly, deps.Materials.ReplaceLinks)
	materials.Delete("/:id", adminOnly, deps.Materials.Remove)

	// Empaques
	packagings := protected.Group("/packagings")
	packagings.Get("/", deps.Packagings.List)
	packagings.Get("/:id", deps.Packagings.GetByID)
	packagings.Post("/", adminOnly, deps.Packagings.Create)
	packagings.Put("/:id", adminOnly, deps.Packagings.Update)
	packagings.Delete("/:id", adminOnly, deps.Packagings.Remove)

	// Recetas y categorías
	recipes := protected.Group("/recipes")
	recipes.Get("/", deps.Recipes.List)
	recipes.Get("/:id", deps.Recipes.GetByID)
	recipes.Get("/:id/components", deps.Recipes.Components)
	recipes.Get("/:id/cost", deps.Recipes.UnitCost)
	recipes.Post("/", adminOnly, deps.Recipes.Create)
	recipes.Put("/:id", adminOnly, deps.Recipes.Update)
	recipes.Put("/:id/components", adminOnly, deps.Recipes.ReplaceComponents)
	recipes.Delete("/:id", adminOnly, deps.Recipes.Remove)

	categories := protected.Group("/categories")
	categories.Get("/", deps.Recipes.Categories)
	categories.Post("/", adminOnly, deps.Recipes.CreateCategory)

	// Stock (ledger)
	stock := protected.Group("/stock")
	stock.Get("/:kind/:id", deps.Stock.Current)
	stock.Get("/:kind/:id/events", deps.Stock.Events)
	stock.Get("/:kind/:id/audits", deps.Reports.AuditsForEntity)
	stock.Post("/:kind/:id/count", canAudit, deps.Stock.RecordCount)
	stock.Post("/:kind/:id/events", canAudit, deps.Stock.RecordAdjustment)

	// Producción
	productionGroup := protected.Group("/production")
	productionGroup.Get("/", deps.Production.List)
	productionGroup.Get("/:id", deps.Production.GetByID)
	productionGroup.Post("/", canProduce, deps.Production.Produce)
	productionGroup.Post("/batch", canProduce, deps.Production.ProduceBatch)

	// Reportes
	reports := protected.Group("/reports")
	reports.Get("/weekly", deps.Reports.Weekly)
	reports.Get("/weekly/pdf", deps.Reports.WeeklyPDF)
	reports.Get("/production", deps.Reports.ProductionBetween)
	reports.Get("/audits", deps.Reports.Audits)
}
