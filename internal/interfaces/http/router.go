package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Taller-api/internal/application/ledger"
	"github.com/jhoicas/Taller-api/internal/application/usecase"
	"github.com/jhoicas/Taller-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	RepairUC   *usecase.RepairUseCase
	PartUC     *usecase.PartUseCase
	CategoryUC *usecase.CategoryUseCase
	LedgerUC   *ledger.RepairLedgerUseCase
	JWTSecret  string
	JWTIssuer  string
}

// Router registra las rutas de la API. Todo /api requiere Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))

	allRoles := RequireRole(jwt.RoleAdmin, jwt.RoleTecnico, jwt.RoleRecepcion)
	adminOnly := RequireRole(jwt.RoleAdmin)
	workshop := RequireRole(jwt.RoleAdmin, jwt.RoleTecnico)
	frontDesk := RequireRole(jwt.RoleAdmin, jwt.RoleRecepcion)

	// Órdenes de reparación
	repairs := api.Group("/repairs")
	repairHandler := NewRepairHandler(deps.RepairUC, deps.LedgerUC)
	repairs.Get("/", allRoles, repairHandler.List)
	repairs.Post("/", frontDesk, repairHandler.Create)
	repairs.Get("/:id", allRoles, repairHandler.GetByID)
	repairs.Patch("/:id", allRoles, repairHandler.Update)
	repairs.Get("/:id/parts", allRoles, repairHandler.ListParts)
	repairs.Post("/:id/parts", workshop, repairHandler.AttachPart)
	repairs.Delete("/:id/parts/:lineId", workshop, repairHandler.DetachPart)

	// Catálogo de repuestos
	parts := api.Group("/parts")
	partHandler := NewPartHandler(deps.PartUC, deps.LedgerUC)
	parts.Get("/", allRoles, partHandler.List)
	parts.Post("/", adminOnly, partHandler.Create)
	parts.Get("/:id", allRoles, partHandler.GetByID)
	parts.Put("/:id", adminOnly, partHandler.Update)
	parts.Delete("/:id", adminOnly, partHandler.Delete)
	parts.Post("/:id/receipts", frontDesk, partHandler.ReceiveStock)
	parts.Get("/:id/movements", allRoles, partHandler.ListMovements)

	// Categorías
	categories := api.Group("/categories")
	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	categories.Get("/", allRoles, categoryHandler.List)
	categories.Post("/", adminOnly, categoryHandler.Create)
}
