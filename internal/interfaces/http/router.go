package http

import (
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jhoicas/Obras-api/internal/application/ledger"
	"github.com/jhoicas/Obras-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger    *ledger.Service
	JWTSecret string
	// Metrics se monta en MetricsPath si no es nil.
	Metrics     nethttp.Handler
	MetricsPath string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Metrics != nil && deps.MetricsPath != "" {
		app.Get(deps.MetricsPath, adaptor.HTTPHandler(deps.Metrics))
	}

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Inventario: solo responsables de inventario
	inv := protected.Group("/inventory", RequireRole(entity.RoleInventoryManager))
	materialHandler := NewMaterialHandler(deps.Ledger)
	inv.Get("/materials", materialHandler.List)
	inv.Post("/materials", materialHandler.Create)
	inv.Get("/materials/:id", materialHandler.GetByID)
	inv.Put("/materials/:id", materialHandler.Update)
	inv.Delete("/materials/:id", materialHandler.Delete)

	inventoryHandler := NewInventoryHandler(deps.Ledger)
	inv.Post("/materials/:id/stock-in", inventoryHandler.StockIn)
	inv.Post("/materials/:id/stock-out", inventoryHandler.StockOut)
	inv.Get("/records", inventoryHandler.ListRecords)
	inv.Get("/manager-projects", inventoryHandler.ManagerProjects)
	inv.Get("/stats", inventoryHandler.Stats)

	// Actividades de proyecto (cualquier usuario autenticado)
	activityHandler := NewActivityHandler(deps.Ledger)
	activities := protected.Group("/project-activities")
	activities.Get("/", activityHandler.List)
	activities.Get("/latest", activityHandler.Latest)

	// Asignación de responsables de inventario
	projectHandler := NewProjectHandler(deps.Ledger)
	projects := protected.Group("/projects", RequireRole(entity.RoleSystemAdmin, entity.RoleProjectManager))
	projects.Put("/:id/inventory-managers", projectHandler.AssignInventoryManagers)
}
