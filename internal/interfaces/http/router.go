package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stock-engine/internal/application/inventory"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Operations *inventory.StockOperationUseCase
	Validator  *inventory.ConsistencyValidatorUseCase
	Scanner    *inventory.ThresholdScannerUseCase
	Audit      *inventory.MovementAuditUseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	handler := NewInventoryHandler(deps.Operations, deps.Validator, deps.Scanner, deps.Audit)

	stock := api.Group("/stock")
	stock.Post("/", handler.Create)
	// Rutas fijas antes que el parámetro :productId
	stock.Get("/low-stock", handler.LowStock)
	stock.Get("/summary", handler.Summary)
	stock.Get("/movements/:movementId", handler.Movement)

	stock.Get("/:productId", handler.Get)
	stock.Get("/:productId/validate", handler.Validate)
	stock.Get("/:productId/movements", handler.Movements)

	stock.Post("/:productId/decrease", handler.Decrease)
	stock.Post("/:productId/increase", handler.Increase)
	stock.Post("/:productId/reserve", handler.Reserve)
	stock.Post("/:productId/confirm", handler.ConfirmReservation)
	stock.Post("/:productId/cancel", handler.CancelReservation)
	stock.Post("/:productId/move", handler.Move)
	stock.Post("/:productId/adjust", handler.Adjust)
}
