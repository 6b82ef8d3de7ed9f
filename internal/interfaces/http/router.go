package http

import (
	"github.com/gofiber/fiber/v2"
)

// RouterDeps dependencias para montar las rutas de la API.
type RouterDeps struct {
	JWTSecret       string
	ItemHandler     *ItemHandler
	LocationHandler *LocationHandler
	BatchHandler    *BatchHandler
	LedgerHandler   *LedgerHandler
}

// Router monta todas las rutas. Todo lo que está bajo /api exige JWT;
// /health queda abierto para probes.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	items := api.Group("/items")
	items.Post("/", deps.ItemHandler.Create)
	items.Get("/", deps.ItemHandler.List)
	items.Get("/:id", deps.ItemHandler.GetByID)
	items.Put("/:id", deps.ItemHandler.Update)
	items.Delete("/:id", deps.ItemHandler.Delete)

	locations := api.Group("/locations")
	locations.Post("/", deps.LocationHandler.Create)
	locations.Get("/", deps.LocationHandler.List)
	locations.Get("/:id", deps.LocationHandler.GetByID)
	locations.Put("/:id", deps.LocationHandler.Update)
	locations.Delete("/:id", deps.LocationHandler.Delete)

	batches := api.Group("/batches")
	batches.Post("/", deps.BatchHandler.Create)
	batches.Get("/", deps.BatchHandler.ListByItem)
	batches.Get("/:id", deps.BatchHandler.GetByID)
	batches.Put("/:id", deps.BatchHandler.Update)
	batches.Delete("/:id", deps.BatchHandler.Delete)

	stock := api.Group("/stock")
	stock.Post("/movements", deps.LedgerHandler.RegisterMovement)
	stock.Get("/movements", deps.LedgerHandler.ListMovements)
	stock.Post("/transfers", deps.LedgerHandler.RecordTransfer)
	stock.Get("/balance", deps.LedgerHandler.GetBalance)
	stock.Get("/balances", deps.LedgerHandler.ListBalances)
	stock.Post("/balances/rebuild", deps.LedgerHandler.RebuildBalances)
}
