package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/retail-backoffice/internal/application/auth"
	"github.com/tu-usuario/retail-backoffice/internal/application/inventory"
	"github.com/tu-usuario/retail-backoffice/internal/application/purchasing"
	"github.com/tu-usuario/retail-backoffice/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC          *auth.AuthUseCase
	StockUC         *inventory.StockUseCase
	DepletionUC     *inventory.DepletionUseCase
	AdjustmentUC    *inventory.AdjustmentUseCase
	ReportsUC       *inventory.ReportsUseCase
	OrderUC         *purchasing.OrderUseCase
	ReceiveUC       *purchasing.ReceiveUseCase
	IdempotencyRepo repository.IdempotencyRepository
	IdempotencyTTL  time.Duration
	JWTSecret       string
}

// Router registra las rutas de la API. Las mutaciones protegidas pasan por el
// gate de idempotencia (deduplica si el cliente manda Idempotency-Key).
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	idem := IdempotencyMiddleware(deps.IdempotencyRepo, deps.IdempotencyTTL)

	// Órdenes de compra (protegido; crear/recibir/cancelar solo admin y bodeguero)
	orders := protected.Group("/purchase-orders")
	purchaseHandler := NewPurchaseHandler(deps.OrderUC, deps.ReceiveUC)
	orders.Post("/", RequireRole("admin", "bodeguero"), idem, purchaseHandler.Create)
	orders.Get("/", purchaseHandler.List)
	orders.Get("/:id", purchaseHandler.GetByID)
	orders.Post("/:id/receive", RequireRole("admin", "bodeguero"), idem, purchaseHandler.Receive)
	orders.Post("/:id/cancel", RequireRole("admin", "bodeguero"), idem, purchaseHandler.Cancel)

	// Inventario (protegido)
	inv := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.StockUC, deps.DepletionUC, deps.AdjustmentUC, deps.ReportsUC)
	inv.Post("/depletions", idem, inventoryHandler.Deplete)
	inv.Post("/adjustments", RequireRole("admin", "bodeguero"), idem, inventoryHandler.Adjust)
	inv.Get("/low-stock", inventoryHandler.LowStock)
	inv.Get("/expired-batches", inventoryHandler.ExpiredBatches)
	inv.Get("/:productId/adjustments", inventoryHandler.AdjustmentHistory)
	inv.Get("/:productId/reconciliation", inventoryHandler.Reconciliation)
	inv.Get("/:productId", inventoryHandler.GetAggregate)
}
