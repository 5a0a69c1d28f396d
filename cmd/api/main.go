package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tu-usuario/retail-backoffice/internal/application/auth"
	"github.com/tu-usuario/retail-backoffice/internal/application/inventory"
	"github.com/tu-usuario/retail-backoffice/internal/application/purchasing"
	"github.com/tu-usuario/retail-backoffice/internal/infrastructure/postgres"
	httpRouter "github.com/tu-usuario/retail-backoffice/internal/interfaces/http"
	"github.com/tu-usuario/retail-backoffice/pkg/config"
	"github.com/tu-usuario/retail-backoffice/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	inventoryRepo := postgres.NewInventoryRepository(pool)
	batchRepo := postgres.NewStockBatchRepository(pool)
	orderRepo := postgres.NewPurchaseOrderRepository(pool)
	adjustmentRepo := postgres.NewStockAdjustmentRepository(pool)
	idempotencyRepo := postgres.NewIdempotencyRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	stockUC := inventory.NewStockUseCase(inventoryRepo)
	depletionUC := inventory.NewDepletionUseCase(txRunner)
	adjustmentUC := inventory.NewAdjustmentUseCase(txRunner)
	reportsUC := inventory.NewReportsUseCase(inventoryRepo, batchRepo, adjustmentRepo)
	orderUC := purchasing.NewOrderUseCase(orderRepo, txRunner)
	receiveUC := purchasing.NewReceiveUseCase(txRunner)

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
		Title:    "Retail Back-Office API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:          authUC,
		StockUC:         stockUC,
		DepletionUC:     depletionUC,
		AdjustmentUC:    adjustmentUC,
		ReportsUC:       reportsUC,
		OrderUC:         orderUC,
		ReceiveUC:       receiveUC,
		IdempotencyRepo: idempotencyRepo,
		IdempotencyTTL:  cfg.Idempotency.TTL(),
		JWTSecret:       cfg.JWT.Secret,
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
