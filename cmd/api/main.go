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

	"github.com/jhoicas/stock-ledger-api/internal/application/ledger"
	"github.com/jhoicas/stock-ledger-api/internal/application/usecase"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/stock-ledger-api/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger-api/pkg/config"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
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

	itemRepo := postgres.NewItemRepository(pool)
	locationRepo := postgres.NewLocationRepository(pool)
	batchRepo := postgres.NewBatchRepository(pool)
	movementRepo := postgres.NewStockMovementRepository(pool)
	balanceRepo := postgres.NewStockBalanceRepository(pool)
	transferRepo := postgres.NewStockTransferRepository(pool)
	txRunner := postgres.NewTxRunner(pool, time.Duration(cfg.Ledger.TxTimeoutSeconds)*time.Second)

	itemUC := usecase.NewItemUseCase(itemRepo, movementRepo)
	locationUC := usecase.NewLocationUseCase(locationRepo, movementRepo)
	batchUC := usecase.NewBatchUseCase(batchRepo, itemRepo, movementRepo)

	recordUC := ledger.NewRecordMovementUseCase(txRunner, itemRepo, locationRepo, batchRepo)
	transferUC := ledger.NewTransferUseCase(txRunner, itemRepo, locationRepo, batchRepo, transferRepo)
	queryUC := ledger.NewQueryUseCase(movementRepo, balanceRepo)
	rebuildUC := ledger.NewRebuildUseCase(txRunner)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat("./docs/swagger.json"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Stock Ledger API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		JWTSecret:       cfg.JWT.Secret,
		ItemHandler:     httpRouter.NewItemHandler(itemUC),
		LocationHandler: httpRouter.NewLocationHandler(locationUC),
		BatchHandler:    httpRouter.NewBatchHandler(batchUC),
		LedgerHandler:   httpRouter.NewLedgerHandler(recordUC, transferUC, queryUC, rebuildUC),
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
