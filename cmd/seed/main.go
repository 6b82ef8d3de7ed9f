// seed puebla la base con datos de demostración: un catálogo mínimo de
// artículos, ubicaciones y lotes, más los movimientos RECEIPT iniciales para
// que los saldos no partan de cero.
//
// Uso: go run ./cmd/seed
// Lee la misma configuración que cmd/api (DATABASE_URL o DB_*).
package main

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	appledger "github.com/jhoicas/stock-ledger-api/internal/application/ledger"
	"github.com/jhoicas/stock-ledger-api/internal/application/usecase"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger-api/pkg/config"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "info"})

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
	txRunner := postgres.NewTxRunner(pool, time.Duration(cfg.Ledger.TxTimeoutSeconds)*time.Second)

	itemUC := usecase.NewItemUseCase(itemRepo, movementRepo)
	locationUC := usecase.NewLocationUseCase(locationRepo, movementRepo)
	batchUC := usecase.NewBatchUseCase(batchRepo, itemRepo, movementRepo)
	recordUC := appledger.NewRecordMovementUseCase(txRunner, itemRepo, locationRepo, batchRepo)

	items := []dto.CreateItemRequest{
		{Name: "Arroz blanco 500g", Unit: "unidad", Category: "granos"},
		{Name: "Aceite vegetal 1L", Unit: "unidad", Category: "aceites"},
		{Name: "Harina de trigo", Unit: "kg", Category: "harinas"},
	}
	locations := []dto.CreateLocationRequest{
		{Name: "Bodega Central", Type: entity.LocationTypeFacility},
		{Name: "Tienda Norte", Type: entity.LocationTypeStore},
		{Name: "Centro de Distribución Sur", Type: entity.LocationTypeHub},
	}

	itemIDs := make([]string, 0, len(items))
	for _, in := range items {
		out, err := itemUC.Create(ctx, in)
		if err != nil {
			log.Fatal().Err(err).Str("name", in.Name).Msg("crear artículo")
		}
		itemIDs = append(itemIDs, out.ID)
		log.Info().Str("id", out.ID).Str("name", out.Name).Msg("artículo creado")
	}

	locationIDs := make([]string, 0, len(locations))
	for _, in := range locations {
		out, err := locationUC.Create(ctx, in)
		if err != nil {
			log.Fatal().Err(err).Str("name", in.Name).Msg("crear ubicación")
		}
		locationIDs = append(locationIDs, out.ID)
		log.Info().Str("id", out.ID).Str("name", out.Name).Msg("ubicación creada")
	}

	expiry := time.Now().AddDate(1, 0, 0)
	batch, err := batchUC.Create(ctx, dto.CreateBatchRequest{
		ItemID:      itemIDs[0],
		BatchNumber: "L-2026-001",
		ExpiryDate:  &expiry,
		InitialQty:  decimal.NewFromInt(200),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("crear lote")
	}
	log.Info().Str("id", batch.ID).Str("batch_number", batch.BatchNumber).Msg("lote creado")

	// Stock inicial vía el ledger: cada saldo nace de un movimiento, nunca
	// de una escritura directa sobre la proyección.
	receipts := []appledger.MovementInputDTO{
		{ItemID: itemIDs[0], LocationID: locationIDs[0], BatchID: batch.ID, Type: entity.MovementTypeRECEIPT, Quantity: decimal.NewFromInt(200), Actor: "seed", Remarks: "carga inicial"},
		{ItemID: itemIDs[1], LocationID: locationIDs[0], Type: entity.MovementTypeRECEIPT, Quantity: decimal.NewFromInt(120), Actor: "seed", Remarks: "carga inicial"},
		{ItemID: itemIDs[2], LocationID: locationIDs[1], Type: entity.MovementTypeRECEIPT, Quantity: decimal.NewFromFloat(75.5), Actor: "seed", Remarks: "carga inicial"},
	}
	for _, in := range receipts {
		movementID, err := recordUC.RecordMovement(ctx, in)
		if err != nil {
			log.Fatal().Err(err).Str("item_id", in.ItemID).Msg("registrar recepción inicial")
		}
		log.Info().Str("movement_id", movementID).Str("item_id", in.ItemID).Msg("recepción registrada")
	}

	log.Info().Msg("seed completado")
}
