package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	domledger "github.com/jhoicas/stock-ledger-api/internal/domain/ledger"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// RecordMovementUseCase registra movimientos simples del ledger (RECEIPT,
// ISSUE, RETURN, ADJUSTMENT) de forma transaccional: append del movimiento y
// actualización del saldo con bloqueo de fila (SELECT FOR UPDATE) en una sola
// unidad de trabajo. Los traslados van por TransferUseCase.
type RecordMovementUseCase struct {
	txRunner     TxRunner
	itemRepo     repository.ItemRepository
	locationRepo repository.LocationRepository
	batchRepo    repository.BatchRepository
}

// NewRecordMovementUseCase construye el caso de uso.
func NewRecordMovementUseCase(
	txRunner TxRunner,
	itemRepo repository.ItemRepository,
	locationRepo repository.LocationRepository,
	batchRepo repository.BatchRepository,
) *RecordMovementUseCase {
	return &RecordMovementUseCase{
		txRunner:     txRunner,
		itemRepo:     itemRepo,
		locationRepo: locationRepo,
		batchRepo:    batchRepo,
	}
}

// MovementInputDTO entrada para registrar un movimiento.
// Quantity es magnitud (> 0) salvo en ADJUSTMENT, que trae su propio signo.
// OccurredAt en cero usa la hora actual. BatchID vacío = sin lote.
type MovementInputDTO struct {
	ItemID     string
	LocationID string
	BatchID    string
	Type       string
	Quantity   decimal.Decimal
	Actor      string
	OccurredAt time.Time
	Latitude   *float64
	Longitude  *float64
	Remarks    string
}

// RecordMovement valida la entrada, resuelve las referencias y aplica
// append+proyección dentro de una transacción. Devuelve el ID del movimiento.
// Falla con ErrInvalidInput, ErrNotFound, ErrInsufficientStock o ErrPersistence;
// en cualquier fallo no queda nada escrito.
func (uc *RecordMovementUseCase) RecordMovement(ctx context.Context, input MovementInputDTO) (string, error) {
	switch input.Type {
	case entity.MovementTypeRECEIPT, entity.MovementTypeISSUE,
		entity.MovementTypeRETURN, entity.MovementTypeADJUSTMENT:
	default:
		// TRANSFER_OUT / TRANSFER_IN solo los crea el coordinador de traslados.
		return "", domain.ErrInvalidInput
	}
	if input.Actor == "" {
		return "", domain.ErrInvalidInput
	}
	effect, err := domledger.Effect(input.Type, input.Quantity)
	if err != nil {
		return "", err
	}
	if err := resolveReferences(ctx, uc.itemRepo, uc.locationRepo, uc.batchRepo,
		input.ItemID, input.LocationID, input.BatchID); err != nil {
		return "", err
	}

	now := time.Now()
	occurredAt := input.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = now
	}
	movementID := uuid.New().String()
	key := domledger.BalanceKey{ItemID: input.ItemID, LocationID: input.LocationID, BatchID: input.BatchID}

	err = uc.txRunner.Run(ctx, func(
		ctx context.Context,
		movementRepo repository.StockMovementRepository,
		balanceRepo repository.StockBalanceRepository,
		_ repository.StockTransferRepository,
	) error {
		if err := applyEffect(ctx, balanceRepo, key, effect, now); err != nil {
			return err
		}
		return movementRepo.Create(ctx, &entity.StockMovement{
			ID:         movementID,
			ItemID:     input.ItemID,
			LocationID: input.LocationID,
			BatchID:    input.BatchID,
			Type:       input.Type,
			Quantity:   effect,
			Actor:      input.Actor,
			OccurredAt: occurredAt,
			Latitude:   input.Latitude,
			Longitude:  input.Longitude,
			Remarks:    input.Remarks,
			CreatedAt:  now,
		})
	})
	if err != nil {
		return "", err
	}
	return movementID, nil
}

// applyEffect proyecta el efecto sobre la fila de saldo bloqueada. El check de
// no-negatividad y la mutación forman una sola sección crítica por clave.
func applyEffect(
	ctx context.Context,
	balanceRepo repository.StockBalanceRepository,
	key domledger.BalanceKey,
	effect decimal.Decimal,
	now time.Time,
) error {
	balance, err := balanceRepo.GetForUpdate(ctx, key)
	if err != nil {
		return err
	}
	newQty := balance.Quantity.Add(effect)
	if newQty.IsNegative() {
		return domain.ErrInsufficientStock
	}
	balance.Quantity = newQty
	balance.UpdatedAt = now
	return balanceRepo.Upsert(ctx, balance)
}

// resolveReferences verifica que artículo y ubicación existan y que el lote,
// si viene, pertenezca al artículo. Resolución explícita en el borde: el
// ledger trabaja con identificadores, no con asociaciones perezosas.
func resolveReferences(
	ctx context.Context,
	itemRepo repository.ItemRepository,
	locationRepo repository.LocationRepository,
	batchRepo repository.BatchRepository,
	itemID, locationID, batchID string,
) error {
	if itemID == "" || locationID == "" {
		return domain.ErrInvalidInput
	}
	item, err := itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}
	location, err := locationRepo.GetByID(ctx, locationID)
	if err != nil {
		return err
	}
	if location == nil {
		return domain.ErrNotFound
	}
	if batchID != "" {
		batch, err := batchRepo.GetByID(ctx, batchID)
		if err != nil {
			return err
		}
		if batch == nil {
			return domain.ErrNotFound
		}
		if batch.ItemID != itemID {
			return domain.ErrInvalidInput
		}
	}
	return nil
}
