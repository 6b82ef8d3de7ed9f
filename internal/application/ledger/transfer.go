package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	domledger "github.com/jhoicas/stock-ledger-api/internal/domain/ledger"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// TransferUseCase coordina un traslado entre ubicaciones como un par de
// movimientos TRANSFER_OUT / TRANSFER_IN correlacionados por la cabecera,
// aplicados en una sola transacción: o las dos mitades quedan registradas y
// los dos saldos actualizados, o nada.
type TransferUseCase struct {
	txRunner     TxRunner
	itemRepo     repository.ItemRepository
	locationRepo repository.LocationRepository
	batchRepo    repository.BatchRepository
	transferRepo repository.StockTransferRepository
}

// NewTransferUseCase construye el coordinador de traslados.
func NewTransferUseCase(
	txRunner TxRunner,
	itemRepo repository.ItemRepository,
	locationRepo repository.LocationRepository,
	batchRepo repository.BatchRepository,
	transferRepo repository.StockTransferRepository,
) *TransferUseCase {
	return &TransferUseCase{
		txRunner:     txRunner,
		itemRepo:     itemRepo,
		locationRepo: locationRepo,
		batchRepo:    batchRepo,
		transferRepo: transferRepo,
	}
}

// TransferInputDTO entrada para un traslado. Quantity es la magnitud (> 0).
// IdempotencyKey opcional: reenvíos con la misma clave devuelven el traslado
// ya registrado en vez de duplicarlo.
type TransferInputDTO struct {
	ItemID         string
	FromLocationID string
	ToLocationID   string
	BatchID        string
	Quantity       decimal.Decimal
	Actor          string
	Remarks        string
	IdempotencyKey string
}

// Transfer valida precondiciones, bloquea las dos claves de saldo en orden
// total (lexicográfico, no orden de llegada) y registra cabecera + par de
// movimientos. Devuelve el ID del traslado. Si alguna precondición falla no
// se escribe nada.
func (uc *TransferUseCase) Transfer(ctx context.Context, input TransferInputDTO) (string, error) {
	if input.FromLocationID == input.ToLocationID {
		return "", domain.ErrInvalidInput
	}
	if !input.Quantity.GreaterThan(decimal.Zero) || input.Actor == "" {
		return "", domain.ErrInvalidInput
	}
	if err := resolveReferences(ctx, uc.itemRepo, uc.locationRepo, uc.batchRepo,
		input.ItemID, input.FromLocationID, input.BatchID); err != nil {
		return "", err
	}
	toLocation, err := uc.locationRepo.GetByID(ctx, input.ToLocationID)
	if err != nil {
		return "", err
	}
	if toLocation == nil {
		return "", domain.ErrNotFound
	}

	// Camino rápido de idempotencia: reenvío ya registrado.
	if input.IdempotencyKey != "" {
		existing, err := uc.transferRepo.GetByIdempotencyKey(ctx, input.IdempotencyKey)
		if err != nil {
			return "", err
		}
		if existing != nil {
			return existing.ID, nil
		}
	}

	now := time.Now()
	transferID := uuid.New().String()
	fromKey := domledger.BalanceKey{ItemID: input.ItemID, LocationID: input.FromLocationID, BatchID: input.BatchID}
	toKey := domledger.BalanceKey{ItemID: input.ItemID, LocationID: input.ToLocationID, BatchID: input.BatchID}

	err = uc.txRunner.Run(ctx, func(
		ctx context.Context,
		movementRepo repository.StockMovementRepository,
		balanceRepo repository.StockBalanceRepository,
		transferRepo repository.StockTransferRepository,
	) error {
		// La cabecera primero: una idempotency key repetida aborta antes de
		// tocar saldos (violación de único -> ErrDuplicate).
		if err := transferRepo.Create(ctx, &entity.StockTransfer{
			ID:             transferID,
			ItemID:         input.ItemID,
			FromLocationID: input.FromLocationID,
			ToLocationID:   input.ToLocationID,
			BatchID:        input.BatchID,
			Quantity:       input.Quantity,
			IdempotencyKey: input.IdempotencyKey,
			Actor:          input.Actor,
			Remarks:        input.Remarks,
			CreatedAt:      now,
		}); err != nil {
			return err
		}

		// Bloqueo de ambas claves en el orden total sobre (item, ubicación, lote).
		steps := []struct {
			key    domledger.BalanceKey
			effect decimal.Decimal
		}{
			{fromKey, input.Quantity.Neg()},
			{toKey, input.Quantity},
		}
		if toKey.Less(fromKey) {
			steps[0], steps[1] = steps[1], steps[0]
		}
		for _, s := range steps {
			if err := applyEffect(ctx, balanceRepo, s.key, s.effect, now); err != nil {
				return err
			}
		}

		outMov := &entity.StockMovement{
			ID:         uuid.New().String(),
			TransferID: transferID,
			ItemID:     input.ItemID,
			LocationID: input.FromLocationID,
			BatchID:    input.BatchID,
			Type:       entity.MovementTypeTRANSFEROUT,
			Quantity:   input.Quantity.Neg(),
			Actor:      input.Actor,
			OccurredAt: now,
			Remarks:    input.Remarks,
			CreatedAt:  now,
		}
		if err := movementRepo.Create(ctx, outMov); err != nil {
			return err
		}
		inMov := &entity.StockMovement{
			ID:         uuid.New().String(),
			TransferID: transferID,
			ItemID:     input.ItemID,
			LocationID: input.ToLocationID,
			BatchID:    input.BatchID,
			Type:       entity.MovementTypeTRANSFERIN,
			Quantity:   input.Quantity,
			Actor:      input.Actor,
			OccurredAt: now,
			Remarks:    input.Remarks,
			CreatedAt:  now,
		}
		return movementRepo.Create(ctx, inMov)
	})
	if err != nil {
		// Carrera entre el camino rápido y el insert: otro reenvío ganó la
		// clave; devolver el traslado que quedó registrado.
		if input.IdempotencyKey != "" && errors.Is(err, domain.ErrDuplicate) {
			existing, getErr := uc.transferRepo.GetByIdempotencyKey(ctx, input.IdempotencyKey)
			if getErr == nil && existing != nil {
				return existing.ID, nil
			}
		}
		return "", err
	}
	return transferID, nil
}
