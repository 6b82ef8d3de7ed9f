package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	domledger "github.com/jhoicas/stock-ledger-api/internal/domain/ledger"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// QueryUseCase consultas de solo lectura sobre saldos e historial. No abre
// transacciones: lee la proyección materializada y el ledger con los repos
// atados al pool.
type QueryUseCase struct {
	movementRepo repository.StockMovementRepository
	balanceRepo  repository.StockBalanceRepository
}

// NewQueryUseCase construye el caso de uso de consulta.
func NewQueryUseCase(
	movementRepo repository.StockMovementRepository,
	balanceRepo repository.StockBalanceRepository,
) *QueryUseCase {
	return &QueryUseCase{movementRepo: movementRepo, balanceRepo: balanceRepo}
}

// GetBalance devuelve el saldo actual de la clave. Clave desconocida = cero,
// no error: la ausencia de fila significa cero stock.
func (uc *QueryUseCase) GetBalance(ctx context.Context, itemID, locationID, batchID string) (decimal.Decimal, error) {
	balance, err := uc.balanceRepo.Get(ctx, domledger.BalanceKey{
		ItemID: itemID, LocationID: locationID, BatchID: batchID,
	})
	if err != nil {
		return decimal.Zero, err
	}
	return balance.Quantity, nil
}

// ListBalances lista saldos filtrados por artículo y/o ubicación, paginado.
func (uc *QueryUseCase) ListBalances(ctx context.Context, filter repository.BalanceFilter, limit, offset int) ([]*entity.StockBalance, error) {
	return uc.balanceRepo.List(ctx, filter, limit, offset)
}

// ListMovements devuelve el historial en orden por fecha ascendente
// (desempate por secuencia de inserción), paginado y reanudable.
func (uc *QueryUseCase) ListMovements(ctx context.Context, filter repository.MovementFilter, limit, offset int) ([]*entity.StockMovement, error) {
	return uc.movementRepo.List(ctx, filter, limit, offset)
}
