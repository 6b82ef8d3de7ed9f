package ledger

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// RebuildUseCase reconstruye la proyección de saldos desde el historial
// completo (o filtrado) del ledger. Operación explícita de reparación y
// auditoría: el resultado debe coincidir exactamente con la proyección
// incremental, y correrla dos veces seguidas no cambia nada.
type RebuildUseCase struct {
	txRunner TxRunner
}

// NewRebuildUseCase construye el caso de uso de reconstrucción.
func NewRebuildUseCase(txRunner TxRunner) *RebuildUseCase {
	return &RebuildUseCase{txRunner: txRunner}
}

// Rebuild recalcula los saldos en una sola transacción. itemID y locationID
// vacíos reconstruyen todo; no vacíos, solo las claves que coincidan.
func (uc *RebuildUseCase) Rebuild(ctx context.Context, itemID, locationID string) error {
	return uc.txRunner.Run(ctx, func(
		ctx context.Context,
		_ repository.StockMovementRepository,
		balanceRepo repository.StockBalanceRepository,
		_ repository.StockTransferRepository,
	) error {
		return balanceRepo.RebuildFromMovements(ctx, itemID, locationID)
	})
}
