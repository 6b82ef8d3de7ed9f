package ledger

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Es la unidad de trabajo del ledger: el
// append del movimiento y la proyección del saldo hacen Commit o Rollback
// juntos, nunca por separado. El contexto que recibe fn lleva el plazo
// acotado de la unidad de trabajo: toda sentencia dentro de fn debe usarlo,
// así un bloqueo de fila nunca espera sin límite.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		ctx context.Context,
		movementRepo repository.StockMovementRepository,
		balanceRepo repository.StockBalanceRepository,
		transferRepo repository.StockTransferRepository,
	) error) error
}
