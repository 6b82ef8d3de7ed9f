package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/stock-ledger-api/internal/application/ledger"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// Ensure TxRunner implements ledger.TxRunner.
var _ ledger.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL con un
// timeout acotado: pasado el límite la unidad de trabajo falla con
// ErrPersistence y el Rollback garantiza que no queda estado parcial.
type TxRunner struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// NewTxRunner construye el runner. timeout <= 0 usa 5s.
func NewTxRunner(pool *pgxpool.Pool, timeout time.Duration) *TxRunner {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &TxRunner{pool: pool, timeout: timeout}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace
// Commit o Rollback. fn recibe el contexto derivado con el plazo: cada
// sentencia de la unidad de trabajo hereda el límite, incluido un
// SELECT FOR UPDATE esperando el bloqueo de otra transacción. El Rollback
// diferido es inocuo tras un Commit exitoso.
func (r *TxRunner) Run(ctx context.Context, fn func(
	ctx context.Context,
	movementRepo repository.StockMovementRepository,
	balanceRepo repository.StockBalanceRepository,
	transferRepo repository.StockTransferRepository,
) error) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return persistenceErr("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	movementRepo := NewStockMovementRepository(tx)
	balanceRepo := NewStockBalanceRepository(tx)
	transferRepo := NewStockTransferRepository(tx)

	if err := fn(ctx, movementRepo, balanceRepo, transferRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return persistenceErr("commit transaction", err)
	}
	return nil
}
