package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/application/ledger"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// Ensure TxRunner implements ledger.TxRunner.
var _ ledger.TxRunner = (*TxRunner)(nil)

// TxRunner unidad de trabajo sobre el Store en memoria: serializa las
// unidades con un mutex propio y hace rollback por snapshot si fn falla.
// A diferencia de PostgreSQL no hay bloqueo por clave: aquí toda unidad de
// trabajo es una sección crítica global, que conserva la misma semántica
// observable (linealizable por clave) a costa de concurrencia.
type TxRunner struct {
	txMu    sync.Mutex
	store   *Store
	timeout time.Duration
}

// NewTxRunner construye el runner sobre el store.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store, timeout: 5 * time.Second}
}

// Run ejecuta fn con repos atados al store; si fn falla restaura el snapshot,
// así nunca queda un movimiento sin su actualización de saldo (ni al revés).
// fn recibe un contexto con plazo acotado, igual que en la variante
// PostgreSQL: el doble conserva el contrato completo del puerto.
func (r *TxRunner) Run(ctx context.Context, fn func(
	ctx context.Context,
	movementRepo repository.StockMovementRepository,
	balanceRepo repository.StockBalanceRepository,
	transferRepo repository.StockTransferRepository,
) error) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	if err := ctx.Err(); err != nil {
		return err
	}
	r.txMu.Lock()
	defer r.txMu.Unlock()

	snap := r.store.takeSnapshot()
	err := fn(
		ctx,
		NewStockMovementRepository(r.store),
		NewStockBalanceRepository(r.store),
		NewStockTransferRepository(r.store),
	)
	if err != nil {
		r.store.restore(snap)
		return err
	}
	return nil
}
