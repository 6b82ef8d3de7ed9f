package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// MovementFilter filtros para listar el historial del ledger. Los campos
// vacíos / nil no filtran.
type MovementFilter struct {
	ItemID     string
	LocationID string
	BatchID    string
	Type       string
	From       *time.Time
	To         *time.Time
}

// StockMovementRepository define el puerto de persistencia del ledger.
// El ledger es append-only: no hay Update ni Delete de movimientos.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	GetByID(ctx context.Context, id string) (*entity.StockMovement, error)
	// List devuelve movimientos en orden por fecha ascendente, desempatado por
	// secuencia de inserción; paginado y reanudable.
	List(ctx context.Context, filter MovementFilter, limit, offset int) ([]*entity.StockMovement, error)
	// Referencias para integridad al borrar registros maestros.
	ExistsByItem(ctx context.Context, itemID string) (bool, error)
	ExistsByLocation(ctx context.Context, locationID string) (bool, error)
	ExistsByBatch(ctx context.Context, batchID string) (bool, error)
}
