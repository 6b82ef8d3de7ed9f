package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// StockTransferRepository define el puerto de persistencia para cabeceras de
// traslado. Create debe fallar con domain.ErrDuplicate si la idempotency key
// ya fue usada.
type StockTransferRepository interface {
	Create(ctx context.Context, transfer *entity.StockTransfer) error
	GetByID(ctx context.Context, id string) (*entity.StockTransfer, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*entity.StockTransfer, error)
}
