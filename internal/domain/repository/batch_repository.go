package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// BatchRepository define el puerto de persistencia para lotes.
// Create debe fallar con domain.ErrDuplicate si (item, número de lote) ya existe.
type BatchRepository interface {
	Create(ctx context.Context, batch *entity.Batch) error
	GetByID(ctx context.Context, id string) (*entity.Batch, error)
	// Update persiste los atributos editables del lote (hoy solo el vencimiento).
	Update(ctx context.Context, batch *entity.Batch) error
	ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.Batch, error)
	Delete(ctx context.Context, id string) error
}
