package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

// BatchRepo implementación del puerto BatchRepository sobre PostgreSQL.
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador de persistencia para lotes.
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

// Create persiste un lote nuevo. (item_id, batch_number) repetido -> ErrDuplicate.
func (r *BatchRepo) Create(ctx context.Context, batch *entity.Batch) error {
	query := `
		INSERT INTO batches (id, item_id, batch_number, expiry_date, initial_qty, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query,
		batch.ID, batch.ItemID, batch.BatchNumber, batch.ExpiryDate, batch.InitialQty, batch.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return persistenceErr("insert batch", err)
	}
	return nil
}

// GetByID obtiene un lote por ID (nil si no existe).
func (r *BatchRepo) GetByID(ctx context.Context, id string) (*entity.Batch, error) {
	query := `
		SELECT id, item_id, batch_number, expiry_date, initial_qty, created_at
		FROM batches WHERE id = $1`
	var b entity.Batch
	err := r.q.QueryRow(ctx, query, id).Scan(
		&b.ID, &b.ItemID, &b.BatchNumber, &b.ExpiryDate, &b.InitialQty, &b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, persistenceErr("get batch", err)
	}
	return &b, nil
}

// Update persiste la fecha de vencimiento del lote. El resto de columnas
// queda fijo desde la creación.
func (r *BatchRepo) Update(ctx context.Context, batch *entity.Batch) error {
	_, err := r.q.Exec(ctx, `UPDATE batches SET expiry_date = $2 WHERE id = $1`, batch.ID, batch.ExpiryDate)
	if err != nil {
		return persistenceErr("update batch", err)
	}
	return nil
}

// ListByItem lista lotes de un artículo con paginación.
func (r *BatchRepo) ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.Batch, error) {
	query := `
		SELECT id, item_id, batch_number, expiry_date, initial_qty, created_at
		FROM batches WHERE item_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, itemID, limit, offset)
	if err != nil {
		return nil, persistenceErr("list batches", err)
	}
	defer rows.Close()
	var list []*entity.Batch
	for rows.Next() {
		var b entity.Batch
		if err := rows.Scan(&b.ID, &b.ItemID, &b.BatchNumber, &b.ExpiryDate, &b.InitialQty, &b.CreatedAt); err != nil {
			return nil, persistenceErr("scan batch", err)
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}

// Delete elimina un lote por ID.
func (r *BatchRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM batches WHERE id = $1`, id)
	if err != nil {
		return persistenceErr("delete batch", err)
	}
	return nil
}
