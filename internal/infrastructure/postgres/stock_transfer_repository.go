package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.StockTransferRepository = (*StockTransferRepo)(nil)

// StockTransferRepo implementación de cabeceras de traslado sobre PostgreSQL
// (usable con pool o tx).
type StockTransferRepo struct {
	q Querier
}

// NewStockTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockTransferRepository(q Querier) *StockTransferRepo {
	return &StockTransferRepo{q: q}
}

const transferColumns = `id, item_id, from_location_id, to_location_id, batch_id, quantity, idempotency_key, actor, remarks, created_at`

// Create persiste la cabecera. Idempotency key repetida -> ErrDuplicate
// (índice único parcial sobre idempotency_key).
func (r *StockTransferRepo) Create(ctx context.Context, t *entity.StockTransfer) error {
	idemKey := (*string)(nil)
	if t.IdempotencyKey != "" {
		idemKey = &t.IdempotencyKey
	}
	query := `
		INSERT INTO stock_transfers (id, item_id, from_location_id, to_location_id, batch_id, quantity, idempotency_key, actor, remarks, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.ItemID, t.FromLocationID, t.ToLocationID, t.BatchID,
		t.Quantity, idemKey, t.Actor, t.Remarks, t.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return persistenceErr("create stock transfer", err)
	}
	return nil
}

// GetByID obtiene una cabecera por ID (nil si no existe).
func (r *StockTransferRepo) GetByID(ctx context.Context, id string) (*entity.StockTransfer, error) {
	query := `SELECT ` + transferColumns + ` FROM stock_transfers WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByIdempotencyKey obtiene una cabecera por idempotency key (nil si no existe).
func (r *StockTransferRepo) GetByIdempotencyKey(ctx context.Context, key string) (*entity.StockTransfer, error) {
	query := `SELECT ` + transferColumns + ` FROM stock_transfers WHERE idempotency_key = $1`
	return r.getOne(ctx, query, key)
}

func (r *StockTransferRepo) getOne(ctx context.Context, query, arg string) (*entity.StockTransfer, error) {
	var t entity.StockTransfer
	var idemKey *string
	err := r.q.QueryRow(ctx, query, arg).Scan(
		&t.ID, &t.ItemID, &t.FromLocationID, &t.ToLocationID, &t.BatchID,
		&t.Quantity, &idemKey, &t.Actor, &t.Remarks, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, persistenceErr("get stock transfer", err)
	}
	if idemKey != nil {
		t.IdempotencyKey = *idemKey
	}
	return &t, nil
}
