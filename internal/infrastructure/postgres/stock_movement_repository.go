package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación del ledger sobre PostgreSQL (usable con
// pool o tx). La tabla es append-only: este repo no expone UPDATE ni DELETE.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `id, seq, transfer_id, item_id, location_id, batch_id, type, quantity, actor, occurred_at, latitude, longitude, remarks, created_at`

// Create persiste un movimiento. seq lo asigna la BD (bigserial).
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	transferID := (*string)(nil)
	if m.TransferID != "" {
		transferID = &m.TransferID
	}
	query := `
		INSERT INTO stock_movements (id, transfer_id, item_id, location_id, batch_id, type, quantity, actor, occurred_at, latitude, longitude, remarks, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		m.ID, transferID, m.ItemID, m.LocationID, m.BatchID, m.Type,
		m.Quantity, m.Actor, m.OccurredAt, m.Latitude, m.Longitude, m.Remarks, m.CreatedAt,
	).Scan(&m.Seq)
	if err != nil {
		return persistenceErr("create stock movement", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID (nil si no existe).
func (r *StockMovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE id = $1`
	m, err := scanMovement(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, persistenceErr("get stock movement", err)
	}
	return m, nil
}

// List lista movimientos con filtros opcionales, en orden por fecha
// ascendente y desempate por secuencia de inserción.
func (r *StockMovementRepo) List(ctx context.Context, filter repository.MovementFilter, limit, offset int) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE 1=1`
	var args []any
	pos := 1
	add := func(cond string, val any) {
		query += fmt.Sprintf(" AND "+cond, pos)
		args = append(args, val)
		pos++
	}
	if filter.ItemID != "" {
		add("item_id = $%d", filter.ItemID)
	}
	if filter.LocationID != "" {
		add("location_id = $%d", filter.LocationID)
	}
	if filter.BatchID != "" {
		add("batch_id = $%d", filter.BatchID)
	}
	if filter.Type != "" {
		add("type = $%d", filter.Type)
	}
	if filter.From != nil {
		add("occurred_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("occurred_at <= $%d", *filter.To)
	}
	query += fmt.Sprintf(" ORDER BY occurred_at ASC, seq ASC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, persistenceErr("list stock movements", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, persistenceErr("scan stock movement", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// ExistsByItem indica si algún movimiento referencia el artículo.
func (r *StockMovementRepo) ExistsByItem(ctx context.Context, itemID string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM stock_movements WHERE item_id = $1)`, itemID)
}

// ExistsByLocation indica si algún movimiento referencia la ubicación.
func (r *StockMovementRepo) ExistsByLocation(ctx context.Context, locationID string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM stock_movements WHERE location_id = $1)`, locationID)
}

// ExistsByBatch indica si algún movimiento referencia el lote.
func (r *StockMovementRepo) ExistsByBatch(ctx context.Context, batchID string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM stock_movements WHERE batch_id = $1)`, batchID)
}

func (r *StockMovementRepo) exists(ctx context.Context, query, arg string) (bool, error) {
	var found bool
	if err := r.q.QueryRow(ctx, query, arg).Scan(&found); err != nil {
		return false, persistenceErr("exists stock movement", err)
	}
	return found, nil
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	var transferID *string
	err := row.Scan(
		&m.ID, &m.Seq, &transferID, &m.ItemID, &m.LocationID, &m.BatchID, &m.Type,
		&m.Quantity, &m.Actor, &m.OccurredAt, &m.Latitude, &m.Longitude, &m.Remarks, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if transferID != nil {
		m.TransferID = *transferID
	}
	return &m, nil
}
