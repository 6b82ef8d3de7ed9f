package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/ledger"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.StockBalanceRepository = (*StockBalanceRepo)(nil)

// StockBalanceRepo implementación de la proyección de saldos sobre PostgreSQL
// (usable con pool o tx). batch_id usa '' para "sin lote": así la clave
// primaria compuesta y el ON CONFLICT funcionan sin NULLs.
type StockBalanceRepo struct {
	q Querier
}

// NewStockBalanceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockBalanceRepository(q Querier) *StockBalanceRepo {
	return &StockBalanceRepo{q: q}
}

// Get obtiene el saldo de una clave. Clave ausente = fila en cero, no error.
func (r *StockBalanceRepo) Get(ctx context.Context, key ledger.BalanceKey) (*entity.StockBalance, error) {
	b, found, err := r.get(ctx, key, false)
	if err != nil {
		return nil, err
	}
	if !found {
		return zeroBalance(key), nil
	}
	return b, nil
}

// GetForUpdate obtiene el saldo y bloquea la fila (SELECT FOR UPDATE).
// Una clave sin fila se materializa primero en cero (ON CONFLICT DO NOTHING)
// y se vuelve a bloquear: sin la fila no habría nada que bloquear y dos
// primeros movimientos concurrentes sobre la misma clave leerían ambos cero,
// perdiendo una de las dos actualizaciones al hacer upsert absoluto.
func (r *StockBalanceRepo) GetForUpdate(ctx context.Context, key ledger.BalanceKey) (*entity.StockBalance, error) {
	for {
		b, found, err := r.get(ctx, key, true)
		if err != nil {
			return nil, err
		}
		if found {
			return b, nil
		}
		// El insert espera a cualquier tx concurrente que esté creando la
		// misma fila; si esa tx aborta la fila desaparece y se reintenta.
		init := `
			INSERT INTO stock_balances (item_id, location_id, batch_id, quantity, updated_at)
			VALUES ($1, $2, $3, 0, now())
			ON CONFLICT (item_id, location_id, batch_id) DO NOTHING`
		if _, err := r.q.Exec(ctx, init, key.ItemID, key.LocationID, key.BatchID); err != nil {
			return nil, persistenceErr("init stock balance", err)
		}
	}
}

func (r *StockBalanceRepo) get(ctx context.Context, key ledger.BalanceKey, forUpdate bool) (*entity.StockBalance, bool, error) {
	query := `
		SELECT item_id, location_id, batch_id, quantity, updated_at
		FROM stock_balances WHERE item_id = $1 AND location_id = $2 AND batch_id = $3`
	if forUpdate {
		query += " FOR UPDATE"
	}
	var b entity.StockBalance
	err := r.q.QueryRow(ctx, query, key.ItemID, key.LocationID, key.BatchID).Scan(
		&b.ItemID, &b.LocationID, &b.BatchID, &b.Quantity, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, persistenceErr("get stock balance", err)
	}
	return &b, true, nil
}

func zeroBalance(key ledger.BalanceKey) *entity.StockBalance {
	return &entity.StockBalance{
		ItemID:     key.ItemID,
		LocationID: key.LocationID,
		BatchID:    key.BatchID,
		Quantity:   decimal.Zero,
	}
}

// Upsert inserta o actualiza la cantidad del saldo para la clave.
func (r *StockBalanceRepo) Upsert(ctx context.Context, balance *entity.StockBalance) error {
	query := `
		INSERT INTO stock_balances (item_id, location_id, batch_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (item_id, location_id, batch_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()`
	_, err := r.q.Exec(ctx, query, balance.ItemID, balance.LocationID, balance.BatchID, balance.Quantity)
	if err != nil {
		return persistenceErr("upsert stock balance", err)
	}
	return nil
}

// List lista saldos filtrados por artículo y/o ubicación, paginado.
func (r *StockBalanceRepo) List(ctx context.Context, filter repository.BalanceFilter, limit, offset int) ([]*entity.StockBalance, error) {
	query := `
		SELECT item_id, location_id, batch_id, quantity, updated_at
		FROM stock_balances WHERE 1=1`
	var args []any
	pos := 1
	if filter.ItemID != "" {
		query += fmt.Sprintf(" AND item_id = $%d", pos)
		args = append(args, filter.ItemID)
		pos++
	}
	if filter.LocationID != "" {
		query += fmt.Sprintf(" AND location_id = $%d", pos)
		args = append(args, filter.LocationID)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY item_id, location_id, batch_id LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, persistenceErr("list stock balances", err)
	}
	defer rows.Close()
	var list []*entity.StockBalance
	for rows.Next() {
		var b entity.StockBalance
		if err := rows.Scan(&b.ItemID, &b.LocationID, &b.BatchID, &b.Quantity, &b.UpdatedAt); err != nil {
			return nil, persistenceErr("scan stock balance", err)
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}

// RebuildFromMovements recalcula saldos como SUM(quantity) por clave sobre el
// ledger. Primero bloquea las filas de saldo del alcance: todo escritor toma
// FOR UPDATE sobre su fila antes de escribir, así ningún movimiento puede
// colarse entre el agregado y el upsert y quedar pisado por una suma vieja.
// Todo movimiento commiteado dejó su fila de saldo en la misma tx, así que
// el bloqueo cubre cada clave con historial. Idempotente.
func (r *StockBalanceRepo) RebuildFromMovements(ctx context.Context, itemID, locationID string) error {
	lock := `
		SELECT item_id FROM stock_balances
		WHERE ($1 = '' OR item_id = $1)
		  AND ($2 = '' OR location_id = $2)
		FOR UPDATE`
	if _, err := r.q.Exec(ctx, lock, itemID, locationID); err != nil {
		return persistenceErr("lock stock balances", err)
	}
	query := `
		INSERT INTO stock_balances (item_id, location_id, batch_id, quantity, updated_at)
		SELECT item_id, location_id, batch_id, SUM(quantity), now()
		FROM stock_movements
		WHERE ($1 = '' OR item_id = $1)
		  AND ($2 = '' OR location_id = $2)
		GROUP BY item_id, location_id, batch_id
		ON CONFLICT (item_id, location_id, batch_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()`
	_, err := r.q.Exec(ctx, query, itemID, locationID)
	if err != nil {
		return persistenceErr("rebuild stock balances", err)
	}
	return nil
}
