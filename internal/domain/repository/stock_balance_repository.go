package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/ledger"
)

// BalanceFilter filtros para listar saldos. Campos vacíos no filtran.
type BalanceFilter struct {
	ItemID     string
	LocationID string
}

// StockBalanceRepository define el puerto para la proyección de saldos.
// La clave ausente significa saldo cero: Get y GetForUpdate devuelven una
// fila en cero para claves desconocidas, nunca error por ausencia.
type StockBalanceRepository interface {
	Get(ctx context.Context, key ledger.BalanceKey) (*entity.StockBalance, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE) dentro de la transacción.
	GetForUpdate(ctx context.Context, key ledger.BalanceKey) (*entity.StockBalance, error)
	Upsert(ctx context.Context, balance *entity.StockBalance) error
	List(ctx context.Context, filter BalanceFilter, limit, offset int) ([]*entity.StockBalance, error)
	// RebuildFromMovements recalcula los saldos como SUM(quantity) por clave
	// sobre el historial (filtrado si itemID/locationID no están vacíos).
	// Idempotente; debe coincidir exactamente con la proyección incremental.
	RebuildFromMovements(ctx context.Context, itemID, locationID string) error
}
