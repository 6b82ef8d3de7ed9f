package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockBalance es el saldo actual por (artículo, ubicación, lote). Es una
// proyección derivada del ledger: siempre reconstruible desde los movimientos.
// BatchID vacío = stock sin lote.
type StockBalance struct {
	ItemID     string
	LocationID string
	BatchID    string
	Quantity   decimal.Decimal
	UpdatedAt  time.Time
}
