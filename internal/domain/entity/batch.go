package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Batch representa un lote de un artículo. El número de lote es único por
// artículo y la cantidad inicial queda fija en la creación. La fecha de
// vencimiento es informativa: el ledger no la valida al mover stock.
type Batch struct {
	ID          string
	ItemID      string
	BatchNumber string
	ExpiryDate  *time.Time // nil = sin vencimiento
	InitialQty  decimal.Decimal
	CreatedAt   time.Time
}
