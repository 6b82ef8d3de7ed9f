package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockTransfer es la cabecera de un traslado entre ubicaciones. El ID
// correlaciona el par de movimientos TRANSFER_OUT / TRANSFER_IN.
// IdempotencyKey (opcional, único) protege contra doble envío del caller.
type StockTransfer struct {
	ID             string
	ItemID         string
	FromLocationID string
	ToLocationID   string
	BatchID        string
	Quantity       decimal.Decimal // magnitud trasladada (> 0)
	IdempotencyKey string
	Actor          string
	Remarks        string
	CreatedAt      time.Time
}
