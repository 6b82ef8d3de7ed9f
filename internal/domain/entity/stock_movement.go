package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del ledger de stock.
const (
	MovementTypeRECEIPT     = "RECEIPT"      // entrada de stock nuevo
	MovementTypeISSUE       = "ISSUE"        // salida / despacho
	MovementTypeRETURN      = "RETURN"       // devolución (entra)
	MovementTypeADJUSTMENT  = "ADJUSTMENT"   // ajuste con signo propio
	MovementTypeTRANSFEROUT = "TRANSFER_OUT" // salida por traslado (solo coordinador)
	MovementTypeTRANSFERIN  = "TRANSFER_IN"  // entrada por traslado (solo coordinador)
)

// StockMovement es una entrada inmutable del ledger. Una vez registrada nunca
// se modifica ni se borra: las correcciones son movimientos compensatorios.
// Quantity ya viene con signo (positivo entra, negativo sale).
// Seq es la secuencia de inserción, usada para desempatar el orden por fecha.
type StockMovement struct {
	ID         string
	Seq        int64
	TransferID string // correlación: no vacío solo en TRANSFER_OUT / TRANSFER_IN
	ItemID     string
	LocationID string
	BatchID    string // vacío = sin lote
	Type       string
	Quantity   decimal.Decimal
	Actor      string
	OccurredAt time.Time
	Latitude   *float64
	Longitude  *float64
	Remarks    string
	CreatedAt  time.Time
}
