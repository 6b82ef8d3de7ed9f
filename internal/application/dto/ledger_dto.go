package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/stock/movements.
// quantity es magnitud (> 0) salvo ADJUSTMENT, que trae signo propio.
type RegisterMovementRequest struct {
	ItemID     string          `json:"item_id" validate:"required"`
	LocationID string          `json:"location_id" validate:"required"`
	BatchID    string          `json:"batch_id,omitempty"`
	Type       string          `json:"type" validate:"required,oneof=RECEIPT ISSUE RETURN ADJUSTMENT"`
	Quantity   decimal.Decimal `json:"quantity"`
	OccurredAt *time.Time      `json:"occurred_at,omitempty"`
	Latitude   *float64        `json:"latitude,omitempty"`
	Longitude  *float64        `json:"longitude,omitempty"`
	Remarks    string          `json:"remarks,omitempty"`
}

// TransferRequest body para POST /api/stock/transfers.
type TransferRequest struct {
	ItemID         string          `json:"item_id" validate:"required"`
	FromLocationID string          `json:"from_location_id" validate:"required"`
	ToLocationID   string          `json:"to_location_id" validate:"required"`
	BatchID        string          `json:"batch_id,omitempty"`
	Quantity       decimal.Decimal `json:"quantity"`
	Remarks        string          `json:"remarks,omitempty"`
	IdempotencyKey string          `json:"idempotency_key,omitempty"`
}

// RebuildRequest body para POST /api/stock/balances/rebuild. Campos vacíos
// reconstruyen todo.
type RebuildRequest struct {
	ItemID     string `json:"item_id,omitempty"`
	LocationID string `json:"location_id,omitempty"`
}

// MovementResponse una entrada del ledger en respuestas.
type MovementResponse struct {
	ID         string          `json:"id"`
	TransferID string          `json:"transfer_id,omitempty"`
	ItemID     string          `json:"item_id"`
	LocationID string          `json:"location_id"`
	BatchID    string          `json:"batch_id,omitempty"`
	Type       string          `json:"type"`
	Quantity   decimal.Decimal `json:"quantity"`
	Actor      string          `json:"actor"`
	OccurredAt time.Time       `json:"occurred_at"`
	Latitude   *float64        `json:"latitude,omitempty"`
	Longitude  *float64        `json:"longitude,omitempty"`
	Remarks    string          `json:"remarks,omitempty"`
}

// MovementListResponse página del historial.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// BalanceResponse saldo actual de una clave.
type BalanceResponse struct {
	ItemID     string          `json:"item_id"`
	LocationID string          `json:"location_id"`
	BatchID    string          `json:"batch_id,omitempty"`
	Quantity   decimal.Decimal `json:"quantity"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// BalanceListResponse página de saldos.
type BalanceListResponse struct {
	Items []BalanceResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
