package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateItemRequest body para POST /api/items.
type CreateItemRequest struct {
	Name     string `json:"name" validate:"required"`
	Unit     string `json:"unit" validate:"required"`
	Category string `json:"category,omitempty"`
}

// UpdateItemRequest body para PUT /api/items/:id (campos opcionales).
type UpdateItemRequest struct {
	Name     *string `json:"name,omitempty"`
	Unit     *string `json:"unit,omitempty"`
	Category *string `json:"category,omitempty"`
}

// ItemResponse un artículo en respuestas.
type ItemResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Unit      string    `json:"unit"`
	Category  string    `json:"category,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ItemListResponse página de artículos.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// CreateLocationRequest body para POST /api/locations.
type CreateLocationRequest struct {
	Name      string   `json:"name" validate:"required"`
	Type      string   `json:"type" validate:"required,oneof=STORE FACILITY HUB"`
	Latitude  *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
}

// UpdateLocationRequest body para PUT /api/locations/:id (campos opcionales).
type UpdateLocationRequest struct {
	Name      *string  `json:"name,omitempty"`
	Type      *string  `json:"type,omitempty" validate:"omitempty,oneof=STORE FACILITY HUB"`
	Latitude  *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
}

// LocationResponse una ubicación en respuestas.
type LocationResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LocationListResponse página de ubicaciones.
type LocationListResponse struct {
	Items []LocationResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// CreateBatchRequest body para POST /api/batches. La cantidad inicial queda
// fija en la creación.
type CreateBatchRequest struct {
	ItemID      string          `json:"item_id" validate:"required"`
	BatchNumber string          `json:"batch_number" validate:"required"`
	ExpiryDate  *time.Time      `json:"expiry_date,omitempty"`
	InitialQty  decimal.Decimal `json:"initial_qty"`
}

// UpdateBatchRequest body para PUT /api/batches/{id}. Solo la fecha de
// vencimiento es editable; identidad y cantidad inicial quedan fijas.
// expiry_date en null elimina el vencimiento.
type UpdateBatchRequest struct {
	ExpiryDate *time.Time `json:"expiry_date"`
}

// BatchResponse un lote en respuestas.
type BatchResponse struct {
	ID          string          `json:"id"`
	ItemID      string          `json:"item_id"`
	BatchNumber string          `json:"batch_number"`
	ExpiryDate  *time.Time      `json:"expiry_date,omitempty"`
	InitialQty  decimal.Decimal `json:"initial_qty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// BatchListResponse página de lotes.
type BatchListResponse struct {
	Items []BatchResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}
