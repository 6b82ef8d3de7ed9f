package entity

import "time"

// Tipos de ubicación de stock.
const (
	LocationTypeStore    = "STORE"
	LocationTypeFacility = "FACILITY"
	LocationTypeHub      = "HUB"
)

// Location representa un punto de almacenamiento de stock (tienda, sede o hub).
// Las coordenadas son opcionales (nil = sin geolocalización).
type Location struct {
	ID        string
	Name      string
	Type      string // STORE | FACILITY | HUB
	Latitude  *float64
	Longitude *float64
	CreatedAt time.Time
	UpdatedAt time.Time
}
