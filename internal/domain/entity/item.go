package entity

import "time"

// Item representa un artículo del catálogo. La identidad es inmutable;
// los atributos los edita el administrador del catálogo.
type Item struct {
	ID        string
	Name      string
	Unit      string // unidad de medida: "unidad", "caja", "kg", etc.
	Category  string // opcional
	CreatedAt time.Time
	UpdatedAt time.Time
}
