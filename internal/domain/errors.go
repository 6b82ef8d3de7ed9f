package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	// ErrPersistence indica un fallo transitorio de almacenamiento. La unidad de
	// trabajo no dejó estado parcial; el caller puede reintentar la operación completa.
	ErrPersistence = errors.New("fallo de persistencia")
)
